// 作成した支払いインテントをDynamoDBの監査テーブルに記録する
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/somoni69/shop-app/internal/logging"
)

// 監査テーブルの1件分
type Record struct {
	IntentID  string
	Amount    int64
	Currency  string
	Status    string
	SourceIP  string
	RequestID string
	CreatedAt time.Time
}

// 監査テーブルのアイテム。created_atはUNIXタイムスタンプ（秒）で保存する
type auditItem struct {
	IntentID  string `dynamodbav:"intent_id"`
	Amount    int64  `dynamodbav:"amount"`
	Currency  string `dynamodbav:"currency"`
	Status    string `dynamodbav:"status"`
	// ローカル実行などで送信元IPが取れない場合は属性ごと省く
	SourceIP  string `dynamodbav:"source_ip,omitempty"`
	RequestID string `dynamodbav:"request_id"`
	CreatedAt int64  `dynamodbav:"created_at"`
}

type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

// DynamoDBクライアントのうち監査ログで使うメソッドだけを切り出したもの
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type DynamoRecorder struct {
	client    PutItemAPI
	tableName string
}

var _ Recorder = (*DynamoRecorder)(nil)

func NewDynamoRecorder(client PutItemAPI, tableName string) *DynamoRecorder {
	return &DynamoRecorder{client: client, tableName: tableName}
}

// AWS SDKの設定を読み込む関数
type ConfigLoader func(ctx context.Context) (aws.Config, error)

func LoadDefaultConfig(ctx context.Context) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx)
}

// テーブル名が空の場合は監査ログを無効にしてnilを返す
// AWS設定の読み込みに失敗した場合も、監査ログなしで起動を続ける
func NewRecorder(ctx context.Context, tableName string, load ConfigLoader, logger *slog.Logger) Recorder {
	if tableName == "" {
		return nil
	}

	cfg, err := load(ctx)
	if err != nil {
		logger.Warn("unable to load SDK config, intent audit disabled", "table", tableName, "error", err)
		return nil
	}

	logger.Info("intent audit enabled", "table", tableName)
	return NewDynamoRecorder(dynamodb.NewFromConfig(cfg), tableName)
}

func (r *DynamoRecorder) Record(ctx context.Context, rec Record) error {
	// DynamoDBアイテムに変換
	item, err := attributevalue.MarshalMap(auditItem{
		IntentID:  rec.IntentID,
		Amount:    rec.Amount,
		Currency:  rec.Currency,
		Status:    rec.Status,
		SourceIP:  rec.SourceIP,
		RequestID: rec.RequestID,
		CreatedAt: rec.CreatedAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal audit record %s: %w", rec.IntentID, err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put audit record %s: %w", rec.IntentID, err)
	}

	logging.FromContext(ctx).Debug("audit record written", "table", r.tableName, "intent_id", rec.IntentID)
	return nil
}
