// Stripeで支払いインテント（Payment Intent）を作成し、client_secretを返すLambda関数
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/somoni69/shop-app/internal/audit"
	"github.com/somoni69/shop-app/internal/config"
	"github.com/somoni69/shop-app/internal/handler"
	"github.com/somoni69/shop-app/internal/localserver"
	"github.com/somoni69/shop-app/internal/logging"
	"github.com/somoni69/shop-app/internal/stripeclient"
)

const functionName = "payment-intent"

func main() {
	logger := logging.New(os.Stdout, functionName)
	logger.Info("function loaded")

	cfg := config.Load()

	// キーがない場合はStripeクライアントを作らず、リクエスト時に500を返す
	provider := stripeclient.NewProvider(cfg, logger)

	// 監査テーブルが指定されている場合のみDynamoDBクライアントを初期化
	recorder := audit.NewRecorder(context.TODO(), cfg.IntentAuditTable, audit.LoadDefaultConfig, logger)

	h := handler.NewPaymentIntentHandler(provider, recorder, logger)

	if cfg.IsLocal() {
		// Webサーバーとして起動
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		if err := localserver.Run(ctx, cfg.LocalAddr, h.Handle, logger); err != nil {
			logger.Error("local server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	lambda.Start(h.Handle)
}
