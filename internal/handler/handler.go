// 決済用Lambda関数のAPI Gateway HTTPハンドラー
package handler

//go:generate mockgen -destination=mocks/mock_provider.go -package=mocks github.com/somoni69/shop-app/internal/payment Provider
//go:generate mockgen -destination=mocks/mock_recorder.go -package=mocks github.com/somoni69/shop-app/internal/audit Recorder

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
)

const (
	MsgServiceUnavailable = "Payment service is temporarily unavailable (Stripe key is missing)"
	MsgProviderFailure    = "An error occurred with our connection to Stripe."
	MsgInternalError      = "内部エラーが発生しました"
)

type errorBody struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
	Code  string `json:"code,omitempty"`
}

func jsonResponse(status int, body any) events.APIGatewayV2HTTPResponse {
	b, err := json.Marshal(body)
	if err != nil {
		return internalErrorResponse()
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: string(b),
	}
}

func internalErrorResponse() events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusInternalServerError,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: `{"error":"` + MsgInternalError + `"}`,
	}
}

// リクエストボディを得る（Base64エンコードされている場合はデコード）
func requestBody(request events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if request.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(request.Body)
	}
	return []byte(request.Body), nil
}

func requestID(ctx context.Context, request events.APIGatewayV2HTTPRequest) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	if request.RequestContext.RequestID != "" {
		return request.RequestContext.RequestID
	}
	return uuid.New().String()
}

// ハンドラー内のpanicを500レスポンスに変換する。ハンドラーから直接deferすること
func recoverPanic(logger *slog.Logger, resp *events.APIGatewayV2HTTPResponse, err *error) {
	if r := recover(); r != nil {
		logger.Error("panic occurred", "panic", r, "stack", string(debug.Stack()))
		*resp = internalErrorResponse()
		*err = nil
	}
}

func errorDetails(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(b)
}
