package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/somoni69/shop-app/internal/logging"
	"github.com/somoni69/shop-app/internal/payment"
)

// 接続確認ではStripeに1件だけ問い合わせる
const connectivityListLimit = 1

type connectivitySuccess struct {
	Success bool              `json:"success"`
	Data    []json.RawMessage `json:"data"`
}

type connectivityFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
}

// 支払いインテントを1件取得して、キーとStripeへの経路が有効か確認するハンドラー
type TestStripeHandler struct {
	provider payment.Provider
	logger   *slog.Logger
}

func NewTestStripeHandler(provider payment.Provider, logger *slog.Logger) *TestStripeHandler {
	return &TestStripeHandler{provider: provider, logger: logger}
}

func (h *TestStripeHandler) Handle(ctx context.Context, request events.APIGatewayV2HTTPRequest) (resp events.APIGatewayV2HTTPResponse, err error) {
	log := h.logger.With("request_id", requestID(ctx, request))
	ctx = logging.WithLogger(ctx, log)
	defer recoverPanic(log, &resp, &err)

	log.Info("starting stripe connectivity test")

	if h.provider == nil {
		log.Error("stripe client is not initialized: secret key is missing", "error", payment.ErrProviderUnavailable)
		return jsonResponse(http.StatusInternalServerError, connectivityFailure{
			Success: false,
			Error:   MsgServiceUnavailable,
		}), nil
	}

	records, err := h.provider.ListIntents(ctx, connectivityListLimit)
	if err != nil {
		pe := payment.AsProviderError(err)
		log.Error("stripe connectivity test failed",
			"error_type", pe.Type,
			"error_message", pe.Message,
			"error_code", pe.Code,
			"error_details", errorDetails(pe),
		)
		return jsonResponse(http.StatusBadRequest, connectivityFailure{
			Success: false,
			Error:   pe.Message,
			Type:    pe.Type,
			Code:    pe.Code,
		}), nil
	}

	if records == nil {
		records = []json.RawMessage{}
	}
	log.Info("connected to stripe", "records", len(records))

	return jsonResponse(http.StatusOK, connectivitySuccess{Success: true, Data: records}), nil
}
