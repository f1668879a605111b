package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/somoni69/shop-app/internal/audit"
	"github.com/somoni69/shop-app/internal/logging"
	"github.com/somoni69/shop-app/internal/payment"
)

var (
	errMissingAmount     = errors.New("amount is required")
	errNonIntegralAmount = errors.New("amount must be an integer")
)

// リクエストボディの構造体
// amountは1e3や"1000"のような表記も受け付けるためjson.Numberで受け取る
type paymentIntentRequest struct {
	Amount json.Number `json:"amount"`
}

type paymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
}

type PaymentIntentHandler struct {
	// シークレットキーが未設定の場合はnil
	provider payment.Provider
	// 監査テーブルが未設定の場合はnil
	recorder audit.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

func NewPaymentIntentHandler(provider payment.Provider, recorder audit.Recorder, logger *slog.Logger) *PaymentIntentHandler {
	return &PaymentIntentHandler{
		provider: provider,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

func (h *PaymentIntentHandler) Handle(ctx context.Context, request events.APIGatewayV2HTTPRequest) (resp events.APIGatewayV2HTTPResponse, err error) {
	reqID := requestID(ctx, request)
	log := h.logger.With("request_id", reqID)
	ctx = logging.WithLogger(ctx, log)
	defer recoverPanic(log, &resp, &err)

	log.Info("payment request received")

	if h.provider == nil {
		log.Error("stripe client is not initialized: secret key is missing", "error", payment.ErrProviderUnavailable)
		return jsonResponse(http.StatusInternalServerError, errorBody{Error: MsgServiceUnavailable}), nil
	}

	amount, err := parseAmount(request)
	if err != nil {
		log.Error("failed to parse request body", "error", err)
		return jsonResponse(http.StatusBadRequest, errorBody{Error: MsgProviderFailure}), nil
	}
	log.Info("amount received", "amount", amount)

	intent, err := h.provider.CreateIntent(ctx, payment.IntentRequest{
		Amount:                  amount,
		Currency:                payment.DefaultCurrency,
		AutomaticPaymentMethods: true,
	})
	if err != nil {
		pe := payment.AsProviderError(err)
		log.Error("error while connecting to stripe",
			"error_type", pe.Type,
			"error_message", pe.Message,
			"error_code", pe.Code,
			"error_details", errorDetails(pe),
		)
		return jsonResponse(http.StatusBadRequest, errorBody{
			Error: MsgProviderFailure,
			Type:  pe.Type,
			Code:  pe.Code,
		}), nil
	}

	log.Info("payment intent created", "intent_id", intent.ID)

	// 監査ログの書き込みに失敗してもレスポンスは成功として返す（決済自体は作成済みのため）
	if h.recorder != nil {
		rec := audit.Record{
			IntentID:  intent.ID,
			Amount:    intent.Amount,
			Currency:  intent.Currency,
			Status:    intent.Status,
			SourceIP:  request.RequestContext.HTTP.SourceIP,
			RequestID: reqID,
			CreatedAt: h.now(),
		}
		if err := h.recorder.Record(ctx, rec); err != nil {
			log.Warn("failed to write audit record", "intent_id", intent.ID, "error", err)
		}
	}

	return jsonResponse(http.StatusOK, paymentIntentResponse{ClientSecret: intent.ClientSecret}), nil
}

func parseAmount(request events.APIGatewayV2HTTPRequest) (int64, error) {
	body, err := requestBody(request)
	if err != nil {
		return 0, err
	}

	var req paymentIntentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return 0, err
	}
	if req.Amount == "" {
		return 0, errMissingAmount
	}
	return amountValue(req.Amount)
}

// 整数として表せる値だけを返す。範囲の検証はStripeに任せる
func amountValue(n json.Number) (int64, error) {
	if v, err := n.Int64(); err == nil {
		return v, nil
	}

	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errNonIntegralAmount, n)
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %s", errNonIntegralAmount, n)
	}
	return int64(f), nil
}
