// stripe-goを使ったpayment.Providerの実装
package stripeclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/somoni69/shop-app/internal/config"
	"github.com/somoni69/shop-app/internal/credential"
	"github.com/somoni69/shop-app/internal/payment"
)

const (
	DefaultMaxNetworkRetries = 2
	DefaultTimeout           = 20 * time.Second
)

// stripe-goのメジャーバージョンで固定されるStripe APIのバージョン（v76は2023-10-16）
const APIVersion = stripe.APIVersion

type Options struct {
	MaxNetworkRetries int64
	Timeout           time.Duration
	// APIのベースURL（stripe-mockなどに向ける場合のみ設定）
	URL    string
	Logger *slog.Logger
}

func DefaultOptions(logger *slog.Logger) Options {
	return Options{
		MaxNetworkRetries: DefaultMaxNetworkRetries,
		Timeout:           DefaultTimeout,
		Logger:            logger,
	}
}

type Client struct {
	api *client.API
}

var _ payment.Provider = (*Client)(nil)

func New(key credential.Key, opts Options) *Client {
	httpClient := &http.Client{Timeout: opts.Timeout}

	var leveled stripe.LeveledLoggerInterface = stripe.DefaultLeveledLogger
	if opts.Logger != nil {
		leveled = &slogLogger{logger: opts.Logger.With("component", "stripe")}
	}

	backendConfig := func() *stripe.BackendConfig {
		cfg := &stripe.BackendConfig{
			HTTPClient:        httpClient,
			LeveledLogger:     leveled,
			MaxNetworkRetries: stripe.Int64(opts.MaxNetworkRetries),
		}
		if opts.URL != "" {
			cfg.URL = stripe.String(opts.URL)
		}
		return cfg
	}

	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig()),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig()),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig()),
	}

	return &Client{api: client.New(key.Reveal(), backends)}
}

// 環境変数の設定から関数で使うProviderを作る
// キーがない場合はnilを返し、ハンドラー側でリクエストごとに500を返す
func NewProvider(cfg *config.Config, logger *slog.Logger) payment.Provider {
	// シークレットキーを確認（不正な形式でも起動は続ける）
	key := credential.NewKey(cfg.StripeSecretKey)
	credential.Report(logger, key, cfg.HasStripeSecretKey)
	if !cfg.HasStripeSecretKey {
		return nil
	}

	opts := DefaultOptions(logger)
	opts.URL = cfg.StripeAPIURL
	return New(key, opts)
}

func (c *Client) CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
	}
	if req.AutomaticPaymentMethods {
		params.AutomaticPaymentMethods = &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		}
	}
	params.Context = ctx

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", convertError(err))
	}

	return &payment.Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}, nil
}

func (c *Client) ListIntents(ctx context.Context, limit int64) ([]json.RawMessage, error) {
	params := &stripe.PaymentIntentListParams{}
	params.Limit = stripe.Int64(limit)
	params.Single = true
	params.Context = ctx

	records := make([]json.RawMessage, 0, limit)
	it := c.api.PaymentIntents.List(params)
	for int64(len(records)) < limit && it.Next() {
		raw, err := json.Marshal(it.PaymentIntent())
		if err != nil {
			return nil, fmt.Errorf("encode payment intent: %w", err)
		}
		records = append(records, raw)
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("list payment intents: %w", convertError(err))
	}

	return records, nil
}

func convertError(err error) *payment.ProviderError {
	var se *stripe.Error
	if errors.As(err, &se) {
		return &payment.ProviderError{
			Type:       string(se.Type),
			Code:       string(se.Code),
			Message:    se.Msg,
			HTTPStatus: se.HTTPStatusCode,
			RequestID:  se.RequestID,
			Err:        err,
		}
	}
	return &payment.ProviderError{Message: err.Error(), Err: err}
}
