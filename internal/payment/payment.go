package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// 決済は米ドル固定
const DefaultCurrency = "usd"

var ErrProviderUnavailable = errors.New("payment provider is not configured")

type IntentRequest struct {
	// 最小通貨単位（セント）での金額
	Amount                  int64
	Currency                string
	AutomaticPaymentMethods bool
}

type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
}

// 外部の決済API
type Provider interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	// 最大limit件をプロバイダーのJSONのまま返す
	ListIntents(ctx context.Context, limit int64) ([]json.RawMessage, error)
}

// 決済プロバイダーまたは通信経路で発生したエラー
// プロバイダーから返されなかった場合、TypeとCodeは空文字
type ProviderError struct {
	Type       string `json:"type,omitempty"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"status,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	Err        error  `json:"-"`
}

func (e *ProviderError) Error() string {
	if e.Type == "" && e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (type=%s code=%s)", e.Message, e.Type, e.Code)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// 任意のエラーをProviderErrorに変換（既にProviderErrorを含む場合はそれを返す）
func AsProviderError(err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return &ProviderError{Message: err.Error(), Err: err}
}
