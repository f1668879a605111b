// Stripeのシークレットキーの保持と、起動時の形式チェック
package credential

import (
	"errors"
	"log/slog"
	"strings"
)

const (
	TestModePrefix = "sk_test_"
	LiveModePrefix = "sk_live_"

	// 正規のキーはこれより十分に長い。短い場合は貼り付け時に切れている可能性がある
	MinLength = 50

	suffixLength = 4
)

var (
	ErrUnknownPrefix = errors.New(`key does not start with "sk_test_" or "sk_live_"; it may be a publishable key`)
	ErrTooShort      = errors.New("key is too short; it may be truncated")
)

// シークレットキー。%vやslogで出力しても末尾4文字しか表示されない
type Key struct {
	value string
}

func NewKey(value string) Key {
	return Key{value: value}
}

// Stripeクライアントに渡すための生のキー
func (k Key) Reveal() string {
	return k.value
}

func (k Key) Suffix() string {
	if len(k.value) <= suffixLength {
		return k.value
	}
	return k.value[len(k.value)-suffixLength:]
}

func (k Key) String() string {
	return "..." + k.Suffix()
}

func (k Key) LogValue() slog.Value {
	return slog.StringValue(k.String())
}

// キーの形式を簡易チェックする。結果は警告用で、起動は止めない
func Check(k Key) []error {
	var problems []error
	if !strings.HasPrefix(k.value, TestModePrefix) && !strings.HasPrefix(k.value, LiveModePrefix) {
		problems = append(problems, ErrUnknownPrefix)
	}
	if len(k.value) < MinLength {
		problems = append(problems, ErrTooShort)
	}
	return problems
}

// キーの読み込み結果をログに出力する。okがfalseの場合は環境変数が未設定
func Report(logger *slog.Logger, k Key, ok bool) {
	if !ok {
		logger.Error("stripe secret key not found",
			"env", "STRIPE_SECRET_KEY",
			"hint", "set STRIPE_SECRET_KEY in the function environment and redeploy",
		)
		return
	}

	logger.Info("stripe secret key loaded", "key", k)
	for _, problem := range Check(k) {
		logger.Warn("stripe secret key looks wrong", "key", k, "reason", problem.Error())
	}
}
