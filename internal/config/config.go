package config

import "os"

// ローカル実行を示すENVの値
const EnvLocal = "LOCAL"

type Config struct {
	// Stripeのシークレットキー。未設定の場合は空文字
	StripeSecretKey string
	// StripeSecretKeyが環境変数に存在したかどうか
	HasStripeSecretKey bool
	// Stripe APIのベースURL（stripe-mockなどに向ける場合のみ設定）
	StripeAPIURL string

	Env       string
	LocalAddr string

	// 監査ログ用のDynamoDBテーブル名。空の場合は監査ログを書き込まない
	IntentAuditTable string
}

func Load() *Config {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) *Config {
	key, ok := lookup("STRIPE_SECRET_KEY")
	if ok && key == "" {
		ok = false
	}

	return &Config{
		StripeSecretKey:    key,
		HasStripeSecretKey: ok,
		StripeAPIURL:       getEnv(lookup, "STRIPE_API_URL", ""),
		Env:                getEnv(lookup, "ENV", ""),
		LocalAddr:          getEnv(lookup, "LOCAL_ADDR", ":8080"),
		IntentAuditTable:   getEnv(lookup, "INTENT_AUDIT_TABLE", ""),
	}
}

func (c *Config) IsLocal() bool {
	return c.Env == EnvLocal
}

func getEnv(lookup func(string) (string, bool), key, fallback string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return fallback
}
