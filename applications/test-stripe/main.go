// Stripeへの接続確認用Lambda関数。支払いインテントを1件だけ取得する
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/somoni69/shop-app/internal/config"
	"github.com/somoni69/shop-app/internal/handler"
	"github.com/somoni69/shop-app/internal/localserver"
	"github.com/somoni69/shop-app/internal/logging"
	"github.com/somoni69/shop-app/internal/stripeclient"
)

const functionName = "test-stripe"

func main() {
	logger := logging.New(os.Stdout, functionName)
	logger.Info("function loaded")

	cfg := config.Load()

	provider := stripeclient.NewProvider(cfg, logger)

	h := handler.NewTestStripeHandler(provider, logger)

	if cfg.IsLocal() {
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
