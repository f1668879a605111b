// ENV=LOCALのときにLambdaハンドラーをWebサーバーとして起動する
package localserver

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	readHeaderTimeout     = 5 * time.Second
	gracefulShutdownDelay = 5 * time.Second
)

// API Gateway HTTP API用のLambdaハンドラーの型
type HandlerFunc func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

func NewRouter(h HandlerFunc, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.HandleFunc("/*", httpHandler(h, logger))

	return r
}

// ctxがキャンセルされるまでaddrでhを提供する
func Run(ctx context.Context, addr string, h HandlerFunc, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(h, logger),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("local HTTP server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownDelay)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func httpHandler(h HandlerFunc, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// HTTPリクエストをAPIGatewayV2HTTPRequestに変換
		event, err := ToEvent(r)
		if err != nil {
			logger.Error("failed to read request body", "error", err)
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		// Lambda handlerを実行
		response, err := h(r.Context(), event)
		if err != nil {
			logger.Error("handler error", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		if err := WriteResponse(w, response); err != nil {
			logger.Error("failed to write response", "error", err)
		}
	}
}

// HTTPリクエストをAPI Gatewayが渡すイベントの形に変換
func ToEvent(r *http.Request) (events.APIGatewayV2HTTPRequest, error) {
	// API Gatewayと同じくヘッダー名は小文字にそろえる
	headers := make(map[string]string, len(r.Header))
	for key, values := range r.Header {
		headers[strings.ToLower(key)] = strings.Join(values, ",")
	}

	queryParams := make(map[string]string)
	for key, values := range r.URL.Query() {
		queryParams[key] = strings.Join(values, ",")
	}

	var body string
	if r.Body != nil {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			return events.APIGatewayV2HTTPRequest{}, err
		}
		body = string(bodyBytes)
	}

	return events.APIGatewayV2HTTPRequest{
		Version:               "2.0",
		RouteKey:              "$default",
		RawPath:               r.URL.Path,
		RawQueryString:        r.URL.RawQuery,
		Headers:               headers,
		QueryStringParameters: queryParams,
		Body:                  body,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			RequestID: middleware.GetReqID(r.Context()),
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:    r.Method,
				Path:      r.URL.Path,
				Protocol:  r.Proto,
				SourceIP:  sourceIP(r.RemoteAddr),
				UserAgent: r.UserAgent(),
			},
		},
	}, nil
}

func WriteResponse(w http.ResponseWriter, response events.APIGatewayV2HTTPResponse) error {
	// レスポンスヘッダーを設定
	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	for key, values := range response.MultiValueHeaders {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	body := []byte(response.Body)
	if response.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(response.Body)
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return err
		}
		body = decoded
	}

	status := response.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	_, err := w.Write(body)
	return err
}

func sourceIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
