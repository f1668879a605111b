package localserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somoni69/shop-app/internal/logging"
)

func TestToEvent(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/payment-intent?mode=test&tag=a&tag=b", strings.NewReader(`{"amount":1000}`))
	r.Header.Set("Content-Type", "application/json")
	r.RemoteAddr = "192.0.2.1:54321"

	event, err := ToEvent(r)

	require.NoError(t, err)
	assert.Equal(t, "2.0", event.Version)
	assert.Equal(t, "/payment-intent", event.RawPath)
	assert.Equal(t, "mode=test&tag=a&tag=b", event.RawQueryString)
	assert.Equal(t, "application/json", event.Headers["content-type"])
	assert.Equal(t, "test", event.QueryStringParameters["mode"])
	assert.Equal(t, "a,b", event.QueryStringParameters["tag"])
	assert.Equal(t, `{"amount":1000}`, event.Body)
	assert.False(t, event.IsBase64Encoded)
	assert.Equal(t, http.MethodPost, event.RequestContext.HTTP.Method)
	assert.Equal(t, "192.0.2.1", event.RequestContext.HTTP.SourceIP)
}

func TestWriteResponse(t *testing.T) {
	rec := httptest.NewRecorder()

	err := WriteResponse(rec, events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusBadRequest,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       `{"error":"x"}`,
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"error":"x"}`, rec.Body.String())
}

func TestWriteResponse_Base64Body(t *testing.T) {
	rec := httptest.NewRecorder()

	err := WriteResponse(rec, events.APIGatewayV2HTTPResponse{
		Body:            base64.StdEncoding.EncodeToString([]byte("binary")),
		IsBase64Encoded: true,
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "binary", rec.Body.String())
}

func TestRouter_RoutesEveryPathToHandler(t *testing.T) {
	var got events.APIGatewayV2HTTPRequest
	h := func(_ context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		got = req
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusOK,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"client_secret":"pi_secret"}`,
		}, nil
	}

	srv := httptest.NewServer(NewRouter(h, logging.New(&bytes.Buffer{}, "test")))
	defer srv.Close()

	for _, path := range []string{"/", "/functions/v1/payment-intent"} {
		resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(`{"amount":42}`))
		require.NoError(t, err)

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, `{"client_secret":"pi_secret"}`, string(body))
		assert.Equal(t, `{"amount":42}`, got.Body)
		assert.Equal(t, path, got.RawPath)
		assert.NotEmpty(t, got.RequestContext.RequestID)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return events.APIGatewayV2HTTPResponse{}, nil
	}

	err := Run(ctx, "127.0.0.1:0", h, logging.New(&bytes.Buffer{}, "test"))

	assert.NoError(t, err)
}
