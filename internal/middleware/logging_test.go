package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billing/internal/billing"
	"github.com/mmynk/billing/internal/middleware"
	"github.com/mmynk/billing/internal/rpc"
	"github.com/mmynk/billing/internal/storage/memory"
)

func setupServer(t *testing.T, extra ...connect.Interceptor) *rpc.BillingServiceClient {
	t.Helper()

	interceptors := append([]connect.Interceptor{middleware.LoggingInterceptor()}, extra...)
	svc := billing.NewService(memory.New())
	path, handler := rpc.NewBillingServiceHandler(
		rpc.NewBillingServer(svc, t.TempDir()),
		connect.WithInterceptors(interceptors...),
	)

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return rpc.NewBillingServiceClient(http.DefaultClient, server.URL)
}

func TestLoggingInterceptor_GeneratesRequestID(t *testing.T) {
	var seen string
	capture := connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			seen = middleware.GetRequestID(ctx)
			return next(ctx, req)
		}
	})
	client := setupServer(t, capture)

	resp, err := client.ListRecords(context.Background(), connect.NewRequest(&rpc.ListRecordsRequest{}))
	require.NoError(t, err)

	id := resp.Header().Get(middleware.RequestIDHeader)
	_, parseErr := uuid.Parse(id)
	assert.NoError(t, parseErr, "generated request id should be a UUID")
	assert.Equal(t, id, seen)
}

func TestLoggingInterceptor_ReusesCallerRequestID(t *testing.T) {
	client := setupServer(t)

	req := connect.NewRequest(&rpc.ListRecordsRequest{})
	req.Header().Set(middleware.RequestIDHeader, "form-42")
	resp, err := client.ListRecords(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "form-42", resp.Header().Get(middleware.RequestIDHeader))
}

func TestLoggingInterceptor_TagsErrors(t *testing.T) {
	client := setupServer(t)

	req := connect.NewRequest(&rpc.SaveBillRequest{Name: "Ann"})
	req.Header().Set(middleware.RequestIDHeader, "form-43")
	_, err := client.SaveBill(context.Background(), req)

	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr))
	assert.Equal(t, connect.CodeInvalidArgument, connectErr.Code())
	assert.Equal(t, "form-43", connectErr.Meta().Get(middleware.RequestIDHeader))
}

func TestGetRequestID(t *testing.T) {
	assert.Empty(t, middleware.GetRequestID(context.Background()))

	ctx := middleware.WithRequestID(context.Background(), "form-44")
	assert.Equal(t, "form-44", middleware.GetRequestID(ctx))
}
