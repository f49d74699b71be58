package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(failures uint32) *Client {
	return NewClient(ClientOptions{
		Name:            "test",
		Timeout:         time.Second,
		RequestsPerSec:  1000,
		Burst:           10,
		MaxRetries:      2,
		RetryInterval:   time.Millisecond,
		BreakerFailures: failures,
		BreakerTimeout:  time.Minute,
	})
}

// statusServer answers with the given codes in order, repeating the last one
func statusServer(t *testing.T, codes ...int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&calls, 1)) - 1
		code := codes[min(n, len(codes)-1)]
		w.WriteHeader(code)
		if code == http.StatusOK {
			_, _ = w.Write([]byte("ok"))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestGet(t *testing.T) {
	tests := []struct {
		name      string
		codes     []int
		wantBody  string
		wantCode  int
		wantCalls int32
	}{
		{"success", []int{200}, "ok", 0, 1},
		{"retries server errors", []int{502, 503, 200}, "ok", 0, 3},
		{"retries rate limiting", []int{429, 200}, "ok", 0, 2},
		{"client error is permanent", []int{404}, "", 404, 1},
		{"gives up after max retries", []int{500}, "", 500, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := statusServer(t, tt.codes...)
			body, err := testClient(10).Get(context.Background(), srv.URL)

			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(calls))
			if tt.wantCode == 0 {
				require.NoError(t, err)
				assert.Equal(t, tt.wantBody, string(body))
				return
			}
			var statusErr *HTTPStatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.wantCode, statusErr.StatusCode)
		})
	}
}

func TestBreakerOpens(t *testing.T) {
	srv, calls := statusServer(t, 404)
	c := testClient(2)

	for i := 0; i < 2; i++ {
		_, err := c.Get(context.Background(), srv.URL)
		require.Error(t, err)
	}
	_, err := c.Get(context.Background(), srv.URL)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState), "got %v", err)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestGetHonoursContext(t *testing.T) {
	srv, _ := statusServer(t, 200)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(10).Get(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}
