package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/moodlog/internal/logger"
	"github.com/mesh-intelligence/moodlog/pkg/types"
)

func newTestRouter(c types.Classifier) http.Handler {
	return NewRouter(c, time.Second, logger.Discard())
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAnalyze_Success(t *testing.T) {
	var got string
	c := types.ClassifierFunc(func(_ context.Context, text string) (types.Analysis, error) {
		got = text
		return types.Analysis{Sentiment: types.Happy, Insight: "Good day.", Habit: "Walk."}, nil
	})

	rec := post(t, newTestRouter(c), `{"text":"  I went for a run  "}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "I went for a run", got)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, AnalyzeResponse{Sentiment: types.Happy, Insight: "Good day.", Habit: "Walk."}, resp)
}

func TestAnalyze_BadRequest(t *testing.T) {
	called := false
	c := types.ClassifierFunc(func(context.Context, string) (types.Analysis, error) {
		called = true
		return types.Analysis{Sentiment: types.Neutral}, nil
	})
	h := newTestRouter(c)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"malformed JSON", `{"text":`, "invalid request body"},
		{"unknown field", `{"text":"hi","mood":"x"}`, "invalid request body"},
		{"missing text", `{}`, "text is required"},
		{"blank text", `{"text":"   "}`, "text is required"},
		{"too long", `{"text":"` + strings.Repeat("a", MaxTextLength+1) + `"}`, "text must be at most 10000 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.message, resp.Error)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
	assert.False(t, called)
}

func TestAnalyze_ClassifierFailures(t *testing.T) {
	tests := []struct {
		name   string
		result types.Analysis
		err    error
		status int
	}{
		{"upstream error", types.Analysis{}, errors.New("boom"), http.StatusBadGateway},
		{"unknown sentiment", types.Analysis{Sentiment: "ecstatic"}, nil, http.StatusBadGateway},
		{"deadline", types.Analysis{}, context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"empty text", types.Analysis{}, types.ErrEmptyText, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := types.ClassifierFunc(func(context.Context, string) (types.Analysis, error) {
				return tt.result, tt.err
			})
			rec := post(t, newTestRouter(c), `{"text":"hello"}`)
			assert.Equal(t, tt.status, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestAnalyze_TimeoutReachesClassifier(t *testing.T) {
	c := types.ClassifierFunc(func(ctx context.Context, _ string) (types.Analysis, error) {
		<-ctx.Done()
		return types.Analysis{}, ctx.Err()
	})
	h := NewRouter(c, 20*time.Millisecond, logger.Discard())

	rec := post(t, h, `{"text":"hello"}`)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestAnalyze_MethodNotAllowed(t *testing.T) {
	h := newTestRouter(types.ClassifierFunc(func(context.Context, string) (types.Analysis, error) {
		return types.Analysis{Sentiment: types.Neutral}, nil
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analyze", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	h := newTestRouter(nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRecoverer(t *testing.T) {
	c := types.ClassifierFunc(func(context.Context, string) (types.Analysis, error) {
		panic("classifier exploded")
	})
	rec := post(t, newTestRouter(c), `{"text":"hello"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ln, newTestRouter(nil), logger.Discard())
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
