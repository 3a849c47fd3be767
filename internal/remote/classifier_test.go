package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/moodlog/internal/api"
	"github.com/mesh-intelligence/moodlog/internal/logger"
	"github.com/mesh-intelligence/moodlog/pkg/types"
)

func TestNew_RejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "ftp://host", "http://"} {
		_, err := New(raw, time.Second, logger.Discard())
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}
}

func TestClassify_AgainstServer(t *testing.T) {
	var seen string
	upstream := types.ClassifierFunc(func(_ context.Context, text string) (types.Analysis, error) {
		seen = text
		return types.Analysis{Sentiment: types.Sad, Insight: "Rough day.", Habit: "Call a friend."}, nil
	})
	srv := httptest.NewServer(api.NewRouter(upstream, time.Second, logger.Discard()))
	defer srv.Close()

	c, err := New(srv.URL+"/", time.Second, logger.Discard())
	require.NoError(t, err)

	got, err := c.Classify(context.Background(), "missed the bus")
	require.NoError(t, err)
	assert.Equal(t, "missed the bus", seen)
	assert.Equal(t, types.Analysis{Sentiment: types.Sad, Insight: "Rough day.", Habit: "Call a friend."}, got)
}

func TestClassify_ServerError(t *testing.T) {
	upstream := types.ClassifierFunc(func(context.Context, string) (types.Analysis, error) {
		return types.Analysis{}, errors.New("model unavailable")
	})
	srv := httptest.NewServer(api.NewRouter(upstream, time.Second, logger.Discard()))
	defer srv.Close()

	c, err := New(srv.URL, time.Second, logger.Discard())
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), "hello")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, "failed to analyze mood", se.Message)
}

func TestClassify_NormalizesSentiment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, AnalyzePath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_ = json.NewEncoder(w).Encode(map[string]string{"sentiment": " Happy ", "insight": "i", "habit": "h"})
	}))
	defer srv.Close()

	c, err := New(srv.URL, time.Second, logger.Discard())
	require.NoError(t, err)

	got, err := c.Classify(context.Background(), "sunny")
	require.NoError(t, err)
	assert.Equal(t, types.Happy, got.Sentiment)
}

func TestClassify_BadResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"unknown sentiment", `{"sentiment":"angry"}`, types.ErrInvalidSentiment},
		{"not JSON", `<html>`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := New(srv.URL, time.Second, logger.Discard())
			require.NoError(t, err)

			_, err = c.Classify(context.Background(), "text")
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestClassify_EmptyTextSkipsRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	c, err := New(srv.URL, time.Second, logger.Discard())
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), "  ")
	assert.ErrorIs(t, err, types.ErrEmptyText)
	assert.False(t, called)
}

func TestClassify_HonorsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(srv.URL, 0, logger.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = c.Classify(ctx, "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
