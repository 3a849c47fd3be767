package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSentiment(t *testing.T) {
	tests := []struct {
		in      string
		want    Sentiment
		wantErr bool
	}{
		{in: "happy", want: Happy},
		{in: "sad", want: Sad},
		{in: "neutral", want: Neutral},
		{in: "Happy", wantErr: true},
		{in: "angry", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSentiment(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSentiment)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSentimentUnmarshalJSON(t *testing.T) {
	var e Entry
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","text":"x","sentiment":"sad"}`), &e))
	assert.Equal(t, Sad, e.Sentiment)

	for _, raw := range []string{`"Happy"`, `"angry"`, `""`} {
		var s Sentiment
		assert.ErrorIs(t, json.Unmarshal([]byte(raw), &s), ErrInvalidSentiment, raw)
		assert.Empty(t, s)
	}

	var s Sentiment
	assert.Error(t, json.Unmarshal([]byte(`3`), &s))
}

func TestParseOrder(t *testing.T) {
	for _, s := range []string{"chronological", "oldest", "asc"} {
		got, err := ParseOrder(s)
		require.NoError(t, err)
		assert.Equal(t, Chronological, got, s)
	}
	for _, s := range []string{"reverse", "newest", "desc"} {
		got, err := ParseOrder(s)
		require.NoError(t, err)
		assert.Equal(t, Reverse, got, s)
	}

	_, err := ParseOrder("sideways")
	assert.Error(t, err)
}

func TestOrderString(t *testing.T) {
	assert.Equal(t, "chronological", Chronological.String())
	assert.Equal(t, "reverse", Reverse.String())
}

func TestAccountSessionOmitsSecret(t *testing.T) {
	a := Account{ID: "id-1", Email: "a@x.com", SecretHash: "hash", Name: "Ann"}
	s := a.Session()

	assert.Equal(t, "id-1", s.ID)
	assert.Equal(t, "a@x.com", s.Email)
	assert.Equal(t, "Ann", s.Name)
	assert.Empty(t, s.Token)
}
