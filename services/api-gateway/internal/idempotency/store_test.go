package idempotency

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginFinishReplay(t *testing.T) {
	s := New(time.Minute)

	res, err := s.Begin("k1")
	require.NoError(t, err)
	assert.Nil(t, res)

	_, err = s.Begin("k1")
	assert.ErrorIs(t, err, ErrInFlight)

	s.Finish("k1", Result{Status: http.StatusOK, Body: "ok"})
	res, err = s.Begin("k1")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "ok", res.Body)
}

func TestAbandonAllowsRetry(t *testing.T) {
	s := New(time.Minute)
	_, err := s.Begin("k")
	require.NoError(t, err)
	s.Abandon("k")

	res, err := s.Begin("k")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestEntriesExpire(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(time.Minute)
	s.now = func() time.Time { return now }

	_, _ = s.Begin("k")
	s.Finish("k", Result{Status: http.StatusOK})

	now = now.Add(2 * time.Minute)
	res, err := s.Begin("k")
	require.NoError(t, err)
	assert.Nil(t, res)
}
