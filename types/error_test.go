package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	t.Parallel()
	e := NewError(ErrOracleUnavailable, "oracle timed out")
	assert.Equal(t, "[ORACLE_UNAVAILABLE] oracle timed out", e.Error())

	withCause := NewError(ErrOracleUnavailable, "oracle failed").WithCause(errors.New("dial tcp: refused"))
	assert.Equal(t, "[ORACLE_UNAVAILABLE] oracle failed: dial tcp: refused", withCause.Error())
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()
	cause := errors.New("boom")
	e := NewError(ErrOracleUnavailable, "wrapped").WithCause(cause)
	assert.True(t, errors.Is(e, cause))
}

func TestError_Builders(t *testing.T) {
	t.Parallel()
	e := NewError(ErrRateLimited, "slow down").
		WithHTTPStatus(429).
		WithRetryable(true).
		WithProvider("openai")

	assert.Equal(t, 429, e.HTTPStatus)
	assert.True(t, e.Retryable)
	assert.Equal(t, "openai", e.Provider)
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(NewError(ErrOracleUnavailable, "x")))
	assert.True(t, IsRetryable(NewError(ErrOracleUnavailable, "x").WithRetryable(true)))

	// Wrapped errors still resolve via errors.As.
	wrapped := fmt.Errorf("advance: %w", NewError(ErrOracleUnavailable, "x").WithRetryable(true))
	assert.True(t, IsRetryable(wrapped))
}

func TestGetErrorCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
	assert.Equal(t, ErrOracleUnavailable, GetErrorCode(NewError(ErrOracleUnavailable, "x")))
}

func TestIsOracleUnavailable(t *testing.T) {
	t.Parallel()
	require.True(t, IsOracleUnavailable(NewError(ErrOracleUnavailable, "x")))
	require.False(t, IsOracleUnavailable(NewError(ErrUnauthorized, "x")))
	require.False(t, IsOracleUnavailable(nil))
}

func TestTranscriptsEqual(t *testing.T) {
	t.Parallel()
	a := []Entry{NewEntry("N", "Begin."), NewEntry("H", "I go north.")}
	b := []Entry{NewEntry("N", "Begin."), NewEntry("H", "I go north.")}
	assert.True(t, TranscriptsEqual(a, b))
	assert.True(t, TranscriptsEqual(nil, nil))
	assert.False(t, TranscriptsEqual(a, b[:1]))

	b[1].Text = "I go south."
	assert.False(t, TranscriptsEqual(a, b))
}
