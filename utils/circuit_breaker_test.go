package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerPassesThrough(t *testing.T) {
	cb := NewCircuitBreaker("test", BreakerSettings{})

	out, err := cb.Execute(context.Background(), func() (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	_, err = cb.Execute(context.Background(), func() (interface{}, error) {
		return nil, errors.New("boom")
	})
	assert.EqualError(t, err, "boom", "a single failure does not trip the breaker")
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", BreakerSettings{})

	fail := func() (interface{}, error) { return nil, errors.New("gateway down") }
	for i := 0; i < 100; i++ {
		_, err := cb.Execute(context.Background(), fail)
		require.EqualError(t, err, "gateway down")
	}

	called := false
	_, err := cb.Execute(context.Background(), func() (interface{}, error) {
		called = true
		return nil, nil
	})
	assert.EqualError(t, err, "circuit breaker is open")
	assert.False(t, called, "requests are rejected without reaching the callee")
}

func TestCircuitBreakerCustomThresholds(t *testing.T) {
	cb := NewCircuitBreaker("test", BreakerSettings{
		MaxRequests:  3,
		FailureRatio: 1.0,
	})

	fail := func() (interface{}, error) { return nil, errors.New("gateway down") }
	for i := 0; i < 3; i++ {
		_, err := cb.Execute(context.Background(), fail)
		require.EqualError(t, err, "gateway down")
	}

	_, err := cb.Execute(context.Background(), fail)
	assert.EqualError(t, err, "circuit breaker is open", "trips at the configured sample size")
}
