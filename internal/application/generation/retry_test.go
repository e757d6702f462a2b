package generation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryableMatrix(t *testing.T) {
	policy := DefaultRetryPolicy(3, 500*time.Millisecond)

	assert.True(t, policy.Retryable(500, nil))
	assert.True(t, policy.Retryable(502, nil))
	assert.True(t, policy.Retryable(503, nil))
	assert.True(t, policy.Retryable(0, errors.New("connection refused")))

	assert.False(t, policy.Retryable(400, nil))
	assert.False(t, policy.Retryable(401, nil))
	assert.False(t, policy.Retryable(404, nil))
	assert.False(t, policy.Retryable(429, nil))
}

func TestLinearBackoff(t *testing.T) {
	policy := DefaultRetryPolicy(3, 500*time.Millisecond)

	assert.Equal(t, 500*time.Millisecond, policy.Backoff(1))
	assert.Equal(t, time.Second, policy.Backoff(2))
	assert.Equal(t, 1500*time.Millisecond, policy.Backoff(3))
}

func TestDefaultRetryPolicyDefaults(t *testing.T) {
	policy := DefaultRetryPolicy(0, 0)

	assert.Equal(t, 3, policy.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, policy.Backoff(1))
}
