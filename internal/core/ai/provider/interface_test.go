package provider

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRateLimited(t *testing.T) {
	assert.False(t, IsRateLimited(nil))
	assert.True(t, IsRateLimited(fmt.Errorf("call: %w", ErrRateLimited)))
	assert.True(t, IsRateLimited(errors.New("Error 429, Message: slow down")))
	assert.True(t, IsRateLimited(errors.New("Quota exceeded for metric")))
	assert.True(t, IsRateLimited(errors.New("rate limit hit")))
	assert.False(t, IsRateLimited(errors.New("invalid argument")))
}
