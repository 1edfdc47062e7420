package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucket_BurstThenRefill(t *testing.T) {
	now := time.Unix(100, 0)
	tb := newTokenBucket(2, 3, func() time.Time { return now })

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(), "request %d", i+1)
	}
	assert.False(t, tb.Allow())

	now = now.Add(500 * time.Millisecond)
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	// 不会超过容量。
	now = now.Add(time.Hour)
	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow())
	}
	assert.False(t, tb.Allow())
}
