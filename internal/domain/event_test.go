package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOutboxBackoff(t *testing.T) {
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{4, 8 * time.Second},
		{6, 32 * time.Second},
		{7, time.Minute},
		{50, time.Minute},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, OutboxBackoff(tt.attempts), "attempts=%d", tt.attempts)
	}
}
