package netutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestHostLimiterPerHostOverride(t *testing.T) {
	hl := NewHostLimiter(2.0, 4)
	hl.SetHostLimit("api.metered.example", 0.5, 1)

	metered := hl.limiterFor("api.metered.example")
	assert.Equal(t, rate.Limit(0.5), metered.Limit())
	assert.Equal(t, 1, metered.Burst())

	// other hosts keep the shared default
	other := hl.limiterFor("careers.example.org")
	assert.Equal(t, rate.Limit(2.0), other.Limit())
	assert.Equal(t, 4, other.Burst())

	// repeated lookups reuse the same limiter
	assert.Same(t, metered, hl.limiterFor("api.metered.example"))
}

func TestHostLimiterUnparsableURL(t *testing.T) {
	hl := NewHostLimiter(2.0, 4)
	// hostless inputs share one fallback bucket
	assert.Same(t, hl.limiterFor("_"), hl.limiterFor("_"))
}
