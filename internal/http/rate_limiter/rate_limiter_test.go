package rate_limiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetVisitor_BurstThenDeny(t *testing.T) {
	Configure(1, 2)
	t.Cleanup(func() { Configure(0, 0) })

	l := GetVisitor("192.0.2.1")
	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())

	assert.True(t, GetVisitor("192.0.2.2").Allow(), "clients are limited independently")
	assert.Same(t, l, GetVisitor("192.0.2.1"))
}

func TestConfigure_NonPositiveDisablesLimiting(t *testing.T) {
	Configure(0, 0)

	l := GetVisitor("192.0.2.3")
	for i := 0; i < 100; i++ {
		if !l.Allow() {
			t.Fatalf("request %d denied with limiting disabled", i)
		}
	}
}

func TestCleanupIdle(t *testing.T) {
	CleanupAllVisitors()
	first := GetVisitor("192.0.2.4")

	mu.Lock()
	visitors["192.0.2.4"].lastSeen = time.Now().Add(-time.Hour)
	mu.Unlock()

	cleanupIdle(time.Minute)
	assert.NotSame(t, first, GetVisitor("192.0.2.4"))
}
