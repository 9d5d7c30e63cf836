package clock_test

import (
	"testing"
	"time"

	"go-gin-raffle/internal/clock"

	"github.com/stretchr/testify/assert"
)

func TestManual(t *testing.T) {
	c := clock.NewManual(1_000)
	assert.Equal(t, int64(1_000), c.NowMs())

	c.Advance(2 * time.Second)
	assert.Equal(t, int64(3_000), c.NowMs())

	c.Advance(-time.Second)
	assert.Equal(t, int64(3_000), c.NowMs(), "negative advance is ignored")

	c.Set(2_000)
	assert.Equal(t, int64(3_000), c.NowMs(), "clock never moves backwards")

	c.Set(10_000)
	assert.Equal(t, int64(10_000), c.NowMs())
}

func TestSystem(t *testing.T) {
	c := clock.NewSystem()
	first := c.NowMs()
	second := c.NowMs()
	assert.GreaterOrEqual(t, second, first)
	assert.InDelta(t, time.Now().UnixMilli(), second, 1000)
}
