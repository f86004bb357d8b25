package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	t.Parallel()

	p := Params{StopLossPct: 0.05, TakeProfitPct: 0.10}
	assert.InDelta(t, 95.0, p.StopLevel(100), 1e-9)
	assert.InDelta(t, 110.0, p.TakeLevel(100), 1e-9)

	none := Params{}
	assert.Equal(t, 0.0, none.StopLevel(100))
	assert.Equal(t, 0.0, none.TakeLevel(100))
}

func TestSizeAllIn(t *testing.T) {
	t.Parallel()

	// 10k balance, 0.04% fee, price 100 -> 99.96 units
	assert.InDelta(t, 99.96, SizeAllIn(10_000, 0.0004, 100), 1e-9)
	assert.Equal(t, 0.0, SizeAllIn(10_000, 0.0004, 0))
}

func TestSizeFromNotional(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.05, SizeFromNotional(100, 2000), 1e-12)
	assert.Equal(t, 0.0, SizeFromNotional(100, 0))
}

func TestReturnPct(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 10.0, ReturnPct(100, 110), 1e-9)
	assert.InDelta(t, -5.0, ReturnPct(100, 95), 1e-9)
	assert.Equal(t, 0.0, ReturnPct(0, 95))
}
