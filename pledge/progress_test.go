package pledge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pledgewall/pledge-engine/pledge"
)

func rows(amounts ...float64) []pledge.Collection {
	out := make([]pledge.Collection, len(amounts))
	for i, a := range amounts {
		out[i] = pledge.Collection{PersonID: "p", DayID: i + 1, Amount: a}
	}
	return out
}

func TestComputeProgress_Percentages(t *testing.T) {
	tests := []struct {
		name      string
		target    float64
		amounts   []float64
		collected float64
		remaining float64
		percent   int
	}{
		{
			name:      "partial collection",
			target:    1000,
			amounts:   []float64{400},
			collected: 400,
			remaining: 600,
			percent:   40,
		},
		{
			name:      "multiple days sum",
			target:    1000,
			amounts:   []float64{250, 250, 100},
			collected: 600,
			remaining: 400,
			percent:   60,
		},
		{
			name:      "exactly met",
			target:    500,
			amounts:   []float64{500},
			collected: 500,
			remaining: 0,
			percent:   100,
		},
		{
			name:      "over-delivery clamps to 100",
			target:    500,
			amounts:   []float64{700},
			collected: 700,
			remaining: 0,
			percent:   100,
		},
		{
			name:      "nothing collected",
			target:    1000,
			amounts:   nil,
			collected: 0,
			remaining: 1000,
			percent:   0,
		},
		{
			name:      "no target means zero percent",
			target:    0,
			amounts:   []float64{300},
			collected: 300,
			remaining: 0,
			percent:   0,
		},
		{
			name:      "rounds half away from zero",
			target:    3,
			amounts:   []float64{2},
			collected: 2,
			remaining: 1,
			percent:   67,
		},
		{
			name:      "rounds down below half",
			target:    3,
			amounts:   []float64{1},
			collected: 1,
			remaining: 2,
			percent:   33,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pledge.ComputeProgress(tt.target, rows(tt.amounts...))

			assert.Equal(t, tt.target, got.Target)
			assert.Equal(t, tt.collected, got.Collected)
			assert.Equal(t, tt.remaining, got.Remaining)
			assert.Equal(t, tt.percent, got.Percent)
		})
	}
}

func TestComputeProgress_DecimalSum(t *testing.T) {
	// GIVEN: Amounts that do not sum cleanly in binary floating point
	// WHEN: Computing progress
	// THEN: The collected total is exact, not 0.30000000000000004

	got := pledge.ComputeProgress(1, rows(0.1, 0.2))

	assert.Equal(t, 0.3, got.Collected)
	assert.Equal(t, 0.7, got.Remaining)
	assert.Equal(t, 30, got.Percent)
}
