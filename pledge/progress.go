/*
progress.go - Collection-day totals and completion percentage

PURPOSE:
  Computes, for one donor, how much has been collected across all
  collection days, how much remains against the pledge target, and the
  completion percentage shown on the collection grid.

DISPLAY PARITY:
  The percentage is rounded half away from zero and clamped to [0,100];
  a donor who over-delivers is shown at 100%, never above. With no
  positive target the percentage is 0 and remaining is 0.

DECIMAL ARITHMETIC:
  Sums and the percentage division run on shopspring/decimal so that a
  long column of amounts never drifts the way a float64 accumulator can.
*/
package pledge

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// Progress summarizes collected money against a pledge target.
type Progress struct {
	Target    float64 `json:"target"`
	Collected float64 `json:"collected"`
	Remaining float64 `json:"remaining"`
	Percent   int     `json:"percent"`
}

// ComputeProgress derives the collection summary for one donor from the
// pledge target and the donor's sparse collection rows.
func ComputeProgress(target float64, rows []Collection) Progress {
	collected := decimal.Zero
	for _, r := range rows {
		collected = collected.Add(decimal.NewFromFloat(r.Amount))
	}

	t := decimal.NewFromFloat(target)

	remaining := t.Sub(collected)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	percent := 0
	if t.IsPositive() {
		p := collected.Mul(oneHundred).Div(t).Round(0)
		if p.GreaterThan(oneHundred) {
			p = oneHundred
		}
		if p.IsNegative() {
			p = decimal.Zero
		}
		percent = int(p.IntPart())
	}

	collectedF, _ := collected.Float64()
	remainingF, _ := remaining.Float64()
	return Progress{
		Target:    target,
		Collected: collectedF,
		Remaining: remainingF,
		Percent:   percent,
	}
}
