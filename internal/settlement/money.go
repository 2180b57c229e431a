package settlement

import "math"

// Every amount in the engine originates from a NUMERIC(12,2) column, so
// real money always sits on a two-decimal grid. Binary float64 sums of
// such values carry residue far below half a paisa; centEpsilon is the
// line between that residue and an actual cent of money.
const centEpsilon = 0.005

// round2 snaps an amount back onto the two-decimal grid.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
