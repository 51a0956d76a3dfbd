package optimizer

// Layout fixes the position of every decision-variable block in the LP
// vector for one window. It is computed once per build; all constraint and
// extraction code indexes through it instead of re-deriving offsets, so the
// degradation-enabled and disabled layouts cannot drift apart.
//
// Block order, lengths in parentheses (T timesteps, N brackets):
//
//	charge(T) discharge(T) gridImport(T) gridExport(T) energy(T) curtail(T)
//	[deltaPos(T) deltaNeg(T) dod(T) cycWear(T) totalWear(T)]
//	peak(1) fill(N)
type Layout struct {
	T        int
	Brackets int
	Wear     bool

	Charge     int
	Discharge  int
	GridImport int
	GridExport int
	Energy     int
	Curtail    int

	// Wear blocks; -1 when Wear is false.
	DeltaPos  int
	DeltaNeg  int
	DOD       int
	CycWear   int
	TotalWear int

	Peak int // scalar
	Fill int // start of the bracket-fill block

	NumVars int
}

// NewLayout computes block offsets for a window of t steps and n tariff
// brackets.
func NewLayout(t, n int, wear bool) Layout {
	l := Layout{T: t, Brackets: n, Wear: wear}
	off := 0
	next := func() int {
		o := off
		off += t
		return o
	}
	l.Charge = next()
	l.Discharge = next()
	l.GridImport = next()
	l.GridExport = next()
	l.Energy = next()
	l.Curtail = next()
	if wear {
		l.DeltaPos = next()
		l.DeltaNeg = next()
		l.DOD = next()
		l.CycWear = next()
		l.TotalWear = next()
	} else {
		l.DeltaPos, l.DeltaNeg, l.DOD, l.CycWear, l.TotalWear = -1, -1, -1, -1, -1
	}
	l.Peak = off
	off++
	l.Fill = off
	off += n
	l.NumVars = off
	return l
}
