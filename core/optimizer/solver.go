package optimizer

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// defaultTol is the pivot tolerance handed to the simplex solver.
const defaultTol = 1e-7

// solveStandard runs the simplex algorithm on a standard-form LP. It is a
// variable so tests can simulate solver failures.
var solveStandard = func(c []float64, a *mat.Dense, b []float64, tol float64) (float64, []float64, error) {
	return lp.Simplex(c, a, b, tol, nil)
}

// Solve converts the assembled problem to standard form, runs the simplex
// solver and maps the primal solution back onto the variable layout.
// Solver failure of any kind (infeasible, unbounded, singular basis, no
// convergence) is surfaced as an infeasible Solution, never as a panic, and
// no retry is attempted here.
func Solve(p *Problem) Solution {
	cStd, aStd, bStd := lp.Convert(p.Obj, p.AUb, p.BUb, p.AEq, p.BEq)
	obj, xStd, err := solveStandard(cStd, aStd, bStd, defaultTol)
	if err != nil {
		return failed(p, err.Error())
	}

	// Convert splits every free variable v into v+ - v-; columns are laid
	// out [x+ (n), x- (n), slack]. Fold the split back.
	n := p.Layout.NumVars
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = xStd[i] - xStd[n+i]
	}
	return extract(p, x, obj)
}

// BuildAndSolve is the single-call entry point used by the orchestration
// layer.
func BuildAndSolve(req Request) (Solution, error) {
	p, err := Build(req)
	if err != nil {
		return Solution{}, err
	}
	return Solve(p), nil
}
