package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/malthus/internal/malthus"
)

// CriticalValue bisects [lo, hi] on the named parameter for the point where
// the equilibrium regime changes. The two ends must fall in different
// regimes; undecided points count as not converged. The returned value lies
// within tol of the boundary.
func CriticalValue(template malthus.Parameters, name string, lo, hi, tol float64, cfg malthus.EquilibriumConfig) (float64, error) {
	if !(tol > 0) || !(hi > lo) {
		return 0, fmt.Errorf("%w: need lo < hi and tol > 0 (lo=%v hi=%v tol=%v)", malthus.ErrInvalidParameter, lo, hi, tol)
	}

	converges := func(v float64) (bool, error) {
		p, err := template.With(name, v)
		if err != nil {
			return false, err
		}
		pt, err := classify(p, cfg)
		if err != nil {
			return false, err
		}
		return pt.Regime == malthus.Converged && !pt.Undecided, nil
	}

	loConv, err := converges(lo)
	if err != nil {
		return 0, err
	}
	hiConv, err := converges(hi)
	if err != nil {
		return 0, err
	}
	if loConv == hiConv {
		return 0, fmt.Errorf("no regime change on %s in [%v, %v]", name, lo, hi)
	}

	for hi-lo > tol {
		mid := lo + (hi-lo)/2
		midConv, err := converges(mid)
		if err != nil {
			return 0, err
		}
		if midConv == loConv {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo + (hi-lo)/2, nil
}

// TheoreticalTakeoff is the technology growth rate above which income
// cannot settle: (1+c)^(1-α) - 1 for growth ceiling c.
func TheoreticalTakeoff(p malthus.Parameters) float64 {
	return math.Pow(1+p.GrowthCeiling(), 1-p.Alpha) - 1
}
