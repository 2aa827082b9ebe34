// Package malthus implements a stylized Malthusian growth model.
//
// The model tracks population N and technology A on a fixed land base L.
// Income per capita follows a Cobb-Douglas technology with diminishing
// returns to labour, and population responds to the gap between income and
// subsistence:
//
//   - [Production]: income per capita y = A·(N/L)^-(1-α)
//   - [Step]: advance technology and population by one period
//   - [Simulate]: lazy, restartable [Trajectory] over a fixed horizon
//   - [Equilibrium]: iterate until income settles or takes off
//   - [Sweep]: evaluate a parameter grid, one independent run per value
//
// # Regimes
//
// [Equilibrium] reports one of two regimes as an [Outcome]. A Malthusian
// trap converges to a constant income level. Sustained growth diverges once
// technology outpaces the population ceiling. Running out of iterations is
// neither and returns an error wrapping [ErrNonConvergence]:
//
//	out, err := malthus.Equilibrium(p, malthus.DefaultEquilibriumConfig())
//	if errors.Is(err, malthus.ErrNonConvergence) {
//	    // undecided within MaxIterations
//	}
//	if out.Regime == malthus.DivergentGrowth {
//	    // takeoff
//	}
//
// # Thread Safety
//
// Every function is pure over value inputs. [SweepParallel] fans a sweep out
// over goroutines and returns the same result as [Sweep].
package malthus
