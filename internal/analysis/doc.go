// Package analysis characterizes the model across parameter ranges.
//
//   - [RegimeDiagram]: equilibrium regime and income over a parameter grid
//   - [CriticalValue]: bisection for the stagnation/takeoff boundary
//   - [RegimesToASCII]: terminal rendering of a regime diagram
//
// # Takeoff boundary
//
// With the population growth ceiling c, income keeps rising once
// technology growth g satisfies (1+g)^(1/(1-α)) > 1+c. CriticalValue finds
// that boundary numerically for any swept parameter:
//
//	g, err := analysis.CriticalValue(p, "g", 0, 0.5, 1e-4, cfg)
package analysis
