// Package viz renders a running Malthusian economy in the terminal.
//
// [LiveModel] is a Bubble Tea model that advances the economy one period per
// tick and plots income per capita and population with asciigraph.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to the initial state and parameters
//	Tab   - Select the next tunable parameter
//	Up/K  - Increase the selected parameter
//	Down/J- Decrease the selected parameter
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
