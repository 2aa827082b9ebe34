package malthus

import "iter"

// Trajectory is the time path from an initial state under fixed parameters.
// It holds only its inputs; every traversal recomputes the path, so a
// Trajectory can be iterated any number of times with identical results.
type Trajectory struct {
	initial State
	params  Parameters
	horizon int
}

// Simulate returns the trajectory of horizon steps from initial. The
// trajectory contains horizon+1 states, the first being initial itself.
func Simulate(initial State, p Parameters, horizon int) (Trajectory, error) {
	if err := p.Validate(); err != nil {
		return Trajectory{}, err
	}
	if horizon < 0 {
		return Trajectory{}, invalidf("horizon must be non-negative, got %d", horizon)
	}
	if _, err := initial.Income(p); err != nil {
		return Trajectory{}, err
	}
	return Trajectory{initial: initial, params: p, horizon: horizon}, nil
}

func (tr Trajectory) Initial() State         { return tr.initial }
func (tr Trajectory) Parameters() Parameters { return tr.params }
func (tr Trajectory) Horizon() int           { return tr.horizon }
func (tr Trajectory) Len() int               { return tr.horizon + 1 }

// All yields (index, state) pairs. Iteration stops early, without error, if
// the state leaves the finite domain; Err reports that case.
func (tr Trajectory) All() iter.Seq2[int, State] {
	return func(yield func(int, State) bool) {
		s := tr.initial
		if !yield(0, s) {
			return
		}
		for i := 1; i <= tr.horizon; i++ {
			next, err := step(s, tr.params)
			if err != nil {
				return
			}
			s = next
			if !yield(i, s) {
				return
			}
		}
	}
}

// States materializes the trajectory.
func (tr Trajectory) States() ([]State, error) {
	out := make([]State, 0, tr.Len())
	s := tr.initial
	out = append(out, s)
	for i := 1; i <= tr.horizon; i++ {
		next, err := step(s, tr.params)
		if err != nil {
			return out, err
		}
		s = next
		out = append(out, s)
	}
	return out, nil
}

// Final returns the last state of the trajectory.
func (tr Trajectory) Final() (State, error) {
	states, err := tr.States()
	if err != nil {
		return State{}, err
	}
	return states[len(states)-1], nil
}

// Err reports whether the full trajectory can be computed.
func (tr Trajectory) Err() error {
	_, err := tr.States()
	return err
}
