package malthus

import (
	"fmt"
	"math"
)

// State is one point of the dynamic system.
type State struct {
	T          int     `json:"t"`
	Population float64 `json:"population"`
	Technology float64 `json:"technology"`
}

func (s State) IsValid() bool {
	for _, v := range [...]float64{s.Population, s.Technology} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Income is income per capita at s under p.
func (s State) Income(p Parameters) (float64, error) {
	return Production(s.Population, s.Technology, p.Land, p.Alpha)
}

func (s State) String() string {
	return fmt.Sprintf("t=%d N=%.6g A=%.6g", s.T, s.Population, s.Technology)
}
