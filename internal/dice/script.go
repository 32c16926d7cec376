package dice

import "fmt"

// Sequence replays a fixed list of floats. Intn and Shuffle derive from
// the same list, so a test can describe every draw the engine makes.
// It panics when exhausted unless Loop is set.
type Sequence struct {
	Values []float64
	Loop   bool
	pos    int
}

// Script builds a Sequence over values.
func Script(values ...float64) *Sequence {
	return &Sequence{Values: values}
}

// Float64 returns the next scripted value.
func (s *Sequence) Float64() float64 {
	if s.pos >= len(s.Values) {
		if !s.Loop || len(s.Values) == 0 {
			panic(fmt.Sprintf("dice: script exhausted after %d draws", s.pos))
		}
		s.pos = 0
	}
	v := s.Values[s.pos]
	s.pos++
	return v
}

// Intn scales the next scripted value to [0,n).
func (s *Sequence) Intn(n int) int {
	return scale(s.Float64(), n)
}

// Shuffle runs Fisher-Yates using scripted draws.
func (s *Sequence) Shuffle(n int, swap func(i, j int)) {
	fisherYates(s, n, swap)
}

// Drawn returns how many values have been consumed.
func (s *Sequence) Drawn() int {
	return s.pos
}

// Repeat is a Source that always yields the same value. Repeat(0.99) never
// crits and leaves shuffles in their original order.
type Repeat float64

// Float64 returns the fixed value.
func (r Repeat) Float64() float64 { return float64(r) }

// Intn scales the fixed value to [0,n).
func (r Repeat) Intn(n int) int { return scale(float64(r), n) }

// Shuffle runs Fisher-Yates with the fixed value.
func (r Repeat) Shuffle(n int, swap func(i, j int)) { fisherYates(r, n, swap) }

func scale(v float64, n int) int {
	if n <= 0 {
		panic("dice: invalid argument to Intn")
	}
	i := int(v * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func fisherYates(src Source, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		swap(i, j)
	}
}
