package model

import "math"

// Series is a numeric array index-aligned to a candle slice.
// Warm-up entries that have no value yet are NaN.
type Series []float64

// NewSeries returns a series of length n with every entry unset.
func NewSeries(n int) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// At returns the value at i and whether it is set.
func (s Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s) {
		return 0, false
	}
	v := s[i]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Valid reports whether the value at i is set.
func (s Series) Valid(i int) bool {
	_, ok := s.At(i)
	return ok
}

// FirstValid returns the index of the first set value, or -1.
func (s Series) FirstValid() int {
	for i := range s {
		if s.Valid(i) {
			return i
		}
	}
	return -1
}
