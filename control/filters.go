package control

import (
	"github.com/golang/geo/r2"
)

type pointFilter interface {
	Reset()
	// Next returns the filtered value and whether the filter has seen enough samples to be
	// settled.
	Next(x r2.Point) (r2.Point, bool)
}

// movingAverageFilter is a FIR filter averaging the last filterSize samples.
type movingAverageFilter struct {
	filterSize int
	samples    []r2.Point
	next       int
	sum        r2.Point
}

func newMovingAverageFilter(filterSize int) *movingAverageFilter {
	f := &movingAverageFilter{filterSize: filterSize}
	f.Reset()
	return f
}

func (f *movingAverageFilter) Reset() {
	f.samples = make([]r2.Point, 0, f.filterSize)
	f.next = 0
	f.sum = r2.Point{}
}

func (f *movingAverageFilter) Next(x r2.Point) (r2.Point, bool) {
	if len(f.samples) < f.filterSize {
		f.samples = append(f.samples, x)
		f.sum = f.sum.Add(x)
		return f.sum.Mul(1 / float64(len(f.samples))), len(f.samples) == f.filterSize
	}
	f.sum = f.sum.Sub(f.samples[f.next]).Add(x)
	f.samples[f.next] = x
	f.next = (f.next + 1) % f.filterSize
	return f.sum.Mul(1 / float64(f.filterSize)), true
}
