// Package stats provides the piecewise-constant distribution samplers,
// BSDF microfacet sampling routines, and the MIS power heuristic used by
// the integrator and the environment sky.
package stats

import "github.com/jmoss/photontrace/pkg/vecmath"

type Float = vecmath.Float

// Distribution1D is a piecewise-constant probability distribution over a
// discrete set of intervals, sampled in O(log n) via binary search over
// its cumulative distribution function.
type Distribution1D struct {
	cdf []Float
}

// NewDistribution1D builds a CDF from an unnormalized pdf. Panics on an
// empty pdf, matching the construction-time invariant check used
// throughout this package.
func NewDistribution1D(pdf []Float) *Distribution1D {
	if len(pdf) == 0 {
		panic("stats: empty pdf passed to NewDistribution1D")
	}
	cdf := make([]Float, len(pdf)+1)
	for i, v := range pdf {
		cdf[i+1] = min1(cdf[i] + v)
	}
	cdf[len(pdf)] = 1.0
	return &Distribution1D{cdf: cdf}
}

func min1(v Float) Float {
	if v > 1.0 {
		return 1.0
	}
	return v
}

// Sample draws a bucket index in [0, n) given a uniform random number u.
func (d *Distribution1D) Sample(u Float) int {
	low, high := 0, len(d.cdf)-1
	i := (low + high) / 2
	above := u >= d.cdf[i]
	below := d.cdf[i+1] > u
	for !(above && below) {
		if above {
			low = i
		} else {
			high = i
		}
		i = (low + high) / 2
		above = u >= d.cdf[i]
		below = d.cdf[i+1] > u
	}
	return i
}

// Pdf returns the probability mass of bucket i.
func (d *Distribution1D) Pdf(i int) Float {
	return d.cdf[i+1] - d.cdf[i]
}

// Distribution2D samples a 2D piecewise-constant grid (row-major, width
// columns by height rows) by first sampling a row from the marginal
// distribution of row sums, then sampling a column from that row's
// conditional distribution.
type Distribution2D struct {
	width, height int
	marginal      *Distribution1D
	conditional   []*Distribution1D
	pdf           []Float
	average       Float
}

// NewDistribution2D builds the marginal and per-row conditional CDFs from
// an unnormalized pdf grid.
func NewDistribution2D(pdf []Float, width int) *Distribution2D {
	if len(pdf)%width != 0 {
		panic("stats: pdf length not a multiple of width")
	}
	height := len(pdf) / width

	rowSums := make([]Float, height)
	var total Float
	for y := 0; y < height; y++ {
		var sum Float
		for x := 0; x < width; x++ {
			sum += pdf[y*width+x]
		}
		rowSums[y] = sum
		total += sum
	}

	marginalPdf := make([]Float, height)
	var marginalSum Float
	for y, s := range rowSums {
		marginalPdf[y] = s / total
		marginalSum += marginalPdf[y]
	}
	for y := range marginalPdf {
		marginalPdf[y] /= marginalSum
	}

	conditional := make([]*Distribution1D, height)
	for y := 0; y < height; y++ {
		row := make([]Float, width)
		for x := 0; x < width; x++ {
			row[x] = pdf[y*width+x] / rowSums[y]
		}
		conditional[y] = NewDistribution1D(row)
	}

	return &Distribution2D{
		width:       width,
		height:      height,
		marginal:    NewDistribution1D(marginalPdf),
		conditional: conditional,
		pdf:         pdf,
		average:     total / Float(len(pdf)),
	}
}

// Sample draws a (u, v) index pair given two independent uniforms.
func (d *Distribution2D) Sample(u1, u2 Float) (int, int) {
	v := d.marginal.Sample(u2)
	uIdx := d.conditional[v].Sample(u1)
	return uIdx, v
}

// Pdf returns the normalized probability mass at grid cell (u, v), scaled
// by width*height so that it integrates to 1 over the unit square.
func (d *Distribution2D) Pdf(u, v int) Float {
	return (d.marginal.Pdf(v) * d.conditional[v].Pdf(u)) * Float(d.width*d.height)
}

func (d *Distribution2D) Width() int  { return d.width }
func (d *Distribution2D) Height() int { return d.height }
