// Package sampler drives a Scene's Integrator across an image plane:
// each sample sweeps every pixel in parallel over fixed-size chunks,
// merging the estimate into a running per-pixel mean, and the result
// is delivered through one of two ping-ponged Progress buffers so an
// update callback can read the buffer completed last sample while the
// next sample is produced into the other.
package sampler

import (
	"context"
	"errors"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/jmoss/photontrace/pkg/integrator"
	"github.com/jmoss/photontrace/pkg/scene"
	"github.com/jmoss/photontrace/pkg/vecmath"
)

// ErrCancelled is returned by Render when update returned true,
// cancelling the render before its next sample started.
var ErrCancelled = errors.New("sampler: render cancelled by update callback")

type Float = vecmath.Float
type Vec3 = vecmath.Vec3

// channelsPerPixel is CurrentImage's per-pixel stride: Progress stores
// plain RGB floats rather than Vec3 so it matches the wire shape a
// double-buffered accumulator is specified against.
const channelsPerPixel = 3

// DefaultChunkSize is the granularity of the parallel per-sample sweep
// over pixels: coarse enough to amortize scheduling overhead, fine
// enough that no single chunk dominates a sample's wall time.
const DefaultChunkSize = 10000

// Progress is one complete, internally consistent snapshot of an
// in-flight render: the running per-pixel mean radiance after
// SamplesCompleted full samples, and the cumulative count of BVH
// queries (primary, bounce, and shadow rays) issued to produce it.
// CurrentImage is row-major, sized width*height*3.
type Progress struct {
	SamplesCompleted uint64
	RaysShot         uint64
	CurrentImage     []Float
}

// Image reconstructs the per-pixel Vec3 view of CurrentImage, for
// consumers doing colour math (tone mapping, gamma correction) rather
// than handling the flat channel buffer directly.
func (p *Progress) Image() []Vec3 {
	out := make([]Vec3, len(p.CurrentImage)/channelsPerPixel)
	for i := range out {
		base := i * channelsPerPixel
		out[i] = Vec3{X: p.CurrentImage[base], Y: p.CurrentImage[base+1], Z: p.CurrentImage[base+2]}
	}
	return out
}

// RenderOptions configures one call to Render.
type RenderOptions struct {
	SamplesPerPixel int
	RenderMethod    scene.Method
	Width, Height   int
	Gamma           Float

	// ChunkSize overrides DefaultChunkSize for the per-sample pixel
	// sweep; Workers overrides GOMAXPROCS-sized worker pool sizing.
	ChunkSize int
	Workers   int
	// Seed makes repeated renders with identical options reproduce
	// bit-identical images, independent of how chunks are scheduled
	// across workers.
	Seed int64
}

// UpdateFunc is invoked after each completed sample except the last
// (Render returns that final buffer instead), in strictly
// increasing sample order on a single goroutine, with the
// just-finished buffer and the 1-indexed sample number it reflects.
// Returning true cancels the render before the next sample starts;
// samples already in flight are not interrupted mid-sample.
type UpdateFunc func(prev *Progress, i int) bool

// Render drives scn's integrator across samples_per_pixel full image
// samples, merging each sample's per-pixel estimate into a running
// mean. It owns two Progress buffers and alternates which one is
// "current" (being written) and which is "previous" (completed, safe
// to read) each sample, per the double-buffered accumulator contract:
// only one goroutine ever writes the current buffer for a given
// sample, and update only ever sees a buffer nothing is still writing.
//
// Render returns the last buffer produced — whose SamplesCompleted
// matches opts.SamplesPerPixel unless update cancelled early or ctx
// was cancelled between samples, in which case it returns the most
// recently completed buffer together with ErrCancelled or ctx.Err()
// respectively.
func Render(ctx context.Context, scn *scene.Scene, opts RenderOptions, update UpdateFunc) (*Progress, error) {
	width, height := scn.Width, scn.Height
	pixelCount := width * height

	samples := opts.SamplesPerPixel
	if samples <= 0 {
		samples = 1
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	buffers := [2]*Progress{
		{CurrentImage: make([]Float, pixelCount*channelsPerPixel)},
		{CurrentImage: make([]Float, pixelCount*channelsPerPixel)},
	}

	integ := scn.Integrator(opts.RenderMethod)
	var raysShot uint64
	currentIdx := 0

	for i := 0; i < samples; i++ {
		previousIdx := i % 2
		currentIdx = 1 - previousIdx

		if i >= 1 && update != nil {
			if update(buffers[previousIdx], i) {
				return buffers[previousIdx], ErrCancelled
			}
		}

		select {
		case <-ctx.Done():
			return buffers[previousIdx], ctx.Err()
		default:
		}

		shot, err := renderSample(ctx, scn, integ, buffers[previousIdx].CurrentImage, buffers[currentIdx].CurrentImage,
			width, height, i+1, chunkSize, workers, opts.Seed)
		raysShot += shot
		buffers[currentIdx].SamplesCompleted = uint64(i + 1)
		buffers[currentIdx].RaysShot = raysShot
		if err != nil {
			return buffers[currentIdx], err
		}
	}

	return buffers[currentIdx], nil
}

// pixelChunk is a contiguous half-open range [Start,End) of flat
// row-major pixel indices.
type pixelChunk struct {
	Start, End int
}

func chunksFor(pixelCount, chunkSize int) []pixelChunk {
	var chunks []pixelChunk
	for start := 0; start < pixelCount; start += chunkSize {
		end := start + chunkSize
		if end > pixelCount {
			end = pixelCount
		}
		chunks = append(chunks, pixelChunk{Start: start, End: end})
	}
	return chunks
}

// renderSample sweeps every pixel once, in parallel over chunks,
// merging each pixel's new estimate into current via the running-mean
// update current = previous + (sample-previous)/sampleIndex. It
// returns the number of BVH queries issued across the whole sweep.
func renderSample(ctx context.Context, scn *scene.Scene, integ integrator.Integrator, previous, current []Float,
	width, height, sampleIndex, chunkSize, workers int, seed int64) (uint64, error) {

	chunks := chunksFor(width*height, chunkSize)
	chunkCh := make(chan pixelChunk)
	var raysShot uint64
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range chunkCh {
				rng := rand.New(rand.NewSource(chunkSeed(seed, sampleIndex, c.Start)))
				var localRays uint64
				for p := c.Start; p < c.End; p++ {
					x := p % width
					y := p / width
					u := (Float(x) + rng.Float64()) / Float(width)
					v := 1 - (Float(y)+rng.Float64())/Float(height)
					ray := scn.Camera.GetRay(u, v, rng)
					l, n := integ.Li(ray, rng)
					localRays += n
					mergeSample(current, previous, p, l, sampleIndex)
				}
				atomic.AddUint64(&raysShot, localRays)
			}
		}()
	}

feed:
	for _, c := range chunks {
		select {
		case chunkCh <- c:
		case <-ctx.Done():
			break feed
		}
	}
	close(chunkCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return raysShot, err
	}
	return raysShot, nil
}

// mergeSample folds one new per-pixel radiance estimate into current,
// given the running mean already recorded in previous for the samples
// completed before this one.
func mergeSample(current, previous []Float, pixel int, sample Vec3, sampleIndex int) {
	base := pixel * channelsPerPixel
	n := Float(sampleIndex)
	current[base+0] = previous[base+0] + (sample.X-previous[base+0])/n
	current[base+1] = previous[base+1] + (sample.Y-previous[base+1])/n
	current[base+2] = previous[base+2] + (sample.Z-previous[base+2])/n
}

// chunkSeed derives a deterministic RNG seed from the render seed, the
// 1-indexed sample number, and the chunk's starting pixel, so repeated
// renders with the same Seed reproduce bit-identical images regardless
// of which worker happens to pick up which chunk.
func chunkSeed(base int64, sampleIndex, chunkStart int) int64 {
	h := base
	h = h*1000003 + int64(sampleIndex)
	h = h*1000003 + int64(chunkStart)
	return h
}
