package sampler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoss/photontrace/pkg/accel"
	"github.com/jmoss/photontrace/pkg/camera"
	"github.com/jmoss/photontrace/pkg/material"
	"github.com/jmoss/photontrace/pkg/prim"
	"github.com/jmoss/photontrace/pkg/scene"
	"github.com/jmoss/photontrace/pkg/texture"
)

func testScene(width, height int) *scene.Scene {
	floor := prim.NewSphere(Vec3{X: 0, Y: -1000, Z: 0}, 1000, material.NewLambertian(texture.NewSolid(Vec3{X: 0.5, Y: 0.5, Z: 0.5})))
	light := prim.NewSphere(Vec3{X: 0, Y: 5, Z: 0}, 2, material.NewEmissive(texture.NewSolid(Vec3{X: 1, Y: 1, Z: 1}), 8))
	cam := camera.NewSimpleCamera(
		Vec3{X: 0, Y: 3, Z: 8}, Vec3{X: 0, Y: 1, Z: 0}, Vec3{X: 0, Y: 1, Z: 0},
		40, Float(width)/Float(height), 0, 10, 0, 0,
	)
	return scene.New([]prim.Primitive{floor, light}, nil, cam, width, height, accel.DefaultBuildConfig())
}

func TestChunksForCoversWholeImageExactlyOnce(t *testing.T) {
	const pixelCount = 37 * 23
	chunks := chunksFor(pixelCount, 16)
	covered := make([]int, pixelCount)
	for _, c := range chunks {
		for p := c.Start; p < c.End; p++ {
			covered[p]++
		}
	}
	for i, c := range covered {
		if c != 1 {
			t.Fatalf("pixel %d covered %d times, want 1", i, c)
		}
	}
}

func TestRenderProducesFinitePixels(t *testing.T) {
	scn := testScene(24, 16)
	opts := RenderOptions{SamplesPerPixel: 4, RenderMethod: scene.MethodPathTracing, Width: scn.Width, Height: scn.Height, ChunkSize: 50, Workers: 2, Seed: 1}

	progress, err := Render(context.Background(), scn, opts, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if progress.SamplesCompleted != 4 {
		t.Fatalf("SamplesCompleted = %d, want 4", progress.SamplesCompleted)
	}
	if progress.RaysShot == 0 {
		t.Fatalf("RaysShot = 0, want > 0 after rendering")
	}

	img := progress.Image()
	if len(img) != scn.Width*scn.Height {
		t.Fatalf("image length = %d, want %d", len(img), scn.Width*scn.Height)
	}
	for i, v := range img {
		if !v.IsFinite() || v.ContainsNaN() {
			t.Fatalf("pixel %d is non-finite: %v", i, v)
		}
	}
}

func TestRenderIsDeterministicForFixedSeed(t *testing.T) {
	scn := testScene(16, 12)
	opts := RenderOptions{SamplesPerPixel: 8, RenderMethod: scene.MethodPathTracing, Width: scn.Width, Height: scn.Height, ChunkSize: 30, Workers: 4, Seed: 99}

	progressA, err := Render(context.Background(), scn, opts, nil)
	if err != nil {
		t.Fatalf("Render A: %v", err)
	}
	progressB, err := Render(context.Background(), scn, opts, nil)
	if err != nil {
		t.Fatalf("Render B: %v", err)
	}

	imgA, imgB := progressA.Image(), progressB.Image()
	for i := range imgA {
		if imgA[i] != imgB[i] {
			t.Fatalf("pixel %d differs between runs with the same seed: %v vs %v", i, imgA[i], imgB[i])
		}
	}
	if progressA.RaysShot != progressB.RaysShot {
		t.Errorf("RaysShot differs between runs with the same seed: %d vs %d", progressA.RaysShot, progressB.RaysShot)
	}
}

func TestRenderRespectsCancellation(t *testing.T) {
	scn := testScene(64, 64)
	opts := RenderOptions{SamplesPerPixel: 32, RenderMethod: scene.MethodPathTracing, Width: scn.Width, Height: scn.Height, ChunkSize: 16, Workers: 2}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	progress, err := Render(ctx, scn, opts, nil)
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	if progress.SamplesCompleted != 0 {
		t.Errorf("SamplesCompleted = %d, want 0 after an immediately-cancelled render", progress.SamplesCompleted)
	}
}

func TestUpdateCallbackSeesMonotonicSamplesAndCanCancel(t *testing.T) {
	scn := testScene(16, 16)
	opts := RenderOptions{SamplesPerPixel: 10, RenderMethod: scene.MethodPathTracing, Width: scn.Width, Height: scn.Height, ChunkSize: 32, Workers: 2, Seed: 5}

	var seen []int
	update := func(prev *Progress, i int) bool {
		seen = append(seen, i)
		if int(prev.SamplesCompleted) != i {
			t.Errorf("update(_, %d): prev.SamplesCompleted = %d, want %d", i, prev.SamplesCompleted, i)
		}
		return i == 3
	}

	progress, err := Render(context.Background(), scn, opts, update)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if progress.SamplesCompleted != 3 {
		t.Fatalf("SamplesCompleted = %d, want 3 after cancelling at i=3", progress.SamplesCompleted)
	}
	for i, v := range seen {
		if i > 0 && v <= seen[i-1] {
			t.Fatalf("update callback saw non-increasing sample order: %v", seen)
		}
	}
}

func TestAccumulatorAveragesAcrossSamples(t *testing.T) {
	current := make([]Float, 2*channelsPerPixel)
	previous := make([]Float, 2*channelsPerPixel)

	mergeSample(current, previous, 0, Vec3{X: 1}, 1)
	mergeSample(current, previous, 1, Vec3{X: 1}, 1)
	copy(previous, current)
	mergeSample(current, previous, 0, Vec3{X: 1}, 2)
	mergeSample(current, previous, 1, Vec3{X: 1}, 2)

	for _, base := range []int{0, channelsPerPixel} {
		if current[base] != 1 {
			t.Errorf("expected running mean of 1 across two identical samples, got %v", current[base])
		}
	}
}

func TestRenderFinishesWithinTimeout(t *testing.T) {
	scn := testScene(8, 8)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := RenderOptions{SamplesPerPixel: 2, RenderMethod: scene.MethodNaive, Width: scn.Width, Height: scn.Height, ChunkSize: 16}
	if _, err := Render(ctx, scn, opts, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
}
