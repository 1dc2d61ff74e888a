// Command photontrace renders a built-in Cornell-box-style scene with
// the path tracer, optionally streaming live progress to a browser over
// a websocket, and writes the result to an image file.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jmoss/photontrace/pkg/accel"
	"github.com/jmoss/photontrace/pkg/camera"
	"github.com/jmoss/photontrace/pkg/imagesink"
	"github.com/jmoss/photontrace/pkg/material"
	"github.com/jmoss/photontrace/pkg/prim"
	"github.com/jmoss/photontrace/pkg/previewhost"
	"github.com/jmoss/photontrace/pkg/rtlog"
	"github.com/jmoss/photontrace/pkg/sampler"
	"github.com/jmoss/photontrace/pkg/scene"
	"github.com/jmoss/photontrace/pkg/sky"
	"github.com/jmoss/photontrace/pkg/texture"
	"github.com/jmoss/photontrace/pkg/vecmath"
)

type config struct {
	width, height   int
	samples         int
	bvhType         string
	renderMethod    string
	output          string
	gamma           float64
	gui             bool
	guiAddr         string
}

func parseFlags() config {
	var c config
	flag.IntVar(&c.width, "width", 400, "output image width in pixels")
	flag.IntVar(&c.height, "height", 300, "output image height in pixels")
	flag.IntVar(&c.samples, "samples", 64, "samples per pixel")
	flag.StringVar(&c.bvhType, "bvh-type", "sah", "BVH split strategy: sah, middle, equal-counts")
	flag.StringVar(&c.renderMethod, "render-method", "path-tracing", "integrator: path-tracing or naive")
	flag.StringVar(&c.output, "output", "render.png", "output image path")
	flag.Float64Var(&c.gamma, "gamma", 2.2, "output gamma")
	flag.BoolVar(&c.gui, "gui", false, "serve a live preview over websocket while rendering")
	flag.StringVar(&c.guiAddr, "gui-addr", ":8080", "address the preview server listens on when -gui is set")
	flag.Parse()
	return c
}

func splitType(name string) accel.SplitType {
	switch name {
	case "middle":
		return accel.SplitMiddle
	case "equal-counts":
		return accel.SplitEqualCounts
	default:
		return accel.SplitSAH
	}
}

func renderMethod(name string) scene.Method {
	if name == "naive" {
		return scene.MethodNaive
	}
	return scene.MethodPathTracing
}

func main() {
	cfg := parseFlags()
	logger := rtlog.NewStdLogger("photontrace")

	format, err := imagesink.ParseFormat(formatFromPath(cfg.output))
	if err != nil {
		log.Fatalf("photontrace: %v", err)
	}

	scn := buildCornellBox(cfg.width, cfg.height, splitType(cfg.bvhType))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var host *previewhost.Host
	if cfg.gui {
		host = previewhost.New(ctx, logger)
		ctx = host.Context()
		go serveGUI(host, cfg.guiAddr, logger)
	}

	start := time.Now()

	opts := sampler.RenderOptions{
		SamplesPerPixel: cfg.samples,
		RenderMethod:    renderMethod(cfg.renderMethod),
		Width:           scn.Width,
		Height:          scn.Height,
		Gamma:           vecmath.Float(cfg.gamma),
		Seed:            1,
	}

	update := func(prev *sampler.Progress, i int) bool {
		if host != nil {
			host.Broadcast(previewhost.Progress{
				Type:             "progress",
				Width:            scn.Width,
				Height:           scn.Height,
				SamplesCompleted: prev.SamplesCompleted,
				SamplesPerPixel:  cfg.samples,
				RaysShot:         prev.RaysShot,
				ElapsedSeconds:   time.Since(start).Seconds(),
			})
		}
		select {
		case <-ctx.Done():
			return true
		default:
			return false
		}
	}

	progress, err := sampler.Render(ctx, scn, opts, update)
	if err != nil {
		logger.Printf("photontrace: render stopped early: %v", err)
	}

	img := imagesink.ToImage(progress.Image(), scn.Width, scn.Height, cfg.gamma)
	out, err := os.Create(cfg.output)
	if err != nil {
		log.Fatalf("photontrace: creating output file: %v", err)
	}
	defer out.Close()

	if err := imagesink.Write(out, img, format); err != nil {
		log.Fatalf("photontrace: writing output: %v", err)
	}

	logger.Printf("photontrace: wrote %s (%dx%d, %d spp) in %v", cfg.output, scn.Width, scn.Height, cfg.samples, time.Since(start))
}

func formatFromPath(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i+1:]
		}
	}
	return "png"
}

func serveGUI(host *previewhost.Host, addr string, logger rtlog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", host.HandleWebSocket)
	logger.Printf("photontrace: preview server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Printf("photontrace: preview server stopped: %v", err)
	}
}

// buildCornellBox constructs a small built-in Cornell-box-style scene:
// scene-file parsing is explicitly out of scope, so this is the repo's
// one hardcoded scene exercising every material kind.
func buildCornellBox(width, height int, split accel.SplitType) *scene.Scene {
	red := texture.NewSolid(vecmath.Vec3{X: 0.65, Y: 0.05, Z: 0.05})
	white := texture.NewSolid(vecmath.Vec3{X: 0.73, Y: 0.73, Z: 0.73})
	green := texture.NewSolid(vecmath.Vec3{X: 0.12, Y: 0.45, Z: 0.15})
	lightTex := texture.NewSolid(vecmath.Vec3{X: 1, Y: 1, Z: 1})

	const s = 555.0
	var prims []prim.Primitive
	prims = append(prims, quad(v(0, 0, 0), v(0, s, 0), v(0, s, s), v(0, 0, s), material.NewLambertian(green))...)
	prims = append(prims, quad(v(s, 0, 0), v(s, 0, s), v(s, s, s), v(s, s, 0), material.NewLambertian(red))...)
	prims = append(prims, quad(v(0, 0, 0), v(s, 0, 0), v(s, 0, s), v(0, 0, s), material.NewLambertian(white))...)
	prims = append(prims, quad(v(0, s, 0), v(0, s, s), v(s, s, s), v(s, s, 0), material.NewLambertian(white))...)
	prims = append(prims, quad(v(0, 0, s), v(s, 0, s), v(s, s, s), v(0, s, s), material.NewLambertian(white))...)
	prims = append(prims, quad(v(213, 554, 227), v(343, 554, 227), v(343, 554, 332), v(213, 554, 332), material.NewEmissive(lightTex, 15))...)

	prims = append(prims,
		prim.NewSphere(v(160, 100, 150), 90, material.NewGGX(white, 0.15, 1.5, 0, true)),
		prim.NewSphere(v(370, 100, 370), 90, material.NewDielectric(white, 1.5)),
		prim.NewSphere(v(370, 300, 150), 60, material.NewMetal(texture.NewSolid(vecmath.Vec3{X: 0.8, Y: 0.8, Z: 0.9}), 0.05)),
	)

	cam := camera.NewSimpleCamera(
		v(278, 278, -800), v(278, 278, 0), v(0, 1, 0),
		40, float64(width)/float64(height), 0, 800, 0, 0,
	)

	environment := sky.New(texture.NewSolid(vecmath.Vec3{}), 0, 0)

	cfg := accel.BuildConfig{Split: split, Logger: rtlog.NewStdLogger("bvh"), Verbose: true}
	return scene.New(prims, environment, cam, width, height, cfg)
}

func v(x, y, z float64) vecmath.Vec3 { return vecmath.Vec3{X: x, Y: y, Z: z} }

// quad splits an axis-aligned rectangle (a,b,c,d in order) into two
// triangles sharing material.
func quad(a, b, c, d vecmath.Vec3, mat prim.Material) []prim.Primitive {
	return []prim.Primitive{prim.NewTriangle(a, b, c, mat), prim.NewTriangle(a, c, d, mat)}
}
