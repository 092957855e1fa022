// Command camstudio-demo runs the grading pipeline offscreen: it renders
// synthetic camera frames through the engine, drives the adaptive quality
// controller from real frame timings, and saves the final graded frame as
// a PNG.
//
// Configuration comes from flags plus CAMSTUDIO_*-prefixed environment
// variables (CAMSTUDIO_TARGET_FPS, CAMSTUDIO_CANVAS_SCALING_FACTOR, ...).
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/gogpu/camstudio"
	_ "github.com/gogpu/camstudio/backend/wgpu"
	"github.com/gogpu/camstudio/lut"
	"github.com/gogpu/camstudio/quality"
	"github.com/gogpu/camstudio/render"
)

func main() {
	var (
		width    = flag.Int("width", 1280, "frame width")
		height   = flag.Int("height", 720, "frame height")
		frames   = flag.Int("frames", 120, "number of frames to render")
		output   = flag.String("output", "graded.png", "output file")
		lutURL   = flag.String("lut", "", "optional .cube LUT URL")
		mode     = flag.String("mode", "standard", "render mode: standard, focus-peaking, zebras, level, heatmap")
		exposure = flag.Float64("exposure", 0.2, "exposure in stops")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	camstudio.SetLogger(logger)

	var cfg camstudio.PerformanceModeConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "CAMSTUDIO_"}); err != nil {
		log.Fatalf("parse env config: %v", err)
	}
	cfg.Resolution = camstudio.Resolution{Width: *width, Height: *height}

	engine, err := render.New(render.Options{
		Width:  *width,
		Height: *height,
	})
	if err != nil {
		log.Fatalf("create engine: %v", err)
	}
	defer engine.Dispose()

	if err := engine.ApplyPerformanceMode(cfg); err != nil {
		log.Fatalf("apply performance mode: %v", err)
	}

	if *lutURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		table, err := lut.NewManager().Load(ctx, *lutURL, "demo")
		if err != nil {
			// A bad table falls back to identity; grading still runs.
			logger.Warn("LUT load failed, using identity", "url", *lutURL, "err", err)
			table = lut.Identity(lut.DefaultSize)
		}
		engine.SetLUT(table)
	} else {
		engine.SetLUT(lut.Identity(lut.DefaultSize))
	}

	grade := camstudio.NeutralGrade()
	grade.Exposure = *exposure
	grade.Contrast = 0.1
	grade.Vignette = 0.4
	grade.LutStrength = 1
	in := render.Inputs{
		Grade:     grade,
		Transform: camstudio.IdentityTransform(),
		Mode:      parseMode(*mode),
	}

	var ctrl quality.Controller
	frame := camstudio.NewPixmap(*width, *height)
	start := time.Now()

	for i := 0; i < *frames; i++ {
		t := float64(i) / 60.0
		drawTestScene(frame, t)
		in.Time = t

		if err := engine.Render(frame, in); err != nil {
			log.Fatalf("render frame %d: %v", i, err)
		}
		ctrl.AddSample(engine.Stats().FrameTimeMs)

		// Re-evaluate the tier once per second of simulated time.
		if i > 0 && i%60 == 0 {
			state := ctrl.Recommend()
			logger.Info("quality evaluation",
				"tier", state.Tier, "reason", state.Reason,
				"fps", engine.Stats().FPS)
			if ctrl.ShouldDownscale() {
				next := state.PerformanceMode(cfg.Resolution)
				if err := engine.ApplyPerformanceMode(next); err != nil {
					log.Fatalf("apply performance mode: %v", err)
				}
			}
		}
	}

	out := engine.Output().(*render.PixmapTarget).Pixmap()
	if err := out.SavePNG(*output); err != nil {
		log.Fatalf("save: %v", err)
	}

	stats := engine.Stats()
	logger.Info("done",
		"frames", *frames,
		"elapsed", time.Since(start).Round(time.Millisecond),
		"avg_fps", stats.FPS,
		"dropped", stats.DroppedFrames,
		"output", *output)
}

func parseMode(s string) camstudio.Mode {
	for _, m := range []camstudio.Mode{
		camstudio.ModeStandard,
		camstudio.ModeFocusPeaking,
		camstudio.ModeZebras,
		camstudio.ModeLevel,
		camstudio.ModeHeatmap,
	} {
		if m.String() == s {
			return m
		}
	}
	log.Fatalf("unknown mode %q", s)
	return camstudio.ModeStandard
}

// drawTestScene fills the frame with an animated pattern: a sweeping
// gradient plus drifting circles, enough structure to exercise the
// sharpening, vignette, and overlay-mode paths.
func drawTestScene(pm *camstudio.Pixmap, t float64) {
	w, h := pm.Width(), pm.Height()
	cx := 0.5 + 0.3*math.Cos(t)
	cy := 0.5 + 0.3*math.Sin(t*0.7)

	for y := 0; y < h; y++ {
		v := float64(y) / float64(h)
		for x := 0; x < w; x++ {
			u := float64(x) / float64(w)

			r := 0.5 + 0.5*math.Sin(2*math.Pi*(u+t*0.1))
			g := v
			b := 0.6 - 0.3*v

			du, dv := u-cx, v-cy
			if du*du+dv*dv < 0.02 {
				r, g, b = 0.95, 0.85, 0.7
			}

			pm.SetPixel(x, y, camstudio.RGBA{R: r, G: g, B: b, A: 1})
		}
	}
}
