package engine

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/texload/engine/renderer/metadata"
)

func writePNG(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestEngine(t *testing.T, executor ExecutorKind, g *Game) *Engine {
	t.Helper()
	config := DefaultApplicationConfig()
	config.Jobs.Workers = 2
	config.Renderer.Executor = executor
	config.Assets.Root = t.TempDir()
	g.ApplicationConfig = config

	e, err := New(g)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestEngineLoadsWithEveryExecutor(t *testing.T) {
	for _, executor := range []ExecutorKind{ExecutorRenderThread, ExecutorFrameQueue, ExecutorInline} {
		t.Run(string(executor), func(t *testing.T) {
			g := &Game{}
			e := newTestEngine(t, executor, g)
			root := e.Config().Assets.Root
			writePNG(t, root, "a.png", 4, 4)
			writePNG(t, root, "b.png", 2, 2)
			owner := e.NewOwner("scene")

			// the frame queue only makes progress through frames, so run
			// the loop while the async load is pending
			async := e.LoadImageFromDiskAsync(owner, "b.png")
			frames := 0
			g.FnUpdate = func(float64) error {
				frames++
				if async.Future().IsReady() {
					return ErrQuit
				}
				if frames > 600 {
					return errors.New("load did not finish")
				}
				return nil
			}
			if err := e.Run(); err != nil {
				t.Fatal(err)
			}
			queued := async.Wait()
			if queued == nil {
				t.Fatal("async load failed")
			}

			var tex *metadata.Texture
			if executor == ExecutorFrameQueue {
				done := make(chan *metadata.Texture, 1)
				go func() { done <- e.LoadImageFromDisk(owner, "a.png") }()
				deadline := time.Now().Add(5 * time.Second)
				for waiting := true; waiting && time.Now().Before(deadline); {
					e.Frame()
					select {
					case tex = <-done:
						waiting = false
					case <-time.After(time.Millisecond):
					}
				}
			} else {
				tex = e.LoadImageFromDisk(owner, "a.png")
			}
			if tex == nil || tex.Width != 4 {
				t.Fatalf("sync load returned %+v", tex)
			}

			e.Frame()
			if !e.Backend().IsResident(tex) || !e.Backend().IsResident(queued) {
				t.Error("textures not resident after a frame")
			}
			if m := e.Metrics(); m.Succeeded != 2 {
				t.Errorf("succeeded = %d, want 2", m.Succeeded)
			}

			if err := e.Shutdown(); err != nil {
				t.Fatal(err)
			}
			if n := e.Backend().LiveTextures(); n != 0 {
				t.Errorf("%d textures alive after shutdown", n)
			}
			if e.Stage() != EngineStageShutdown {
				t.Errorf("stage = %d", e.Stage())
			}
			if err := e.Shutdown(); err != nil {
				t.Errorf("second Shutdown: %v", err)
			}
		})
	}
}

func TestEngineRunRequiresInitialize(t *testing.T) {
	config := DefaultApplicationConfig()
	config.Renderer.Executor = ExecutorInline
	e, err := New(&Game{ApplicationConfig: config})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()

	if err := e.Run(); err == nil {
		t.Error("Run before Initialize succeeded")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	config := DefaultApplicationConfig()
	config.Jobs.Workers = 0
	if _, err := New(&Game{ApplicationConfig: config}); err == nil {
		t.Error("New accepted zero workers")
	}
}

func TestGameCallbacks(t *testing.T) {
	var initialized, shutdown bool
	updates := 0
	g := &Game{
		FnInitialize: func() error { initialized = true; return nil },
		FnUpdate: func(delta float64) error {
			updates++
			if updates == 3 {
				return ErrQuit
			}
			return nil
		},
		FnShutdown: func() error { shutdown = true; return nil },
	}
	e := newTestEngine(t, ExecutorInline, g)
	if g.Engine != e {
		t.Error("game not linked to its engine")
	}
	if err := e.Run(); err != nil {
		t.Fatal(err)
	}
	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if !initialized || !shutdown || updates != 3 {
		t.Errorf("initialized %v shutdown %v updates %d", initialized, shutdown, updates)
	}
	if e.Stage() != EngineStageShutdown {
		t.Errorf("stage = %d", e.Stage())
	}
}
