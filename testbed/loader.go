package testbed

import (
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/spaghettifunk/texload/engine"
	"github.com/spaghettifunk/texload/engine/core"
	"github.com/spaghettifunk/texload/engine/renderer/metadata"
	"github.com/spaghettifunk/texload/engine/systems"
)

// LoaderGame loads the images named on the command line and, when a
// directory is watched, every image that shows up in it.
type LoaderGame struct {
	*engine.Game
}

type gameState struct {
	owner    *systems.Owner
	paths    []string
	async    bool
	watchDir string

	pending atomic.Int32
	loaded  atomic.Int32
	failed  atomic.Int32
}

func NewLoaderGame(config *engine.ApplicationConfig, paths []string, async bool, watchDir string) *LoaderGame {
	lg := &LoaderGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State: &gameState{
				paths:    paths,
				async:    async,
				watchDir: watchDir,
			},
		},
	}

	lg.FnInitialize = lg.Initialize
	lg.FnUpdate = lg.Update
	lg.FnShutdown = lg.Shutdown

	return lg
}

func (lg *LoaderGame) state() *gameState {
	return lg.State.(*gameState)
}

func (lg *LoaderGame) Initialize() error {
	state := lg.state()
	state.owner = lg.Engine.NewOwner("cli")

	if state.watchDir != "" {
		dir, err := filepath.Abs(state.watchDir)
		if err != nil {
			return err
		}
		// Watch reports existing files while walking, so it must not
		// block the frame loop draining them
		go func() {
			if err := lg.Engine.AssetManager().Watch(dir); err != nil {
				core.LogError("failed to watch %s: %s", dir, err)
			}
		}()
		core.LogInfo("watching %s for images", dir)
	}

	if state.async {
		for _, p := range state.paths {
			lg.loadAsync(p)
		}
		return nil
	}

	// sync loads block on the renderer, which may need the frame loop
	state.pending.Add(1)
	go func() {
		defer state.pending.Add(-1)
		for _, p := range state.paths {
			lg.report(p, lg.Engine.LoadImageFromDisk(state.owner, p))
		}
	}()
	return nil
}

func (lg *LoaderGame) loadAsync(path string) {
	state := lg.state()
	state.pending.Add(1)
	lg.Engine.LoadImageFromDiskAsync(state.owner, path, func(t *metadata.Texture) {
		lg.report(path, t)
		state.pending.Add(-1)
	})
}

func (lg *LoaderGame) report(path string, t *metadata.Texture) {
	state := lg.state()
	if t == nil {
		state.failed.Add(1)
		core.LogWarn("could not load %s", path)
		return
	}
	state.loaded.Add(1)
	transparent := ""
	if t.HasFlag(metadata.TextureFlagHasTransparency) {
		transparent = ", transparent"
	}
	core.LogInfo("loaded %s as '%s' (%dx%d%s)", path, t.Name, t.Width, t.Height, transparent)
}

func (lg *LoaderGame) Update(deltaTime float64) error {
	state := lg.state()
	am := lg.Engine.AssetManager()

	if state.watchDir != "" {
	drain:
		for {
			select {
			case p, ok := <-am.Events():
				if !ok {
					return engine.ErrQuit
				}
				lg.loadAsync(p)
			case err, ok := <-am.Errors():
				if !ok {
					return engine.ErrQuit
				}
				core.LogError("watcher: %s", err)
			default:
				break drain
			}
		}
		return nil
	}

	if state.pending.Load() == 0 {
		return engine.ErrQuit
	}
	return nil
}

func (lg *LoaderGame) Shutdown() error {
	state := lg.state()
	m := lg.Engine.Metrics()
	core.LogInfo("%d loaded, %d failed, %d textures held, average load %s",
		state.loaded.Load(), state.failed.Load(), len(state.owner.Textures()), m.AverageLoad)
	for stage, n := range m.Failed {
		core.LogDebug("failures at %s: %d", stage, n)
	}
	return nil
}

// Summary returns the number of successful and failed loads.
func (lg *LoaderGame) Summary() string {
	state := lg.state()
	return fmt.Sprintf("%d loaded, %d failed", state.loaded.Load(), state.failed.Load())
}
