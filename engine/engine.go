package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/texload/engine/assets"
	"github.com/spaghettifunk/texload/engine/assets/sources"
	"github.com/spaghettifunk/texload/engine/core"
	"github.com/spaghettifunk/texload/engine/renderer"
	"github.com/spaghettifunk/texload/engine/renderer/metadata"
	"github.com/spaghettifunk/texload/engine/renderer/software"
	"github.com/spaghettifunk/texload/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released everything
	EngineStageShutdown
)

const targetFrameTime = time.Second / 60

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *ApplicationConfig
	isRunning     atomic.Bool
	clock         *core.Clock
	lastTime      time.Duration
	backend       *software.Backend
	executor      renderer.Executor
	renderThread  *renderer.RenderThread
	frameQueue    *renderer.FrameQueue
	gcs           *sources.GCSSource
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager

	mu     sync.Mutex
	owners []*systems.Owner
}

func New(g *Game) (*Engine, error) {
	config := g.ApplicationConfig
	if config == nil {
		config = DefaultApplicationConfig()
		g.ApplicationConfig = config
	}
	if err := config.Validate(); err != nil {
		core.LogError("%s", err)
		return nil, err
	}
	core.SetLogLevel(config.LogLevel)

	formats, err := config.Textures.FormatTable()
	if err != nil {
		return nil, err
	}
	target, _ := config.Textures.TargetFormat()

	e := &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       config,
		clock:        core.NewClock(),
	}

	backendConfig := software.Config{
		MemoryBudget: config.Renderer.MemoryBudget,
		Formats:      formats,
	}
	switch config.Renderer.Executor {
	case ExecutorRenderThread:
		e.renderThread = renderer.NewRenderThread()
		e.executor = e.renderThread
		backendConfig.AffinityCheck = e.renderThread.InTask
	case ExecutorFrameQueue:
		e.frameQueue = renderer.NewFrameQueue(config.Renderer.FrameQueueSize)
		e.executor = e.frameQueue
		backendConfig.AffinityCheck = e.frameQueue.Pumping
	case ExecutorMainThread:
		e.executor = renderer.MainThread{}
	case ExecutorInline:
		e.executor = renderer.Inline{}
		backendConfig.Multithreaded = true
	}
	e.backend = software.New(backendConfig)

	e.assetManager = assets.NewAssetManager(sources.NewFileSource(config.Assets.Root), assets.NewDefaultDecoderRegistry())
	if config.Assets.GCS {
		e.gcs = sources.NewGCSSource()
		e.assetManager.RegisterSource(sources.GCSScheme, e.gcs)
	}

	sm, err := systems.NewSystemManager(&systems.SystemManagerConfig{
		Workers:   config.Jobs.Workers,
		QueueSize: config.Jobs.QueueSize,
		Formats:   formats,
		Textures: systems.TextureSystemConfig{
			TargetFormat:          target,
			ReplayLateSubscribers: config.Textures.ReplayLateSubscribers,
		},
	}, e.assetManager, e.backend, e.executor)
	if err != nil {
		core.LogError("%s", err)
		e.release()
		return nil, err
	}
	e.systemManager = sm
	g.Engine = e

	return e, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}
	e.currentStage = EngineStageInitializing

	if err := e.systemManager.Initialize(); err != nil {
		return err
	}
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			core.LogError("game failed to initialize: %s", err)
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("%s initialized (executor %s, %d workers)", e.config.Name, e.config.Renderer.Executor, e.config.Jobs.Workers)
	return nil
}

// Run drives frames until Stop is called or the game's update returns an
// error. ErrQuit ends the loop cleanly.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine must be initialized before running")
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)

	e.clock.Start()
	e.lastTime = 0

	for e.isRunning.Load() {
		frameStart := time.Now()
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := (currentTime - e.lastTime).Seconds()

		e.Frame()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				e.isRunning.Store(false)
				if errors.Is(err, ErrQuit) {
					break
				}
				core.LogError("game update failed, shutting down: %s", err)
				return err
			}
		}

		if remaining := targetFrameTime - time.Since(frameStart); remaining > 0 {
			time.Sleep(remaining)
		}
		e.lastTime = currentTime
	}
	return nil
}

// Stop makes Run return after the current frame.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

// Frame runs the texture work queued for this frame and submits pending
// uploads. It returns the number of uploads that became resident.
func (e *Engine) Frame() int {
	if e.frameQueue != nil {
		e.frameQueue.Pump()
	}
	return e.backend.Flush()
}

// NewOwner creates an owner whose textures are destroyed at the latest when
// the engine shuts down.
func (e *Engine) NewOwner(name string) *systems.Owner {
	o := e.systemManager.NewOwner(name)
	e.mu.Lock()
	e.owners = append(e.owners, o)
	e.mu.Unlock()
	return o
}

func (e *Engine) LoadImageFromDisk(owner *systems.Owner, path string) *metadata.Texture {
	return e.systemManager.TextureSystem().LoadImageFromDisk(owner, path)
}

func (e *Engine) LoadImageFromDiskAsync(owner *systems.Owner, path string, subscribers ...func(*metadata.Texture)) *systems.LoadHandle {
	return e.systemManager.TextureSystem().LoadImageFromDiskAsync(owner, path, subscribers...)
}

func (e *Engine) LoadImageFromDiskWithCallback(owner *systems.Owner, path string, callback func(*metadata.Texture)) *core.Future[*metadata.Texture] {
	return e.systemManager.TextureSystem().LoadImageFromDiskWithCallback(owner, path, callback)
}

func (e *Engine) Metrics() core.MetricsSnapshot {
	return e.systemManager.TextureSystem().Metrics()
}

func (e *Engine) AssetManager() *assets.AssetManager {
	return e.assetManager
}

func (e *Engine) Backend() *software.Backend {
	return e.backend
}

func (e *Engine) Config() *ApplicationConfig {
	return e.config
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// Shutdown waits for queued loads, destroys every owner created through the
// engine and releases the executor.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning.Store(false)

	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown failed: %s", err)
		}
	}

	// loads parked on the frame queue need frames to finish
	done := make(chan error, 1)
	go func() { done <- e.systemManager.Shutdown() }()
	var err error
	for waiting := true; waiting; {
		select {
		case err = <-done:
			waiting = false
		case <-time.After(time.Millisecond):
			e.Frame()
		}
	}

	e.mu.Lock()
	owners := e.owners
	e.owners = nil
	e.mu.Unlock()
	for _, o := range owners {
		o.Destroy()
	}
	// posted destroys run on the next pump for the frame queue
	if e.frameQueue == nil {
		if syncErr := e.systemManager.RendererSystem().Sync(); syncErr != nil && err == nil {
			err = syncErr
		}
	}
	e.Frame()

	if releaseErr := e.release(); releaseErr != nil && err == nil {
		err = releaseErr
	}
	e.currentStage = EngineStageShutdown
	return err
}

func (e *Engine) release() error {
	var err error
	if e.renderThread != nil {
		err = errors.Join(err, e.renderThread.Shutdown())
	}
	if e.frameQueue != nil {
		err = errors.Join(err, e.frameQueue.Shutdown())
	}
	err = errors.Join(err, e.assetManager.Shutdown())
	if e.gcs != nil {
		err = errors.Join(err, e.gcs.Close())
	}
	return err
}
