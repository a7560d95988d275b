package systems

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/spaghettifunk/texload/engine/assets"
	"github.com/spaghettifunk/texload/engine/core"
	"github.com/spaghettifunk/texload/engine/math"
	"github.com/spaghettifunk/texload/engine/renderer/metadata"
)

type TextureSystemConfig struct {
	/** @brief The format every loaded texture is converted to. */
	TargetFormat gputypes.TextureFormat
	/** @brief Run subscribers registered after completion with the stored result. */
	ReplayLateSubscribers bool
}

// LoadRequest is one load travelling through the pipeline.
type LoadRequest struct {
	Path  string
	Owner *Owner
}

type TextureSystem struct {
	Config *TextureSystemConfig
	// sub systems
	formats      *metadata.FormatTable
	jobSystem    *JobSystem
	assetManager *assets.AssetManager
	renderer     *RendererSystem
	metrics      *core.LoadMetrics
}

func NewTextureSystem(config *TextureSystemConfig, formats *metadata.FormatTable, js *JobSystem, am *assets.AssetManager, r *RendererSystem) (*TextureSystem, error) {
	if config == nil {
		return nil, fmt.Errorf("func NewTextureSystem - config is required")
	}
	if formats == nil {
		formats = metadata.DefaultFormatTable()
	}
	if _, err := formats.Lookup(config.TargetFormat); err != nil {
		err = fmt.Errorf("func NewTextureSystem - %w", err)
		core.LogError("%s", err)
		return nil, err
	}
	if js == nil || am == nil || r == nil {
		return nil, fmt.Errorf("func NewTextureSystem - job system, asset manager and renderer are required")
	}

	return &TextureSystem{
		Config:       config,
		formats:      formats,
		jobSystem:    js,
		assetManager: am,
		renderer:     r,
		metrics:      core.NewLoadMetrics(),
	}, nil
}

func (ts *TextureSystem) Initialize() error {
	info, _ := ts.formats.Lookup(ts.Config.TargetFormat)
	core.LogInfo("texture system ready: format %v (%d bytes per pixel), decoders %s",
		ts.Config.TargetFormat, info.BytesPerPixel, strings.Join(ts.assetManager.Decoders().Names(), ", "))
	return nil
}

func (ts *TextureSystem) Shutdown() error {
	s := ts.metrics.Snapshot()
	core.LogDebug("texture system shutting down: %d started, %d succeeded", s.Started, s.Succeeded)
	return nil
}

// Metrics returns a snapshot of the load counters.
func (ts *TextureSystem) Metrics() core.MetricsSnapshot {
	return ts.metrics.Snapshot()
}

// LoadImageFromDisk runs the whole pipeline on the calling goroutine. It
// returns nil when any stage fails; the failure is logged.
func (ts *TextureSystem) LoadImageFromDisk(owner *Owner, path string) *metadata.Texture {
	promise, future := core.NewPromise[*metadata.Texture]()
	ts.execute(LoadRequest{Path: path, Owner: owner}, promise)
	return future.Get()
}

// LoadImageFromDiskAsync queues the load on the job system and returns at
// once. subscribers are registered before the load is queued so none of them
// can miss the result.
func (ts *TextureSystem) LoadImageFromDiskAsync(owner *Owner, path string, subscribers ...func(*metadata.Texture)) *LoadHandle {
	promise, future := core.NewPromise[*metadata.Texture]()
	handle := newLoadHandle(path, future, ts.Config.ReplayLateSubscribers)
	for _, s := range subscribers {
		if s != nil {
			handle.Subscribe(s)
		}
	}
	handle.bind()

	ts.dispatch(LoadRequest{Path: path, Owner: owner}, promise)
	return handle
}

// LoadImageFromDiskWithCallback queues the load and runs callback with the
// result, or nil on failure, on the goroutine that finished the load.
func (ts *TextureSystem) LoadImageFromDiskWithCallback(owner *Owner, path string, callback func(*metadata.Texture)) *core.Future[*metadata.Texture] {
	promise, future := core.NewPromise[*metadata.Texture]()
	if callback != nil {
		future.Then(callback)
	}

	ts.dispatch(LoadRequest{Path: path, Owner: owner}, promise)
	return future
}

func (ts *TextureSystem) dispatch(req LoadRequest, promise *core.Promise[*metadata.Texture]) {
	err := ts.jobSystem.Submit(metadata.JobTask{
		JobType: metadata.JOB_TYPE_RESOURCE_LOAD,
		Name:    "load " + req.Path,
		OnStart: func() error {
			ts.execute(req, promise)
			return nil
		},
		OnFailure: func(err error) {
			fulfil(promise, nil)
		},
	})
	if err != nil {
		core.LogError("failed to queue load of '%s': %s", req.Path, err)
		fulfil(promise, nil)
	}
}

func fulfil(promise *core.Promise[*metadata.Texture], texture *metadata.Texture) {
	if err := promise.Set(texture); err != nil && !errors.Is(err, core.ErrPromiseAlreadySet) {
		core.LogError("%s", err)
	}
}

// execute loads req and fulfils promise. The promise is fulfilled exactly
// once whatever happens during the load.
func (ts *TextureSystem) execute(req LoadRequest, promise *core.Promise[*metadata.Texture]) {
	defer func() {
		if r := recover(); r != nil {
			core.LogError("load of '%s' panicked: %v", req.Path, r)
			fulfil(promise, nil)
		}
	}()

	texture, err := ts.load(req)
	if err != nil {
		core.LogError("%s", err)
	}
	fulfil(promise, texture)
}

func (ts *TextureSystem) load(req LoadRequest) (*metadata.Texture, error) {
	clock := core.NewClock()
	clock.Start()
	ts.metrics.LoadStarted()

	texture, stage, err := ts.run(context.Background(), req)
	if err != nil {
		ts.metrics.LoadFailed(stage)
		return nil, core.NewLoadError(stage, req.Path, err)
	}

	clock.Stop()
	ts.metrics.LoadSucceeded(clock.Elapsed())
	core.LogDebug("loaded '%s' as '%s' (%dx%d) in %s", req.Path, texture.Name, texture.Width, texture.Height, clock.Elapsed())
	return texture, nil
}

// run walks the stages in order and stops at the first failure.
func (ts *TextureSystem) run(ctx context.Context, req LoadRequest) (*metadata.Texture, core.Stage, error) {
	exists, err := ts.assetManager.Exists(ctx, req.Path)
	if err != nil {
		return nil, core.StageRead, err
	}
	if !exists {
		return nil, core.StageExists, fmt.Errorf("no such file")
	}

	resource, err := ts.assetManager.Read(ctx, req.Path)
	if err != nil {
		return nil, core.StageRead, err
	}
	if len(resource.Data) == 0 {
		return nil, core.StageRead, fmt.Errorf("file is empty")
	}

	decoder, ok := ts.assetManager.Decoders().Detect(resource.Data)
	if !ok {
		return nil, core.StageDetect, fmt.Errorf("no decoder recognises the file header")
	}

	info, err := ts.formats.Lookup(ts.Config.TargetFormat)
	if err != nil {
		return nil, core.StageDecode, err
	}
	image, err := assets.Decode(decoder, resource.Data)
	if err != nil {
		return nil, core.StageDecode, err
	}
	if image.Format != info.Source {
		return nil, core.StageDecode, fmt.Errorf("cannot convert %s pixels to %v", image.Format, ts.Config.TargetFormat)
	}

	if !math.IsMultiple(image.Width, info.BlockWidth) || !math.IsMultiple(image.Height, info.BlockHeight) {
		return nil, core.StageValidate, fmt.Errorf("%dx%d is not a multiple of the %dx%d block size of %v",
			image.Width, image.Height, info.BlockWidth, info.BlockHeight, ts.Config.TargetFormat)
	}

	texture, err := ts.allocate(req.Owner, textureName(resource, req.Path), image)
	if err != nil {
		return nil, core.StageAllocate, err
	}
	return texture, core.StageAllocate, nil
}

func (ts *TextureSystem) allocate(owner *Owner, base string, image *metadata.DecodedImage) (*metadata.Texture, error) {
	if owner == nil {
		return nil, core.ErrOwnerDestroyed
	}
	name, err := owner.reserveName(base)
	if err != nil {
		return nil, err
	}

	desc := metadata.SampledTextureDescriptor(name, image.Width, image.Height, ts.Config.TargetFormat)
	texture, err := ts.renderer.TextureCreate(desc, image.Pixels)
	if err != nil {
		owner.releaseName(name)
		return nil, err
	}
	if image.HasTransparency() {
		texture.SetFlag(metadata.TextureFlagHasTransparency)
	}

	if err := owner.adopt(name, texture); err != nil {
		ts.renderer.TextureDestroy(texture)
		return nil, err
	}
	return texture, nil
}

// textureName derives the texture name from the file name without its
// extension.
func textureName(resource *metadata.Resource, p string) string {
	name := resource.Name
	if name == "" {
		name = path.Base(strings.ReplaceAll(p, "\\", "/"))
	}
	return strings.TrimSuffix(name, path.Ext(name))
}
