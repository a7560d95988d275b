package systems

import (
	"github.com/spaghettifunk/texload/engine/assets"
	"github.com/spaghettifunk/texload/engine/renderer"
	"github.com/spaghettifunk/texload/engine/renderer/metadata"
)

type SystemManagerConfig struct {
	Workers   int
	QueueSize int
	Textures  TextureSystemConfig
	Formats   *metadata.FormatTable
}

type SystemManager struct {
	jobSystem      *JobSystem
	rendererSystem *RendererSystem
	textureSystem  *TextureSystem
	assetManager   *assets.AssetManager
}

func NewSystemManager(config *SystemManagerConfig, am *assets.AssetManager, backend renderer.RendererBackend, executor renderer.Executor) (*SystemManager, error) {
	js, err := NewJobSystem(config.Workers, config.QueueSize)
	if err != nil {
		return nil, err
	}
	rs, err := NewRendererSystem(backend, executor)
	if err != nil {
		js.Shutdown()
		return nil, err
	}
	textures := config.Textures
	ts, err := NewTextureSystem(&textures, config.Formats, js, am, rs)
	if err != nil {
		js.Shutdown()
		return nil, err
	}
	return &SystemManager{
		jobSystem:      js,
		rendererSystem: rs,
		textureSystem:  ts,
		assetManager:   am,
	}, nil
}

func (sm *SystemManager) Initialize() error {
	return sm.textureSystem.Initialize()
}

func (sm *SystemManager) JobSystem() *JobSystem {
	return sm.jobSystem
}

func (sm *SystemManager) RendererSystem() *RendererSystem {
	return sm.rendererSystem
}

func (sm *SystemManager) TextureSystem() *TextureSystem {
	return sm.textureSystem
}

func (sm *SystemManager) AssetManager() *assets.AssetManager {
	return sm.assetManager
}

// NewOwner creates an owner whose textures are destroyed through this
// manager's renderer.
func (sm *SystemManager) NewOwner(name string) *Owner {
	return NewOwner(name, sm.rendererSystem)
}

// Shutdown waits for queued loads to finish, then stops the remaining
// systems. The asset manager belongs to the caller.
func (sm *SystemManager) Shutdown() error {
	if err := sm.jobSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.textureSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
