package engine

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/texload/engine/core"
	"github.com/spaghettifunk/texload/engine/renderer/metadata"
)

// ExecutorKind selects where texture calls run for single threaded backends.
type ExecutorKind string

const (
	ExecutorRenderThread ExecutorKind = "render_thread"
	ExecutorFrameQueue   ExecutorKind = "frame_queue"
	ExecutorMainThread   ExecutorKind = "main_thread"
	ExecutorInline       ExecutorKind = "inline"
)

const envPrefix = "TEXLOAD_"

type JobConfig struct {
	// Number of worker goroutines running asynchronous loads.
	Workers int `toml:"workers"`
	// Loads that may wait in the queue before submitters block.
	QueueSize int `toml:"queue_size"`
}

type RendererConfig struct {
	Executor ExecutorKind `toml:"executor"`
	// Bytes the backend may hold in live textures. Zero disables the limit.
	MemoryBudget uint64 `toml:"memory_budget"`
	// Initial capacity of the frame queue.
	FrameQueueSize int `toml:"frame_queue_size"`
}

type TextureConfig struct {
	// Only "bgra8unorm" is produced by the decoders.
	Format      string `toml:"format"`
	BlockWidth  uint32 `toml:"block_width"`
	BlockHeight uint32 `toml:"block_height"`
	// Invoke subscribers added after a load finished with its result.
	ReplayLateSubscribers bool `toml:"replay_late_subscribers"`
}

type AssetsConfig struct {
	// Relative paths are resolved against Root.
	Root string `toml:"root"`
	// Serve gs://bucket/object paths from Google Cloud Storage.
	GCS bool `toml:"gcs"`
}

type ApplicationConfig struct {
	// The application name, used in logs.
	Name     string         `toml:"name"`
	LogLevel core.LogLevel  `toml:"log_level"`
	Jobs     JobConfig      `toml:"jobs"`
	Renderer RendererConfig `toml:"renderer"`
	Textures TextureConfig  `toml:"textures"`
	Assets   AssetsConfig   `toml:"assets"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:     "texload",
		LogLevel: core.LogLevelInfo,
		Jobs: JobConfig{
			Workers:   runtime.NumCPU(),
			QueueSize: 64,
		},
		Renderer: RendererConfig{
			Executor:       ExecutorRenderThread,
			MemoryBudget:   512 << 20,
			FrameQueueSize: 32,
		},
		Textures: TextureConfig{
			Format:      "bgra8unorm",
			BlockWidth:  1,
			BlockHeight: 1,
		},
	}
}

// LoadApplicationConfig starts from the defaults, applies the TOML file at
// path when path is not empty, loads the given .env files that exist and
// finally applies TEXLOAD_* environment variables.
func LoadApplicationConfig(path string, envFiles ...string) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *ApplicationConfig) applyEnv() error {
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		c.LogLevel = core.LogLevel(strings.ToLower(v))
	}
	if v, ok := lookupEnv("WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sWORKERS: %w", envPrefix, err)
		}
		c.Jobs.Workers = n
	}
	if v, ok := lookupEnv("QUEUE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sQUEUE_SIZE: %w", envPrefix, err)
		}
		c.Jobs.QueueSize = n
	}
	if v, ok := lookupEnv("MEMORY_BUDGET"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sMEMORY_BUDGET: %w", envPrefix, err)
		}
		c.Renderer.MemoryBudget = n
	}
	if v, ok := lookupEnv("EXECUTOR"); ok {
		c.Renderer.Executor = ExecutorKind(strings.ToLower(v))
	}
	if v, ok := lookupEnv("GCS_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sGCS_ENABLED: %w", envPrefix, err)
		}
		c.Assets.GCS = b
	}
	if v, ok := lookupEnv("ASSETS_ROOT"); ok {
		c.Assets.Root = v
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Validate reports the first setting the engine cannot run with.
func (c *ApplicationConfig) Validate() error {
	switch c.LogLevel {
	case core.LogLevelDebug, core.LogLevelInfo, core.LogLevelWarn, core.LogLevelError:
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.Jobs.Workers < 1 {
		return fmt.Errorf("jobs.workers must be at least 1, got %d", c.Jobs.Workers)
	}
	if c.Jobs.QueueSize < 0 {
		return fmt.Errorf("jobs.queue_size must not be negative, got %d", c.Jobs.QueueSize)
	}
	switch c.Renderer.Executor {
	case ExecutorRenderThread, ExecutorFrameQueue, ExecutorMainThread, ExecutorInline:
	default:
		return fmt.Errorf("unknown renderer executor %q", c.Renderer.Executor)
	}
	if _, err := c.Textures.TargetFormat(); err != nil {
		return err
	}
	if c.Textures.BlockWidth == 0 || c.Textures.BlockHeight == 0 {
		return fmt.Errorf("texture block size must be at least 1x1, got %dx%d", c.Textures.BlockWidth, c.Textures.BlockHeight)
	}
	return nil
}

func (tc TextureConfig) TargetFormat() (gputypes.TextureFormat, error) {
	switch strings.ToLower(tc.Format) {
	case "bgra8unorm", "":
		return gputypes.TextureFormatBGRA8Unorm, nil
	}
	var none gputypes.TextureFormat
	return none, fmt.Errorf("unsupported texture format %q", tc.Format)
}

// FormatTable describes the target format with the configured block size.
func (tc TextureConfig) FormatTable() (*metadata.FormatTable, error) {
	format, err := tc.TargetFormat()
	if err != nil {
		return nil, err
	}
	ft := metadata.NewFormatTable()
	ft.Register(format, metadata.FormatInfo{
		BytesPerPixel: metadata.PixelFormatBGRA8.BytesPerPixel(),
		BlockWidth:    tc.BlockWidth,
		BlockHeight:   tc.BlockHeight,
		Source:        metadata.PixelFormatBGRA8,
	})
	return ft, nil
}
