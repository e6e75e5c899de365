package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/storyflow/pkg/buildinfo"
	"github.com/matzehuels/storyflow/pkg/cache"
	"github.com/matzehuels/storyflow/pkg/config"
	"github.com/matzehuels/storyflow/pkg/errors"
	"github.com/matzehuels/storyflow/pkg/observability"
	"github.com/matzehuels/storyflow/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "storyflow"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives reports and listings; logs go to the logger's writer.
	Out io.Writer

	// Config is loaded by the root command before any subcommand runs.
	Config     *config.Config
	ConfigPath string

	verbose     bool
	configFlag  string
	metricsFile string
	metrics     *observability.Metrics
}

// New creates a CLI that writes reports to out and logs to logw.
func New(out, logw io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(logw, level),
		Out:    out,
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Storyflow turns storyboard documents into navigation graphs",
		Long: `Storyflow reads an iOS storyboard document and builds the directed graph of
its screens and transitions. Unwind transitions, which name no destination,
are resolved to the closest screen by edit distance.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			if err := c.loadConfig(); err != nil {
				return err
			}
			if c.metricsFile != "" {
				c.metrics = observability.NewMetrics()
				observability.SetPipelineHooks(c.metrics)
				observability.SetCacheHooks(c.metrics)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Out)
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics for this run to `path`")
	root.PersistentFlags().StringVar(&c.configFlag, "config", "", "config file (default: ./"+config.FileName+" or ~/.config/"+appName+"/"+config.FileName+")")

	root.AddCommand(c.parseCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Close flushes run metrics to --metrics-file, if set. It runs whether or
// not the command succeeded.
func (c *CLI) Close() error {
	if c.metrics == nil {
		return nil
	}
	defer observability.Reset()
	if err := c.metrics.WriteTextfile(c.metricsFile); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write metrics").WithSubject(c.metricsFile)
	}
	c.Logger.Debug("Wrote metrics", "path", c.metricsFile)
	return nil
}

func (c *CLI) loadConfig() error {
	cfg, path, err := config.Load(c.configFlag)
	if err != nil {
		return err
	}
	c.Config, c.ConfigPath = cfg, path
	if path != "" {
		c.Logger.Debug("Loaded config", "path", path)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Artifacts are cached on
// disk, or in Redis when cache.redis_url is set, unless noCache is set or
// the config disables the cache.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(nil, buildinfo.CacheScope())
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if url := c.Config.Cache.RedisURL; url != "" {
		c.Logger.Debug("Using shared artifact cache", "redis", url)
		return cache.NewRedisCache(url)
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("Artifact cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// pipelineOptions returns run options for path seeded from the config.
func (c *CLI) pipelineOptions(path string) pipeline.Options {
	return pipeline.Options{
		Path:     path,
		Flow:     c.Config.FlowOptions(),
		FontName: c.Config.Render.FontName,
		Colors:   c.Config.EdgeColors(),
		TTL:      c.Config.Cache.TTL,
		Logger:   c.Logger,
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/storyflow/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
