package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/eduplan/seatplan/internal/config"
	"github.com/eduplan/seatplan/pkg/buildinfo"
	"github.com/eduplan/seatplan/pkg/cache"
	"github.com/eduplan/seatplan/pkg/pipeline"
	"github.com/eduplan/seatplan/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "eduplan"

	// localEstablishment scopes plans rendered from files.
	localEstablishment = "local"
)

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

	envFile    string
	configFile string
	converter  string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "EduPlan lays out classroom seats and exports seating plans",
		Long: `EduPlan computes the seat geometry of a classroom from its column
configuration and exports seating plans as SVG, PDF, PNG, JSON or XLSX,
along with per-student credential cards.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file with EDUPLAN_* settings (ignored when missing)")
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (toml, yaml or json)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.roomCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.credentialsCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.sessionCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads settings. Runners created afterwards use the configured
// document converter.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.envFile, c.configFile)
	if err != nil {
		return nil, err
	}
	c.converter = cfg.Converter
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(cache, nil, c.Logger)
	runner.Converter = c.converter
	return runner, nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// localScope is the scope of work that is not tied to a hosted session.
func localScope(establishmentID string) session.Scope {
	if establishmentID == "" {
		establishmentID = localEstablishment
	}
	return session.Local(establishmentID).Scope
}

// withRunner opens a runner for the duration of fn.
func (c *CLI) withRunner(ctx context.Context, noCache bool, fn func(*pipeline.Runner) error) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return err
	}
	defer runner.Close()
	if err := fn(runner); err != nil {
		return err
	}
	return ctx.Err()
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/eduplan/).
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

// basePath derives the output path without extension. An explicit output
// keeps its name minus any known format extension; otherwise the input
// path is used.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.DefaultFormat}
	}
	return strings.Split(s, ",")
}
