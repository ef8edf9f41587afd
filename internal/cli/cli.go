// Package cli implements the statblock command-line interface.
//
// This package provides commands for rendering creature statblocks to the
// terminal and to files, serving a bestiary over HTTP, managing layouts, and
// converting foreign creature formats. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Render a creature as a terminal, HTML, or JSON statblock
//   - serve: Run the bestiary preview server
//   - layouts: List, inspect, and interactively pick layouts
//   - import: Convert 5etools or tetracube documents to native records
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pellig/statblock/pkg/buildinfo"
	"github.com/pellig/statblock/pkg/cache"
	"github.com/pellig/statblock/pkg/statblock"
)

// appName is the application name used for directories and display.
const appName = "statblock"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "Statblock renders creature sheets with balanced columns",
		Long:         `Statblock evaluates declarative creature-sheet layouts against monster records and balances the result across columns, for terminals, HTML pages, and JSON consumers.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(log.DebugLevel)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.layoutsCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newCache selects the CLI cache backend: disabled, or file-based under the
// XDG cache directory.
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

// cacheDir returns the cache directory using XDG standard (~/.cache/statblock/).
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

// loadLayouts builds the layout registry: built-ins plus any layout files in
// dir.
func (c *CLI) loadLayouts(dir string) (*statblock.Registry, error) {
	registry := statblock.NewRegistry()
	if dir == "" {
		return registry, nil
	}
	n, err := registry.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded layout files", "dir", dir, "count", n)
	return registry, nil
}
