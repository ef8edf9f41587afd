package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pellig/statblock/pkg/cache"
	"github.com/pellig/statblock/pkg/engine"
	"github.com/pellig/statblock/pkg/errors"
	"github.com/pellig/statblock/pkg/linkify"
	"github.com/pellig/statblock/pkg/monster"
	"github.com/pellig/statblock/pkg/monster/importer"
	"github.com/pellig/statblock/pkg/render/htmlsink"
	"github.com/pellig/statblock/pkg/render/jsonsink"
	"github.com/pellig/statblock/pkg/render/term"
	"github.com/pellig/statblock/pkg/statblock"
)

// Output formats for the render command.
const (
	formatTerm = "term"
	formatHTML = "html"
	formatJSON = "json"
)

// termMinSplit is the minimum per-column height for terminal output, in
// rows. The engine default is pixel-scaled and would never split a terminal
// statblock.
const termMinSplit = 25

type renderFlags struct {
	layout      string
	format      string
	columns     int
	width       string
	termWidth   int
	out         string
	importer    string
	layoutDir   string
	noCache     bool
	interactive bool
}

func (c *CLI) renderCommand() *cobra.Command {
	flags := renderFlags{}

	cmd := &cobra.Command{
		Use:   "render <creature.json>",
		Short: "Render a creature statblock",
		Long: `Render a creature record as a statblock with balanced columns.

The creature file may be a native record or a 5etools/tetracube document;
the format is detected automatically unless --importer is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.layout, "layout", "l", "", "layout name (default: Basic 5e)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", formatTerm, "output format: term, html, or json")
	cmd.Flags().IntVar(&flags.columns, "columns", 0, "column count (default: 2)")
	cmd.Flags().StringVar(&flags.width, "width", "", "column width for HTML output (e.g. 400px)")
	cmd.Flags().IntVar(&flags.termWidth, "term-width", 46, "column width for terminal output, in cells")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&flags.importer, "importer", "", "force a specific importer (5etools, tetracube, native)")
	cmd.Flags().StringVar(&flags.layoutDir, "layouts", "", "directory of additional layout files")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "bypass the render cache")
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "pick the layout interactively")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, flags renderFlags) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
	}
	m, err := importer.Import(data, flags.importer)
	if err != nil {
		return err
	}

	layouts, err := c.loadLayouts(flags.layoutDir)
	if err != nil {
		return err
	}
	if flags.interactive {
		name, err := pickLayout(layouts)
		if err != nil {
			return err
		}
		if name == "" {
			printInfo("no layout selected")
			return nil
		}
		flags.layout = name
	}

	opts := engine.Options{
		Layout:      flags.layout,
		Columns:     flags.columns,
		ColumnWidth: flags.width,
	}

	if flags.format == formatTerm {
		return c.renderTerm(ctx, m, layouts, opts, flags)
	}
	return c.renderArtifact(ctx, m, layouts, opts, flags)
}

// renderTerm renders straight to the terminal; no spinner and no cache, the
// pass is interactive and cheap.
func (c *CLI) renderTerm(ctx context.Context, m monster.Monster, layouts *statblock.Registry, opts engine.Options, flags renderFlags) error {
	logger := loggerFromContext(ctx)

	producer := term.NewProducer(flags.termWidth)
	eng, err := engine.New(engine.Config{
		Producer: producer,
		Measurer: term.Measurer{},
		Layouts:  layouts,
		Linkify:  linkify.Wiki{},
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	opts.MinSplit = termMinSplit
	result, err := eng.Build(ctx, m, opts)
	if err != nil {
		return err
	}
	logger.Debug("built statblock",
		"blocks", result.Stats.BlockCount,
		"columns", result.Stats.ColumnCount)

	return writeOutput(flags.out, []byte(term.JoinColumns(result.Columns, 3)+"\n"))
}

func (c *CLI) renderArtifact(ctx context.Context, m monster.Monster, layouts *statblock.Registry, opts engine.Options, flags renderFlags) error {
	logger := loggerFromContext(ctx)

	if flags.format != formatHTML && flags.format != formatJSON {
		return errors.New(errors.ErrCodeInvalidFormat, "format %q (must be term, html, or json)", flags.format)
	}

	store, err := newCache(flags.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	recordData, err := json.Marshal(m)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "serialize record")
	}
	key := cache.RenderKey(cache.Hash(recordData), cache.RenderKeyOpts{
		Format:      flags.format,
		Layout:      opts.Layout,
		Columns:     opts.Columns,
		ColumnWidth: opts.ColumnWidth,
	})
	if data, hit, err := store.Get(ctx, key); err == nil && hit {
		logger.Debug("render cache hit", "key", key)
		return writeOutput(flags.out, data)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", m.Name()))
	spinner.Start()
	track := newProgress(logger)

	data, err := buildArtifact(ctx, m, layouts, opts, flags.format)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Render failed: %s", errors.UserMessage(err)))
		return err
	}
	spinner.Stop()
	track.done(fmt.Sprintf("Rendered %s", m.Name()))

	if err := store.Set(ctx, key, data, cache.TTLRender); err != nil {
		logger.Warn("cache write failed", "err", err)
	}
	return writeOutput(flags.out, data)
}

func buildArtifact(ctx context.Context, m monster.Monster, layouts *statblock.Registry, opts engine.Options, format string) ([]byte, error) {
	switch format {
	case formatHTML:
		width := htmlsink.ParseWidth(firstNonEmpty(m.ColumnWidth(""), opts.ColumnWidth), 400)
		eng, err := engine.New(engine.Config{
			Producer: htmlsink.NewProducer(),
			Measurer: htmlsink.NewMeasurer(width),
			Layouts:  layouts,
			Linkify:  linkify.Wiki{},
		})
		if err != nil {
			return nil, err
		}
		result, err := eng.Build(ctx, m, opts)
		if err != nil {
			return nil, err
		}
		return htmlsink.Page(m.Name(), result.Columns, result.ColumnWidth)

	case formatJSON:
		eng, err := engine.New(engine.Config{
			Producer: jsonsink.NewProducer(),
			Measurer: jsonsink.Measurer{},
			Layouts:  layouts,
		})
		if err != nil {
			return nil, err
		}
		result, err := eng.Build(ctx, m, opts)
		if err != nil {
			return nil, err
		}
		return jsonsink.Marshal(result.PassID, result.Layout, result.ColumnWidth, result.SplitHeight, result.Columns)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "format %q", format)
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	printSuccess("Wrote %s", StyleHighlight.Render(path))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
