package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pellig/statblock/pkg/cache"
	"github.com/pellig/statblock/pkg/errors"
	"github.com/pellig/statblock/pkg/monster/importer"
)

type importFlags struct {
	importer string
	out      string
	noCache  bool
}

func (c *CLI) importCommand() *cobra.Command {
	flags := importFlags{}

	cmd := &cobra.Command{
		Use:   "import <creature.json>",
		Short: "Convert a foreign creature document to a native record",
		Long: `Convert a 5etools or tetracube creature document to the native
record format. The source format is detected automatically unless
--importer is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.importer, "importer", "", "force a specific importer (5etools, tetracube, native)")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "bypass the import cache")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, path string, flags importFlags) error {
	logger := loggerFromContext(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
	}

	store, err := newCache(flags.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	name := flags.importer
	if name == "" {
		imp, ok := importer.Detect(data)
		if !ok {
			return errors.New(errors.ErrCodeInvalidFormat, "unrecognized creature document %s", path)
		}
		name = imp.Name()
	}
	logger.Debug("importing creature", "importer", name, "file", path)

	key := cache.ImportKey(name, cache.Hash(data))
	if cached, hit, err := store.Get(ctx, key); err == nil && hit {
		logger.Debug("import cache hit", "key", key)
		return writeOutput(flags.out, cached)
	}

	track := newProgress(logger)
	m, err := importer.Import(data, name)
	if err != nil {
		return err
	}
	record, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "serialize record")
	}
	record = append(record, '\n')
	track.done(fmt.Sprintf("Imported %s via %s", m.Name(), name))

	if err := store.Set(ctx, key, record, cache.TTLImport); err != nil {
		logger.Warn("cache write failed", "err", err)
	}
	return writeOutput(flags.out, record)
}
