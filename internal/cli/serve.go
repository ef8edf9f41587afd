package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pellig/statblock/internal/server"
	"github.com/pellig/statblock/pkg/cache"
)

type serveFlags struct {
	addr      string
	bestiary  string
	layoutDir string
	redisURL  string
	noCache   bool
}

func (c *CLI) serveCommand() *cobra.Command {
	flags := serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bestiary preview server",
		Long: `Serve a directory of creature records over HTTP.

Creatures are rendered on demand as HTML pages or JSON documents, with
rendered artifacts cached between requests.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.addr, "addr", "a", ":8080", "listen address")
	cmd.Flags().StringVarP(&flags.bestiary, "bestiary", "b", "", "directory of creature records (required)")
	cmd.Flags().StringVar(&flags.layoutDir, "layouts", "", "directory of additional layout files")
	cmd.Flags().StringVar(&flags.redisURL, "redis", "", "redis URL for the render cache (e.g. redis://localhost:6379)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the render cache")
	_ = cmd.MarkFlagRequired("bestiary")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, flags serveFlags) error {
	logger := loggerFromContext(ctx)

	bestiary, err := server.LoadBestiary(flags.bestiary, logger)
	if err != nil {
		return err
	}
	layouts, err := c.loadLayouts(flags.layoutDir)
	if err != nil {
		return err
	}
	store, err := c.serverCache(ctx, flags)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(server.Config{
		Bestiary: bestiary,
		Layouts:  layouts,
		Cache:    store,
		Logger:   logger,
	})

	printInfo("Serving %s creatures on %s",
		StyleHighlight.Render(strconv.Itoa(bestiary.Len())), StyleHighlight.Render(flags.addr))
	return srv.ListenAndServe(ctx, flags.addr)
}

// serverCache picks the server cache backend: redis when a URL is given,
// otherwise the file cache, or no cache at all.
func (c *CLI) serverCache(ctx context.Context, flags serveFlags) (cache.Cache, error) {
	if flags.noCache {
		return cache.NewNullCache(), nil
	}
	if flags.redisURL != "" {
		store, err := cache.NewRedisCacheFromURL(ctx, flags.redisURL)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache", "url", flags.redisURL)
		return store, nil
	}
	return newCache(false)
}
