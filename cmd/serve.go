package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/vibe-studio/internal/search"
	"github.com/ziadkadry99/vibe-studio/internal/server"
	"github.com/ziadkadry99/vibe-studio/internal/walker"
	"github.com/ziadkadry99/vibe-studio/internal/watch"
)

var (
	servePort     int
	serveWatchDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the studio web server",
	Long: `Serves the editor at / and every published page at /<name>. With --watch
(or watch.dir in the config) the page collection is reloaded whenever the
project directory changes on disk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ws, err := openWorkspace(ctx)
		if err != nil {
			return err
		}
		defer ws.Close()
		cfg := ws.cfg

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if serveWatchDir != "" {
			cfg.Watch.Dir = serveWatchDir
		}

		index, err := search.NewIndex(ws.log)
		if err != nil {
			return fmt.Errorf("creating search index: %w", err)
		}
		index.Follow(ctx, ws.shell.Pages())

		srv, err := server.New(server.Config{
			Port:      cfg.Server.Port,
			BaseURL:   cfg.Server.BaseURL,
			AllowAll:  cfg.Server.AllowAllOrigins,
			RateLimit: cfg.Server.RateLimit,
			RateBurst: cfg.Server.RateBurst,
			MaxUpload: int64(cfg.Server.MaxUploadMB) << 20,
		}, ws.shell, ws.history, index, ws.log)
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return srv.Run(gctx) })

		if cfg.Watch.Dir != "" {
			w, err := watch.New(walker.Config{
				RootDir: cfg.Watch.Dir,
				Exclude: cfg.Watch.Exclude,
			}, time.Duration(cfg.Watch.DebounceMS)*time.Millisecond, func(ctx context.Context, root string, entries []walker.Entry) error {
				loaded, err := ws.shell.Upload(ctx, walker.Files(root, entries))
				if err != nil {
					return err
				}
				ws.log.WithField("pages", len(loaded)).Debug("watched project loaded")
				return nil
			}, ws.log)
			if err != nil {
				return err
			}
			ws.log.WithField("dir", w.Root()).Info("watching project directory")
			g.Go(func() error { return w.Run(gctx) })
		}

		fmt.Fprintf(os.Stderr, "Vibe Studio listening on http://localhost:%d/\n", cfg.Server.Port)
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (overrides server.port)")
	serveCmd.Flags().StringVarP(&serveWatchDir, "watch", "w", "", "project directory to reload pages from on change")
	rootCmd.AddCommand(serveCmd)
}
