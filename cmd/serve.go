package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/conneroisu/practicals/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Serve the exercise pages over HTTP",
	Long: `Serve the page directory over HTTP. "/" serves the index page and every
other page is addressed by its file name, exactly as the sidebar links it.

With --live-reload, open browsers reload when a page in an on-disk page
directory changes.

Examples:
  practicals serve                          # Serve the embedded pages on :8080
  practicals serve --pages ./site -p 3000   # Serve ./site on port 3000
  practicals serve --pages ./site --live-reload`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	AddStandardFlags(serveCmd, "server")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())
	pages, _ := openPages(cfg)
	srv := server.New(cfg, server.Deps{Pages: pages, Logger: logger})

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, err, "Error during server shutdown")
		}
	}()

	return srv.Start(ctx)
}
