package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anatolykoptev/go-twitter-followers/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve follower extraction over HTTP",
	Long: `Starts an HTTP server with:

  GET  /health            liveness
  POST /api/extract       JSON records, summary and chart counts
  POST /api/extract.csv   CSV download

Each request carries its own credentials in the JSON body.

With --emails page the server fetches the websites followers list on their
profiles. Loopback, private and link-local hosts are skipped, but the server
still makes outbound requests on behalf of callers; keep page mode behind
trusted clients.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := baseConfig()
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              viper.GetString("addr"),
			Handler:           server.New(cfg),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			slog.Info("listening", slog.String("addr", srv.Addr))
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringP("addr", "a", ":8080", "listen address")
	_ = viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	RootCmd.AddCommand(serveCmd)
}
