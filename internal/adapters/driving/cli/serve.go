package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/hub/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/hub/internal/logger"
)

var (
	serveListen  string
	serveBaseURL string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the hub HTTP API and runs the poll scheduler until interrupted.

Configuration changes to connectors are picked up without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (default from config, then :8080)")
	serveCmd.Flags().StringVar(&serveBaseURL, "base-url", "", "externally visible URL used in links")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	s := svc()
	if s.Reflect == nil {
		return errors.New("reflect service not configured")
	}

	ports := &httpapi.Ports{
		Reflect:    s.Reflect,
		Query:      s.Query,
		Data:       s.Data,
		Invoke:     s.Invoke,
		Poll:       s.Poll,
		Notify:     s.Notify,
		Connectors: s.Connectors,
	}
	opts := httpapi.Options{BaseURL: firstNonEmpty(serveBaseURL, s.BaseURL), Metrics: s.Metrics}
	server, err := httpapi.NewServer(ports, opts)
	if err != nil {
		return err
	}

	addr := firstNonEmpty(serveListen, s.ListenAddr, ":8080")

	g, ctx := errgroup.WithContext(cmd.Context())

	if s.Watch != nil {
		stop, err := s.Watch(ctx)
		if err != nil {
			logger.Warn("config watch disabled: %v", err)
		} else {
			defer stop()
		}
	}

	if s.Scheduler != nil {
		g.Go(func() error {
			return s.Scheduler.Start(ctx)
		})
		g.Go(func() error {
			<-ctx.Done()
			return s.Scheduler.Stop()
		})
	}

	g.Go(func() error {
		return server.Run(ctx, addr)
	})

	return g.Wait()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
