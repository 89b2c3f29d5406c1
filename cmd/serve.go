package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/briefing-service/internal/monitoring"
	"github.com/sells-group/briefing-service/internal/server"
)

var (
	servePort  int
	serveGrace time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the briefing webhook server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		env, err := initBriefing(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		metrics := monitoring.NewCollector()
		if cfg.Monitoring.WebhookURL != "" {
			checker := monitoring.NewChecker(metrics, monitoring.NewAlerter(cfg.Monitoring), cfg.Monitoring)
			go checker.Run(ctx)
		}

		opts := []server.Option{server.WithVersion(version), server.WithMetrics(metrics)}
		if env.Leads != nil {
			opts = append(opts, server.WithLeads(env.Leads))
		}
		srv := server.New(env.Pipeline, cfg, opts...)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		return srv.ListenAndServe(ctx, port, serveGrace)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().DurationVar(&serveGrace, "grace", 60*time.Second, "time to let in-flight briefings finish on shutdown")
	rootCmd.AddCommand(serveCmd)
}
