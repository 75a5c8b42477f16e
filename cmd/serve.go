package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theapemachine/taskagent/pkg/auth"
	"github.com/theapemachine/taskagent/pkg/chat"
	"github.com/theapemachine/taskagent/pkg/metrics"
	"github.com/theapemachine/taskagent/pkg/service"
	"github.com/theapemachine/taskagent/pkg/service/sse"
	"github.com/theapemachine/taskagent/pkg/types"
	"golang.org/x/sync/errgroup"
)

var (
	portFlag int
	hostFlag string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat HTTP API",
		Long:  longServe,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx)
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&portFlag, "port", "p", 0, "port to serve on (overrides server.port)")
	serveCmd.Flags().StringVarP(&hostFlag, "host", "H", "", "host address to bind to (overrides server.host)")
}

func serve(ctx context.Context) error {
	var (
		turns  = metrics.NewTurnMetrics()
		broker = sse.NewSSEBroker(metrics.NewStreamingMetrics())
	)

	rt, err := buildRuntime(ctx,
		chat.WithMetrics(turns),
		chat.WithAuditSink(func(userID string, entry types.AuditEntry) {
			if err := broker.Broadcast(userID, entry); err != nil {
				log.Debug("audit entry not broadcast", "user", userID, "error", err)
			}
		}),
	)

	if err != nil {
		return err
	}

	defer rt.Close()

	options := []service.ChatServerOption{
		service.WithBroker(broker),
		service.WithTurnMetrics(turns),
		service.WithAddr(listenAddr()),
	}

	var authService *auth.Service

	if viper.GetBool("auth.enabled") {
		authService = auth.NewService(
			[]byte(viper.GetString("auth.signing_key")),
			auth.WithTokenTTL(viper.GetDuration("auth.token_ttl")),
			auth.WithRateLimit(viper.GetInt64("auth.rate_limit"), viper.GetDuration("auth.rate_interval")),
		)

		options = append(options, service.WithAuth(authService))
	} else {
		log.Warn("authentication disabled; callers are identified by X-User-ID")
	}

	server := service.NewChatServer(rt.assistant, rt.executor, options...)
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return server.Start(groupCtx)
	})

	for _, loop := range rt.background {
		group.Go(func() error {
			return loop(groupCtx)
		})
	}

	if authService != nil {
		group.Go(func() error {
			return prune(groupCtx, authService, time.Minute)
		})
	}

	return group.Wait()
}

func prune(ctx context.Context, authService *auth.Service, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			authService.Prune()
		}
	}
}

func listenAddr() string {
	host, port := viper.GetString("server.host"), viper.GetInt("server.port")

	if hostFlag != "" {
		host = hostFlag
	}

	if portFlag != 0 {
		port = portFlag
	}

	return fmt.Sprintf("%s:%d", host, port)
}

var longServe = `
Serve the chat API over HTTP.

Examples:
  # Serve on the configured host and port
  taskagent serve

  # Serve on port 8080, keeping tasks in memory
  TASKAGENT_STORES_TASKS=memory taskagent serve --port 8080
`
