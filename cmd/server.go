package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/shopdesk/internal/audit"
	"github.com/ziadkadry99/shopdesk/internal/dashboard"
	"github.com/ziadkadry99/shopdesk/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP and WebSocket answer server",
	Long:  `Serves POST /api/answer, the /api/backend controls, GET /healthz, the /ws/chat WebSocket and a browser chat page at /. With audit.path set it also serves the question log under /api/audit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}
		defer a.Close()

		port := a.cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = serverPort
		}

		srv := server.New(server.Config{
			Port:     port,
			AllowAll: a.cfg.Server.AllowAllOrigins,
		}, a.assistant)
		registerExtraRoutes(srv, a)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "shopdesk server %s starting on port %d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Products: %s\n", a.cfg.Corpora.Products)
		fmt.Fprintf(os.Stderr, "  Marketing: %s\n", a.cfg.Corpora.Marketing)
		fmt.Fprintf(os.Stderr, "  %s\n", a.assistant.BackendStatus())

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// registerExtraRoutes wires the browser chat page and, when the question log
// is on, its query endpoints.
func registerExtraRoutes(srv *server.Server, a *app) {
	r := srv.Router()

	var stats dashboard.StatsSource
	if a.questions != nil {
		audit.RegisterRoutes(r, a.questions)
		stats = a.questions
	}
	dashboard.New(a.assistant, stats).RegisterRoutes(r)
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "port to listen on (overrides server.port)")
	rootCmd.AddCommand(serverCmd)
}
