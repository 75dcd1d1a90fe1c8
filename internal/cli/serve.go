package cli

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

	"github.com/samruddhi/pipecut/internal/api"
	"github.com/samruddhi/pipecut/internal/health"
	"github.com/samruddhi/pipecut/internal/logger"
	"github.com/samruddhi/pipecut/internal/services"
	"github.com/samruddhi/pipecut/internal/store"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web page and REST API server",
	Long: `Start the HTTP server with:
- the cutting planner page at /
- the JSON API under /api/v1 (leftovers, plans, health)
- prometheus metrics at /metrics`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config and $PORT)")
	serveCmd.Flags().StringVarP(&serveHost, "host", "H", "", "Host to bind to (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host := cfg.Server.Host
	if serveHost != "" {
		host = serveHost
	}
	port := cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s🚀 Starting Samruddhi server%s\n", HeaderStyle, Reset)
	fmt.Fprintf(out, "%s============================%s\n", DimStyle, Reset)
	fmt.Fprintln(out, FormatLabelValue("Backend:", selector.Target().String()))
	fmt.Fprintln(out, FormatLabelValue("Host:", host))
	fmt.Fprintln(out, FormatLabelValue("Port:", fmt.Sprintf("%d", port)))
	fmt.Fprintln(out)

	database, err := openDatabase(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	fmt.Fprintln(out, FormatSuccess("✅ Database connection successful!"))

	leftovers := store.NewLeftoverStore(database)
	planner := services.NewPlannerService(leftovers)

	monitor := health.NewMonitor(database)
	if cfg.Health.Schedule != "" {
		if err := monitor.Start(ctx, cfg.Health.Schedule); err != nil {
			return err
		}
		defer monitor.Stop()
	}

	server := api.NewServer(planner, services.NewStatsService(leftovers), monitor, database.Target(), api.Options{
		StaticDir: cfg.Server.StaticDir,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
	})
	httpServer := server.NewHTTPServer(fmt.Sprintf("%s:%d", host, port))

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	fmt.Fprintln(out, "🌐 Server is running!")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "📚 Available Endpoints:")
	fmt.Fprintln(out, "    GET    /                          - Cutting planner page")
	fmt.Fprintln(out, "    GET    /api/v1/health             - Backend health")
	fmt.Fprintln(out, "    GET    /api/v1/stats              - Inventory statistics")
	fmt.Fprintln(out, "    GET    /api/v1/leftovers          - List leftovers")
	fmt.Fprintln(out, "    POST   /api/v1/leftovers          - Add leftover")
	fmt.Fprintln(out, "    DELETE /api/v1/leftovers/:id      - Remove leftover")
	fmt.Fprintln(out, "    DELETE /api/v1/leftovers          - Clear inventory")
	fmt.Fprintln(out, "    POST   /api/v1/plans/single       - Plan one piece length")
	fmt.Fprintln(out, "    POST   /api/v1/plans/multi        - Plan several piece lengths")
	fmt.Fprintln(out, "    GET    /metrics                   - Prometheus metrics")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Press Ctrl+C to stop the server")

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	fmt.Fprintln(out, "\n🛑 Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
		return err
	}
	return nil
}
