package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wethinkt/go-daybook/internal/config"
	"github.com/wethinkt/go-daybook/internal/i18n"
	"github.com/wethinkt/go-daybook/internal/journal"
	"github.com/wethinkt/go-daybook/internal/responder"
	"github.com/wethinkt/go-daybook/internal/server"
	"github.com/wethinkt/go-daybook/internal/tuilog"
)

// Serve command flags
var (
	servePort    int
	serveHost    string
	serveMCPPort int
)

// Serve mcp subcommand flags
var (
	mcpStdio bool
	mcpPort  int
	mcpHost  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the journal over HTTP",
	Long: `Start a local HTTP server for the journal.

The server provides:
  - REST API for days and entries (/api/v1)
  - Streamed replies over a websocket (/ws/respond)
  - Prometheus metrics (/metrics)

A TUI configured with responder.url = "ws://host:port/ws/respond" gets its
replies from this server.

Use 'daybook serve mcp' for the MCP (Model Context Protocol) server.

Examples:
  daybook serve                    # Start on the configured port (8787)
  daybook serve -p 9000            # Start on a custom port
  daybook serve --mcp-port 9001    # Also serve MCP over SSE`,
	RunE: runServeHTTP,
}

var serveMcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Expose the journal to MCP clients.

Tools: list_days, get_day_entries, append_entry.

Examples:
  daybook serve mcp                # stdio transport
  daybook serve mcp --port 9001    # SSE over HTTP`,
	RunE: runServeMCP,
}

func init() {
	serveCmd.Flags().IntVar(&serveMCPPort, "mcp-port", 0, "also serve MCP over SSE on this port")
}

// signalContext returns a context cancelled on the first interrupt.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt)
	go func() {
		<-ctx.Done()
		if parent.Err() == nil {
			tuilog.Log.Info("Received interrupt signal, shutting down")
		}
	}()
	return ctx, cancel
}

// registerInstance records this process so 'daybook logs' can find its
// log, and returns the function that removes the record.
func registerInstance(t config.InstanceType, host string, port int) func() {
	inst := config.Instance{
		Type:      t,
		PID:       os.Getpid(),
		Host:      host,
		Port:      port,
		LogPath:   tuilog.Log.Path(),
		StartedAt: time.Now(),
	}
	if err := config.RegisterInstance(inst); err != nil {
		tuilog.Log.Warn("Instance: register failed", "error", err)
		return func() {}
	}
	return func() {
		if err := config.UnregisterInstance(inst.PID); err != nil {
			tuilog.Log.Warn("Instance: unregister failed", "error", err)
		}
	}
}

func openJournal(cfg config.Config) (*journal.Store, error) {
	path, err := cfg.JournalPath()
	if err != nil {
		return nil, err
	}
	return journal.Open(path)
}

func runServeHTTP(cmd *cobra.Command, args []string) error {
	closeLog, err := initLog()
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	srvConfig := server.Config{Host: cfg.Server.Host, Port: cfg.Server.Port}
	if serveHost != "" {
		srvConfig.Host = serveHost
	}
	if servePort > 0 {
		srvConfig.Port = servePort
	}

	j, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	tuilog.Log.Info("Starting HTTP server", "port", srvConfig.Port, "host", srvConfig.Host)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	unregister := registerInstance(config.InstanceServer, srvConfig.Host, srvConfig.Port)
	defer unregister()

	engine := responder.New(cfg.Responder.CharsPerSecond, responder.DefaultMaxStreams)
	srv := server.NewHTTPServer(j, engine, srvConfig)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx)
	})
	if serveMCPPort > 0 {
		g.Go(func() error {
			return server.NewMCPServer(j).RunHTTP(ctx, srvConfig.Host, serveMCPPort)
		})
	}
	g.Go(func() error {
		// Keep messages in the configured language while serving.
		err := config.Watch(ctx, func(c config.Config) {
			i18n.Init(i18n.ResolveLocale(c.Language))
			tuilog.Log.Info("Config reloaded", "language", c.Language)
		})
		if err != nil && ctx.Err() == nil {
			tuilog.Log.Warn("Config watch stopped", "error", err)
		}
		return nil
	})

	err = g.Wait()
	fmt.Fprintln(os.Stderr, i18n.T("cmd.serve.stopped", "Server stopped."))
	return err
}

func runServeMCP(cmd *cobra.Command, args []string) error {
	// Stdout carries the protocol on stdio, so only log to a file.
	if logPath != "" {
		if err := tuilog.Init(logPath); err != nil {
			return err
		}
		defer tuilog.Log.Close()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	j, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	// Determine transport mode: stdio (default) or HTTP
	useStdio := mcpStdio || mcpPort == 0
	tuilog.Log.Info("Starting MCP server", "stdio", useStdio, "port", mcpPort)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	port := mcpPort
	if useStdio {
		port = 0
	}
	unregister := registerInstance(config.InstanceMCP, mcpHost, port)
	defer unregister()

	mcpServer := server.NewMCPServer(j)
	if useStdio {
		fmt.Fprintln(os.Stderr, i18n.T("cmd.serve.mcpStdio", "Starting MCP server on stdio..."))
		err := mcpServer.RunStdio(ctx)
		tuilog.Log.Info("MCP server exited", "error", err)
		// EOF on stdin is normal termination (client disconnected), not an error
		if err != nil && (errors.Is(err, io.EOF) || strings.Contains(err.Error(), "EOF")) {
			return nil
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	tuilog.Log.Info("Running MCP server on HTTP", "host", mcpHost, "port", mcpPort)
	return mcpServer.RunHTTP(ctx, mcpHost, mcpPort)
}
