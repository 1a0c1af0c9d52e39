package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wethinkt/go-daybook/internal/journal"
	"github.com/wethinkt/go-daybook/internal/tuilog"
	"github.com/wethinkt/go-daybook/internal/version"
)

// MCPServer exposes the journal as MCP tools.
type MCPServer struct {
	server  *mcp.Server
	journal Journal
}

// NewMCPServer creates an MCP server with the daybook tools registered.
func NewMCPServer(j Journal) *MCPServer {
	tuilog.Log.Info("NewMCPServer: creating MCP server")
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "daybook",
		Version: version.Get(),
	}, nil)

	ms := &MCPServer{server: server, journal: j}
	ms.registerTools()
	return ms
}

func (ms *MCPServer) registerTools() {
	mcp.AddTool(ms.server, &mcp.Tool{
		Name:        "list_days",
		Description: "List the journal days that have entries, newest first",
	}, ms.handleListDays)

	mcp.AddTool(ms.server, &mcp.Tool{
		Name:        "get_day_entries",
		Description: "Get the entries written on a day (YYYY-MM-DD)",
	}, ms.handleGetDayEntries)

	mcp.AddTool(ms.server, &mcp.Tool{
		Name:        "append_entry",
		Description: "Append an entry to a day; the day defaults to today",
	}, ms.handleAppendEntry)
}

type listDaysInput struct{}

type dayInfo struct {
	Day    string `json:"day"`
	Count  int    `json:"count"`
	LastAt string `json:"last_at,omitempty"`
}

type listDaysOutput struct {
	Days []dayInfo `json:"days"`
}

type entryInfo struct {
	ID        string `json:"id"`
	Day       string `json:"day"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

func toEntryInfo(e journal.Entry) entryInfo {
	return entryInfo{
		ID:        e.ID,
		Day:       e.Day,
		Role:      string(e.Role),
		Text:      e.Text,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

type getDayEntriesInput struct {
	Day   string `json:"day" jsonschema:"day to read, formatted YYYY-MM-DD"`
	Limit int    `json:"limit,omitempty" jsonschema:"return only the last N entries"`
}

type getDayEntriesOutput struct {
	Day     string      `json:"day"`
	Entries []entryInfo `json:"entries"`
	Total   int         `json:"total"`
}

type appendEntryInput struct {
	Day  string `json:"day,omitempty" jsonschema:"day to append to, formatted YYYY-MM-DD"`
	Text string `json:"text" jsonschema:"entry text in markdown"`
}

type appendEntryOutput struct {
	Entry entryInfo `json:"entry"`
}

func (ms *MCPServer) handleListDays(ctx context.Context, req *mcp.CallToolRequest, _ listDaysInput) (*mcp.CallToolResult, listDaysOutput, error) {
	days, err := ms.journal.Days(ctx)
	if err != nil {
		return nil, listDaysOutput{}, err
	}
	output := listDaysOutput{Days: make([]dayInfo, 0, len(days))}
	for _, d := range days {
		info := dayInfo{Day: d.Day, Count: d.Count}
		if !d.LastAt.IsZero() {
			info.LastAt = d.LastAt.Format(time.RFC3339)
		}
		output.Days = append(output.Days, info)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: formatJSON(output)}},
	}, output, nil
}

func (ms *MCPServer) handleGetDayEntries(ctx context.Context, req *mcp.CallToolRequest, input getDayEntriesInput) (*mcp.CallToolResult, getDayEntriesOutput, error) {
	entries, err := ms.journal.Entries(ctx, input.Day)
	if err != nil {
		return nil, getDayEntriesOutput{}, err
	}
	total := len(entries)
	if input.Limit > 0 && total > input.Limit {
		entries = entries[total-input.Limit:]
	}
	output := getDayEntriesOutput{Day: input.Day, Entries: make([]entryInfo, 0, len(entries)), Total: total}
	for _, e := range entries {
		output.Entries = append(output.Entries, toEntryInfo(e))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: formatJSON(output)}},
	}, output, nil
}

func (ms *MCPServer) handleAppendEntry(ctx context.Context, req *mcp.CallToolRequest, input appendEntryInput) (*mcp.CallToolResult, appendEntryOutput, error) {
	entry, err := ms.journal.Append(ctx, journal.Entry{Day: input.Day, Text: input.Text})
	if err != nil {
		return nil, appendEntryOutput{}, fmt.Errorf("append entry: %w", err)
	}
	entriesAppendedTotal.Inc()
	output := appendEntryOutput{Entry: toEntryInfo(entry)}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: formatJSON(output)}},
	}, output, nil
}

// RunStdio serves MCP over stdin/stdout until ctx is cancelled.
func (ms *MCPServer) RunStdio(ctx context.Context) error {
	return ms.server.Run(ctx, &mcp.LoggingTransport{Transport: &mcp.StdioTransport{}, Writer: os.Stderr})
}

// RunHTTP serves MCP over SSE on host:port until ctx is cancelled.
func (ms *MCPServer) RunHTTP(ctx context.Context, host string, port int) error {
	handler := mcp.NewSSEHandler(func(req *http.Request) *mcp.Server { return ms.server }, nil)
	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	tuilog.Log.Info("MCPServer: listening", "addr", addr)
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Server returns the underlying MCP server.
func (ms *MCPServer) Server() *mcp.Server { return ms.server }

func formatJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
