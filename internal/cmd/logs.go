package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-daybook/internal/config"
	"github.com/wethinkt/go-daybook/internal/tuilog"
)

var logsCmd = &cobra.Command{
	Use:   "logs [file]",
	Short: "Show the debug log",
	Long: `Print the last lines of the daybook debug log.

Without a file argument the log of the running 'daybook serve' is shown,
or the default log (~/.daybook/logs/daybook.log) when no server is
running. Pass -f to keep printing new lines as they are written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("lines")
		follow, _ := cmd.Flags().GetBool("follow")

		path := ""
		if len(args) == 1 {
			path = args[0]
		} else if inst := config.FindInstanceByType(config.InstanceServer); inst != nil && inst.LogPath != "" {
			path = inst.LogPath
		} else {
			p, err := defaultLogPath()
			if err != nil {
				return err
			}
			path = p
		}
		return tailLogFile(cmd.Context(), os.Stdout, path, n, follow)
	},
}

// defaultLogPath returns the log file used when --log is not given.
func defaultLogPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs", "daybook.log"), nil
}

// initLog opens logPath, or the default log when it is empty, and returns
// the function that closes it.
func initLog() (func(), error) {
	path := logPath
	if path == "" {
		p, err := defaultLogPath()
		if err != nil {
			return func() {}, nil
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return func() {}, nil
		}
		path = p
	}
	if err := tuilog.Init(path); err != nil {
		return nil, err
	}
	return func() { tuilog.Log.Close() }, nil
}

// tailLogFile prints the last n lines from path, optionally following for new content.
func tailLogFile(ctx context.Context, w io.Writer, path string, n int, follow bool) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("log file not found: %s", path)
		}
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	lines, err := readLastLines(f, n)
	if err != nil {
		return err
	}

	for _, line := range lines {
		fmt.Fprint(w, line)
	}

	if !follow {
		return nil
	}

	// Follow mode: poll for new content
	if ctx == nil {
		ctx = context.Background()
	}
	buf := make([]byte, 4096)
	for {
		nr, err := f.Read(buf)
		if nr > 0 {
			w.Write(buf[:nr])
		}
		if err != nil && err != io.EOF {
			return err
		}
		if nr == 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(200 * time.Millisecond):
			}
		}
	}
}

// readLastLines reads the last n lines from a file, returning them as strings
// (each including its trailing newline if present).
func readLastLines(f *os.File, n int) ([]string, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size == 0 || n <= 0 {
		_, err := f.Seek(0, io.SeekEnd)
		return nil, err
	}

	// Read entire file (log files are typically small)
	buf := make([]byte, size)
	if _, err := f.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, err
	}

	// Split into lines, preserving newlines
	var lines []string
	start := 0
	for i := 0; i < len(buf); i++ {
		if buf[i] == '\n' {
			lines = append(lines, string(buf[start:i+1]))
			start = i + 1
		}
	}
	// Handle last line without trailing newline
	if start < len(buf) {
		lines = append(lines, string(buf[start:])+"\n")
	}

	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	// Seek to end for follow mode
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return nil, err
	}

	return lines, nil
}
