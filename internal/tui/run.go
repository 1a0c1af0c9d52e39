package tui

import (
	"context"
	"os"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/wethinkt/go-daybook/internal/config"
	"github.com/wethinkt/go-daybook/internal/feed"
	"github.com/wethinkt/go-daybook/internal/journal"
	"github.com/wethinkt/go-daybook/internal/responder"
	"github.com/wethinkt/go-daybook/internal/scroll"
	"github.com/wethinkt/go-daybook/internal/stream"
	"github.com/wethinkt/go-daybook/internal/tui/theme"
	"github.com/wethinkt/go-daybook/internal/tuilog"
)

func termSizeOpts() []tea.ProgramOption {
	var opts []tea.ProgramOption
	for _, fd := range []int{int(os.Stdout.Fd()), int(os.Stdin.Fd()), int(os.Stderr.Fd())} {
		if term.IsTerminal(fd) {
			w, h, err := term.GetSize(fd)
			if err == nil && w > 0 && h > 0 {
				opts = append(opts, tea.WithWindowSize(w, h))
				break
			}
		}
	}
	return opts
}

// Options configures Run.
type Options struct {
	Config config.Config

	// Day opens a day directly instead of the day picker.
	Day string
	// Entry deep-links an entry of Day.
	Entry string
	// Session names the saved scroll positions to use. Positions are kept
	// per session the way a browser keeps them per tab; an empty session
	// starts fresh.
	Session string
}

// Run opens the journal and runs the TUI until the reader quits.
func Run(opts Options) error {
	cfg := opts.Config
	path, err := cfg.JournalPath()
	if err != nil {
		return err
	}
	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer j.Close()

	ReloadStyles(cfg.Theme)

	session := opts.Session
	if session == "" {
		session = uuid.NewString()
	}

	shell := NewShell(ShellOptions{
		Journal:   j,
		Responder: newResponder(cfg.Responder),
		Store:     scroll.NewStore(positionBackend(session), "daybook"),
		Renderer:  feed.NewRenderer(theme.Current().GlamourStyle()),
		Scroll:    ScrollOptions(cfg.Scroll),
		Day:       opts.Day,
		Target:    opts.Entry,
	})

	p := tea.NewProgram(shell, termSizeOpts()...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		err := config.Watch(ctx, func(c config.Config) {
			p.Send(ConfigReloadedMsg{Config: c})
		})
		if err != nil && ctx.Err() == nil {
			tuilog.Log.Warn("Config watch stopped", "error", err)
		}
	}()

	_, err = p.Run()
	shell.Close()
	return err
}

// Close detaches the coordinator and stops forwarding bus signals.
func (s *Shell) Close() {
	s.bridge.Stop()
	s.env.Coord.Detach()
}

func newResponder(cfg config.ResponderConfig) stream.Responder {
	if cfg.URL != "" {
		tuilog.Log.Info("Responder: remote", "url", cfg.URL)
		return stream.NewClient(cfg.URL)
	}
	return responder.New(cfg.CharsPerSecond, responder.DefaultMaxStreams)
}

// positionBackend stores the session's positions in a file, or in memory
// when the sessions directory is unusable.
func positionBackend(session string) scroll.Backend {
	dir, err := config.SessionsDir()
	if err == nil {
		err = os.MkdirAll(dir, 0755)
	}
	if err != nil {
		tuilog.Log.Warn("Positions: using memory", "error", err)
		return scroll.NewMemoryBackend()
	}
	return scroll.NewFileBackend(filepath.Join(dir, session+".json"))
}
