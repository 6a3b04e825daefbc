// Package main is a demonstration host for the keyline editor: a
// small REPL that reads lines, echoes them, and exposes a few colon
// commands for poking at modes and history.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/dshills/keyline/internal/app"
	"github.com/dshills/keyline/internal/config"
	"github.com/dshills/keyline/internal/engine"
	"github.com/dshills/keyline/internal/term"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.Mode != "" {
		cfg.Mode = config.EditMode(opts.Mode)
	}
	if opts.HistoryPath != "" {
		cfg.HistoryPath = opts.HistoryPath
	}

	log := app.Nop()
	if opts.LogPath != "" {
		f, err := os.OpenFile(opts.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot open log file: %v\n", err)
			return 1
		}
		defer f.Close()
		log = app.NewLogger(f, app.ParseLogLevel(opts.LogLevel))
	}

	t := term.NewVT100(os.Stdin, os.Stdout)
	if err := t.MakeRaw(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot enter raw mode: %v\n", err)
		return 1
	}
	defer t.Restore()

	ed := engine.New(t,
		engine.WithSettings(cfg),
		engine.WithLogger(log),
		engine.WithPrompt(opts.Prompt),
	)
	defer ed.Close()

	// Config changes land here and are applied between lines, on the
	// goroutine that owns the engine.
	var pendMu sync.Mutex
	var pending *config.Settings
	if opts.ConfigPath != "" {
		w, werr := config.NewWatcher(opts.ConfigPath, func(s config.Settings) {
			pendMu.Lock()
			pending = &s
			pendMu.Unlock()
		})
		if werr == nil {
			defer w.Close()
		} else {
			log.Warn("config watch: %v", werr)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	for {
		pendMu.Lock()
		if pending != nil {
			if err := ed.SetMode(pending.Mode); err != nil {
				log.Warn("config reload: %v", err)
			}
			if err := ed.ApplyBindings(pending.Bindings); err != nil {
				log.Warn("config reload bindings: %v", err)
			}
			pending = nil
		}
		pendMu.Unlock()

		res, err := ed.ReadLine(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\r\n", err)
			return 1
		}

		switch r := res.(type) {
		case engine.Accepted:
			if done := handleLine(ed, t, r.Line); done {
				return 0
			}
		case engine.Cancelled:
			return 0
		case engine.Exiting:
			return 0
		}
	}
}

// handleLine runs one accepted line. Colon commands control the host;
// anything else is echoed back. Returns true to exit.
func handleLine(ed *engine.Engine, t *term.VT100, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case ":quit", ":q":
		return true

	case ":mode":
		if len(fields) < 2 {
			say(t, "mode: %s", ed.Mode())
			return false
		}
		if err := ed.SetMode(config.EditMode(fields[1])); err != nil {
			say(t, "%v", err)
		}

	case ":history":
		items := ed.History().Items()
		start := 0
		if len(items) > 10 {
			start = len(items) - 10
		}
		for i := start; i < len(items); i++ {
			say(t, "%4d  %s", i+1, items[i].Text)
		}

	case ":help":
		say(t, "commands: :quit :mode [emacs|vi] :history :help")

	default:
		say(t, "you typed: %s", line)
	}
	return false
}

// say writes a host message. The terminal is raw, so lines need an
// explicit carriage return.
func say(t *term.VT100, format string, args ...any) {
	t.WriteString(fmt.Sprintf(format, args...) + "\r\n")
	t.Flush()
}

type options struct {
	ConfigPath  string
	Mode        string
	HistoryPath string
	Prompt      string
	LogPath     string
	LogLevel    string
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to settings file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to settings file (shorthand)")
	flag.StringVar(&opts.Mode, "mode", "", "Edit mode (emacs or vi)")
	flag.StringVar(&opts.HistoryPath, "history", "", "History file path")
	flag.StringVar(&opts.Prompt, "prompt", "> ", "Prompt text")
	flag.StringVar(&opts.LogPath, "log", "", "Diagnostic log file (silent if empty)")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Keyline - terminal line editor demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: keyline [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("Keyline %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.Mode {
	case "", "emacs", "vi":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid mode %q (must be emacs or vi)\n", opts.Mode)
		os.Exit(1)
	}

	return opts
}
