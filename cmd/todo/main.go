package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"
	"github.com/tgienger/todo/internal/client"
	"github.com/tgienger/todo/internal/config"
	"github.com/tgienger/todo/internal/logging"
	"github.com/tgienger/todo/internal/ui"
	"github.com/tgienger/todo/internal/ui/views"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(os.Args[1:], os.LookupEnv, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, env config.Env, stdout io.Writer) error {
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	showVersion := fs.BoolP("version", "v", false, "print version and exit")
	cfg, err := config.Load(fs, args, env)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintf(stdout, "todo %s (commit: %s, built: %s)\n", version, commit, date)
		return nil
	}

	// The terminal belongs to the UI, so logs only go to a file
	out, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer out.Close()

	logger, err := logging.New(out, cfg.LogOptions("todo"))
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	c, err := client.New(cfg.APIURL, client.WithTimeout(cfg.Timeout()), client.WithLogger(logger))
	if err != nil {
		return err
	}

	statePath := cfg.StateFile
	if statePath == "" {
		if statePath, err = config.DefaultStatePath(); err != nil {
			return fmt.Errorf("locate state file: %w", err)
		}
	}
	state, err := config.LoadState(statePath)
	if err != nil {
		// A broken state file only loses the restored view
		logger.Warn("ignoring state file", "path", statePath, "err", err)
		state = config.State{}
	}

	app := ui.NewApp(ui.Options{
		Deps:      views.Deps{Backend: c, Location: loc},
		State:     state,
		SaveState: func(s config.State) error { return config.SaveState(statePath, s) },
		Logger:    logger,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}
