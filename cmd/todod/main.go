package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"github.com/tgienger/todo/internal/api"
	"github.com/tgienger/todo/internal/config"
	"github.com/tgienger/todo/internal/db"
	"github.com/tgienger/todo/internal/logging"
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
	fs := flag.NewFlagSet("todod", flag.ContinueOnError)
	showVersion := fs.BoolP("version", "v", false, "print version and exit")
	cfg, err := config.Load(fs, args, env)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintf(stdout, "todod %s (commit: %s, built: %s)\n", version, commit, date)
		return nil
	}

	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	logger, err := logging.New(out, cfg.LogOptions("todod"))
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path := cfg.DBPath
	if path == "" {
		if path, err = db.DefaultPath(); err != nil {
			return fmt.Errorf("locate database: %w", err)
		}
	}
	store, err := db.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer store.Close()
	logger.Info("database ready", "path", path)

	srv, err := api.New(api.Config{
		Store:    store,
		Logger:   logger,
		Location: loc,
		Version:  version,
	})
	if err != nil {
		return err
	}

	if cfg.ConfigFile != "" {
		logger.Debug("config loaded", "file", cfg.ConfigFile)
	}
	return srv.ListenAndServe(ctx, cfg.ListenAddr)
}
