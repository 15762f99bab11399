package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kyleking/lazyrope/internal/app"
	"github.com/kyleking/lazyrope/internal/archive"
	"github.com/kyleking/lazyrope/internal/config"
	"github.com/kyleking/lazyrope/internal/ingest"
	"github.com/kyleking/lazyrope/internal/logging"
	"github.com/kyleking/lazyrope/internal/persist"
	"github.com/kyleking/lazyrope/internal/record"
	"github.com/kyleking/lazyrope/internal/serialport"
	"github.com/kyleking/lazyrope/internal/store"
	"github.com/kyleking/lazyrope/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath, err := config.DefaultPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	log, closeLog, err := logging.New(cfg.Log.Level, cfg.LogPath())
	if err != nil {
		return err
	}
	defer closeLog()

	ui.InitTheme(ui.Themes[cfg.UI.Theme])

	var (
		sinks    []ingest.Sink
		warnings []string
		opts     = app.Options{
			Baud:      cfg.Serial.BaudRate,
			BaudRates: cfg.BaudChoices(),
			Log:       log,
		}
	)

	session, err := persist.NewSession(cfg.Data.Dir, time.Now())
	if err != nil {
		log.Error("session file disabled", zap.Error(err))
		warnings = append(warnings, fmt.Sprintf("Data will not be saved this session: %v", err))
	} else {
		sinks = append(sinks, session)
		opts.SessionFile = session.Path()
	}

	if cfg.Data.Archive {
		csvPath := ""
		if session != nil {
			csvPath = session.Path()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		arc, err := archive.Open(ctx, filepath.Join(cfg.Data.Dir, archive.DefaultFile), csvPath, log)
		cancel()
		if err != nil {
			log.Error("archive disabled", zap.Error(err))
			warnings = append(warnings, fmt.Sprintf("Archive disabled: %v", err))
		} else {
			defer arc.Close()
			sinks = append(sinks, arc)
			opts.ArchiveID = arc.SessionID()
			opts.Archive = arc
		}
	}
	opts.Warnings = warnings

	st := store.New()
	manager := ingest.NewManager(
		serialport.NewOpener(cfg.Serial.ReadTimeout),
		st,
		record.Parser{Strict: cfg.Parse.Strict},
		sinks,
		ingest.Options{
			IdlePoll:     cfg.Serial.IdlePoll,
			ErrorBackoff: cfg.Serial.ErrorBackoff,
			StopTimeout:  cfg.Serial.StopTimeout,
		},
		log,
	)
	// The UI disconnects on quit; this covers a connect still in flight.
	defer func() {
		if err := manager.Disconnect(); err != nil {
			log.Warn("disconnect on exit", zap.Error(err))
		}
	}()

	log.Info("starting", zap.String("config", cfgPath), zap.String("data_dir", cfg.Data.Dir))

	p := tea.NewProgram(app.New(manager, st, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
