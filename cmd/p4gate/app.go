package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jingkaihe/p4gate/internal/errx"
	"github.com/jingkaihe/p4gate/pkg/engine"
	"github.com/jingkaihe/p4gate/pkg/logging"
	"github.com/jingkaihe/p4gate/pkg/settings"
)

// app is an opened engine with the resources it owns.
type app struct {
	*engine.Engine
	store   *settings.SQLiteStore
	emitter *logging.Emitter
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	storePath, err := cfg.GetStorePath()
	if err != nil {
		return nil, err
	}
	store, err := settings.OpenSQLiteStore(storePath)
	if err != nil {
		return nil, errx.Wrap(ErrOpenStore, err)
	}

	var sinks []logging.Sink
	if cfg.EventsPath != "" {
		w, err := logging.NewJSONLWriter(cfg.EventsPath)
		if err != nil {
			_ = store.Close()
			return nil, errx.Wrap(ErrOpenEvents, err)
		}
		sinks = append(sinks, w)
	}
	emitter := logging.NewEmitter("", sinks...)

	e, err := engine.New(engine.Options{
		Store:     store,
		Confirmer: newTerminalConfirmer(os.Stdin, os.Stderr, cfg.AssumeYes),
		Out:       os.Stdout,
		Err:       os.Stderr,
		Emitter:   emitter,
		Binary:    cfg.GetBinary(),
		Timeout:   cfg.GetCommandTimeout(),
		Logger:    slog.Default(),
	})
	if err != nil {
		_ = emitter.Close()
		_ = store.Close()
		return nil, err
	}
	for _, w := range e.Warnings() {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", w)
	}
	return &app{Engine: e, store: store, emitter: emitter}, nil
}

func (a *app) Close() error {
	emitErr := a.emitter.Close()
	if err := a.store.Close(); err != nil {
		return err
	}
	return emitErr
}
