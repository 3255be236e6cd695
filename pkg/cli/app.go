package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/harrisonrobin/duewatch/pkg/auth"
	"github.com/harrisonrobin/duewatch/pkg/config"
	"github.com/harrisonrobin/duewatch/pkg/google"
	"github.com/harrisonrobin/duewatch/pkg/index"
	"github.com/harrisonrobin/duewatch/pkg/kv"
	"github.com/harrisonrobin/duewatch/pkg/logger"
	"github.com/harrisonrobin/duewatch/pkg/notify"
	"github.com/harrisonrobin/duewatch/pkg/tasklist"
	"github.com/harrisonrobin/duewatch/pkg/todoapi"
	"github.com/sirupsen/logrus"
)

const sqliteFile = "duewatch.db"

// app is everything one command invocation needs, built from config.
type app struct {
	cfg     *config.Config
	log     *logrus.Logger
	store   kv.Store
	closers []io.Closer
	alert   *notify.Alert
	ctrl    *tasklist.Controller
}

func loadConfig(opts *rootOptions) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if opts.user != "" {
		cfg.UserID = opts.user
	}
	if opts.api != "" {
		cfg.APIURL = opts.api
	}

	log := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if opts.verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return cfg, log, nil
}

func openStore(cfg *config.Config) (kv.Store, io.Closer, error) {
	if cfg.LedgerBackend == config.BackendSQLite {
		s, err := kv.OpenSQLite(filepath.Join(cfg.StateDir, sqliteFile))
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
	return kv.NewFileStore(cfg.StateDir), nil, nil
}

// newApp wires the controller. Alerts go to out; hint is printed under each one.
func newApp(ctx context.Context, opts *rootOptions, out io.Writer, hint string) (*app, error) {
	cfg, log, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.UserID == "" {
		return nil, todoapi.ErrUserRequired
	}

	store, closer, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, store: store}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	a.alert = notify.NewAlert(out, time.Local).WithHint(hint)
	presenters := notify.Multi{a.alert}
	if cfg.MirrorCalendar {
		mirror, err := newMirror(ctx, cfg, store, log)
		if err != nil {
			log.WithError(err).Warn("calendar mirror disabled")
		} else {
			presenters = append(presenters, mirror)
		}
	}

	a.ctrl = tasklist.New(tasklist.Options{
		UserID:    cfg.UserID,
		API:       todoapi.NewClient(cfg.APIURL, nil, cfg.RequestTimeout, log),
		Store:     store,
		Presenter: presenters,
		Interval:  cfg.CheckInterval,
		Log:       log,
	})
	return a, nil
}

func newMirror(ctx context.Context, cfg *config.Config, store kv.Store, log logrus.FieldLogger) (*google.OverdueMirror, error) {
	idx, err := index.Load(store, cfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event index: %w", err)
	}
	flow := &auth.Flow{Dir: cfg.StateDir, Log: log}
	client, err := google.NewClient(ctx, flow, cfg.Calendar, idx)
	if err != nil {
		return nil, err
	}
	return google.NewOverdueMirror(client, nil, log), nil
}

func (a *app) Close() {
	a.ctrl.Close()
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.WithError(err).Warn("failed to close store")
		}
	}
}
