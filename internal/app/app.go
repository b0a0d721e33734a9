package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/five82/clusterboard/internal/api"
	"github.com/five82/clusterboard/internal/archive"
	"github.com/five82/clusterboard/internal/config"
	"github.com/five82/clusterboard/internal/logging"
	"github.com/five82/clusterboard/internal/notify"
	"github.com/five82/clusterboard/internal/prefs"
	"github.com/five82/clusterboard/internal/state"
	"github.com/five82/clusterboard/internal/submit"
	"github.com/five82/clusterboard/internal/ui"
)

// Options configure the clusterboard application. Zero values fall back to
// the config file and then to built-in defaults.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/clusterboard/prefs.toml
	APIBase    string
	UserID     string
	PollEvery  time.Duration
	LogLevel   string
	// LogWriter, when set, receives log records instead of the log file.
	LogWriter io.Writer
}

// Env is the wired set of collaborators shared by the TUI and the CLI.
type Env struct {
	Config    config.Config
	Prefs     prefs.Prefs
	PrefsPath string
	Logger    *slog.Logger
	Client    *api.Client
	Store     *state.Store
	Queue     *notify.Queue
	Submit    *submit.Controller

	closers []io.Closer
}

// Bootstrap loads configuration and builds every collaborator without
// touching the network.
func Bootstrap(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.APIBase); v != "" {
		cfg.APIBase = v
	}
	if v := strings.TrimSpace(opts.UserID); v != "" {
		cfg.UserID = v
	}
	if opts.PollEvery != 0 {
		cfg.PollInterval = config.ClampPoll(opts.PollEvery)
	}

	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		return nil, err
	}

	env := &Env{Config: cfg, PrefsPath: opts.PrefsPath}
	if opts.LogWriter != nil {
		env.Logger = logging.NewWriter(opts.LogWriter, logging.Options{Level: level})
	} else {
		logger, closer, err := logging.New(logging.Options{Path: cfg.LogFile, Level: level})
		if err != nil {
			return nil, err
		}
		env.Logger = logger
		env.closers = append(env.closers, closer)
	}

	p, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		env.Logger.Warn("load prefs failed, using defaults", "path", opts.PrefsPath, "error", err)
	}
	env.Prefs = p

	env.Client, err = api.NewClient(cfg.APIBase)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}

	env.Store = state.NewStore(env.Client, env.Logger)
	env.Queue = notify.New()
	env.Submit = submit.New(submit.Config{
		Backend:   env.Client,
		Refresher: env.Store,
		Notifier:  env.Queue,
		UserID:    cfg.UserID,
		Logger:    env.Logger,
	})
	return env, nil
}

// Archive opens the local export archive under the configured directory.
func (e *Env) Archive() (*archive.Archive, error) {
	return archive.Open(e.Config.ExportDir, archive.WithLogger(e.Logger))
}

// Close stops toast timers and closes the log file.
func (e *Env) Close() {
	if e.Queue != nil {
		e.Queue.Close()
	}
	for _, c := range e.closers {
		_ = c.Close()
	}
	e.closers = nil
}

// Run boots the TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	env, err := Bootstrap(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	env.Logger.Info("starting clusterboard",
		"api_base", env.Client.BaseURL(),
		"poll_interval", env.Config.PollInterval,
	)

	go startupProbe(ctx, env)

	StartPoller(ctx, env.Store, env.Queue, env.Config.PollInterval, env.Logger)

	arch, err := env.Archive()
	if err != nil {
		env.Logger.Warn("export archive unavailable", "error", err)
	}

	return ui.Run(ui.Options{
		Context:   ctx,
		Client:    env.Client,
		Store:     env.Store,
		Queue:     env.Queue,
		Submit:    env.Submit,
		Archive:   arch,
		Theme:     env.Prefs.Theme,
		PrefsPath: env.PrefsPath,
		Logger:    env.Logger,
	})
}

// startupProbe checks backend health, then performs the initial load. The UI
// is already running, so both outcomes surface as toasts.
func startupProbe(ctx context.Context, env *Env) {
	health, err := Probe(ctx, env.Client, env.Logger, ProbeOptions{})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		env.Logger.Warn("backend unreachable", "api_base", env.Client.BaseURL(), "error", err)
		env.Queue.Enqueue(fmt.Sprintf("Backend unreachable at %s", env.Client.BaseURL()), notify.SeverityWarning)
	} else {
		env.Logger.Info("backend healthy", "status", health.Status, "model", health.Model)
	}
	if err := env.Store.Refresh(ctx); err != nil && ctx.Err() == nil {
		env.Logger.Warn("initial cluster load failed", "error", err)
		env.Queue.Enqueue(submit.MsgLoadError, notify.SeverityError)
	}
}
