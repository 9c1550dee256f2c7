// Package app wires the configured jobs to the transport and runs them
// side by side until shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"housebot/internal/clock"
	"housebot/internal/config"
	"housebot/internal/content"
	"housebot/internal/datestore"
	"housebot/internal/eventbus"
	"housebot/internal/job"
	"housebot/internal/runtime/supervisor"
	"housebot/internal/storage"
	kit "housebot/internal/transport"
	"housebot/internal/transport/telegram"
	logx "housebot/pkg/logx"
)

type App struct {
	settings *config.Settings

	log   logx.Logger
	logs  *logx.Service
	bus   eventbus.Bus
	store storage.Store
	sink  kit.Sink
	chat  kit.ChatTarget
	clk   clock.Clock

	jobs    []job.Job
	watcher *datestore.Watcher

	sup *supervisor.Supervisor
}

// New validates cfg, connects to Telegram, and builds every enabled job for
// chatID. Configuration errors are returned before anything starts.
func New(cfg *config.Config, chatID int64) (*App, error) {
	settings, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	storeCfg, storeEnabled, err := mapStorageConfig(cfg)
	if err != nil {
		return nil, err
	}

	bootLog := logx.NewConsole(cfg.Logging.Level).With(logx.String("comp", "telegram"))
	sink, err := telegram.New(telegram.Config{
		Token:      settings.Token,
		RatePerSec: settings.RatePerSec,
		Timeout:    settings.RequestTimeout,
	}, bootLog)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}

	logs, log := logx.NewService(mapLogConfig(cfg), sink)

	var store storage.Store
	if storeEnabled {
		if store, err = storage.Open(storeCfg, log); err != nil {
			_ = logs.Close()
			return nil, err
		}
		log.Info("audit storage enabled", logx.String("driver", storeCfg.Driver))
	}

	ref, err := clock.NewReference(settings.UTCOffset)
	if err != nil {
		return nil, err
	}
	src := content.NewAPOD(settings.Greeter.APIURL, settings.Greeter.APIKey, settings.Greeter.Timeout)

	a := assemble(settings, chatID, sink, ref, src, log)
	a.logs = logs
	a.store = store
	return a, nil
}

// assemble builds the jobs without touching the network.
func assemble(s *config.Settings, chatID int64, sink kit.Sink, clk clock.Clock, src content.Source, log logx.Logger) *App {
	if log.IsZero() {
		log = logx.Nop()
	}
	a := &App{
		settings: s,
		log:      log.With(logx.String("comp", "app")),
		bus:      eventbus.New(),
		sink:     sink,
		chat:     kit.ChatTarget{ChatID: chatID, ThreadID: s.ThreadID},
		clk:      clk,
	}

	deps := job.Deps{
		Clock: clk,
		Sink:  sink,
		Chat:  a.chat,
		Bus:   a.bus,
		Log:   log.With(logx.String("comp", "job")),
	}

	if s.Greeter.Enabled {
		a.jobs = append(a.jobs, job.NewGreeter(deps, s.Greeter.At, src))
	}
	if s.Dinner.Enabled {
		a.jobs = append(a.jobs, job.NewDinner(deps, job.DinnerTimes{
			OpenAt:        s.Dinner.OpenAt,
			CloseAt:       s.Dinner.CloseAt,
			SundayCloseAt: s.Dinner.SundayCloseAt,
		}))
	}
	files := make([]*datestore.File, 0, len(s.Reminders))
	for _, r := range s.Reminders {
		f := datestore.NewFile(r.File)
		files = append(files, f)
		a.jobs = append(a.jobs, job.NewReminder(deps, r.Name, r.At, f, r.Message))
	}
	if s.WatchDates && len(files) > 0 {
		a.watcher = datestore.NewWatcher(files, log.With(logx.String("comp", "datestore")))
	}
	return a
}

func (a *App) Jobs() []job.Job { return a.jobs }

// Done is closed once the app context is cancelled.
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

func (a *App) Start(ctx context.Context) error {
	if len(a.jobs) == 0 {
		return errors.New("no jobs enabled")
	}
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log.With(logx.String("comp", "supervisor"))))

	if a.store != nil {
		a.startAudit()
	}
	a.startEventLog()

	for _, j := range a.jobs {
		a.sup.GoRestart("job."+j.Name(), func(c context.Context) error {
			j.Run(c)
			return nil
		}, supervisor.WithStopOnCleanExit(false), supervisor.WithRestartBackoff(time.Second, time.Minute))
	}
	if a.watcher != nil {
		a.sup.GoRestart("datestore.watch", a.watcher.Run, supervisor.WithRestartBackoff(time.Second, 5*time.Minute))
	}
	a.startSystemd()

	a.log.Info("app started",
		logx.Int("jobs", len(a.jobs)),
		logx.Int64("chat_id", a.chat.ChatID),
		logx.Bool("watch_dates", a.watcher != nil),
		logx.Bool("audit", a.store != nil),
		logx.Time("now", a.clk.Now()),
	)
	return nil
}

// startEventLog mirrors bus events at debug level.
func (a *App) startEventLog() {
	events, unsub := a.bus.Subscribe(64)
	a.sup.Go0("eventbus.log", func(c context.Context) {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				a.log.Debug("event",
					logx.String("type", string(e.Type)),
					logx.String("job", e.Job),
					logx.String("cycle", e.Cycle),
				)
			}
		}
	})
}

// Stop cancels every job and waits up to the deadline of ctx. A poll that
// is open at this point stays open.
func (a *App) Stop(ctx context.Context) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping")
	notifySystemd(a.log, sdStopping)

	err := a.sup.Stop(ctx)
	if err != nil {
		a.log.Warn("supervisor stop", logx.Err(err))
	}
	for _, st := range a.sup.Snapshot() {
		if st.Panics > 0 || st.Restarts > 0 {
			a.log.Info("goroutine summary",
				logx.String("name", st.Name),
				logx.Int("panics", st.Panics),
				logx.Int("restarts", st.Restarts),
				logx.String("last_err", st.LastErr),
			)
		}
	}
	if a.store != nil {
		if cerr := a.store.Close(); cerr != nil {
			a.log.Warn("storage close", logx.Err(cerr))
		}
	}
	a.log.Info("stopped")
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return err
}
