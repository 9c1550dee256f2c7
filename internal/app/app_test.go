package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housebot/internal/clock"
	"housebot/internal/config"
	"housebot/internal/content"
	"housebot/internal/eventbus"
	"housebot/internal/storage"
	kit "housebot/internal/transport"
	logx "housebot/pkg/logx"
)

type nopSink struct{}

func (nopSink) SendText(context.Context, kit.ChatTarget, string, *kit.SendOptions) (kit.MessageRef, error) {
	return kit.MessageRef{}, nil
}
func (nopSink) SendPhoto(context.Context, kit.ChatTarget, string) (kit.MessageRef, error) {
	return kit.MessageRef{}, nil
}
func (nopSink) SendPoll(context.Context, kit.ChatTarget, kit.Poll) (kit.MessageRef, error) {
	return kit.MessageRef{}, nil
}
func (nopSink) StopPoll(context.Context, kit.MessageRef) error { return nil }

type nopSource struct{}

func (nopSource) Fetch(context.Context) (content.Payload, error) { return content.Payload{}, nil }

func settingsFor(t *testing.T, mutate func(c *config.Config)) *config.Settings {
	t.Helper()
	cfg := config.Defaults()
	cfg.Telegram.Token = "test"
	if mutate != nil {
		mutate(cfg)
	}
	s, err := cfg.Resolve()
	require.NoError(t, err)
	return s
}

func referenceClock(t *testing.T) clock.Clock {
	t.Helper()
	ref, err := clock.NewReference(clock.DefaultOffset)
	require.NoError(t, err)
	return ref
}

func TestAssembleStockJobs(t *testing.T) {
	t.Parallel()
	a := assemble(settingsFor(t, nil), -1001, nopSink{}, referenceClock(t), nopSource{}, logx.Nop())

	var names []string
	for _, j := range a.Jobs() {
		names = append(names, j.Name())
	}
	assert.Equal(t, []string{"greeter", "dinner", "trash", "compost", "glass", "paper"}, names)
	assert.NotNil(t, a.watcher)
	assert.Equal(t, int64(-1001), a.chat.ChatID)
}

func TestAssembleHonoursToggles(t *testing.T) {
	t.Parallel()
	s := settingsFor(t, func(c *config.Config) {
		c.Greeter.Enabled = false
		c.Dinner.Enabled = false
		c.Reminders = []config.ReminderConfig{}
		c.DateStore.Watch = true
	})
	a := assemble(s, 1, nopSink{}, referenceClock(t), nopSource{}, logx.Nop())
	assert.Empty(t, a.Jobs())
	assert.Nil(t, a.watcher)
	assert.Error(t, a.Start(context.Background()))
}

func TestStartRecordsAuditAndStops(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := settingsFor(t, func(c *config.Config) {
		c.Reminders = []config.ReminderConfig{{
			Name:    "trash",
			File:    filepath.Join(dir, "trash-dates.txt"),
			Message: "trash",
		}}
	})
	a := assemble(s, 7, nopSink{}, referenceClock(t), nopSource{}, logx.Nop())
	st, err := storage.Open(storage.Config{Driver: "file", Path: filepath.Join(dir, "state.db")}, logx.Nop())
	require.NoError(t, err)
	a.store = st

	require.NoError(t, a.Start(context.Background()))
	a.bus.Publish(eventbus.Event{Type: eventbus.ReminderFired, Job: "trash", Cycle: "abc", MessageID: 42, Detail: "06.05.2024"})

	var got []storage.AuditEntry
	require.Eventually(t, func() bool {
		got, err = st.RecentAudit(context.Background(), 10)
		return err == nil && len(got) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "reminder.fired", got[0].Kind)
	assert.Equal(t, int64(7), got[0].ChatID)
	assert.Equal(t, 42, got[0].MessageID)
	assert.Equal(t, "06.05.2024", got[0].Detail)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.Stop(ctx))
	select {
	case <-a.Done():
	default:
		t.Fatalf("Done should be closed after Stop")
	}
}

func TestMapStorageConfig(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		in      *config.StorageConfig
		enabled bool
		wantErr bool
	}{
		{name: "absent"},
		{name: "none", in: &config.StorageConfig{Driver: "none"}},
		{name: "file", in: &config.StorageConfig{Driver: "file", Path: "./s"}, enabled: true},
		{name: "sqlite", in: &config.StorageConfig{Driver: "SQLite", Path: "./s.db", BusyTimeout: "3s"}, enabled: true},
		{name: "sqlite no path", in: &config.StorageConfig{Driver: "sqlite"}, wantErr: true},
		{name: "bad busy", in: &config.StorageConfig{Driver: "sqlite", Path: "x", BusyTimeout: "soon"}, wantErr: true},
		{name: "unknown", in: &config.StorageConfig{Driver: "redis", Path: "x"}, wantErr: true},
	}
	for _, tc := range cases {
		cfg := config.Defaults()
		cfg.Storage = tc.in
		sc, enabled, err := mapStorageConfig(cfg)
		if tc.wantErr {
			assert.Error(t, err, tc.name)
			continue
		}
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.enabled, enabled, tc.name)
		if tc.name == "sqlite" {
			assert.Equal(t, "sqlite", sc.Driver)
			assert.Equal(t, 3*time.Second, sc.BusyTimeout)
		}
	}
}

func TestAuditEntryFromEvent(t *testing.T) {
	t.Parallel()
	at := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	e := auditEntry(eventbus.Event{Type: eventbus.CycleFailed, Time: at, Job: "greeter", Cycle: "c1", MessageID: 3, Detail: "send photo failed", Err: "boom"}, 5)
	assert.Equal(t, storage.AuditEntry{At: at, Job: "greeter", Cycle: "c1", Kind: "cycle.failed", ChatID: 5, MessageID: 3, Detail: "send photo failed", Error: "boom"}, e)
}
