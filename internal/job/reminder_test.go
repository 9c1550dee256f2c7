package job

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housebot/internal/clock"
	"housebot/internal/datestore"
	"housebot/internal/eventbus"
	kit "housebot/internal/transport"
)

const trashMessage = "♻️🗑️ <b>Tomorrow is trash collection day!</b>\n<b>Don't forget to take it out!</b> 👀"

func storeWith(t *testing.T, body string) *datestore.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trash-dates.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return datestore.NewFile(path)
}

func contents(t *testing.T, f *datestore.File) string {
	t.Helper()
	b, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	return string(b)
}

func TestReminderFiresTodayAndCompacts(t *testing.T) {
	t.Parallel()
	h := newHarness(t, time.Date(2024, 5, 6, 20, 0, 0, 0, utc2))
	store := storeWith(t, "06.05.2024\ngarbage\n01.01.2000\n07.05.2024\n")
	r := NewReminder(h.deps, "trash", clock.MustNew(20, 0, 0), store, trashMessage)

	r.cycle(context.Background(), r.begin())

	calls := h.sink.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, trashMessage, calls[0].Text)
	assert.Equal(t, kit.ParseModeHTML, calls[0].Parse)
	assert.Equal(t, "07.05.2024\n", contents(t, store))

	events := h.drain()
	assert.Equal(t, []eventbus.Type{eventbus.StoreCompacted, eventbus.ReminderFired}, types(events))
	assert.Equal(t, "06.05.2024", events[1].Detail)
	assert.Equal(t, "trash", events[1].Job)
	assert.Zero(t, events[0].MessageID)
	assert.Equal(t, calls[0].Ref.MessageID, events[1].MessageID)
}

func TestReminderOversizedGarbageLineIsDroppedAlone(t *testing.T) {
	t.Parallel()
	h := newHarness(t, time.Date(2024, 5, 6, 20, 0, 0, 0, utc2))
	store := storeWith(t, "06.05.2024\n"+strings.Repeat("x", 70_000)+"\n07.05.2024\n")
	r := NewReminder(h.deps, "trash", clock.MustNew(20, 0, 0), store, trashMessage)

	r.cycle(context.Background(), r.begin())

	assert.Len(t, h.sink.Calls(), 1)
	assert.Equal(t, "07.05.2024\n", contents(t, store))
	assert.Equal(t, []eventbus.Type{eventbus.StoreCompacted, eventbus.ReminderFired}, types(h.drain()))
}

func TestReminderKeepsCRLFLinesVerbatim(t *testing.T) {
	t.Parallel()
	h := newHarness(t, time.Date(2024, 5, 6, 20, 0, 0, 0, utc2))
	store := storeWith(t, "06.05.2024\r\n08.05.2024\r\n07.05.2024\n")
	r := NewReminder(h.deps, "glass", clock.MustNew(20, 0, 0), store, "glass")

	r.cycle(context.Background(), r.begin())

	assert.Len(t, h.sink.Calls(), 1)
	assert.Equal(t, "08.05.2024\r\n07.05.2024\n", contents(t, store))
}

func TestReminderDuplicateLinesFireEach(t *testing.T) {
	t.Parallel()
	h := newHarness(t, time.Date(2024, 5, 6, 20, 0, 0, 0, utc2))
	store := storeWith(t, "06.05.2024\n06.05.2024\n")
	r := NewReminder(h.deps, "trash", clock.MustNew(20, 0, 0), store, trashMessage)

	r.cycle(context.Background(), r.begin())

	assert.Len(t, h.sink.Calls(), 2)
	assert.Equal(t, "", contents(t, store))
}

func TestReminderNothingDueLeavesFileAlone(t *testing.T) {
	t.Parallel()
	h := newHarness(t, time.Date(2024, 5, 6, 20, 0, 0, 0, utc2))
	store := storeWith(t, "07.05.2024\n 08.05.2024")
	r := NewReminder(h.deps, "glass", clock.MustNew(20, 0, 0), store, "glass")

	r.cycle(context.Background(), r.begin())

	assert.Empty(t, h.sink.Calls())
	assert.Equal(t, "07.05.2024\n 08.05.2024", contents(t, store))
	assert.Empty(t, h.drain())
}

func TestReminderSendFailureStillConsumesLine(t *testing.T) {
	t.Parallel()
	h := newHarness(t, time.Date(2024, 5, 6, 20, 0, 0, 0, utc2))
	h.sink.TextErr = errors.New("network down")
	store := storeWith(t, "06.05.2024\n07.05.2024\n")
	r := NewReminder(h.deps, "paper", clock.MustNew(20, 0, 0), store, "paper")

	r.cycle(context.Background(), r.begin())

	assert.Equal(t, "07.05.2024\n", contents(t, store))
	assert.Equal(t, []eventbus.Type{eventbus.StoreCompacted, eventbus.CycleFailed}, types(h.drain()))
}

func TestReminderMissingStoreSkipsCycle(t *testing.T) {
	t.Parallel()
	h := newHarness(t, time.Date(2024, 5, 6, 20, 0, 0, 0, utc2))
	store := datestore.NewFile(filepath.Join(t.TempDir(), "compost-dates.txt"))
	r := NewReminder(h.deps, "compost", clock.MustNew(20, 0, 0), store, "compost")

	r.cycle(context.Background(), r.begin())

	assert.Empty(t, h.sink.Calls())
	assert.Equal(t, []eventbus.Type{eventbus.CycleFailed}, types(h.drain()))
}

func TestReminderRewriteFailureSendsNothing(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	t.Parallel()
	h := newHarness(t, time.Date(2024, 5, 6, 20, 0, 0, 0, utc2))
	store := storeWith(t, "06.05.2024\n")
	dir := filepath.Dir(store.Path())
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })
	r := NewReminder(h.deps, "trash", clock.MustNew(20, 0, 0), store, trashMessage)

	r.cycle(context.Background(), r.begin())

	assert.Empty(t, h.sink.Calls())
	assert.Equal(t, "06.05.2024\n", contents(t, store))
	assert.Equal(t, []eventbus.Type{eventbus.CycleFailed}, types(h.drain()))
}

func TestReminderRunsOnConsecutiveDays(t *testing.T) {
	t.Parallel()
	h := newHarness(t, time.Date(2024, 5, 6, 19, 0, 0, 0, utc2))
	store := storeWith(t, "07.05.2024\n06.05.2024\n09.05.2024\n")
	r := NewReminder(h.deps, "trash", clock.MustNew(20, 0, 0), store, trashMessage)
	assert.Equal(t, "trash", r.Name())
	assert.Same(t, store, r.Store())

	h.runUntil(3, r.Run)

	assert.Equal(t, []time.Duration{time.Hour, 24 * time.Hour}, h.clk.Sleeps())
	assert.Len(t, h.sink.Calls(), 2)
	assert.Equal(t, "09.05.2024\n", contents(t, store))
}
