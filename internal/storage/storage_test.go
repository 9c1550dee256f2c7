package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	logx "housebot/pkg/logx"
)

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"", "none", " NONE "} {
		st, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil || st != nil {
			t.Fatalf("Open(%q) = %v, %v; want nil, nil", driver, st, err)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "postgres", Path: "x"}, logx.Nop()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"file", "sqlite"} {
		if _, err := Open(Config{Driver: driver}, logx.Nop()); err == nil {
			t.Fatalf("Open(%q) without path: expected error", driver)
		}
	}
}

func testAuditRoundTrip(t *testing.T, driver, path string) {
	t.Helper()
	ctx := context.Background()
	st, err := Open(Config{Driver: driver, Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	base := time.Date(2024, 5, 6, 18, 0, 0, 0, time.UTC)
	entries := []AuditEntry{
		{At: base, Job: "trash", Cycle: "a1", Kind: "reminder.fired", ChatID: -1, MessageID: 10, Detail: "06.05.2024"},
		{At: base.Add(time.Minute), Job: "dinner", Kind: "poll.opened", ChatID: -1, MessageID: 11},
		{At: base.Add(2 * time.Minute), Job: "greeter", Kind: "cycle.failed", Error: "HTTP 503"},
	}
	for _, e := range entries {
		if err := st.AppendAudit(ctx, e); err != nil {
			t.Fatalf("AppendAudit: %v", err)
		}
	}

	got, err := st.RecentAudit(ctx, 2)
	if err != nil {
		t.Fatalf("RecentAudit: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Job != "greeter" || got[0].Error != "HTTP 503" || !got[0].At.Equal(entries[2].At) {
		t.Fatalf("newest = %+v", got[0])
	}
	if got[1].Job != "dinner" || got[1].MessageID != 11 {
		t.Fatalf("second = %+v", got[1])
	}

	all, err := st.RecentAudit(ctx, 0)
	if err != nil {
		t.Fatalf("RecentAudit(0): %v", err)
	}
	if len(all) != 3 || all[2].Detail != "06.05.2024" || all[2].Cycle != "a1" {
		t.Fatalf("all = %+v", all)
	}
}

func TestFileStoreAudit(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testAuditRoundTrip(t, "file", filepath.Join(dir, "state", "housebot.db"))
	if _, err := os.Stat(filepath.Join(dir, "state", "housebot.audit.jsonl")); err != nil {
		t.Fatalf("audit file: %v", err)
	}
}

func TestSQLiteStoreAudit(t *testing.T) {
	t.Parallel()
	testAuditRoundTrip(t, "sqlite", filepath.Join(t.TempDir(), "housebot.db"))
}

func TestFileStoreClosed(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{Driver: "file", Path: filepath.Join(t.TempDir(), "a.db")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := st.AppendAudit(context.Background(), AuditEntry{Job: "x", Kind: "y"}); err != ErrClosed {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}
