package job

import (
	"context"
	"sync"
	"testing"
	"time"

	"housebot/internal/clock/clocktest"
	"housebot/internal/content"
	"housebot/internal/eventbus"
	kit "housebot/internal/transport"
	logx "housebot/pkg/logx"
)

var utc2 = time.FixedZone("UTC+2", 2*60*60)

type sent struct {
	Kind  string // text, photo, poll, stop
	Text  string
	Poll  kit.Poll
	Ref   kit.MessageRef
	Parse string
}

// fakeSink records every call. Setting an *Err field makes that method fail.
type fakeSink struct {
	mu    sync.Mutex
	calls []sent
	next  int

	TextErr  error
	PhotoErr error
	PollErr  error
	StopErr  error
}

func (f *fakeSink) record(s sent, err error, to kit.ChatTarget) (kit.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		return kit.MessageRef{}, err
	}
	f.next++
	if s.Kind != "stop" {
		s.Ref = kit.MessageRef{ChatID: to.ChatID, ThreadID: to.ThreadID, MessageID: f.next}
	}
	f.calls = append(f.calls, s)
	return s.Ref, nil
}

func (f *fakeSink) SendText(_ context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	s := sent{Kind: "text", Text: text}
	if opt != nil {
		s.Parse = opt.ParseMode
	}
	return f.record(s, f.TextErr, to)
}

func (f *fakeSink) SendPhoto(_ context.Context, to kit.ChatTarget, url string) (kit.MessageRef, error) {
	return f.record(sent{Kind: "photo", Text: url}, f.PhotoErr, to)
}

func (f *fakeSink) SendPoll(_ context.Context, to kit.ChatTarget, p kit.Poll) (kit.MessageRef, error) {
	return f.record(sent{Kind: "poll", Poll: p}, f.PollErr, to)
}

func (f *fakeSink) StopPoll(_ context.Context, ref kit.MessageRef) error {
	_, err := f.record(sent{Kind: "stop", Ref: ref}, f.StopErr, kit.ChatTarget{})
	return err
}

func (f *fakeSink) Calls() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sent(nil), f.calls...)
}

type fakeSource struct {
	payload content.Payload
	err     error
	calls   int
}

func (s *fakeSource) Fetch(context.Context) (content.Payload, error) {
	s.calls++
	return s.payload, s.err
}

type harness struct {
	clk    *clocktest.Fake
	sink   *fakeSink
	events <-chan eventbus.Event
	deps   Deps
}

func newHarness(t *testing.T, now time.Time) *harness {
	t.Helper()
	bus := eventbus.New()
	events, unsub := bus.Subscribe(64)
	t.Cleanup(unsub)
	h := &harness{clk: clocktest.New(now), sink: &fakeSink{}, events: events}
	h.deps = Deps{
		Clock: h.clk,
		Sink:  h.sink,
		Chat:  kit.ChatTarget{ChatID: -42},
		Bus:   bus,
		Log:   logx.Nop(),
	}
	return h
}

// runUntil runs fn with a context cancelled on the n-th sleep.
func (h *harness) runUntil(n int, fn func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.clk.CancelAfter(n, cancel)
	fn(ctx)
}

func (h *harness) drain() []eventbus.Event {
	var out []eventbus.Event
	for {
		select {
		case e := <-h.events:
			out = append(out, e)
		default:
			return out
		}
	}
}

func types(events []eventbus.Event) []eventbus.Type {
	out := make([]eventbus.Type, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}
