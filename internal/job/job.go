// Package job holds the long-lived notification loops. Each job sleeps until
// its next clock time in the reference clock, runs one cycle, and repeats.
// A failed cycle is logged and reported on the event bus; the loop itself
// only ends when its context is cancelled.
package job

import (
	"context"

	"github.com/google/uuid"

	"housebot/internal/clock"
	"housebot/internal/eventbus"
	kit "housebot/internal/transport"
	logx "housebot/pkg/logx"
)

type Job interface {
	Name() string
	// Run blocks until ctx is cancelled.
	Run(ctx context.Context)
}

// Deps are shared by every job.
type Deps struct {
	Clock clock.Clock
	Sink  kit.Sink
	Chat  kit.ChatTarget
	Bus   eventbus.Bus
	Log   logx.Logger
}

type base struct {
	name string
	clk  clock.Clock
	sink kit.Sink
	chat kit.ChatTarget
	bus  eventbus.Bus
	log  logx.Logger
}

func newBase(name string, d Deps) base {
	if d.Bus == nil {
		d.Bus = eventbus.Nop{}
	}
	if d.Log.IsZero() {
		d.Log = logx.Nop()
	}
	return base{
		name: name,
		clk:  d.Clock,
		sink: d.Sink,
		chat: d.Chat,
		bus:  d.Bus,
		log:  d.Log.With(logx.String("job", name)),
	}
}

func (b *base) Name() string { return b.name }

// cycleRun carries the correlation id of one cycle.
type cycleRun struct {
	*base
	id  string
	log logx.Logger
}

func (b *base) begin() cycleRun {
	id := uuid.NewString()[:8]
	return cycleRun{base: b, id: id, log: b.log.With(logx.String("cycle", id))}
}

// emit reports a successful outcome. messageID is 0 when no message was
// involved.
func (c cycleRun) emit(typ eventbus.Type, detail string, messageID int) {
	c.bus.Publish(eventbus.Event{Type: typ, Job: c.name, Cycle: c.id, MessageID: messageID, Detail: detail})
}

func (c cycleRun) fail(msg string, err error, fields ...logx.Field) {
	c.log.Warn(msg, append(fields, logx.Err(err))...)
	e := eventbus.Event{Type: eventbus.CycleFailed, Job: c.name, Cycle: c.id, Detail: msg}
	if err != nil {
		e.Err = err.Error()
	}
	c.bus.Publish(e)
}

// loop sleeps until at and runs cycle, forever. Cycle errors have already
// been logged by the cycle.
func (b *base) loop(ctx context.Context, at clock.ClockTime, cycle func(ctx context.Context, c cycleRun)) {
	b.log.Info("job started", logx.String("at", at.String()))
	for {
		if err := clock.SleepUntil(ctx, b.clk, at); err != nil {
			b.log.Info("job stopped")
			return
		}
		cycle(ctx, b.begin())
	}
}
