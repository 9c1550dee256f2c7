package job

import (
	"context"

	"housebot/internal/clock"
	"housebot/internal/datestore"
	"housebot/internal/eventbus"
	kit "housebot/internal/transport"
	logx "housebot/pkg/logx"
)

// Reminder consumes a date store once a day. Each line dated today fires the
// message once; past and malformed lines are dropped; future lines are kept.
type Reminder struct {
	base
	at      clock.ClockTime
	store   *datestore.File
	message string
}

func NewReminder(d Deps, name string, at clock.ClockTime, store *datestore.File, message string) *Reminder {
	r := &Reminder{base: newBase(name, d), at: at, store: store, message: message}
	r.log = r.log.With(logx.String("file", store.Path()))
	return r
}

func (r *Reminder) Store() *datestore.File { return r.store }

func (r *Reminder) Run(ctx context.Context) { r.loop(ctx, r.at, r.cycle) }

// cycle rewrites the store before sending anything, so a date can never
// fire twice. If the rewrite fails nothing is sent and the file is left as
// it was.
func (r *Reminder) cycle(ctx context.Context, c cycleRun) {
	lines, err := r.store.ReadLines()
	if err != nil {
		c.fail("read date store failed", err)
		return
	}

	today := clock.Today(r.clk)
	res := datestore.Compact(lines, today)
	for _, bad := range res.Invalid {
		c.log.Warn("dropping malformed date line",
			logx.Int("line", bad.Line),
			logx.String("text", bad.Text),
			logx.Err(bad.Err),
		)
	}

	if res.Changed() {
		if err := r.store.Rewrite(res.Kept); err != nil {
			c.fail("rewrite date store failed", err)
			return
		}
		c.log.Debug("date store compacted",
			logx.Int("kept", len(res.Kept)),
			logx.Int("fired", len(res.Fired)),
			logx.Int("expired", len(res.Expired)),
			logx.Int("invalid", len(res.Invalid)),
		)
		c.emit(eventbus.StoreCompacted, r.store.Path(), 0)
	}

	for _, pd := range res.Fired {
		ref, err := r.sink.SendText(ctx, r.chat, r.message, &kit.SendOptions{ParseMode: kit.ParseModeHTML})
		if err != nil {
			c.fail("send reminder failed", err, logx.String("date", pd.String()))
			continue
		}
		c.log.Info("reminder sent", logx.String("date", pd.String()), logx.Int("message_id", ref.MessageID))
		c.emit(eventbus.ReminderFired, pd.String(), ref.MessageID)
	}
	if len(res.Fired) == 0 {
		c.log.Debug("nothing due today", logx.String("today", today.String()))
	}
}
