package job

import (
	"context"
	"math/rand/v2"
	"time"

	"housebot/internal/clock"
	"housebot/internal/eventbus"
	kit "housebot/internal/transport"
	logx "housebot/pkg/logx"
)

var dinnerEmojis = []string{"🍔", "🍕", "🌮", "🌯", "🥙", "🥘", "🍝", "🫕", "🥗", "🍲", "🍛", "🍜"}

// AttendancePoll asks who joins dinner tonight.
func AttendancePoll(emoji string) kit.Poll {
	return kit.Poll{
		Question: "Who's joining for dinner tonight? " + emoji + "\nLet our cook know how many people to expect! 👩‍🍳",
		Options: []string{
			"I'll be there! 🍽",
			"I'll bring a friend! 🍽🍽",
			"Not tonight...",
		},
	}
}

// SchedulePoll asks who cooks on which weekday this week.
func SchedulePoll() kit.Poll {
	return kit.Poll{
		Question: "🗓 Let's define this week's dinner schedule!\nPick the day which fits you the best.",
		Options: []string{
			"I'll cook on Monday! 🌻",
			"I'll cook on Tuesday! 🦦",
			"I'll cook on Wednesday! 🌈",
			"I'll cook on Thursday! 🐙",
			"I'd rather not cook this week. 👀",
		},
	}
}

// Dinner opens a poll each morning and closes it later the same day.
// Monday to Thursday it asks for attendance, on Sunday it asks for the
// week's cooking schedule, and on Friday and Saturday it does nothing.
type Dinner struct {
	base
	openAt        clock.ClockTime
	closeAt       clock.ClockTime
	sundayCloseAt clock.ClockTime
	// pick returns an index in [0, n).
	pick func(n int) int
}

type DinnerTimes struct {
	OpenAt        clock.ClockTime
	CloseAt       clock.ClockTime
	SundayCloseAt clock.ClockTime
}

func NewDinner(d Deps, t DinnerTimes) *Dinner {
	return &Dinner{
		base:          newBase("dinner", d),
		openAt:        t.OpenAt,
		closeAt:       t.CloseAt,
		sundayCloseAt: t.SundayCloseAt,
		pick:          rand.IntN,
	}
}

func (d *Dinner) Run(ctx context.Context) { d.loop(ctx, d.openAt, d.cycle) }

// pollFor returns the poll to open on wd and when to stop it.
func (d *Dinner) pollFor(wd time.Weekday) (kit.Poll, clock.ClockTime, bool) {
	switch wd {
	case time.Monday, time.Tuesday, time.Wednesday, time.Thursday:
		return AttendancePoll(dinnerEmojis[d.pick(len(dinnerEmojis))]), d.closeAt, true
	case time.Sunday:
		return SchedulePoll(), d.sundayCloseAt, true
	default:
		return kit.Poll{}, clock.ClockTime{}, false
	}
}

func (d *Dinner) cycle(ctx context.Context, c cycleRun) {
	wd := d.clk.Now().Weekday()
	poll, closeAt, ok := d.pollFor(wd)
	if !ok {
		c.log.Debug("no dinner poll today", logx.String("weekday", wd.String()))
		return
	}

	ref, err := d.sink.SendPoll(ctx, d.chat, poll)
	if err != nil {
		c.fail("open dinner poll failed", err, logx.String("weekday", wd.String()))
		return
	}
	c.log.Info("dinner poll opened", logx.Int("message_id", ref.MessageID), logx.String("closes_at", closeAt.String()))
	c.emit(eventbus.PollOpened, wd.String(), ref.MessageID)

	if err := clock.SleepUntil(ctx, d.clk, closeAt); err != nil {
		c.log.Warn("shutting down with dinner poll still open", logx.Int("message_id", ref.MessageID))
		return
	}
	if err := d.sink.StopPoll(ctx, ref); err != nil {
		c.fail("stop dinner poll failed", err, logx.Int("message_id", ref.MessageID))
		return
	}
	c.log.Info("dinner poll stopped", logx.Int("message_id", ref.MessageID))
	c.emit(eventbus.PollStopped, wd.String(), ref.MessageID)
}
