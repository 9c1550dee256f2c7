package job

import (
	"context"

	"housebot/internal/clock"
	"housebot/internal/content"
	"housebot/internal/eventbus"
	kit "housebot/internal/transport"
	logx "housebot/pkg/logx"
	"housebot/pkg/tgui"
)

const apodPage = "https://apod.nasa.gov/apod/astropix.html"

// Greeter posts the picture of the day, then a good-morning message
// describing it.
type Greeter struct {
	base
	at  clock.ClockTime
	src content.Source
}

func NewGreeter(d Deps, at clock.ClockTime, src content.Source) *Greeter {
	return &Greeter{base: newBase("greeter", d), at: at, src: src}
}

func (g *Greeter) Run(ctx context.Context) { g.loop(ctx, g.at, g.cycle) }

// FormatGreeting renders the HTML good-morning message for p.
func FormatGreeting(p content.Payload) string {
	return tgui.Join("\n",
		tgui.Concat(tgui.Raw("☀️ "), tgui.B("Good morning everyone!")),
		tgui.Concat(tgui.Raw("🪐 "), tgui.Bold(tgui.Concat(
			tgui.Raw("Let's wake up to today's "),
			tgui.Link("APOD", apodPage),
			tgui.Raw(": "),
			tgui.I(p.Title),
		))),
		tgui.I(p.Explanation),
	).String()
}

// cycle makes one attempt. Nothing is retried; the next try is tomorrow.
func (g *Greeter) cycle(ctx context.Context, c cycleRun) {
	p, err := g.src.Fetch(ctx)
	if err != nil {
		c.fail("picture of the day unavailable", err)
		return
	}

	if _, err := g.sink.SendPhoto(ctx, g.chat, p.ImageURL); err != nil {
		c.fail("send photo failed", err, logx.String("url", p.ImageURL))
		return
	}
	ref, err := g.sink.SendText(ctx, g.chat, FormatGreeting(p), &kit.SendOptions{ParseMode: kit.ParseModeHTML})
	if err != nil {
		c.fail("send greeting failed", err)
		return
	}
	c.log.Info("greeting sent", logx.String("title", p.Title), logx.Int("message_id", ref.MessageID))
	c.emit(eventbus.NotificationSent, p.Title, ref.MessageID)
}
