package telegram

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	kit "housebot/internal/transport"
	logx "housebot/pkg/logx"
)

type Config struct {
	Token string
	// RatePerSec caps outgoing API calls. Telegram allows roughly one message
	// per second per chat.
	RatePerSec int
	// Timeout bounds a single Bot API request.
	Timeout time.Duration
}

// Sink sends messages, photos and polls through the Telegram Bot API.
// It never receives updates.
type Sink struct {
	cfg     Config
	log     logx.Logger
	bot     *tele.Bot
	limiter *rate.Limiter
}

var _ kit.Sink = (*Sink)(nil)

func New(cfg Config, log logx.Logger) (*Sink, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Client: &http.Client{Timeout: cfg.Timeout},
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	log.Info("telegram bot ready", logx.String("username", b.Me.Username))
	return &Sink{
		cfg:     cfg,
		log:     log,
		bot:     b,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
	}, nil
}

func (s *Sink) wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.limiter.Wait(ctx)
}

func sendOptions(to kit.ChatTarget, opt *kit.SendOptions) *tele.SendOptions {
	so := &tele.SendOptions{ThreadID: to.ThreadID}
	if opt != nil {
		so.ParseMode = opt.ParseMode
		so.DisableWebPagePreview = opt.DisablePreview
	}
	return so
}

func ref(to kit.ChatTarget, m *tele.Message) kit.MessageRef {
	r := kit.MessageRef{ChatID: to.ChatID, ThreadID: to.ThreadID}
	if m != nil {
		r.MessageID = m.ID
	}
	return r
}

// SendText sends text, split into several messages when it exceeds
// Telegram's length limit. The returned ref is the first message.
func (s *Sink) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	parseMode := ""
	if opt != nil {
		parseMode = opt.ParseMode
	}
	chunks := splitText(text, textLimit, parseMode)

	chat := &tele.Chat{ID: to.ChatID}
	var first kit.MessageRef
	for i, chunk := range chunks {
		if err := s.wait(ctx); err != nil {
			return first, err
		}
		msg, err := s.bot.Send(chat, chunk, sendOptions(to, opt))
		if err != nil {
			return first, err
		}
		if i == 0 {
			first = ref(to, msg)
		}
	}
	return first, nil
}

func (s *Sink) SendPhoto(ctx context.Context, to kit.ChatTarget, url string) (kit.MessageRef, error) {
	if strings.TrimSpace(url) == "" {
		return kit.MessageRef{}, errors.New("photo url is empty")
	}
	if err := s.wait(ctx); err != nil {
		return kit.MessageRef{}, err
	}
	photo := &tele.Photo{File: tele.FromURL(url)}
	msg, err := s.bot.Send(&tele.Chat{ID: to.ChatID}, photo, sendOptions(to, nil))
	if err != nil {
		return kit.MessageRef{}, err
	}
	return ref(to, msg), nil
}

func (s *Sink) SendPoll(ctx context.Context, to kit.ChatTarget, p kit.Poll) (kit.MessageRef, error) {
	if len(p.Options) < 2 {
		return kit.MessageRef{}, errors.New("poll needs at least two options")
	}
	if err := s.wait(ctx); err != nil {
		return kit.MessageRef{}, err
	}
	poll := &tele.Poll{
		Type:      tele.PollRegular,
		Question:  p.Question,
		Anonymous: p.Anonymous,
	}
	poll.AddOptions(p.Options...)
	msg, err := s.bot.Send(&tele.Chat{ID: to.ChatID}, poll, sendOptions(to, nil))
	if err != nil {
		return kit.MessageRef{}, err
	}
	return ref(to, msg), nil
}

func (s *Sink) StopPoll(ctx context.Context, r kit.MessageRef) error {
	if r.MessageID == 0 {
		return errors.New("stop poll: empty message ref")
	}
	if err := s.wait(ctx); err != nil {
		return err
	}
	_, err := s.bot.StopPoll(tele.StoredMessage{
		MessageID: strconv.Itoa(r.MessageID),
		ChatID:    r.ChatID,
	})
	return err
}
