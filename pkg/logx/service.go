package logx

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	kit "housebot/internal/transport"
)

type Config struct {
	Level    string
	Console  bool
	File     FileConfig
	Telegram TelegramConfig
}

type FileConfig struct {
	Enabled bool
	Path    string
}

// TelegramConfig mirrors log lines at or above MinLevel to a chat. It is
// inactive while ChatID is zero.
type TelegramConfig struct {
	Enabled    bool
	ChatID     int64
	ThreadID   int
	MinLevel   string
	RatePerSec int
}

// Service owns the configured sinks. Close flushes the Telegram queue
// and closes the log file.
type Service struct {
	root Logger
	file *os.File

	sender   kit.Sink
	to       kit.ChatTarget
	minLevel zerolog.Level
	limiter  *rate.Limiter
	queue    chan string
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewService builds the root logger from cfg. sender may be nil, in which
// case the Telegram sink stays off.
func NewService(cfg Config, sender kit.Sink) (*Service, Logger) {
	setGlobals()
	s := &Service{sender: sender}

	writers := make([]io.Writer, 0, 3)
	if cfg.Console {
		writers = append(writers, newConsoleWriter(os.Stdout))
	}
	if cfg.File.Enabled {
		path := strings.TrimSpace(cfg.File.Path)
		if path == "" {
			path = "./housebot.log"
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logx: failed opening log file %q: %v\n", path, err)
		} else {
			s.file = f
			writers = append(writers, zerolog.SyncWriter(f))
		}
	}
	if cfg.Telegram.Enabled && sender != nil {
		if cfg.Telegram.ChatID == 0 {
			fmt.Fprintln(os.Stderr, "logx: telegram logging enabled but logging.telegram.chat_id is not set")
		} else {
			s.startTelegram(cfg.Telegram)
			writers = append(writers, &telegramWriter{svc: s})
		}
	}
	if len(writers) == 0 {
		writers = append(writers, newConsoleWriter(os.Stdout))
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(cfg.Level, zerolog.InfoLevel)).
		With().Timestamp().Logger()
	s.root = Logger{base: zl, hasBase: true}
	return s, s.root
}

func (s *Service) Logger() Logger { return s.root }

func (s *Service) startTelegram(cfg TelegramConfig) {
	rps := max(1, cfg.RatePerSec)
	s.to = kit.ChatTarget{ChatID: cfg.ChatID, ThreadID: cfg.ThreadID}
	s.minLevel = ParseLevel(cfg.MinLevel, zerolog.WarnLevel)
	s.limiter = rate.NewLimiter(rate.Limit(rps), rps)
	s.queue = make(chan string, 256)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.telegramWorker(ctx)
	}()
}

func (s *Service) Close() error {
	if s.cancel != nil {
		s.cancel()
		s.wg.Wait()
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

func (s *Service) telegramWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.queue:
			_, _ = s.sender.SendText(ctx, s.to, msg, &kit.SendOptions{DisablePreview: true})
		}
	}
}

// enqueue never blocks the logging call site; overflow is dropped.
func (s *Service) enqueue(msg string) {
	select {
	case s.queue <- msg:
	default:
	}
}
