package transport

import "context"

const ParseModeHTML = "HTML"

type ChatTarget struct {
	ChatID   int64
	ThreadID int // telegram forum topic thread id (0 if none)
}

// MessageRef identifies a sent message. For polls it is the handle needed to
// stop the poll later.
type MessageRef struct {
	ChatID    int64
	ThreadID  int
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Poll describes a regular multi-choice poll.
type Poll struct {
	Question  string
	Options   []string
	Anonymous bool
}

// Sink is the outbound side of the chat transport. Every method reports
// transport failures to the caller.
type Sink interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
	SendPhoto(ctx context.Context, to ChatTarget, url string) (MessageRef, error)
	SendPoll(ctx context.Context, to ChatTarget, p Poll) (MessageRef, error)
	StopPoll(ctx context.Context, ref MessageRef) error
}
