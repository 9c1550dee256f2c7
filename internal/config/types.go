package config

// Config is the on-disk configuration. Every section is optional; Defaults
// fills in the stock household deployment.
type Config struct {
	Telegram  TelegramConfig   `json:"telegram"`
	Logging   LoggingConfig    `json:"logging"`
	Clock     ClockConfig      `json:"clock"`
	Greeter   GreeterConfig    `json:"greeter"`
	Dinner    DinnerConfig     `json:"dinner"`
	Reminders []ReminderConfig `json:"reminders"`
	DateStore DateStoreConfig  `json:"datestore"`
	Storage   *StorageConfig   `json:"storage,omitempty"`
}

type TelegramConfig struct {
	// Token is usually supplied through TELEGRAM_TOKEN instead.
	Token      string `json:"token,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
	// PollTimeout bounds a single Bot API request (Go duration string).
	PollTimeout string `json:"poll_timeout,omitempty"`
	// ThreadID posts every job message into a forum topic.
	ThreadID int `json:"thread_id,omitempty"`
}

type LoggingConfig struct {
	Level    string          `json:"level"`
	Console  bool            `json:"console"`
	File     LoggingFile     `json:"file"`
	Telegram LoggingTelegram `json:"telegram"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type LoggingTelegram struct {
	Enabled    bool   `json:"enabled"`
	ChatID     int64  `json:"chat_id"`
	ThreadID   int    `json:"thread_id"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

// ClockConfig sets the fixed reference offset. It is not DST-aware.
type ClockConfig struct {
	UTCOffset string `json:"utc_offset"`
}

// Clock times below accept "HH:MM", "HH:MM:SS" or a daily cron expression.

type GreeterConfig struct {
	Enabled bool   `json:"enabled"`
	At      string `json:"at"`
	APIURL  string `json:"api_url"`
	APIKey  string `json:"api_key,omitempty"`
	Timeout string `json:"timeout"`
}

type DinnerConfig struct {
	Enabled       bool   `json:"enabled"`
	OpenAt        string `json:"open_at"`
	CloseAt       string `json:"close_at"`
	SundayCloseAt string `json:"sunday_close_at"`
}

type ReminderConfig struct {
	Name    string `json:"name"`
	File    string `json:"file"`
	Message string `json:"message"`
	At      string `json:"at"`
}

type DateStoreConfig struct {
	// Watch lints date files on change and logs lines that would be dropped.
	Watch bool `json:"watch"`
}

// StorageConfig enables the audit trail.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./state/housebot.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"`
}
