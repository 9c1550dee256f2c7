package config

import "housebot/internal/content"

const (
	EnvToken      = "TELEGRAM_TOKEN"
	EnvAPODAPIKey = "APOD_API_KEY"
)

// Defaults returns the configuration of the stock deployment: greeting at
// 07:00, dinner polls from 08:00, and the four waste-collection reminders
// at 20:00.
func Defaults() *Config {
	return &Config{
		Telegram: TelegramConfig{RatePerSec: 1, PollTimeout: "30s"},
		Logging:  LoggingConfig{Level: "info", Console: true},
		Clock:    ClockConfig{UTCOffset: "2h"},
		Greeter: GreeterConfig{
			Enabled: true,
			At:      "07:00:00",
			APIURL:  content.DefaultAPIURL,
			Timeout: "30s",
		},
		Dinner: DinnerConfig{
			Enabled:       true,
			OpenAt:        "08:00:00",
			CloseAt:       "16:00:00",
			SundayCloseAt: "00:00:00",
		},
		Reminders: DefaultReminders(),
		DateStore: DateStoreConfig{Watch: true},
	}
}

func DefaultReminders() []ReminderConfig {
	return []ReminderConfig{
		reminder("trash", "♻️🗑️", "trash collection"),
		reminder("compost", "♻️🍂", "compost collection"),
		reminder("glass", "♻️🫙", "glass collection"),
		reminder("paper", "♻️🗞️", "paper collection"),
	}
}

func reminder(kind, icon, what string) ReminderConfig {
	return ReminderConfig{
		Name:    kind,
		File:    "dates/" + kind + "-dates.txt",
		Message: icon + " <b>Tomorrow is " + what + " day!</b>\n<b>Don't forget to take it out!</b> 👀",
		At:      "20:00:00",
	}
}
