package config

type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Auth      AuthConfig      `json:"auth"`
	Logging   LoggingConfig   `json:"logging"`
	Scheduler SchedulerConfig `json:"scheduler"`
	LLM       LLMConfig       `json:"llm"`
	Messaging MessagingConfig `json:"messaging"`
}

type ServerConfig struct {
	Addr string `json:"addr,omitempty"`

	// CORSOrigins lists allowed origins for browser clients.
	// Empty means allow all (development default).
	CORSOrigins []string `json:"cors_origins,omitempty"`

	// ReadTimeout/WriteTimeout are Go duration strings (e.g. "15s").
	ReadTimeout  string `json:"read_timeout,omitempty"`
	WriteTimeout string `json:"write_timeout,omitempty"`
}

type DatabaseConfig struct {
	Path string `json:"path,omitempty"`

	// BusyTimeout is a Go duration string applied as the sqlite busy_timeout pragma.
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

type AuthConfig struct {
	// Secret signs access tokens. Overridable via AUTH_SECRET.
	Secret string `json:"secret,omitempty"`

	// TokenTTL is a Go duration string (default "30m").
	TokenTTL string `json:"token_ttl,omitempty"`
}

type LoggingConfig struct {
	Level   string            `json:"level,omitempty"`
	Console bool              `json:"console"`
	File    LoggingFileConfig `json:"file,omitempty"`
}

type LoggingFileConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// SchedulerConfig controls the communication job engine.
//
// Defaults (when fields are omitted/zero):
//   - history_size: 200
//   - task_timeout: "45s"
type SchedulerConfig struct {
	HistorySize int `json:"history_size,omitempty"`

	// TaskTimeout bounds a single dispatched job (compose + send).
	TaskTimeout string `json:"task_timeout,omitempty"`
}

type LLMConfig struct {
	// BaseURL of an OpenAI-compatible API. Token overridable via LLM_TOKEN.
	BaseURL string `json:"base_url,omitempty"`
	Token   string `json:"token,omitempty"`
	Model   string `json:"model,omitempty"`

	// Timeout is a Go duration string for one completion call.
	Timeout string `json:"timeout,omitempty"`
}

type MessagingConfig struct {
	// RatePerSec throttles outbound sends across all channels.
	RatePerSec int `json:"rate_per_sec,omitempty"`

	Email    EmailConfig    `json:"email,omitempty"`
	WhatsApp WhatsAppConfig `json:"whatsapp,omitempty"`
	Telegram TelegramConfig `json:"telegram,omitempty"`
}

// EmailConfig configures the SendGrid channel.
// An empty APIKey puts the channel in simulate mode (logged, not sent).
type EmailConfig struct {
	APIKey    string `json:"api_key,omitempty"`
	FromEmail string `json:"from_email,omitempty"`
}

// WhatsAppConfig configures the Twilio channel.
// An empty AccountSID puts the channel in simulate mode.
type WhatsAppConfig struct {
	AccountSID string `json:"account_sid,omitempty"`
	AuthToken  string `json:"auth_token,omitempty"`
	From       string `json:"from,omitempty"` // e.g. "whatsapp:+14155238886"
}

// TelegramConfig configures the Telegram channel.
// An empty Token puts the channel in simulate mode.
type TelegramConfig struct {
	Token string `json:"token,omitempty"`
}
