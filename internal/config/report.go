package config

import "time"

// RenderConfig configures the MJML rendering API
type RenderConfig struct {
	AppID     string `envconfig:"APP_ID" validate:"required"`
	SecretKey string `envconfig:"SECRET_KEY" validate:"required"`
	APIURL    string `envconfig:"API_URL" default:"https://api.mjml.io/v1" validate:"url"`
	CacheSize int    `envconfig:"CACHE_SIZE" default:"64" validate:"gt=0"`
}

// MailConfig configures the Mailgun transport
type MailConfig struct {
	APIKey         string  `envconfig:"API_KEY" validate:"required"`
	Domain         string  `envconfig:"DOMAIN" validate:"required"`
	APIURL         string  `envconfig:"API_URL" default:"https://api.mailgun.net/v3" validate:"url"`
	SendsPerSecond float64 `envconfig:"SENDS_PER_SECOND" default:"1" validate:"gt=0"`
}

// ReportConfig holds scheduling and addressing for daily reports
type ReportConfig struct {
	From     string        `envconfig:"FROM" validate:"required"`
	To       []string      `envconfig:"TO" validate:"required,min=1,dive,required"`
	Interval time.Duration `envconfig:"INTERVAL" default:"10m" validate:"gt=0"`
	Lookback time.Duration `envconfig:"LOOKBACK" default:"24h" validate:"gt=0"`
	Workers  int           `envconfig:"WORKERS" default:"4" validate:"gt=0"`
	// DailyGather disables the midnight stats job of the serve command when false.
	DailyGather bool `envconfig:"DAILY_GATHER" default:"true"`
}
