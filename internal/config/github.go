package config

import "time"

// GitHubConfig holds GitHub-specific configuration. Either a token or the
// full set of GitHub App credentials must be present.
type GitHubConfig struct {
	Token             string `envconfig:"API_TOKEN" validate:"required_without=AppClientID"`
	AppClientID       string `envconfig:"APP_CLIENT_ID" validate:"required_without=Token"`
	AppPrivateKey     string `envconfig:"APP_PRIVATE_KEY" validate:"required_with=AppClientID"`
	AppInstallationID int64  `envconfig:"APP_INSTALLATION_ID" validate:"required_with=AppClientID"`

	APIBaseURL string `envconfig:"API_URL" default:"https://api.github.com/" validate:"url"`

	RequestTimeout      time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s" validate:"gt=0"`
	SecondaryLimitSleep time.Duration `envconfig:"SECONDARY_LIMIT_SLEEP" default:"1m" validate:"gte=0"`
}

// UsesApp reports whether GitHub App credentials should be used instead of
// a personal token.
func (c GitHubConfig) UsesApp() bool {
	return c.AppClientID != ""
}
