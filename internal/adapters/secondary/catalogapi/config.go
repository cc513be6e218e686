package catalogapi

import "time"

type Config struct {
	BaseURL        string        `envconfig:"BASE_URL" default:"http://127.0.0.1:8000/api"`
	Timeout        time.Duration `envconfig:"TIMEOUT" default:"5s"` // на одну попытку
	RetryAttempts  int           `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryBaseDelay time.Duration `envconfig:"RETRY_BASE_DELAY" default:"200ms"`
	RetryMaxDelay  time.Duration `envconfig:"RETRY_MAX_DELAY" default:"5s"`
	SkipSSL        bool          `envconfig:"SKIP_SSL" default:"false"`
}
