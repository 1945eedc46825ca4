// SPDX-License-Identifier: GPL-3.0-only

package billing

import (
	"fmt"
	"time"

	"formfill-server/commons"
)

// Config carries the vendor shared secret and notification settings. It is
// loaded once at startup and injected into the service, never read from the
// environment per request.
type Config struct {
	KeySecret      string
	WebhookTimeout time.Duration
}

func LoadConfig() (Config, error) {
	secret := commons.GetEnv("PAYMENT_KEY_SECRET")
	if secret == "" {
		return Config{}, fmt.Errorf("%w: PAYMENT_KEY_SECRET is not set", ErrConfiguration)
	}

	timeout := 5 * time.Second
	if v := commons.GetEnv("PAYMENT_WEBHOOK_TIMEOUT"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: invalid PAYMENT_WEBHOOK_TIMEOUT %q", ErrConfiguration, v)
		}
		timeout = parsed
	}

	return Config{
		KeySecret:      secret,
		WebhookTimeout: timeout,
	}, nil
}
