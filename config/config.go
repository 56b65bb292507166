package config

import (
	"github.com/kelseyhightower/envconfig"
)

// App is the environment-driven configuration for the server.
type App struct {
	Port      string `envconfig:"PORT" default:"8080"`
	AWSRegion string `envconfig:"AWS_REGION" default:"us-east-1"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`

	// Feed paging
	FeedPageSize int `envconfig:"FEED_PAGE_SIZE" default:"10"`
	// Days before a pass may be re-offered to its swiper. Product policy,
	// not load-bearing for correctness.
	ReofferWindowDays int `envconfig:"REOFFER_WINDOW_DAYS" default:"15"`

	// Notifier broker; empty URL falls back to log-only notifications.
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"talentlink.events"`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
