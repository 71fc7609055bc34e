package repository

import "github.com/okian/cinerank/pkg/metrics"

type boardConfig struct {
	name    string
	metrics *metrics.Manager
}

// Option applies a configuration option to a Board.
type Option func(*boardConfig)

// WithName labels the board in metrics.
func WithName(name string) Option {
	return func(c *boardConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// WithMetrics reports the board size to m after every insert.
func WithMetrics(m *metrics.Manager) Option {
	return func(c *boardConfig) {
		c.metrics = m
	}
}
