package tasks

import "time"

// Config configures the durable queue behind index retries and reconciliation.
type Config struct {
	Path            string        // SQLite file, kept apart from the relational store
	Workers         int           // concurrent task workers
	ReleaseAfter    time.Duration // a claimed task is handed out again after this long
	CleanupInterval time.Duration // how often finished tasks are purged
}

func DefaultConfig() Config {
	return Config{
		Path:            "./rentals-tasks.db",
		Workers:         2,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: time.Hour,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Path == "" {
		c.Path = d.Path
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.ReleaseAfter <= 0 {
		c.ReleaseAfter = d.ReleaseAfter
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = d.CleanupInterval
	}
	return c
}
