// internal/workers/meetings/auto-schedule/config.go
package autoschedule

import "time"

type Config struct {
	Timeout      time.Duration
	SlotDuration time.Duration
	LockTTL      time.Duration
	RunIndex     string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      60 * time.Second,
		SlotDuration: 60 * time.Minute,
		LockTTL:      10 * time.Minute,
		RunIndex:     "scheduling-runs",
	}
}
