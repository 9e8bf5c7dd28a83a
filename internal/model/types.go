// Package model defines shared data structures.
package model

// Course is a tracked course and its missed-session count.
type Course struct {
	ID     int64  `json:"id" yaml:"id" toml:"id" validate:"required"`
	Name   string `json:"name" yaml:"name" toml:"name" validate:"required"`
	Missed int    `json:"missed" yaml:"missed" toml:"missed" validate:"gte=0"`
	Cap    int    `json:"cap" yaml:"cap" toml:"cap" validate:"oneof=6 10 12"`
}

// Remaining returns how many more sessions can be missed before the cap.
// It is negative once the cap has been exceeded.
func (c Course) Remaining() int {
	return c.Cap - c.Missed
}

// AtCap reports whether the missed count has reached the cap.
func (c Course) AtCap() bool {
	return c.Missed >= c.Cap
}

// Status labels the course relative to its cap.
func (c Course) Status() string {
	switch {
	case c.Missed > c.Cap:
		return "over cap"
	case c.Missed == c.Cap:
		return "at cap"
	default:
		return "ok"
	}
}

// StorageConfig selects and configures the backing key-value store.
type StorageConfig struct {
	Backend     string
	DBPath      string
	RedisURL    string
	RedisPrefix string
	PostgresURL string
	Key         string
}
