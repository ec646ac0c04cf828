package config

// Config holds the tunable settings for a queue and its logging.
type Config struct {
	// Capacity is the maximum number of tasks allowed to run
	// concurrently. Fixed for the queue's lifetime.
	Capacity int `mapstructure:"capacity" validate:"required,gte=1"`

	// LogLevel controls the structured logger's minimum level.
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Capacity: 4,
		LogLevel: "info",
	}
}
