// Package config loads typed configuration from environment variables.
//
// Load parses a struct with github.com/caarlos0/env/v11 field tags, reading
// the working directory's .env file first through github.com/joho/godotenv,
// and validates the result with go-playground/validator `validate` tags.
// Each configuration type is parsed once; later calls receive a cached copy.
//
//	type HTTPConfig struct {
//		Addr            string        `env:"HTTP_ADDR" envDefault:":8080" validate:"required"`
//		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
//	}
//
//	var cfg HTTPConfig
//	config.MustLoad(&cfg)
//
// LoadEnv reads additional .env files and ResetCache clears cached values,
// which tests use to reload a type after changing the environment.
package config
