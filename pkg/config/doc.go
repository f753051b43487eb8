// Package config loads typed configuration structs from environment
// variables (and an optional .env file) using caarlos0/env field tags.
//
// Each component of the application declares its own Config struct and calls
// config.Load or config.MustLoad during startup:
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
// Parsed configurations are cached per type for the lifetime of the process.
package config
