package config

import (
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/logai/mergerelay/internal/dispatch"
	"github.com/logai/mergerelay/internal/journal"
	"github.com/logai/mergerelay/internal/pipeline"
	"github.com/logai/mergerelay/internal/provider"
	"github.com/logai/mergerelay/internal/server"
	"github.com/maxbolgarin/erro"
)

// Config aggregates all component configurations. It is loaded once at
// startup and passed down read-only; every component validates and defaults
// its own section, so the whole pipeline is testable with an injected
// configuration.
type Config struct {
	Server   server.Config   `yaml:"server"`
	Webhook  provider.Config `yaml:"webhook"`
	Pipeline pipeline.Config `yaml:"pipeline"`
	Workflow dispatch.Config `yaml:"workflow"`
	Journal  journal.Config  `yaml:"journal"`
}

// Load reads configuration from an optional YAML file; environment variables
// apply in both cases and win over the file.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return cfg, erro.Wrap(err, "read config file")
		}
		return cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, erro.Wrap(err, "read config from environment")
	}

	return cfg, nil
}
