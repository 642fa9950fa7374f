package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/configs/config.yml"
	configPathEnv     = "CONFIG_PATH"
)

type AppConfig struct {
	Logger   LoggerConfig
	Server   ServerConfig
	Api      ApiConfig
	Cache    CacheConfig
	Provider []Provider
	Layers   []Layer
}

// ResolvePath возвращает путь к конфигу из CONFIG_PATH или путь по умолчанию.
func ResolvePath() string {
	if p := os.Getenv(configPathEnv); p != "" {
		return p
	}
	return DefaultConfigPath
}

func LoadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}

	var interm AppConfigIntermediary
	if err := yaml.Unmarshal(data, &interm); err != nil {
		return nil, fmt.Errorf("yaml unmarshal error: %w", err)
	}

	interm.applyDefaults()

	if err := interm.Validate(); err != nil {
		return nil, fmt.Errorf("config validate error: %w", err)
	}

	return &AppConfig{
		Logger:   interm.Logger,
		Server:   interm.Server,
		Api:      interm.Api,
		Cache:    interm.Cache,
		Provider: interm.Providers,
		Layers:   interm.Layers,
	}, nil
}
