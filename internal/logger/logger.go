package logger

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// Init строит zap логгер для указанного режима и делает его глобальным (zap.S(), zap.L()).
func Init(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch mode {
	case "", ModeDevelopment:
		cfg = zap.NewDevelopmentConfig()
	case ModeProduction:
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unknown logger mode %q", mode)
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(l)
	return l, nil
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = zap.L().Sync()
}
