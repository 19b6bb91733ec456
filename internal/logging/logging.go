package logging

import (
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// New builds the zap-backed logger. Pretty logs use zap's development encoder.
func New(level string, pretty bool) (ectologger.Logger, func(), error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	zapConfig := zap.NewProductionConfig()
	if pretty {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = atomicLevel

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to build zap logger")
	}

	return zapadapter.NewZapEctoLogger(zapLogger, nil), func() { _ = zapLogger.Sync() }, nil
}
