package plugin

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-drive/dsp/effects"
)

// Option mutates construction-time settings.
type Option func(*config) error

type config struct {
	logger     *logrus.Logger
	approxMode effects.DistortionApproxMode
}

func defaultConfig() config {
	return config{
		logger:     logrus.StandardLogger(),
		approxMode: effects.DistortionApproxExact,
	}
}

// WithLogger routes control-path logging to logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(cfg *config) error {
		if logger == nil {
			return errors.New("plugin logger must not be nil")
		}

		cfg.logger = logger

		return nil
	}
}

// WithApproxMode selects exact or polynomial arctangent evaluation.
func WithApproxMode(mode effects.DistortionApproxMode) Option {
	return func(cfg *config) error {
		cfg.approxMode = mode
		return nil
	}
}
