package dataset

import (
	"go.uber.org/zap"
)

// Option configures ambient behavior of the datasets.
type Option func(*settings)

type settings struct {
	logger *zap.Logger
}

func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{logger: zap.NewNop()}
	for _, o := range opts {
		o(&s)
	}
	return s
}
