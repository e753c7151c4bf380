// ABOUTME: Functional options shared by the CNS and ONS drivers
// ABOUTME: The only option today is an optional structured logger; nil means silent

package reduce

import "go.uber.org/zap"

type driverOptions struct {
	logger *zap.SugaredLogger
}

// Option configures a CNS or ONS driver call.
type Option func(*driverOptions)

// WithLogger attaches a structured logger that receives one debug line per
// outer iteration of the driver. A nil logger (the default) disables
// logging entirely; no code path depends on logging having happened.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *driverOptions) { o.logger = l }
}

func buildOptions(opts []Option) driverOptions {
	var o driverOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o driverOptions) debugw(msg string, kv ...interface{}) {
	if o.logger == nil {
		return
	}
	o.logger.Debugw(msg, kv...)
}
