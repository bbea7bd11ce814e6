// Package mfgstream embeds the manufacturing demo-data generator in other Go
// services: load a config, build a runtime with functional overrides, run it
// against any RecordWriter.
package mfgstream

import (
	"context"
	"fmt"
)

// Flow is a convenience builder that lets callers say Conf → Runtime → Run
// without touching the underlying hexagonal wiring.
type Flow struct {
	cfg  *Config
	opts []RuntimeOption
}

// FlowOption mutates the Flow after configuration is loaded.
type FlowOption func(*Flow)

// Conf loads YAML from disk, applies FlowOption values, and returns a Flow
// builder.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return ConfFromConfig(cfg, opts...)
}

// ConfFromConfig bootstraps a Flow from an in-memory Config.
func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	f := &Flow{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// Config returns the underlying configuration so callers can tweak it before
// building a runtime.
func (f *Flow) Config() *Config {
	if f == nil {
		return nil
	}
	return f.cfg
}

// Options appends RuntimeOption values to the builder for advanced scenarios.
func (f *Flow) Options(opts ...RuntimeOption) *Flow {
	if f == nil {
		return nil
	}
	f.appendOptions(opts...)
	return f
}

// Generators builds the three simulators without any writer wiring, for
// fixture and test use. Seeding follows the config; pass a fixed
// generation.random_seed to reproduce batches.
func (f *Flow) Generators() (*Generators, error) {
	if f == nil {
		return nil, fmt.Errorf("flow is nil")
	}
	return newGenerators(f.cfg, resolveSeed(f.cfg, nil), nil), nil
}

// Runtime applies final overrides and builds a GeneratorRuntime ready to run.
func (f *Flow) Runtime(opts ...RuntimeOption) (*GeneratorRuntime, error) {
	if f == nil {
		return nil, fmt.Errorf("flow is nil")
	}
	f.appendOptions(opts...)
	return NewRuntime(f.cfg, f.opts...)
}

// Run is a shortcut for Runtime + GeneratorRuntime.Run.
func (f *Flow) Run(ctx context.Context, opts ...RuntimeOption) error {
	rt, err := f.Runtime(opts...)
	if err != nil {
		return err
	}
	return rt.Run(ctx)
}

// WithFlowOptions appends RuntimeOption values during Conf.
func WithFlowOptions(opts ...RuntimeOption) FlowOption {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(opts...)
		}
	}
}

func (f *Flow) appendOptions(opts ...RuntimeOption) {
	for _, opt := range opts {
		if opt != nil {
			f.opts = append(f.opts, opt)
		}
	}
}
