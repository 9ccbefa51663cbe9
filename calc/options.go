package calc

import (
	"strings"

	"github.com/oarkflow/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/midbel/xlcalc/formula"
	"github.com/midbel/xlcalc/value"
)

const (
	DefaultMaxDepth  = 1024
	DefaultCacheSize = 256
)

// Options holds the configuration of an Engine.
type Options struct {
	logger     *log.Logger
	functions  formula.FunctionTable
	registerer prometheus.Registerer
	memo       bool
	cacheSize  int
	maxDepth   int
	variables  map[string]value.Value
}

func defaultOptions() *Options {
	return &Options{
		logger:    &log.DefaultLogger,
		memo:      true,
		cacheSize: DefaultCacheSize,
		maxDepth:  DefaultMaxDepth,
		variables: make(map[string]value.Value),
	}
}

// Option configures the Engine.
type Option func(*Options)

func WithLogger(logger *log.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithFunctions replaces the builtin function table.
func WithFunctions(functions formula.FunctionTable) Option {
	return func(o *Options) { o.functions = functions }
}

// WithMemo controls whether formula cells are computed once per evaluation
// (default: true).
func WithMemo(memo bool) Option {
	return func(o *Options) { o.memo = memo }
}

// WithCacheSize sets the number of parsed formulas kept by the engine. Zero
// disables the cache.
func WithCacheSize(size int) Option {
	return func(o *Options) { o.cacheSize = max(size, 0) }
}

// WithMaxDepth sets how deep formula cells can depend on each other
// (default: 1024).
func WithMaxDepth(depth int) Option {
	return func(o *Options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithVariables defines named values usable in formulas.
func WithVariables(vars map[string]value.Value) Option {
	return func(o *Options) {
		for k, v := range vars {
			o.variables[strings.ToLower(k)] = v
		}
	}
}

// WithRegisterer registers the engine metrics with the given registerer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *Options) { o.registerer = reg }
}
