package filter

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of compiled programs a Compiler keeps
const DefaultCacheSize = 100

// Kind names the record type a filter is evaluated against
type Kind string

const (
	KindImagery Kind = "imagery"
	KindPolygon Kind = "polygon"
	KindNDVI    Kind = "ndvi"
	KindWeather Kind = "weather"
)

// Filter is a compiled boolean expression over one kind of record
type Filter struct {
	kind       Kind
	expression string
	program    *vm.Program
}

// Expression returns the original expression
func (f *Filter) Expression() string {
	return f.expression
}

// Kind returns the record kind the filter was compiled for
func (f *Filter) Kind() Kind {
	return f.kind
}

// run evaluates the program against env
func (f *Filter) run(env map[string]any) (bool, error) {
	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, err
	}
	// AsBool at compile time guarantees the type
	return result.(bool), nil
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache sets the size of the compiled program cache. Zero disables caching.
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		c.cacheSize = size
	}
}

// Compiler type-checks and compiles filter expressions against the fields of a record kind
type Compiler struct {
	cacheSize int
	cache     *lru.Cache[string, *Filter]
}

// NewCompiler creates a compiler with an LRU cache of compiled filters
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(c)
	}

	if c.cacheSize > 0 {
		// only fails for a non-positive size
		c.cache, _ = lru.New[string, *Filter](c.cacheSize)
	}
	return c
}

// Compile compiles expression for records of kind
func (c *Compiler) Compile(kind Kind, expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Kind:       kind,
			Reason:     "empty expression",
		}
	}

	prototype, ok := prototypes[kind]
	if !ok {
		return nil, &CompilationError{
			Expression: expression,
			Kind:       kind,
			Reason:     fmt.Sprintf("unknown record kind %q", kind),
		}
	}

	key := string(kind) + "\x00" + expression
	if c.cache != nil {
		if f, ok := c.cache.Get(key); ok {
			return f, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(prototype()),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Kind:       kind,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	f := &Filter{
		kind:       kind,
		expression: expression,
		program:    program,
	}

	if c.cache != nil {
		c.cache.Add(key, f)
	}
	return f, nil
}

// Len returns the number of cached filters
func (c *Compiler) Len() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}

// Purge empties the cache
func (c *Compiler) Purge() {
	if c.cache != nil {
		c.cache.Purge()
	}
}
