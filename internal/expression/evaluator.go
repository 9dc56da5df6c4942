package expression

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultPrecision is the number of decimal places numeric results keep.
	DefaultPrecision = 2
	// DefaultCacheSize bounds the compiled-program cache.
	DefaultCacheSize = 256
	// MaxPrecision is the largest precision an Evaluator accepts.
	MaxPrecision = 6
)

// Evaluator compiles and runs formula expressions.
// It is safe for concurrent use; the only shared state is the program cache,
// which never changes observable results.
type Evaluator struct {
	precision int
	cacheSize int

	cache *lru.Cache[string, *vm.Program] // nil when caching is disabled
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithPrecision sets the decimal places numeric results are rounded to.
// Values outside 0..MaxPrecision are clamped.
func WithPrecision(places int) Option {
	return func(e *Evaluator) {
		e.precision = min(max(places, 0), MaxPrecision)
	}
}

// WithCacheSize bounds the compiled-program cache. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(e *Evaluator) {
		e.cacheSize = max(n, 0)
	}
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		precision: DefaultPrecision,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cacheSize > 0 {
		// lru.New only fails for a non-positive size.
		e.cache, _ = lru.New[string, *vm.Program](e.cacheSize)
	}
	return e
}

// Precision returns the configured number of decimal places.
func (e *Evaluator) Precision() int {
	return e.precision
}

// Evaluate runs src against bindings and returns a float64, bool or string.
//
// Numeric results are rounded to the evaluator's precision. Every failure,
// including a panic inside the expression VM, comes back as an error wrapping
// one of the package's sentinel errors.
func (e *Evaluator) Evaluate(src string, bindings map[string]any) (result any, err error) {
	tokens, err := Scan(src)
	if err != nil {
		return nil, err
	}

	for _, tok := range tokens {
		if tok.Kind != TokenIdent {
			continue
		}
		if _, ok := bindings[tok.Text]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUndefined, tok.Text)
		}
	}

	canon, err := canonical(tokens)
	if err != nil {
		return nil, err
	}
	program, err := e.compile(canon)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("%w: %v", ErrEvaluation, r)
		}
	}()

	env := make(map[string]any, len(bindings))
	for k, v := range bindings {
		env[k] = v
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluation, err)
	}
	return e.normalize(out)
}

// compile returns the cached program for the canonical source src,
// compiling it on a miss.
func (e *Evaluator) compile(src string) (*vm.Program, error) {
	if e.cache != nil {
		if program, ok := e.cache.Get(src); ok {
			return program, nil
		}
	}

	program, err := expr.Compile(src, expr.DisableAllBuiltins())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	if e.cache != nil {
		e.cache.Add(src, program)
	}
	return program, nil
}

// normalize converts the VM's output into float64, bool or string.
func (e *Evaluator) normalize(out any) (any, error) {
	switch v := out.(type) {
	case bool, string:
		return v, nil
	case float64:
		return e.round(v)
	case float32:
		return e.round(float64(v))
	case int:
		return e.round(float64(v))
	case int64:
		return e.round(float64(v))
	case int32:
		return e.round(float64(v))
	case uint:
		return e.round(float64(v))
	case uint64:
		return e.round(float64(v))
	case nil:
		return nil, fmt.Errorf("%w: expression produced no value", ErrEvaluation)
	default:
		return nil, fmt.Errorf("%w: unsupported result type %T", ErrEvaluation, out)
	}
}

// Round applies the evaluator's precision to x. It is exported for callers
// that combine several results and want the same rounding rule.
func (e *Evaluator) Round(x float64) float64 {
	scale := math.Pow(10, float64(e.precision))
	r := math.Round(x*scale) / scale
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

func (e *Evaluator) round(x float64) (any, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil, fmt.Errorf("%w: %v", ErrNonFinite, x)
	}
	return e.Round(x), nil
}
