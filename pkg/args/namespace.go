// Package args holds the argument namespace consumed by directory templates.
// Values form a nested tree; dotted paths are resolved by an expression
// evaluator so callers can choose between expr, CEL and JavaScript.
package args

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-failsafe/layering"
)

// ErrNotFound indicates that a path resolved to no value.
var ErrNotFound = errors.New("args: path not found")

var placeholderPattern = regexp.MustCompile(`\$\{([^}]*)\}`)

// Option configures a Namespace.
type Option func(*Namespace)

// WithEvaluator selects the evaluator used for lookups. Nil keeps the default.
func WithEvaluator(evaluator Evaluator) Option {
	return func(ns *Namespace) {
		if evaluator != nil {
			ns.evaluator = evaluator
			ns.engine = engineName(evaluator)
		}
	}
}

// WithEvaluatorLogger attaches an evaluator logger.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(ns *Namespace) {
		if logger == nil {
			ns.logger = noopEvaluatorLogger{}
			return
		}
		ns.logger = logger
	}
}

// WithMetadata exposes metadata to expressions as the "metadata" variable.
func WithMetadata(metadata map[string]any) Option {
	return func(ns *Namespace) {
		ns.metadata = layering.Clone(metadata)
	}
}

// Namespace is a nested argument tree.
type Namespace struct {
	values    map[string]any
	metadata  map[string]any
	evaluator Evaluator
	engine    string
	logger    EvaluatorLogger
}

// New constructs a namespace holding a normalized copy of values. The default
// evaluator is expr with a program cache.
func New(values map[string]any, opts ...Option) *Namespace {
	ns := &Namespace{
		values:    layering.MergeLayersWith(layering.UnderscoreSpaces, values),
		evaluator: NewExprEvaluator(ExprWithProgramCache(NewMapCache())),
		engine:    "expr",
		logger:    noopEvaluatorLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ns)
		}
	}
	return ns
}

// Update deep merges values over the current tree.
func (ns *Namespace) Update(values map[string]any) {
	ns.values = layering.MergeLayersWith(layering.UnderscoreSpaces, values, ns.values)
}

// Values returns a copy of the tree.
func (ns *Namespace) Values() map[string]any {
	return layering.Clone(ns.values)
}

// Lookup resolves a dotted path such as "dataset.name".
func (ns *Namespace) Lookup(path string) (any, error) {
	expression, err := pathExpression(path)
	if err != nil {
		return nil, err
	}
	value, err := ns.Evaluate(expression)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return value, nil
}

// LookupString resolves path and requires a string value.
func (ns *Namespace) LookupString(path string) (string, error) {
	value, err := ns.Lookup(path)
	if err != nil {
		return "", err
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s holds %T", ErrNotString, path, value)
	}
	return s, nil
}

// Evaluate runs an arbitrary expression against the tree.
func (ns *Namespace) Evaluate(expression string) (any, error) {
	if ns.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	start := time.Now()
	value, err := ns.evaluator.Evaluate(RuleContext{
		Args:     ns.values,
		Metadata: ns.metadata,
	}, expression)
	ns.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   ns.engine,
		Expr:     expression,
		Duration: time.Since(start),
		Err:      err,
	})
	return value, err
}

// ReplacePlaceholders substitutes every ${path} in pattern with the string
// value stored at path.
func (ns *Namespace) ReplacePlaceholders(pattern string) (string, error) {
	var errs []error
	out := placeholderPattern.ReplaceAllStringFunc(pattern, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		value, err := ns.LookupString(path)
		if err != nil {
			errs = append(errs, err)
			return match
		}
		return value
	})
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return out, nil
}

func pathExpression(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	var b strings.Builder
	b.WriteString("args")
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
		b.WriteString("[")
		b.WriteString(strconv.Quote(segment))
		b.WriteString("]")
	}
	return b.String(), nil
}

func engineName(evaluator Evaluator) string {
	switch evaluator.(type) {
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		return fmt.Sprintf("%T", evaluator)
	}
}
