package dirs

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// HiddenPrefix replaces a leading "." in segment names.
const HiddenPrefix = "_H_"

var placeholderToken = regexp.MustCompile(`\$args((?:\.[A-Za-z0-9_-]+)*)`)

// Args resolves dotted argument paths for $args placeholders.
type Args interface {
	Lookup(path string) (any, error)
}

// entry is one parsed, substituted and normalized spec branch.
type entry struct {
	name     string
	children []entry
}

// Normalize applies the segment naming rules: spaces become underscores and a
// leading "." becomes HiddenPrefix.
func Normalize(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	if strings.HasPrefix(name, ".") {
		name = HiddenPrefix + name[1:]
	}
	return name
}

func (t *Tree) parse(spec any) ([]entry, error) {
	switch typed := spec.(type) {
	case nil:
		return nil, nil
	case string:
		leaf, err := t.leaf(typed)
		if err != nil {
			return nil, err
		}
		return []entry{leaf}, nil
	case []string:
		out := make([]entry, 0, len(typed))
		for _, name := range typed {
			leaf, err := t.leaf(name)
			if err != nil {
				return nil, err
			}
			out = append(out, leaf)
		}
		return out, nil
	case []any:
		var out []entry
		for _, item := range typed {
			switch item.(type) {
			case string, map[string]any, map[string][]string:
			default:
				return nil, fmt.Errorf("%w: list item of type %T", ErrInvalidSpec, item)
			}
			parsed, err := t.parse(item)
			if err != nil {
				return nil, err
			}
			out = append(out, parsed...)
		}
		return out, nil
	case map[string][]string:
		out := make([]entry, 0, len(typed))
		for _, key := range sortedKeys(typed) {
			branch, err := t.branch(key, typed[key])
			if err != nil {
				return nil, err
			}
			out = append(out, branch)
		}
		return out, nil
	case map[string]any:
		out := make([]entry, 0, len(typed))
		for _, key := range sortedKeys(typed) {
			branch, err := t.branch(key, typed[key])
			if err != nil {
				return nil, err
			}
			out = append(out, branch)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidSpec, spec)
	}
}

func (t *Tree) leaf(raw string) (entry, error) {
	name, err := t.segment(raw)
	if err != nil {
		return entry{}, err
	}
	return entry{name: name}, nil
}

func (t *Tree) branch(raw string, value any) (entry, error) {
	name, err := t.segment(raw)
	if err != nil {
		return entry{}, err
	}
	children, err := t.parse(value)
	if err != nil {
		return entry{}, err
	}
	return entry{name: name, children: children}, nil
}

// segment substitutes placeholders in raw and normalizes the result.
func (t *Tree) segment(raw string) (string, error) {
	substituted, err := t.substitute(raw)
	if err != nil {
		return "", err
	}
	name := Normalize(substituted)
	if name == "" {
		return "", &PathFormatError{Segment: raw, Reason: "empty segment"}
	}
	if strings.ContainsAny(name, `/\`) {
		return "", &PathFormatError{Segment: raw, Reason: "segment contains a path separator"}
	}
	return name, nil
}

func (t *Tree) substitute(raw string) (string, error) {
	matches := placeholderToken.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return raw, nil
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		token := raw[m[0]:m[1]]
		if m[2] == m[3] {
			return "", &PathFormatError{Segment: raw, Token: token, Reason: "placeholder needs a dotted path"}
		}
		value, err := t.lookupArg(raw, token, raw[m[2]+1:m[3]])
		if err != nil {
			return "", err
		}
		b.WriteString(raw[last:m[0]])
		b.WriteString(value)
		last = m[1]
	}
	b.WriteString(raw[last:])
	return b.String(), nil
}

func (t *Tree) lookupArg(raw, token, path string) (string, error) {
	if t.args == nil {
		return "", &PathFormatError{Segment: raw, Token: token, Reason: "no argument namespace configured"}
	}
	value, err := t.args.Lookup(path)
	if err != nil {
		return "", &PathFormatError{Segment: raw, Token: token, Err: err}
	}
	s, ok := value.(string)
	if !ok {
		return "", &PathFormatError{Segment: raw, Token: token, Reason: fmt.Sprintf("resolved to %T, not a string", value)}
	}
	return s, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
