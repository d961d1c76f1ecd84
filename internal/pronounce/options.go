package pronounce

import (
	"strings"

	"golang.org/x/text/language"
)

// OptionValue is one allowed (code, display name) pair.
type OptionValue struct {
	Code  string
	Label string
}

// OptionSpec declares one configurable parameter of a provider. Transform
// never fails: it yields either a code from Values or its input unchanged,
// so an unrecognized value flows through to the backend as a literal.
type OptionSpec struct {
	Key       string
	Label     string
	Values    []OptionValue
	Default   string // "" = required
	Transform func(string) string
}

// Resolve normalizes raw option values against specs. A missing key takes
// the declared default; a spec with no default and no supplied value is an
// input-rejection error, as is a key no spec declares.
func Resolve(specs []OptionSpec, raw map[string]string) (map[string]string, error) {
	resolved := make(map[string]string, len(specs))
	declared := make(map[string]bool, len(specs))

	for _, spec := range specs {
		declared[spec.Key] = true
		v, ok := raw[spec.Key]
		if !ok || v == "" {
			if spec.Default == "" {
				return nil, &OptionError{Key: spec.Key, Reason: "required and has no default"}
			}
			v = spec.Default
		}
		if spec.Transform != nil {
			v = spec.Transform(v)
		}
		resolved[spec.Key] = v
	}

	for k := range raw {
		if !declared[k] {
			return nil, &OptionError{Key: k, Reason: "not recognized"}
		}
	}
	return resolved, nil
}

// normalize folds a user-supplied alias for table lookup: lower case,
// ASCII alphanumerics only.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// aliasTransform builds a Transform from a normalized-alias table plus an
// optional fallback tried when no alias matches. Unmatched input comes back
// unchanged.
func aliasTransform(aliases map[string]string, fallback func(string) (string, bool)) func(string) string {
	return func(raw string) string {
		if code, ok := aliases[normalize(raw)]; ok {
			return code
		}
		if fallback != nil {
			if code, ok := fallback(raw); ok {
				return code
			}
		}
		return raw
	}
}

// bcp47 parses raw as a language tag, reporting the base language and, when
// the tag spells one out explicitly, the region. Display names ("German")
// and unknown codes do not parse and report ok=false.
func bcp47(raw string) (base, region string, ok bool) {
	tag, err := language.Parse(raw)
	if err != nil {
		return "", "", false
	}
	b, conf := tag.Base()
	if conf == language.No {
		return "", "", false
	}
	if r, rconf := tag.Region(); rconf == language.Exact {
		region = r.String()
	}
	return b.String(), region, true
}
