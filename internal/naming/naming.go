// Package naming converts schema identifiers between naming conventions.
//
// An identifier is first split into namespace segments on '.', '/' and '\',
// each segment is split into sub-words at digit runs, underscore runs,
// whitespace runs and hyphens, and the sub-words are re-cased and joined
// according to a Mode. Segments are finally re-joined with a caller supplied
// separator.
package naming

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Mode selects the target naming convention.
type Mode int

const (
	// Preserve keeps the sub-words as written and joins them without a separator.
	Preserve Mode = iota
	// Lower produces lower_snake_case.
	Lower
	// Upper produces UPPER_SNAKE_CASE.
	Upper
	// CamelLower produces camelCase; only the first sub-word of the first
	// segment starts lowercase.
	CamelLower
	// Pascal produces PascalCase.
	Pascal
)

// DefaultSeparator joins namespace segments when the caller has no preference.
const DefaultSeparator = "."

var (
	segmentSeparator = regexp.MustCompile(`[./\\]`)
	tokenBoundary    = regexp.MustCompile(`\d+|_+|\s+|-`)
)

func (m Mode) String() string {
	switch m {
	case Lower:
		return "lower"
	case Upper:
		return "upper"
	case CamelLower:
		return "camel"
	case Pascal:
		return "pascal"
	default:
		return "preserve"
	}
}

// ParseMode maps a convention name to a Mode. Unknown names yield Preserve.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lower", "lowercase", "snake":
		return Lower
	case "upper", "uppercase", "screaming":
		return Upper
	case "camel", "lower_camel", "camel_first_lowercase":
		return CamelLower
	case "pascal", "camel_camel", "upper_camel":
		return Pascal
	default:
		return Preserve
	}
}

// Split breaks a single segment into sub-words. A digit run is a sub-word of
// its own; underscore, whitespace and hyphen runs only mark boundaries.
func Split(segment string) []string {
	var raw []string
	start := 0
	for _, loc := range tokenBoundary.FindAllStringIndex(segment, -1) {
		if loc[0] > start {
			raw = append(raw, segment[start:loc[0]])
		}
		val := strings.TrimSpace(segment[loc[0]:loc[1]])
		if val != "" && val[0] != '_' && val[0] != '-' {
			raw = append(raw, val)
		}
		start = loc[1]
	}
	if start < len(segment) {
		raw = append(raw, segment[start:])
	}

	tokens := raw[:0]
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Convert rewrites name into mode and joins its namespace segments with sep.
func Convert(name string, mode Mode, sep string) string {
	lower := cases.Lower(language.Und)
	upper := cases.Upper(language.Und)
	title := cases.Title(language.Und)

	var segments []string
	for _, segment := range segmentSeparator.Split(name, -1) {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		tokens := Split(segment)

		var joined string
		switch mode {
		case Lower:
			for i, t := range tokens {
				tokens[i] = lower.String(t)
			}
			joined = joinSnake(tokens)
		case Upper:
			for i, t := range tokens {
				tokens[i] = upper.String(t)
			}
			joined = joinSnake(tokens)
		case CamelLower, Pascal:
			for i, t := range tokens {
				tokens[i] = title.String(t)
			}
			if mode == CamelLower && len(segments) == 0 && len(tokens) > 0 {
				tokens[0] = lower.String(tokens[0])
			}
			joined = strings.Join(tokens, "")
		default:
			joined = strings.Join(tokens, "")
		}
		segments = append(segments, joined)
	}
	return strings.Join(segments, sep)
}

// Identify converts name keeping '.' between namespace segments.
func Identify(name string, mode Mode) string {
	return Convert(name, mode, DefaultSeparator)
}

// LowerRule is the lower_snake form with namespaces flattened by '_'.
func LowerRule(name string) string {
	return Convert(name, Lower, "_")
}

// UpperRule is the UPPER_SNAKE form with namespaces flattened by '_'.
func UpperRule(name string) string {
	return Convert(name, Upper, "_")
}

func ToPascalCase(s string) string {
	return Convert(s, Pascal, "")
}

func ToCamelCase(s string) string {
	return Convert(s, CamelLower, "")
}

// joinSnake joins sub-words with '_' but keeps a digit run attached to the
// sub-word before it, so "Service2Name" becomes "service2_name".
func joinSnake(tokens []string) string {
	var b strings.Builder
	for i, t := range tokens {
		if i > 0 && !isDigits(t) {
			b.WriteByte('_')
		}
		b.WriteString(t)
	}
	return b.String()
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
