// Package equivalence implements the type-aware "are these semantically
// the same" predicates the differ relies on so that engine-side
// reformatting (TTL rewriting, codec default expansion, parenthesized
// single-element key expressions) never produces a spurious diff.
package equivalence

import (
	"regexp"
	"strings"
)

var intervalUnits = map[string]string{
	"second":  "Second",
	"minute":  "Minute",
	"hour":    "Hour",
	"day":     "Day",
	"week":    "Week",
	"month":   "Month",
	"quarter": "Quarter",
	"year":    "Year",
}

var intervalPattern = regexp.MustCompile(`(?i)INTERVAL\s+(\d+)\s+(SECOND|MINUTE|HOUR|DAY|WEEK|MONTH|QUARTER|YEAR)`)

// NormalizeTTL rewrites `INTERVAL <n> <UNIT>` into `toInterval<Unit>(<n>)`
// and drops a trailing `DELETE` (the engine's default TTL action), so
// that user-authored and engine-introspected TTL expressions compare
// equal (§4.2).
func NormalizeTTL(ttl string) string {
	ttl = strings.TrimSpace(ttl)
	if ttl == "" {
		return ""
	}

	ttl = intervalPattern.ReplaceAllStringFunc(ttl, func(match string) string {
		groups := intervalPattern.FindStringSubmatch(match)
		n, unit := groups[1], intervalUnits[strings.ToLower(groups[2])]
		return "toInterval" + unit + "(" + n + ")"
	})

	trimmed := strings.TrimSpace(ttl)
	if idx := strings.LastIndex(strings.ToUpper(trimmed), "DELETE"); idx >= 0 && idx == len(trimmed)-len("DELETE") {
		trimmed = strings.TrimSpace(trimmed[:idx])
	}

	return collapseWhitespace(trimmed)
}

// codecDefaults maps a bare codec name to its documented default
// parameterized form (§4.2). Only codecs with well-known defaults are
// listed; anything else passes through unchanged.
var codecDefaults = map[string]string{
	"Delta":   "Delta(4)",
	"Gorilla": "Gorilla(8)",
	"ZSTD":    "ZSTD(1)",
}

var codecNamePattern = regexp.MustCompile(`^([A-Za-z0-9_]+)(\([^)]*\))?$`)

// NormalizeCodec expands a bare codec name to its parameterized default
// form (`Delta` ≡ `Delta(4)`) and normalizes a codec chain element-wise,
// so bare and explicit forms compare equal.
func NormalizeCodec(codec string) string {
	codec = strings.TrimSpace(codec)
	if codec == "" {
		return ""
	}
	if strings.HasPrefix(codec, "CODEC(") && strings.HasSuffix(codec, ")") {
		codec = codec[len("CODEC(") : len(codec)-1]
	}

	parts := splitCodecChain(codec)
	normalized := make([]string, 0, len(parts))
	for _, p := range parts {
		normalized = append(normalized, normalizeCodecElement(strings.TrimSpace(p)))
	}
	return strings.Join(normalized, ", ")
}

func normalizeCodecElement(elem string) string {
	m := codecNamePattern.FindStringSubmatch(elem)
	if m == nil {
		return elem
	}
	name, params := m[1], m[2]
	if params != "" {
		return name + params
	}
	if def, ok := codecDefaults[name]; ok {
		return def
	}
	return name
}

// splitCodecChain splits a comma-separated codec chain while respecting
// parenthesized parameter lists (e.g. "Delta, ZSTD(1)").
func splitCodecChain(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// NormalizePrimaryKeyExpr strips backticks and whitespace, then strips
// redundant outer parentheses when the expression is a single
// top-level term (no top-level comma): `(id)` ≡ `id`,
// `(cityHash64(id))` ≡ `cityHash64(id)`, but `(a, b)` keeps its
// parentheses (normalized to `(a,b)`).
func NormalizePrimaryKeyExpr(expr string) string {
	expr = strings.ReplaceAll(expr, "`", "")
	expr = removeWhitespace(expr)
	if expr == "" {
		return ""
	}

	for {
		if !strings.HasPrefix(expr, "(") || !strings.HasSuffix(expr, ")") {
			return expr
		}
		inner := expr[1 : len(expr)-1]
		if hasTopLevelComma(inner) {
			return expr
		}
		expr = strings.TrimSpace(inner)
	}
}

func hasTopLevelComma(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// removeWhitespace strips every whitespace rune, rather than collapsing
// runs to a single space — PRIMARY KEY / free-expression ORDER BY
// normalization (§4.2) needs `(a,b)` and `(a, b)` to compare equal.
func removeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
