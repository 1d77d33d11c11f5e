package generator

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/toyz/configen/internal/models"
)

// pyLiteral renders a literal value tree as Python source. It reports false
// when any part of the tree has no literal form.
func pyLiteral(v models.Value) (string, bool) {
	switch v.Kind {
	case models.ValueNull:
		return "None", true

	case models.ValueBool:
		if v.Bool {
			return "True", true
		}
		return "False", true

	case models.ValueInt:
		return strconv.FormatInt(v.Int, 10), true

	case models.ValueFloat:
		return pyFloat(v.Float), true

	case models.ValueString:
		return pyString(v.String)

	case models.ValueList:
		parts := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			s, ok := pyLiteral(item)
			if !ok {
				return "", false
			}
			parts = append(parts, s)
		}
		return "[" + strings.Join(parts, ", ") + "]", true

	case models.ValueMap:
		parts := make([]string, 0, len(v.Map))
		for _, e := range v.Map {
			if !isHashable(e.Key) {
				return "", false
			}
			k, ok := pyLiteral(e.Key)
			if !ok {
				return "", false
			}
			val, ok := pyLiteral(e.Value)
			if !ok {
				return "", false
			}
			parts = append(parts, k+": "+val)
		}
		return "{" + strings.Join(parts, ", ") + "}", true

	default:
		return "", false
	}
}

func isHashable(v models.Value) bool {
	switch v.Kind {
	case models.ValueList, models.ValueMap, models.ValueOpaque:
		return false
	}
	return true
}

// pyFloat formats f the way Python's repr does: shortest round-trip digits,
// fixed notation for decimal exponents in [-4, 16), scientific otherwise
func pyFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return `float("nan")`
	case math.IsInf(f, 1):
		return `float("inf")`
	case math.IsInf(f, -1):
		return `float("-inf")`
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, expText, _ := strings.Cut(sci, "e")
	exp, _ := strconv.Atoi(expText)

	if exp >= -4 && exp < 16 {
		fixed := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.ContainsAny(fixed, ".") {
			fixed += ".0"
		}
		return fixed
	}

	// Go already writes at least two exponent digits with an explicit sign
	return mantissa + "e" + expText
}

// pyString renders s as a Python string literal. Double quotes are preferred;
// single quotes are used when s contains a double quote but no single quote.
// Invalid UTF-8 has no str literal and is reported as false.
func pyString(s string) (string, bool) {
	if !utf8.ValidString(s) {
		return "", false
	}

	quote := '"'
	if strings.ContainsRune(s, '"') && !strings.ContainsRune(s, '\'') {
		quote = '\''
	}

	var b strings.Builder
	b.WriteRune(quote)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == quote:
			b.WriteRune('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r < utf8.RuneSelf || unicode.IsPrint(r):
			b.WriteRune(r)
		case r <= 0xff:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r <= 0xffff:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
	}
	b.WriteRune(quote)
	return b.String(), true
}
