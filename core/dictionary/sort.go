package dictionary

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

func newCollator() *collate.Collator {
	return collate.New(language.Russian, collate.Numeric)
}

// leadingNumber extracts the numeric token a dictionary value starts with,
// tolerating stray "./" prefixes, interior whitespace and either decimal
// separator ("2мл", ".5л", "2,5мл", "/1 000 шт"). Reports false when the
// value does not start with a number.
func leadingNumber(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	t = strings.TrimPrefix(t, "./")
	t = strings.TrimLeft(t, "/")
	t = strings.TrimSpace(t)

	var token []byte
	seenDot := false
scan:
	for i := 0; i < len(t); i++ {
		switch ch := t[i]; {
		case ch == ' ' || ch == '\t':
		case ch >= '0' && ch <= '9':
			token = append(token, ch)
		case (ch == '.' || ch == ',') && !seenDot:
			seenDot = true
			token = append(token, '.')
		default:
			break scan
		}
	}
	trimmed := strings.TrimSuffix(string(token), ".")
	if trimmed == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func naturalLess(c *collate.Collator, a, b string) bool {
	na, aok := leadingNumber(a)
	nb, bok := leadingNumber(b)
	if aok && bok && na != nb {
		return na < nb
	}
	if aok != bok {
		// Values starting with a number sort before plain text.
		return aok
	}
	return c.CompareString(a, b) < 0
}

// SortNatural orders dictionary values the way they appear in dropdowns:
// values with a leading numeric token by its value, the rest by Russian
// collation.
func SortNatural(items []string) {
	c := newCollator()
	sort.SliceStable(items, func(i, j int) bool {
		return naturalLess(c, items[i], items[j])
	})
}
