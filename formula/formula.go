// Package formula parses chemical formula strings into elemental
// compositions and turns compositions into numeric features for model
// input.
//
// The accepted grammar covers element symbols with integer or decimal
// subscripts ("Fe0.5Co0.5"), nested parenthesized groups with multipliers
// ("Ca3(PO4)2", "Al2(SO4)3"), and hydrate notation with a middle dot
// ("CuSO4·5H2O"). A bare '.' is always a decimal point; hydrates must use
// the middle dot so that fractional subscripts stay unambiguous.
package formula

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/citrinelab/citrine/pif"
	"github.com/citrinelab/citrine/pkg/errors"
)

// hydrateDot is the byte the middle dot is rewritten to before scanning,
// so the scanner can work on bytes.
const hydrateDot = '*'

// elementToken matches an element symbol at the start of its input.
var elementToken = regexp.MustCompile(`^[A-Z][a-z]?`)

// Composition is an ordered multiset of elements parsed from a formula.
// Order follows first appearance in the input.
type Composition struct {
	formula string
	order   []string
	counts  map[string]float64
}

// Parse parses a chemical formula into a Composition.
func Parse(s string) (*Composition, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, errors.NewParseError(s, -1, "empty formula")
	}

	scan := strings.ReplaceAll(trimmed, "·", string(hydrateDot))

	comp := &Composition{formula: trimmed, counts: make(map[string]float64)}
	end, err := parseGroup(scan, 0, 0, 1, comp)
	if err != nil {
		return nil, err
	}
	if end != len(scan) {
		return nil, errors.NewParseError(trimmed, end, "unexpected character "+strconv.Quote(string(scan[end])))
	}
	if len(comp.order) == 0 {
		return nil, errors.NewParseError(trimmed, -1, "no elements in formula")
	}
	return comp, nil
}

// MustParse is Parse for static formulas in tests and examples; it panics
// on error.
func MustParse(s string) *Composition {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// parseGroup scans s from i until end of input or an unmatched ')',
// accumulating element counts scaled by mult into comp. depth tracks
// parenthesis nesting. It returns the index it stopped at.
func parseGroup(s string, i, depth int, mult float64, comp *Composition) (int, error) {
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ':
			i++

		case c == '(':
			sub := &Composition{counts: make(map[string]float64)}
			j, err := parseGroup(s, i+1, depth+1, 1, sub)
			if err != nil {
				return 0, err
			}
			if j >= len(s) || s[j] != ')' {
				return 0, errors.NewParseError(compInput(s), i, "unbalanced parenthesis")
			}
			j++
			groupMult, j, err := parseCount(s, j)
			if err != nil {
				return 0, err
			}
			for _, sym := range sub.order {
				comp.add(sym, sub.counts[sym]*groupMult*mult)
			}
			i = j

		case c == ')':
			if depth == 0 {
				return 0, errors.NewParseError(compInput(s), i, "unbalanced parenthesis")
			}
			return i, nil

		case c == hydrateDot:
			// Hydrate: the rest of this group, scaled by the multiplier
			// right after the dot.
			hydMult, j, err := parseCount(s, i+1)
			if err != nil {
				return 0, err
			}
			return parseGroup(s, j, depth, mult*hydMult, comp)

		case c >= 'A' && c <= 'Z':
			sym := elementToken.FindString(s[i:])
			if !IsElement(sym) {
				// A two-letter match that is not an element cannot fall
				// back to its first letter: the stray lowercase letter
				// would be unparsable anyway.
				return 0, errors.NewParseError(compInput(s), i, "unknown element symbol "+strconv.Quote(sym))
			}
			j := i + len(sym)
			count, j, err := parseCount(s, j)
			if err != nil {
				return 0, err
			}
			comp.add(sym, count*mult)
			i = j

		default:
			return 0, errors.NewParseError(compInput(s), i, "unexpected character "+strconv.Quote(string(c)))
		}
	}
	return i, nil
}

// parseCount reads an optional integer or decimal subscript at i, returning
// 1 when none is present.
func parseCount(s string, i int) (float64, int, error) {
	j := i
	sawDot := false
	for j < len(s) {
		c := s[j]
		if c >= '0' && c <= '9' {
			j++
			continue
		}
		if c == '.' && !sawDot {
			sawDot = true
			j++
			continue
		}
		break
	}
	if j == i {
		return 1, i, nil
	}
	text := s[i:j]
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, 0, errors.NewParseError(compInput(s), i, "bad subscript "+strconv.Quote(text))
	}
	return n, j, nil
}

// compInput restores the middle dot for error messages.
func compInput(s string) string {
	return strings.ReplaceAll(s, string(hydrateDot), "·")
}

func (c *Composition) add(symbol string, n float64) {
	if _, seen := c.counts[symbol]; !seen {
		c.order = append(c.order, symbol)
	}
	c.counts[symbol] += n
}

// Formula returns the original input string.
func (c *Composition) Formula() string { return c.formula }

// Elements returns the element symbols in first-appearance order.
func (c *Composition) Elements() []string {
	return append([]string(nil), c.order...)
}

// Count returns the subscript total for an element, 0 if absent.
func (c *Composition) Count(symbol string) float64 {
	return c.counts[symbol]
}

// TotalAtoms returns the sum of all subscripts.
func (c *Composition) TotalAtoms() float64 {
	var total float64
	for _, n := range c.counts {
		total += n
	}
	return total
}

// AtomicFractions returns each element's share of the total atom count.
func (c *Composition) AtomicFractions() map[string]float64 {
	total := c.TotalAtoms()
	fractions := make(map[string]float64, len(c.counts))
	if total == 0 {
		return fractions
	}
	for sym, n := range c.counts {
		fractions[sym] = n / total
	}
	return fractions
}

// Weight returns the molar mass in g/mol.
func (c *Composition) Weight() float64 {
	var mass float64
	for sym, n := range c.counts {
		e := elements[sym]
		mass += e.Mass * n
	}
	return mass
}

// Normalized returns a canonical formula string: elements alphabetized,
// integer subscripts reduced by their greatest common divisor, subscript 1
// omitted. Two formulas describing the same composition normalize to the
// same string, which makes it usable as a dedup key.
func (c *Composition) Normalized() string {
	symbols := append([]string(nil), c.order...)
	sort.Strings(symbols)

	counts := make([]float64, len(symbols))
	allIntegral := true
	for i, sym := range symbols {
		counts[i] = c.counts[sym]
		if math.Abs(counts[i]-math.Round(counts[i])) > 1e-9 {
			allIntegral = false
		}
	}

	if allIntegral && len(counts) > 0 {
		g := 0
		for _, n := range counts {
			g = gcd(g, int(math.Round(n)))
		}
		if g > 1 {
			for i := range counts {
				counts[i] = math.Round(counts[i]) / float64(g)
			}
		}
	}

	var b strings.Builder
	for i, sym := range symbols {
		b.WriteString(sym)
		n := counts[i]
		if math.Abs(n-1) < 1e-9 {
			continue
		}
		if math.Abs(n-math.Round(n)) < 1e-9 {
			b.WriteString(strconv.Itoa(int(math.Round(n))))
		} else {
			b.WriteString(strconv.FormatFloat(n, 'g', 6, 64))
		}
	}
	return b.String()
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// ToPIF converts the composition into PIF composition entries with atomic
// percents.
func (c *Composition) ToPIF() []pif.Composition {
	fractions := c.AtomicFractions()
	out := make([]pif.Composition, 0, len(c.order))
	for _, sym := range c.order {
		pct := pif.NewScalar(fractions[sym] * 100)
		out = append(out, pif.Composition{Element: sym, AtomicPercent: &pct})
	}
	return out
}
