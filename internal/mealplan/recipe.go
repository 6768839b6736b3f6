// Package mealplan picks one recipe per meal slot so the day's calories
// follow a fixed proportional split.
package mealplan

import (
	"fmt"
	"strconv"
	"strings"
)

// RawRecipe is one row of the recipe table as delivered by a loader.
// Ingredients and Steps may be a string holding a list literal
// ("['a', 'b']") or an already structured []string / []any.
type RawRecipe struct {
	MealType      string  `json:"meal_type"`
	DietType      string  `json:"diet_type"`
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	TotalFat      float64 `json:"total_fat"`
	Sugar         float64 `json:"sugar"`
	Sodium        float64 `json:"sodium"`
	Carbohydrates float64 `json:"carbohydrates"`
	Ingredients   any     `json:"ingredients"`
	Steps         any     `json:"steps"`
	Name          string  `json:"name"`
	Minutes       int     `json:"minutes"`
}

// RecipeRecord is a normalized recipe. Nutrient fields other than Calories
// are percentages of daily value.
type RecipeRecord struct {
	MealType      string   `json:"meal_type"`
	DietType      string   `json:"diet_type"`
	Calories      float64  `json:"calories"`
	Protein       float64  `json:"protein"`
	TotalFat      float64  `json:"total_fat"`
	Sugar         float64  `json:"sugar"`
	Sodium        float64  `json:"sodium"`
	Carbohydrates float64  `json:"carbohydrates"`
	Ingredients   []string `json:"ingredients"`
	Steps         []string `json:"steps"`
	Name          string   `json:"name"`
	Minutes       int      `json:"minutes"`
}

// Prepare normalizes the ingredient and step fields of every row. It never
// fails; see ParseList for the fallback rules.
func Prepare(raw []RawRecipe) []RecipeRecord {
	records := make([]RecipeRecord, 0, len(raw))
	for _, r := range raw {
		records = append(records, RecipeRecord{
			MealType:      r.MealType,
			DietType:      r.DietType,
			Calories:      r.Calories,
			Protein:       r.Protein,
			TotalFat:      r.TotalFat,
			Sugar:         r.Sugar,
			Sodium:        r.Sodium,
			Carbohydrates: r.Carbohydrates,
			Ingredients:   ParseList(r.Ingredients),
			Steps:         ParseList(r.Steps),
			Name:          r.Name,
			Minutes:       r.Minutes,
		})
	}
	return records
}

/* ─── List literal parsing ───────────────────────────────────────────── */

// ParseList turns a list value into an ordered slice of strings.
//
//   - []string is copied, []any elements are formatted with fmt.Sprint.
//   - A string holding a list literal ("['a', \"b\", 3]") is parsed.
//   - A string holding a single quoted literal ("'a'") yields that value.
//   - Anything else, including malformed literals, yields []string{raw}.
//   - nil yields nil.
func ParseList(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), x...)
	case []any:
		out := make([]string, len(x))
		for i, e := range x {
			out[i] = fmt.Sprint(e)
		}
		return out
	case string:
		if items, ok := parseLiteral(x); ok {
			return items
		}
		return []string{x}
	case fmt.Stringer:
		return ParseList(x.String())
	}
	return []string{fmt.Sprint(v)}
}

// parseLiteral parses a list literal or a single scalar literal. ok is false
// when s is not a complete, well-formed literal.
func parseLiteral(s string) ([]string, bool) {
	p := &literalParser{src: s}
	p.skipSpace()
	if p.peek() == '[' {
		items, ok := p.list()
		if !ok {
			return nil, false
		}
		p.skipSpace()
		return items, p.done()
	}
	item, ok := p.scalar()
	if !ok {
		return nil, false
	}
	p.skipSpace()
	return []string{item}, p.done()
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) done() bool { return p.pos >= len(p.src) }

func (p *literalParser) peek() byte {
	if p.done() {
		return 0
	}
	return p.src[p.pos]
}

func (p *literalParser) skipSpace() {
	for !p.done() && strings.IndexByte(" \t\r\n", p.src[p.pos]) >= 0 {
		p.pos++
	}
}

// list parses "[" [scalar {"," scalar} [","]] "]".
func (p *literalParser) list() ([]string, bool) {
	p.pos++ // [
	items := []string{}
	for {
		p.skipSpace()
		if p.peek() == ']' {
			p.pos++
			return items, true
		}
		item, ok := p.scalar()
		if !ok {
			return nil, false
		}
		items = append(items, item)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return items, true
		default:
			return nil, false
		}
	}
}

// scalar parses a quoted string or a bare number.
func (p *literalParser) scalar() (string, bool) {
	switch q := p.peek(); q {
	case '\'', '"':
		return p.quoted(q)
	}
	start := p.pos
	for !p.done() && strings.IndexByte(",] \t\r\n", p.src[p.pos]) < 0 {
		p.pos++
	}
	tok := p.src[start:p.pos]
	if _, err := strconv.ParseFloat(tok, 64); err != nil {
		return "", false
	}
	return tok, true
}

// quoted parses a string delimited by q, resolving backslash escapes.
func (p *literalParser) quoted(q byte) (string, bool) {
	p.pos++ // opening quote
	var sb strings.Builder
	for !p.done() {
		c := p.src[p.pos]
		switch {
		case c == q:
			p.pos++
			return sb.String(), true
		case c == '\\' && p.pos+1 < len(p.src):
			p.pos++
			sb.WriteByte(unescape(p.src[p.pos]))
		default:
			sb.WriteByte(c)
		}
		p.pos++
	}
	return "", false
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	}
	return c
}
