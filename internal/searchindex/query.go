package searchindex

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type Op int

const (
	OpMatch Op = iota // substring / phrase match
	OpEq
	OpLt
	OpLte
	OpGt
	OpGte
	OpRange
)

type fieldKind int

const (
	textField fieldKind = iota
	listField
	numericField
	exactField
)

type fieldDef struct {
	column string
	kind   fieldKind
}

// Searchable fields. Free text without a field goes to the content column.
var fields = map[string]fieldDef{
	"title":       {column: "title", kind: textField},
	"description": {column: "description", kind: textField},
	"city":        {column: "city", kind: textField},
	"owner":       {column: "owner_name", kind: textField},
	"status":      {column: "status", kind: exactField},
	"amenity":     {column: "amenities", kind: listField},
	"category":    {column: "categories", kind: listField},
	"price":       {column: "price_per_night", kind: numericField},
	"bedrooms":    {column: "bedrooms", kind: numericField},
	"guests":      {column: "max_guests", kind: numericField},
}

// Clause is a single search term.
type Clause struct {
	Field  string // empty for free text
	Op     Op
	Value  string
	Low    int
	High   int
	Negate bool
}

// Query is a conjunction of clauses. An empty query matches everything.
type Query struct {
	Raw     string
	Clauses []Clause
}

// SyntaxError describes malformed query input.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("query syntax error at position %d: %s", e.Pos, e.Msg)
}

// ParseQuery parses the query string language:
//
//	loft "sea view" city:berlin -amenity:pool price:>=80 bedrooms:[2 TO 4]
//
// Terms are ANDed. A leading '-' negates a term. "*" alone matches all.
func ParseQuery(s string) (*Query, error) {
	p := &parser{src: s}
	q := &Query{Raw: s}
	if strings.TrimSpace(s) == "*" {
		return q, nil
	}
	for {
		p.skipSpace()
		if p.eof() {
			return q, nil
		}
		c, err := p.clause()
		if err != nil {
			return nil, err
		}
		q.Clauses = append(q.Clauses, c)
	}
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte { return p.src[p.pos] }

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(rune(p.peek())) {
		p.pos++
	}
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) clause() (Clause, error) {
	var c Clause
	start := p.pos

	if p.peek() == '-' {
		c.Negate = true
		p.pos++
		if p.eof() || unicode.IsSpace(rune(p.peek())) {
			return c, p.errorf(start, "dangling '-'")
		}
	}

	if p.peek() == '"' {
		v, err := p.phrase()
		if err != nil {
			return c, err
		}
		c.Op = OpMatch
		c.Value = v
		return c, nil
	}

	wordStart := p.pos
	for !p.eof() && !unicode.IsSpace(rune(p.peek())) && p.peek() != ':' && p.peek() != '"' {
		p.pos++
	}
	word := p.src[wordStart:p.pos]

	if p.eof() || p.peek() != ':' {
		if !p.eof() && p.peek() == '"' {
			return c, p.errorf(p.pos, "unexpected quote")
		}
		c.Op = OpMatch
		c.Value = word
		return c, nil
	}

	// field:value
	p.pos++
	name := strings.ToLower(word)
	def, ok := fields[name]
	if name == "" {
		return c, p.errorf(wordStart, "missing field name before ':'")
	}
	if !ok {
		return c, p.errorf(wordStart, "unknown field %q", word)
	}
	c.Field = name

	if p.eof() || unicode.IsSpace(rune(p.peek())) {
		return c, p.errorf(p.pos, "missing value for field %q", name)
	}

	if def.kind == numericField {
		return p.numeric(c)
	}

	if p.peek() == '"' {
		v, err := p.phrase()
		if err != nil {
			return c, err
		}
		c.Value = v
	} else {
		c.Value = p.bareValue()
	}
	if def.kind == exactField || def.kind == listField {
		c.Op = OpEq
	} else {
		c.Op = OpMatch
	}
	return c, nil
}

func (p *parser) phrase() (string, error) {
	open := p.pos
	p.pos++ // opening quote
	end := strings.IndexByte(p.src[p.pos:], '"')
	if end < 0 {
		return "", p.errorf(open, "unterminated quote")
	}
	v := p.src[p.pos : p.pos+end]
	p.pos += end + 1
	if strings.TrimSpace(v) == "" {
		return "", p.errorf(open, "empty phrase")
	}
	return v, nil
}

func (p *parser) bareValue() string {
	start := p.pos
	for !p.eof() && !unicode.IsSpace(rune(p.peek())) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) numeric(c Clause) (Clause, error) {
	start := p.pos
	if p.peek() == '[' {
		end := strings.IndexByte(p.src[p.pos:], ']')
		if end < 0 {
			return c, p.errorf(start, "unterminated range")
		}
		body := p.src[p.pos+1 : p.pos+end]
		p.pos += end + 1
		parts := strings.Fields(body)
		if len(parts) != 3 || !strings.EqualFold(parts[1], "TO") {
			return c, p.errorf(start, "range must look like [low TO high]")
		}
		low, err := strconv.Atoi(parts[0])
		if err != nil {
			return c, p.errorf(start, "invalid range bound %q", parts[0])
		}
		high, err := strconv.Atoi(parts[2])
		if err != nil {
			return c, p.errorf(start, "invalid range bound %q", parts[2])
		}
		if low > high {
			return c, p.errorf(start, "range low bound %d exceeds high bound %d", low, high)
		}
		c.Op, c.Low, c.High = OpRange, low, high
		return c, nil
	}

	raw := p.bareValue()
	v := raw
	switch {
	case strings.HasPrefix(v, ">="):
		c.Op, v = OpGte, v[2:]
	case strings.HasPrefix(v, "<="):
		c.Op, v = OpLte, v[2:]
	case strings.HasPrefix(v, ">"):
		c.Op, v = OpGt, v[1:]
	case strings.HasPrefix(v, "<"):
		c.Op, v = OpLt, v[1:]
	case strings.HasPrefix(v, "="):
		c.Op, v = OpEq, v[1:]
	default:
		c.Op = OpEq
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return c, p.errorf(start, "field %q expects a number, got %q", c.Field, raw)
	}
	c.Low = n
	c.Value = v
	return c, nil
}
