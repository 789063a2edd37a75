package prototxt

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrSyntax is wrapped by every decoding error.
var ErrSyntax = errors.New("prototxt syntax error")

// Decode reads all of r and parses it with Unmarshal.
func Decode(r io.Reader) (*Message, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// Unmarshal parses text format data into a Message. Without a schema, numbers
// with a '.', an exponent or a trailing 'f' decode as Float, as do inf and
// nan; other numbers decode as int64. Bare true/false decode as bool and
// other identifiers as Enum.
func Unmarshal(data []byte) (*Message, error) {
	d := &decoder{src: string(data), line: 1}
	m, err := d.fields(false)
	if err != nil {
		return nil, err
	}
	return m, nil
}

type decoder struct {
	src  string
	pos  int
	line int
}

func (d *decoder) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, d.line, fmt.Sprintf(format, args...))
}

// skip consumes whitespace, '#' comments and field separators.
func (d *decoder) skip() {
	for d.pos < len(d.src) {
		c := d.src[d.pos]
		switch {
		case c == '\n':
			d.line++
			d.pos++
		case c == ' ' || c == '\t' || c == '\r' || c == ',' || c == ';':
			d.pos++
		case c == '#':
			for d.pos < len(d.src) && d.src[d.pos] != '\n' {
				d.pos++
			}
		default:
			return
		}
	}
}

func (d *decoder) peek() byte {
	if d.pos < len(d.src) {
		return d.src[d.pos]
	}
	return 0
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '.' || c == '-' || c == '+' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (d *decoder) word() string {
	start := d.pos
	for d.pos < len(d.src) && isIdentByte(d.src[d.pos]) {
		d.pos++
	}
	return d.src[start:d.pos]
}

// fields parses key/value pairs until EOF or, when nested, a closing brace.
func (d *decoder) fields(nested bool) (*Message, error) {
	m := New()
	for {
		d.skip()
		c := d.peek()
		if c == 0 {
			if nested {
				return nil, d.errorf("unexpected end of input, missing '}'")
			}
			return m, nil
		}
		if c == '}' {
			if !nested {
				return nil, d.errorf("unexpected '}'")
			}
			d.pos++
			return m, nil
		}

		key := d.word()
		if key == "" {
			return nil, d.errorf("expected field name, got %q", string(c))
		}
		d.skip()
		colon := false
		if d.peek() == ':' {
			colon = true
			d.pos++
			d.skip()
		}
		switch d.peek() {
		case '{', '<':
			closing := byte('}')
			if d.peek() == '<' {
				closing = '>'
			}
			d.pos++
			var sub *Message
			var err error
			if closing == '}' {
				sub, err = d.fields(true)
			} else {
				sub, err = d.angle()
			}
			if err != nil {
				return nil, err
			}
			m.Fields = append(m.Fields, Field{Key: key, Value: sub})
		default:
			if !colon {
				return nil, d.errorf("expected ':' after %q", key)
			}
			v, err := d.scalar()
			if err != nil {
				return nil, err
			}
			m.Fields = append(m.Fields, Field{Key: key, Value: v})
		}
	}
}

// angle handles the rarely used `key < ... >` message delimiters.
func (d *decoder) angle() (*Message, error) {
	end := strings.IndexByte(d.src[d.pos:], '>')
	if end < 0 {
		return nil, d.errorf("unexpected end of input, missing '>'")
	}
	inner := &decoder{src: d.src[d.pos : d.pos+end], line: d.line}
	m, err := inner.fields(false)
	if err != nil {
		return nil, err
	}
	d.line = inner.line
	d.pos += end + 1
	return m, nil
}

func (d *decoder) scalar() (any, error) {
	c := d.peek()
	if c == '"' || c == '\'' {
		s, err := d.quoted()
		if err != nil {
			return nil, err
		}
		// Adjacent string literals are concatenated.
		for {
			d.skip()
			if n := d.peek(); n != '"' && n != '\'' {
				break
			}
			more, err := d.quoted()
			if err != nil {
				return nil, err
			}
			s += more
		}
		return s, nil
	}

	tok := d.word()
	if tok == "" {
		return nil, d.errorf("expected value, got %q", string(c))
	}
	switch tok {
	case "true", "True", "t":
		return true, nil
	case "false", "False", "f":
		return false, nil
	}
	if f, ok := nonFinite(tok); ok {
		return f, nil
	}
	if first := tok[0]; first == '-' || first == '+' || first == '.' || (first >= '0' && first <= '9') {
		return parseNumber(tok, d)
	}
	return Enum(tok), nil
}

// nonFinite recognises the inf, infinity and nan spellings, optionally signed.
func nonFinite(tok string) (Float, bool) {
	lower := strings.ToLower(tok)
	sign := 1
	switch lower[0] {
	case '-':
		sign = -1
		lower = lower[1:]
	case '+':
		lower = lower[1:]
	}
	switch lower {
	case "inf", "infinity":
		return Float(math.Inf(sign)), true
	case "nan":
		return Float(math.NaN()), true
	}
	return 0, false
}

func parseNumber(tok string, d *decoder) (any, error) {
	lower := strings.ToLower(tok)
	unsigned := strings.TrimLeft(lower, "+-")
	if strings.HasPrefix(unsigned, "0x") {
		i, err := strconv.ParseInt(lower, 0, 64)
		if err != nil {
			return nil, d.errorf("invalid number %q", tok)
		}
		return i, nil
	}
	// A trailing f marks a float literal.
	floatSuffix := strings.HasSuffix(lower, "f")
	lower = strings.TrimSuffix(lower, "f")
	if !floatSuffix && !strings.ContainsAny(lower, ".e") {
		if i, err := strconv.ParseInt(lower, 10, 64); err == nil {
			return i, nil
		}
	}
	f, err := strconv.ParseFloat(lower, 64)
	if err != nil {
		return nil, d.errorf("invalid number %q", tok)
	}
	return Float(f), nil
}

func (d *decoder) quoted() (string, error) {
	q := d.src[d.pos]
	d.pos++
	var sb strings.Builder
	for {
		if d.pos >= len(d.src) {
			return "", d.errorf("unterminated string")
		}
		c := d.src[d.pos]
		switch {
		case c == q:
			d.pos++
			return sb.String(), nil
		case c == '\n':
			return "", d.errorf("newline in string")
		case c == '\\':
			d.pos++
			if d.pos >= len(d.src) {
				return "", d.errorf("unterminated escape")
			}
			e := d.src[d.pos]
			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '"', '\'', '\\', '?':
				sb.WriteByte(e)
			case '0', '1', '2', '3', '4', '5', '6', '7':
				end := d.pos
				for end < len(d.src) && end < d.pos+3 && d.src[end] >= '0' && d.src[end] <= '7' {
					end++
				}
				n, _ := strconv.ParseUint(d.src[d.pos:end], 8, 8)
				sb.WriteByte(byte(n))
				d.pos = end - 1
			default:
				return "", d.errorf("unknown escape \\%c", e)
			}
			d.pos++
		default:
			sb.WriteByte(c)
			d.pos++
		}
	}
}
