package prototxt

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/partsegnet/internal/pyrepr"
)

const indentUnit = "  "

// Encode writes m in text format.
func Encode(w io.Writer, m *Message) error {
	bw := bufio.NewWriter(w)
	encodeFields(bw, m, 0)
	return bw.Flush()
}

// Marshal returns the text format encoding of m.
func Marshal(m *Message) []byte {
	var buf bytes.Buffer
	_ = Encode(&buf, m)
	return buf.Bytes()
}

func encodeFields(w *bufio.Writer, m *Message, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	for _, f := range m.Fields {
		if sub, ok := f.Value.(*Message); ok {
			fmt.Fprintf(w, "%s%s {\n", indent, f.Key)
			encodeFields(w, sub, depth+1)
			fmt.Fprintf(w, "%s}\n", indent)
			continue
		}
		fmt.Fprintf(w, "%s%s: %s\n", indent, f.Key, formatScalar(f.Value))
	}
}

func formatFloat(v float64) string {
	return pyrepr.Float(v)
}

// quote escapes s the way protobuf's C-style escaper does: quotes,
// backslashes and control characters are escaped, other bytes above 0x7e
// are written as octal.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '"':
			sb.WriteString(`\"`)
		case '\'':
			sb.WriteString(`\'`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&sb, `\%03o`, c)
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
