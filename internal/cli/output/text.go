package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/respkv/pkg/resp"
)

// TextFormatter formats replies the way redis-cli does.
type TextFormatter struct{}

// Format writes v followed by a newline.
func (f *TextFormatter) Format(w io.Writer, v resp.Value) error {
	var b strings.Builder
	writeText(&b, v, 0)
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

// writeText renders v. indent is the column nested array items align to.
func writeText(b *strings.Builder, v resp.Value, indent int) {
	switch v.Kind {
	case resp.KindSimpleString:
		b.Write(v.Data)
	case resp.KindError:
		b.WriteString("(error) ")
		b.Write(v.Data)
	case resp.KindInteger:
		b.WriteString("(integer) ")
		b.Write(v.Data)
	case resp.KindBulkString:
		if v.Null {
			b.WriteString("(nil)")
			return
		}
		b.WriteString(strconv.Quote(v.String()))
	case resp.KindArray:
		switch {
		case v.Null:
			b.WriteString("(nil)")
		case len(v.Elems) == 0:
			b.WriteString("(empty array)")
		default:
			writeArray(b, v.Elems, indent)
		}
	default:
		b.WriteString("(unknown reply)")
	}
}

func writeArray(b *strings.Builder, elems []resp.Value, indent int) {
	width := len(strconv.Itoa(len(elems)))
	for i, e := range elems {
		if i > 0 {
			b.WriteByte('\n')
			b.WriteString(strings.Repeat(" ", indent))
		}
		prefix := fmt.Sprintf("%*d) ", width, i+1)
		b.WriteString(prefix)
		writeText(b, e, indent+len(prefix))
	}
}
