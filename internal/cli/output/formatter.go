package output

import (
	"io"

	"github.com/yndnr/respkv/pkg/resp"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formatter writes a reply.
type Formatter interface {
	Format(w io.Writer, v resp.Value) error
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TextFormatter{}
	}
}

// ReplyData converts a reply to plain Go values: strings, int64, nil,
// []any, and map[string]any{"error": msg} for error replies.
func ReplyData(v resp.Value) any {
	switch v.Kind {
	case resp.KindSimpleString:
		return v.String()
	case resp.KindError:
		return map[string]any{"error": v.String()}
	case resp.KindInteger:
		if n, err := v.Int(); err == nil {
			return n
		}
		return v.String()
	case resp.KindBulkString:
		if v.Null {
			return nil
		}
		return v.String()
	case resp.KindArray:
		if v.Null {
			return nil
		}
		out := make([]any, len(v.Elems))
		for i, e := range v.Elems {
			out[i] = ReplyData(e)
		}
		return out
	default:
		return nil
	}
}
