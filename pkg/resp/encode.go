package resp

import "strconv"

var crlf = []byte("\r\n")

// Encode returns the wire form of v.
func Encode(v Value) []byte {
	return AppendValue(nil, v)
}

// AppendValue appends the wire form of v to dst. Values with an invalid
// kind append nothing. CR and LF inside a simple string, error or integer
// are written as spaces so the line stays a single frame.
func AppendValue(dst []byte, v Value) []byte {
	switch v.Kind {
	case KindSimpleString, KindError, KindInteger:
		dst = append(dst, byte(v.Kind))
		for _, c := range v.Data {
			if c == '\r' || c == '\n' {
				c = ' '
			}
			dst = append(dst, c)
		}
		return append(dst, crlf...)
	case KindBulkString:
		if v.Null {
			return append(dst, "$-1\r\n"...)
		}
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(v.Data)), 10)
		dst = append(dst, crlf...)
		dst = append(dst, v.Data...)
		return append(dst, crlf...)
	case KindArray:
		if v.Null {
			return append(dst, "*-1\r\n"...)
		}
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(v.Elems)), 10)
		dst = append(dst, crlf...)
		for _, e := range v.Elems {
			dst = AppendValue(dst, e)
		}
		return dst
	default:
		return dst
	}
}
