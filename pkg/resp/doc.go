// Package resp implements the RESP2 wire format used by respkv.
//
// Decoding is span based and zero-copy: a decoded Value references the
// caller's buffer instead of owning its bytes. Callers that keep a Value
// past the lifetime of that buffer must copy Data first.
//
// Supported frames:
//   - '+' simple string
//   - '-' error
//   - ':' integer
//   - '$' bulk string (including the null bulk string "$-1")
//   - '*' array (including the null array "*-1")
//
// Usage:
//
//	v, next, err := resp.Decode(buf, 0)
//	if errors.Is(err, resp.ErrIncomplete) {
//		// read more bytes and retry from the same offset
//	}
//	out := resp.AppendValue(nil, resp.SimpleString("PONG"))
package resp
