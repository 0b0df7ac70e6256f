package resp

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// Protocol limits to bound the work an adversarial client can cause.
const (
	// DefaultMaxArrayLen limits the number of elements in a RESP array.
	DefaultMaxArrayLen = 1024

	// DefaultMaxBulkLen limits the size of a single bulk string (512KB).
	DefaultMaxBulkLen = 512 * 1024

	// DefaultMaxDepth limits array nesting.
	DefaultMaxDepth = 8

	// maxHeaderLen bounds the decimal header of bulk strings and arrays.
	maxHeaderLen = 32
)

var (
	// ErrProtocol reports a malformed frame.
	ErrProtocol = errors.New("resp: protocol error")

	// ErrUnknownType reports a frame with an unsupported leading byte.
	ErrUnknownType = fmt.Errorf("%w: unknown frame type", ErrProtocol)

	// ErrLimitExceeded reports a frame larger than the decoder allows.
	ErrLimitExceeded = errors.New("resp: limit exceeded")

	// ErrIncomplete reports that the buffer ends before the frame does.
	// It is not a protocol violation: read more bytes and decode again
	// from the same offset.
	ErrIncomplete = errors.New("resp: incomplete frame")
)

// Decoder decodes RESP frames under configurable limits.
// Zero fields fall back to the package defaults.
type Decoder struct {
	MaxArrayLen int
	MaxBulkLen  int
	MaxDepth    int
}

// DefaultDecoder is used by the package-level Decode.
var DefaultDecoder = Decoder{
	MaxArrayLen: DefaultMaxArrayLen,
	MaxBulkLen:  DefaultMaxBulkLen,
	MaxDepth:    DefaultMaxDepth,
}

// Decode decodes one frame from buf starting at start using DefaultDecoder.
func Decode(buf []byte, start int) (Value, int, error) {
	return DefaultDecoder.Decode(buf, start)
}

// Decode decodes one frame from buf starting at start. It returns the frame
// and the offset of the first byte after it.
//
// On an unknown leading byte it returns (Value{}, 0, ErrUnknownType).
// On truncated input it returns ErrIncomplete. Returned values share
// memory with buf.
func (d Decoder) Decode(buf []byte, start int) (Value, int, error) {
	if start < 0 || start > len(buf) {
		return Value{}, 0, fmt.Errorf("%w: offset %d out of range", ErrProtocol, start)
	}
	return d.decode(buf, start, 0)
}

func (d Decoder) decode(buf []byte, start, depth int) (Value, int, error) {
	if start >= len(buf) {
		return Value{}, start, ErrIncomplete
	}

	switch Kind(buf[start]) {
	case KindSimpleString, KindError:
		return d.decodeLine(buf, start)
	case KindInteger:
		v, next, err := d.decodeLine(buf, start)
		if err != nil {
			return v, next, err
		}
		if _, err := strconv.ParseInt(string(v.Data), 10, 64); err != nil {
			return Value{}, start, fmt.Errorf("%w: invalid integer %q", ErrProtocol, v.Data)
		}
		return v, next, nil
	case KindBulkString:
		return d.decodeBulk(buf, start)
	case KindArray:
		return d.decodeArray(buf, start, depth)
	default:
		return Value{}, 0, ErrUnknownType
	}
}

// readLine locates the CRLF terminating the line that starts after the tag
// byte at start. It returns the payload end (the CR index) and the next
// offset.
func readLine(buf []byte, start, maxLen int) (end, next int, err error) {
	cr := bytes.IndexByte(buf[start+1:], '\r')
	if cr < 0 {
		if len(buf)-start-1 > maxLen {
			return 0, start, fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, maxLen)
		}
		return 0, start, ErrIncomplete
	}
	if cr > maxLen {
		return 0, start, fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, maxLen)
	}
	end = start + 1 + cr
	if end+1 >= len(buf) {
		return 0, start, ErrIncomplete
	}
	if buf[end+1] != '\n' {
		return 0, start, fmt.Errorf("%w: missing CRLF", ErrProtocol)
	}
	return end, end + 2, nil
}

func (d Decoder) decodeLine(buf []byte, start int) (Value, int, error) {
	end, next, err := readLine(buf, start, d.maxBulkLen())
	if err != nil {
		return Value{}, start, err
	}
	return Value{Kind: Kind(buf[start]), Data: buf[start+1 : end : end]}, next, nil
}

// readLength parses the decimal header of a bulk string or array.
// It returns -1 for the null marker.
func readLength(buf []byte, start int) (n, next int, err error) {
	end, next, err := readLine(buf, start, maxHeaderLen)
	if err != nil {
		return 0, start, err
	}
	hdr := buf[start+1 : end]
	n, ok := parseLength(hdr)
	if !ok {
		return 0, start, fmt.Errorf("%w: invalid length %q", ErrProtocol, hdr)
	}
	return n, next, nil
}

// parseLength parses a length header: a non-negative decimal or the null
// marker -1.
func parseLength(hdr []byte) (int, bool) {
	if string(hdr) == "-1" {
		return -1, true
	}
	if len(hdr) == 0 || hdr[0] < '0' || hdr[0] > '9' {
		return 0, false
	}
	n, err := strconv.Atoi(string(hdr))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (d Decoder) decodeBulk(buf []byte, start int) (Value, int, error) {
	n, body, err := readLength(buf, start)
	if err != nil {
		return Value{}, start, err
	}
	if n == -1 {
		return Value{Kind: KindBulkString, Null: true}, body, nil
	}
	if limit := d.maxBulkLen(); n > limit {
		return Value{}, start, fmt.Errorf("%w: bulk length %d exceeds limit %d", ErrLimitExceeded, n, limit)
	}

	end := body + n
	if end+2 > len(buf) {
		return Value{}, start, ErrIncomplete
	}
	if buf[end] != '\r' || buf[end+1] != '\n' {
		return Value{}, start, fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
	}
	return Value{Kind: KindBulkString, Data: buf[body:end:end]}, end + 2, nil
}

func (d Decoder) decodeArray(buf []byte, start, depth int) (Value, int, error) {
	if limit := d.maxDepth(); depth >= limit {
		return Value{}, start, fmt.Errorf("%w: nesting depth exceeds limit %d", ErrLimitExceeded, limit)
	}

	n, next, err := readLength(buf, start)
	if err != nil {
		return Value{}, start, err
	}
	if n == -1 {
		return Value{Kind: KindArray, Null: true}, next, nil
	}
	if limit := d.maxArrayLen(); n > limit {
		return Value{}, start, fmt.Errorf("%w: array length %d exceeds limit %d", ErrLimitExceeded, n, limit)
	}

	elems := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		elem, after, err := d.decode(buf, next, depth+1)
		if err != nil {
			if errors.Is(err, ErrUnknownType) {
				return Value{}, 0, err
			}
			return Value{}, start, err
		}
		elems = append(elems, elem)
		next = after
	}
	return Value{Kind: KindArray, Elems: elems}, next, nil
}

func (d Decoder) maxArrayLen() int {
	if d.MaxArrayLen > 0 {
		return d.MaxArrayLen
	}
	return DefaultMaxArrayLen
}

func (d Decoder) maxBulkLen() int {
	if d.MaxBulkLen > 0 {
		return d.MaxBulkLen
	}
	return DefaultMaxBulkLen
}

func (d Decoder) maxDepth() int {
	if d.MaxDepth > 0 {
		return d.MaxDepth
	}
	return DefaultMaxDepth
}
