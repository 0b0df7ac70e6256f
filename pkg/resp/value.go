package resp

import (
	"fmt"
	"strconv"
)

// Kind identifies a RESP frame type. Its value is the frame's tag byte.
type Kind byte

const (
	KindInvalid      Kind = 0
	KindSimpleString Kind = '+'
	KindError        Kind = '-'
	KindInteger      Kind = ':'
	KindBulkString   Kind = '$'
	KindArray        Kind = '*'
)

func (k Kind) String() string {
	switch k {
	case KindSimpleString:
		return "simple string"
	case KindError:
		return "error"
	case KindInteger:
		return "integer"
	case KindBulkString:
		return "bulk string"
	case KindArray:
		return "array"
	default:
		return "invalid"
	}
}

// Value is a single RESP frame.
//
// Data holds the payload of simple strings, errors, integers (decimal text)
// and bulk strings. Elems holds the elements of an array. Null marks the
// null bulk string and the null array.
type Value struct {
	Kind  Kind
	Data  []byte
	Null  bool
	Elems []Value
}

// SimpleString returns a '+' frame.
func SimpleString(s string) Value {
	return Value{Kind: KindSimpleString, Data: []byte(s)}
}

// Error returns a '-' frame.
func Error(msg string) Value {
	return Value{Kind: KindError, Data: []byte(msg)}
}

// Errorf formats an error frame.
func Errorf(format string, args ...any) Value {
	return Error(fmt.Sprintf(format, args...))
}

// Integer returns a ':' frame.
func Integer(n int64) Value {
	return Value{Kind: KindInteger, Data: strconv.AppendInt(nil, n, 10)}
}

// Bulk returns a bulk string frame. A nil slice yields the empty string,
// use NullBulk for the null bulk string.
func Bulk(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{Kind: KindBulkString, Data: b}
}

// BulkString returns a bulk string frame holding s.
func BulkString(s string) Value {
	return Bulk([]byte(s))
}

// NullBulk returns the null bulk string "$-1".
func NullBulk() Value {
	return Value{Kind: KindBulkString, Null: true}
}

// Array returns an array frame.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{Kind: KindArray, Elems: elems}
}

// Command builds a request array of bulk strings, the shape clients send.
func Command(args ...string) Value {
	elems := make([]Value, len(args))
	for i, a := range args {
		elems[i] = BulkString(a)
	}
	return Array(elems...)
}

// Int parses the payload of an integer frame.
func (v Value) Int() (int64, error) {
	if v.Kind != KindInteger {
		return 0, fmt.Errorf("%w: %s is not an integer", ErrProtocol, v.Kind)
	}
	n, err := strconv.ParseInt(string(v.Data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid integer %q", ErrProtocol, v.Data)
	}
	return n, nil
}

// String returns the payload as a string. Arrays and null values yield "".
func (v Value) String() string {
	return string(v.Data)
}

// IsError reports whether v is an error frame.
func (v Value) IsError() bool {
	return v.Kind == KindError
}

// Clone returns a deep copy of v that does not alias any read buffer.
func (v Value) Clone() Value {
	c := Value{Kind: v.Kind, Null: v.Null}
	if v.Data != nil {
		c.Data = append([]byte(nil), v.Data...)
	}
	if v.Elems != nil {
		c.Elems = make([]Value, len(v.Elems))
		for i, e := range v.Elems {
			c.Elems[i] = e.Clone()
		}
	}
	return c
}
