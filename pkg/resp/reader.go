package resp

import (
	"errors"
	"fmt"
	"io"
)

const (
	defaultReadSize = 4096

	// DefaultMaxBuffer limits how many unconsumed bytes a Reader holds.
	DefaultMaxBuffer = 64 * 1024 * 1024
)

// Reader decodes frames from a byte stream. It owns a growable buffer and
// decodes incrementally: Next reports ErrIncomplete until Fill has read
// enough bytes for a whole frame.
//
// Values returned by Next and ReadValue reference the internal buffer and
// stay valid only until the following call to Fill.
type Reader struct {
	src       io.Reader
	dec       Decoder
	buf       []byte
	r, w      int
	maxBuffer int

	scan    frameScan
	decodes int // number of Decode calls
}

// NewReader returns a Reader reading from src with DefaultDecoder.
func NewReader(src io.Reader) *Reader {
	return NewReaderWithDecoder(src, DefaultDecoder)
}

// NewReaderWithDecoder returns a Reader that applies dec's limits.
func NewReaderWithDecoder(src io.Reader, dec Decoder) *Reader {
	return &Reader{
		src:       src,
		dec:       dec,
		buf:       make([]byte, defaultReadSize),
		maxBuffer: DefaultMaxBuffer,
	}
}

// Buffered returns the number of bytes read from the source but not yet
// consumed by a decoded frame.
func (r *Reader) Buffered() int {
	return r.w - r.r
}

// Next decodes the next frame from buffered bytes without reading.
// Progress through a partial frame is kept between calls, so a frame that
// arrives over many reads costs time linear in its size.
func (r *Reader) Next() (Value, error) {
	if r.r == r.w || !r.scan.ready(r.buf[r.r:r.w], r.dec) {
		return Value{}, ErrIncomplete
	}
	r.decodes++
	v, next, err := r.dec.Decode(r.buf[:r.w], r.r)
	if err != nil {
		return Value{}, err
	}
	r.r = next
	r.scan.reset()
	return v, nil
}

// Fill reads more bytes from the source. It compacts or grows the buffer
// as needed and invalidates previously returned values.
func (r *Reader) Fill() error {
	if r.r == r.w {
		r.r, r.w = 0, 0
	}
	if r.w == len(r.buf) {
		if r.r > 0 {
			r.w = copy(r.buf, r.buf[r.r:r.w])
			r.r = 0
		} else {
			if len(r.buf) >= r.maxBuffer {
				return fmt.Errorf("%w: buffered frame exceeds %d bytes", ErrLimitExceeded, r.maxBuffer)
			}
			size := min(2*len(r.buf), r.maxBuffer)
			grown := make([]byte, size)
			copy(grown, r.buf[:r.w])
			r.buf = grown
		}
	}

	n, err := r.src.Read(r.buf[r.w:])
	r.w += n
	if n > 0 {
		return nil
	}
	if errors.Is(err, io.EOF) && r.r != r.w {
		return io.ErrUnexpectedEOF
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return err
}

// ReadValue reads until one whole frame is available and returns it.
func (r *Reader) ReadValue() (Value, error) {
	for {
		v, err := r.Next()
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrIncomplete) {
			return Value{}, err
		}
		if err := r.Fill(); err != nil {
			return Value{}, err
		}
	}
}
