package resp

import "bytes"

// frameScan tracks how far the frame at the head of a Reader's buffer has
// been walked, so that a frame arriving in many reads is scanned once in
// total rather than once per read. It only follows the framing (lines,
// bulk lengths, array counts) and hands anything unusual to the Decoder,
// which stays the single judge of validity.
type frameScan struct {
	off      int   // bytes of the frame walked so far
	lineFrom int   // where the CR search for the current line resumes
	pending  []int // elements still owed to each open array
	started  bool
}

func (s *frameScan) reset() {
	s.off, s.lineFrom = 0, 0
	s.pending = s.pending[:0]
	s.started = false
}

// complete records the end of one element and closes every array it
// fills.
func (s *frameScan) complete() {
	s.started = true
	for n := len(s.pending); n > 0; n = len(s.pending) {
		s.pending[n-1]--
		if s.pending[n-1] > 0 {
			return
		}
		s.pending = s.pending[:n-1]
	}
}

// ready reports whether decoding frame can produce something other than
// ErrIncomplete: either the whole frame is buffered or the Decoder will
// reject what is there. frame starts at the frame's first byte.
func (s *frameScan) ready(frame []byte, d Decoder) bool {
	for !s.started || len(s.pending) > 0 {
		if s.off >= len(frame) {
			return false
		}
		tag := Kind(frame[s.off])

		limit := maxHeaderLen
		if tag == KindSimpleString || tag == KindError || tag == KindInteger {
			limit = d.maxBulkLen()
		}
		from := max(s.lineFrom, s.off+1)
		cr := bytes.IndexByte(frame[from:], '\r')
		if cr < 0 {
			s.lineFrom = len(frame)
			return len(frame)-s.off-1 > limit
		}
		end := from + cr
		if end-s.off-1 > limit || end+1 < len(frame) && frame[end+1] != '\n' {
			return true
		}
		if end+1 >= len(frame) {
			s.lineFrom = end
			return false
		}
		next := end + 2

		switch tag {
		case KindSimpleString, KindError, KindInteger:
			s.off, s.lineFrom = next, next
			s.complete()
		case KindBulkString:
			n, ok := parseLength(frame[s.off+1 : end])
			if !ok || n > d.maxBulkLen() {
				return true
			}
			if n >= 0 {
				next += n + 2
				if next > len(frame) {
					// The header is re-read once the body arrives.
					s.lineFrom = s.off
					return false
				}
			}
			s.off, s.lineFrom = next, next
			s.complete()
		case KindArray:
			if len(s.pending) >= d.maxDepth() {
				return true
			}
			n, ok := parseLength(frame[s.off+1 : end])
			if !ok || n > d.maxArrayLen() {
				return true
			}
			s.off, s.lineFrom = next, next
			if n <= 0 {
				s.complete()
			} else {
				s.started = true
				s.pending = append(s.pending, n)
			}
		default:
			return true
		}
	}
	return true
}
