package logger

import (
	"log/slog"
	"strconv"
	"unicode/utf8"
)

// DefaultMaxValueLen is the default cap on logged string and byte values.
const DefaultMaxValueLen = 256

// sanitizeAttr truncates long string values and renders []byte values as
// quoted strings so binary payloads never corrupt log lines.
func sanitizeAttr(a slog.Attr, maxLen int) slog.Attr {
	if maxLen <= 0 {
		maxLen = DefaultMaxValueLen
	}

	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if len(s) > maxLen {
			return slog.String(a.Key, truncate(s, maxLen))
		}
	case slog.KindAny:
		if b, ok := a.Value.Any().([]byte); ok {
			s := string(b)
			if len(s) > maxLen {
				s = truncate(s, maxLen)
			}
			if !utf8.ValidString(s) {
				s = strconv.QuoteToASCII(s)
			}
			return slog.String(a.Key, s)
		}
	}
	return a
}

// truncate cuts s to at most maxLen bytes, not splitting a UTF-8
// sequence, and records how much was dropped.
func truncate(s string, maxLen int) string {
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "...(" + strconv.Itoa(len(s)-cut) + " more bytes)"
}
