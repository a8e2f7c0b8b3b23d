package main

import (
	"strings"
	"time"
)

func splitTokens(s string) []string {
	return strings.Fields(s)
}

// cstr builds a NUL-terminated byte buffer for feeding the raw chat ABIs
// from inside the process (demo feed and tests).
func cstr(s string) *byte {
	b := append([]byte(s), 0)
	return &b[0]
}

// toFileTime converts a time.Time into the host's 100 ns tick format.
func toFileTime(t time.Time) fileTime {
	ticks := fileTimeUnixOffset + uint64(t.Unix())*1e7 + uint64(t.Nanosecond()/100)
	return fileTime{Low: uint32(ticks), High: uint32(ticks >> 32)}
}
