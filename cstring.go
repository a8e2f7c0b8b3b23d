package main

import (
	"errors"
	"time"
	"unicode/utf8"
	"unsafe"
)

var errInvalidUTF8 = errors.New("invalid UTF-8 in foreign string")

// maxCStringLen bounds the NUL scan over foreign memory so a missing
// terminator cannot walk off forever.
const maxCStringLen = 1 << 16

// goString copies a NUL-terminated C string out of foreign memory. A nil
// pointer decodes to absent (ok=false), which is distinct from a present
// empty string. Invalid UTF-8 fails the whole read.
func goString(p *byte) (s string, ok bool, err error) {
	if p == nil {
		return "", false, nil
	}
	n := 0
	for n < maxCStringLen {
		if *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) == 0 {
			break
		}
		n++
	}
	b := unsafe.Slice(p, n)
	if !utf8.Valid(b) {
		return "", false, errInvalidUTF8
	}
	return string(b), true, nil
}

// fileTime is the host's native timestamp: 100 ns ticks since
// 1601-01-01 UTC, split into two 32 bit halves.
type fileTime struct {
	Low  uint32
	High uint32
}

// fileTimeUnixOffset is the tick count between the 1601 epoch and the
// Unix epoch. Converting through Unix seconds keeps the arithmetic inside
// int64 range; 1601-relative durations do not fit a time.Duration.
const fileTimeUnixOffset = 116444736000000000

func (ft fileTime) ticks() uint64 {
	return uint64(ft.High)<<32 | uint64(ft.Low)
}

var errBadFileTime = errors.New("file time out of range")

// toTime converts a fileTime to UTC. Zero, pre-1970 and absurdly large
// values are conversion failures; callers fall back to time.Now and log.
func (ft fileTime) toTime() (time.Time, error) {
	t := ft.ticks()
	if t < fileTimeUnixOffset {
		return time.Time{}, errBadFileTime
	}
	u := t - fileTimeUnixOffset
	out := time.Unix(int64(u/1e7), int64(u%1e7)*100).UTC()
	if out.Year() > 3000 {
		return time.Time{}, errBadFileTime
	}
	return out, nil
}
