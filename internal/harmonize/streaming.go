package harmonize

// streaming.go provides memory-efficient reader wrappers for ReEDS CSV files.
//
// ReEDS output folders routinely contain files exported through Excel or
// Windows tooling, so the harmonizer has to cope with UTF-8 BOMs and the
// occasional invalid byte sequence without loading whole files into memory:
//
//   - bomReader strips the UTF-8 BOM (0xEF 0xBB 0xBF) if present
//   - sanitizingReader replaces invalid UTF-8 bytes with '?'
//   - CountingReader tracks bytes read for progress reporting
//
// Wrap applies all three in the correct order.

import (
	"io"
	"unicode/utf8"
)

// bomReader skips a leading UTF-8 BOM on the first read.
type bomReader struct {
	reader  io.Reader
	checked bool
	held    []byte
}

func (r *bomReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true

		var buf [3]byte
		n, err := io.ReadFull(r.reader, buf[:])
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if n == 0 {
			return 0, err
		}

		if n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
			// BOM found, drop it.
		} else {
			r.held = append(r.held, buf[:n]...)
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
	}

	if len(r.held) > 0 {
		n := copy(p, r.held)
		r.held = r.held[n:]
		return n, nil
	}
	return r.reader.Read(p)
}

// sanitizingReader replaces invalid UTF-8 sequences with '?' on the fly.
// Multi-byte sequences split across reads are carried over to the next call.
type sanitizingReader struct {
	reader  io.Reader
	pending []byte
}

func (s *sanitizingReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := 0
	if len(s.pending) > 0 {
		offset = copy(p, s.pending)
		if offset < len(s.pending) {
			// Destination smaller than the carry-over; hand it out as-is.
			s.pending = append([]byte(nil), s.pending[offset:]...)
			return offset, nil
		}
		s.pending = s.pending[:0]
	}

	n, err := s.reader.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	if allASCII(p[:n]) {
		return n, err
	}
	return s.sanitize(p[:n], err == io.EOF), err
}

// sanitize rewrites data in place and returns the number of valid bytes.
// Unless atEOF, an incomplete trailing sequence moves to pending instead of
// being mangled.
func (s *sanitizingReader) sanitize(data []byte, atEOF bool) int {
	if utf8.Valid(data) {
		if !atEOF {
			if trail := incompleteTail(data); trail > 0 {
				s.pending = append(s.pending, data[len(data)-trail:]...)
				return len(data) - trail
			}
		}
		return len(data)
	}

	write := 0
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])

		if !atEOF && seqLen(data[read]) > len(data)-read {
			s.pending = append(s.pending, data[read:]...)
			return write
		}

		if r == utf8.RuneError && size == 1 {
			// '?' keeps the output the same length as the input, which a
			// streaming in-place rewrite requires.
			data[write] = '?'
			write++
			read++
		} else {
			copy(data[write:], data[read:read+size])
			write += size
			read += size
		}
	}
	return write
}

// allASCII is the fast path; most ReEDS CSV data is plain ASCII.
func allASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// incompleteTail returns how many trailing bytes could be the start of an
// unfinished multi-byte sequence.
func incompleteTail(data []byte) int {
	for i := 1; i <= 3 && i <= len(data); i++ {
		b := data[len(data)-i]
		if b >= 0xC0 {
			if i < seqLen(b) {
				return i
			}
			return 0
		}
		if b&0xC0 != 0x80 {
			return 0
		}
	}
	return 0
}

// seqLen returns the declared length of a UTF-8 sequence starting with b.
func seqLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0 // continuation byte
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}

// CountingReader wraps an io.Reader and tracks bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Total     int64 // 0 if unknown
}

func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// Progress returns the read progress as a percentage, 0 when Total is unknown.
func (r *CountingReader) Progress() int {
	if r.Total <= 0 {
		return 0
	}
	return int(r.BytesRead * 100 / r.Total)
}

// Wrap layers BOM skipping, UTF-8 sanitization and byte counting over r.
// BOM stripping must run first, counting last so it sees the raw volume of
// sanitized bytes actually consumed.
func Wrap(r io.Reader, total int64) *CountingReader {
	return &CountingReader{
		reader: &sanitizingReader{reader: &bomReader{reader: r}},
		Total:  total,
	}
}
