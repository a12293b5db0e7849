package bulkdir

import (
	"io"
	"iter"
)

// bulkFetcher refills the enumeration buffer. fetch returns the valid byte
// span of the buffer after a successful call, a nil span when the directory
// is exhausted, or an error. The span aliases the fetcher's internal buffer
// and is only valid until the next fetch.
type bulkFetcher interface {
	fetch() ([]byte, error)
	Close() error
}

type streamState int

const (
	// stateFill: the current span is consumed, the next pull fetches.
	stateFill streamState = iota
	// stateDrain: the span still holds undecoded records.
	stateDrain
	// stateDone: exhausted or failed; no further fetches are attempted.
	stateDone
)

// Entries is a lazy stream of decoded directory entries. It owns an open
// directory descriptor and a reusable fetch buffer, refilling the buffer
// transparently as records are consumed. Entries are yielded in exactly the
// order the kernel packed them, across refills.
//
// An Entries may be handed off to another goroutine between pulls, but must
// never be pulled from two goroutines concurrently: the descriptor and
// buffer have single-owner semantics and no internal locking.
//
// The stream is not restartable. Close releases the directory descriptor
// and must be called when the caller stops early; Next releases it
// automatically once the directory is exhausted or the stream fails.
type Entries struct {
	f      bulkFetcher
	span   []byte
	cursor int
	state  streamState
}

// Next returns the next directory entry. It returns io.EOF when the
// directory is exhausted.
//
// A fetch failure is returned once and ends the stream. A malformed record
// is returned as one of the decode errors (see IsDecodeError) without
// ending the stream: the cursor skips the bad record when its length prefix
// was readable, and otherwise discards the remainder of the current buffer,
// so the stream always makes forward progress.
func (s *Entries) Next() (DirEntry, error) {
	for {
		switch s.state {
		case stateDrain:
			if s.cursor >= len(s.span) {
				s.span = nil
				s.cursor = 0
				s.state = stateFill
				continue
			}
			entry, n, err := decodeRecord(s.span, s.cursor)
			if err != nil {
				if n > 0 {
					s.cursor += n
				} else {
					// The length prefix itself was unusable; nothing after
					// this point in the span can be located.
					s.span = nil
					s.cursor = 0
					s.state = stateFill
				}
				return DirEntry{}, err
			}
			s.cursor += n
			return entry, nil

		case stateFill:
			span, err := s.f.fetch()
			if err != nil {
				s.state = stateDone
				_ = s.f.Close()
				return DirEntry{}, err
			}
			if len(span) == 0 {
				s.state = stateDone
				_ = s.f.Close()
				return DirEntry{}, io.EOF
			}
			s.span = span
			s.cursor = 0
			s.state = stateDrain

		default: // stateDone
			return DirEntry{}, io.EOF
		}
	}
}

// All returns an iterator over the remaining entries, yielding each decoded
// entry or per-entry error. Iteration stops at the end of the directory or
// when the caller breaks; breaking early does not close the stream.
func (s *Entries) All() iter.Seq2[DirEntry, error] {
	return func(yield func(DirEntry, error) bool) {
		for {
			entry, err := s.Next()
			if err == io.EOF {
				return
			}
			if !yield(entry, err) {
				return
			}
		}
	}
}

// Collect drains the stream and returns every successfully decoded entry,
// stopping at the first non-decode error. Decode errors are skipped.
func (s *Entries) Collect() ([]DirEntry, error) {
	var entries []DirEntry
	for {
		entry, err := s.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			if IsDecodeError(err) {
				continue
			}
			return entries, err
		}
		entries = append(entries, entry)
	}
}

// Close releases the directory descriptor. It is safe to call multiple
// times and after the stream has ended on its own; the descriptor is only
// ever closed once.
func (s *Entries) Close() error {
	s.state = stateDone
	s.span = nil
	return s.f.Close()
}
