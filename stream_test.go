package bulkdir

import (
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher feeds the stream canned spans, standing in for the syscall
// layer so the state machine is testable on any platform.
type fakeFetcher struct {
	spans  [][]byte
	err    error // returned after spans are consumed
	calls  int
	closes int
}

func (f *fakeFetcher) fetch() ([]byte, error) {
	f.calls++
	if len(f.spans) == 0 {
		if f.err != nil {
			return nil, f.err
		}
		return nil, nil
	}
	span := f.spans[0]
	f.spans = f.spans[1:]
	return span, nil
}

func (f *fakeFetcher) Close() error {
	f.closes++
	return nil
}

func span(records ...testRecord) []byte {
	var buf []byte
	for _, r := range records {
		buf = append(buf, r.encode()...)
	}
	return buf
}

func named(names ...string) []testRecord {
	records := make([]testRecord, len(names))
	for i, n := range names {
		records[i] = testRecord{name: n, withName: true}
	}
	return records
}

func drainNames(t *testing.T, s *Entries) []string {
	t.Helper()
	var out []string
	for {
		entry, err := s.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out = append(out, entry.Name)
	}
}

func TestEntriesYieldsAcrossRefillsInOrder(t *testing.T) {
	f := &fakeFetcher{spans: [][]byte{
		span(named("a", "b", "c")...),
		span(named("d")...),
		span(named("e", "f")...),
	}}
	s := &Entries{f: f}

	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, drainNames(t, s))
	assert.Equal(t, 4, f.calls) // three data fetches plus the exhausting one
	assert.Equal(t, 1, f.closes)
}

func TestEntriesEmptyDirectory(t *testing.T) {
	f := &fakeFetcher{}
	s := &Entries{f: f}

	assert.Empty(t, drainNames(t, s))
	assert.Equal(t, 1, f.closes)
}

func TestEntriesFetchErrorYieldedOnce(t *testing.T) {
	fetchErr := NewSyscallError("getattrlistbulk", errors.New("io error"))
	f := &fakeFetcher{
		spans: [][]byte{span(named("a")...)},
		err:   fetchErr,
	}
	s := &Entries{f: f}

	entry, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", entry.Name)

	_, err = s.Next()
	assert.Equal(t, fetchErr, err)

	// The failure is terminal: no further fetch attempts, just EOF.
	calls := f.calls
	_, err = s.Next()
	assert.Equal(t, io.EOF, err)
	_, err = s.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, calls, f.calls)
	assert.Equal(t, 1, f.closes)
}

func TestEntriesSkipsMalformedRecord(t *testing.T) {
	good := testRecord{name: "good", withName: true}.encode()
	bad := testRecord{name: "bad", withName: true}.encode()
	// Break the bad record's name reference so it fails to decode while its
	// length prefix stays intact.
	binary.NativeEndian.PutUint32(bad[entryLenSize+returnedAttrsSize:], 0x7fffffff)
	tail := testRecord{name: "after", withName: true}.encode()

	buf := append(append(append([]byte{}, good...), bad...), tail...)
	f := &fakeFetcher{spans: [][]byte{buf}}
	s := &Entries{f: f}

	entry, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "good", entry.Name)

	_, err = s.Next()
	assert.ErrorIs(t, err, ErrInvalidOffset)

	// The cursor advanced past the malformed record.
	entry, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, "after", entry.Name)

	_, err = s.Next()
	assert.Equal(t, io.EOF, err)
}

func TestEntriesForwardProgressAllMalformed(t *testing.T) {
	// Every record in the span fails to decode. Each pull must consume one
	// record and the stream must land on EOF, never re-decoding the same
	// bytes: two bad records means exactly two errors and then EOF.
	breakName := func(rec []byte) []byte {
		binary.NativeEndian.PutUint32(rec[entryLenSize+returnedAttrsSize:], 0x7fffffff)
		return rec
	}
	buf := append(
		breakName(testRecord{name: "one", withName: true}.encode()),
		breakName(testRecord{name: "two", withName: true}.encode())...,
	)
	f := &fakeFetcher{spans: [][]byte{buf}}
	s := &Entries{f: f}

	_, err := s.Next()
	assert.ErrorIs(t, err, ErrInvalidOffset)
	_, err = s.Next()
	assert.ErrorIs(t, err, ErrInvalidOffset)
	_, err = s.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 1, f.closes)
}

func TestEntriesDiscardsSpanOnUnusablePrefix(t *testing.T) {
	good := testRecord{name: "good", withName: true}.encode()
	// A zero length prefix makes the rest of the span unlocatable.
	corrupt := append(append([]byte{}, good...), 0, 0, 0, 0)
	f := &fakeFetcher{spans: [][]byte{
		corrupt,
		span(named("next")...),
	}}
	s := &Entries{f: f}

	entry, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "good", entry.Name)

	_, err = s.Next()
	assert.ErrorIs(t, err, ErrInvalidEntryLength)

	// Forward progress: the stream moved on to the next span.
	entry, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, "next", entry.Name)
}

func TestEntriesCollectSkipsDecodeErrors(t *testing.T) {
	bad := testRecord{name: "bad", withName: true}.encode()
	binary.NativeEndian.PutUint32(bad[entryLenSize+returnedAttrsSize:], 0x7fffffff)
	buf := append(span(named("a")...), bad...)
	buf = append(buf, span(named("b")...)...)

	s := &Entries{f: &fakeFetcher{spans: [][]byte{buf}}}

	entries, err := s.Collect()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Name)
	assert.Equal(t, "b", entries[1].Name)
}

func TestEntriesCollectStopsOnFetchError(t *testing.T) {
	fetchErr := NewSyscallError("getattrlistbulk", errors.New("boom"))
	s := &Entries{f: &fakeFetcher{
		spans: [][]byte{span(named("a")...)},
		err:   fetchErr,
	}}

	entries, err := s.Collect()
	assert.Equal(t, fetchErr, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].Name)
}

func TestEntriesAllRangeIteration(t *testing.T) {
	s := &Entries{f: &fakeFetcher{spans: [][]byte{span(named("x", "y", "z")...)}}}

	var names []string
	for entry, err := range s.All() {
		require.NoError(t, err)
		names = append(names, entry.Name)
	}
	assert.Equal(t, []string{"x", "y", "z"}, names)
}

func TestEntriesAllBreakEarly(t *testing.T) {
	f := &fakeFetcher{spans: [][]byte{span(named("x", "y", "z")...)}}
	s := &Entries{f: f}

	for entry, err := range s.All() {
		require.NoError(t, err)
		assert.Equal(t, "x", entry.Name)
		break
	}

	// Breaking does not close the stream; the remaining entries are still
	// there for a later pull.
	entry, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "y", entry.Name)

	require.NoError(t, s.Close())
	assert.Equal(t, 1, f.closes)
}

func TestEntriesCloseIsIdempotent(t *testing.T) {
	f := &fakeFetcher{spans: [][]byte{span(named("a")...)}}
	s := &Entries{f: f}

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	// Closed streams yield nothing and never fetch.
	_, err := s.Next()
	assert.Equal(t, io.EOF, err)
	assert.Zero(t, f.calls)
}

func TestEntriesCloseAfterExhaustion(t *testing.T) {
	f := &fakeFetcher{}
	s := &Entries{f: f}

	_, err := s.Next()
	assert.Equal(t, io.EOF, err)
	require.NoError(t, s.Close())
}
