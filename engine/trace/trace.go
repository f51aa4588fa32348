// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package trace records the engine's intake as a CBOR sequence and
// reads it back.
//
// A trace file is a concatenation of CBOR items (RFC 8742), one per
// intake event, in the order the engine applied them. Replaying a
// trace through a fresh engine reproduces its store, unread counts,
// and notice watermark, which makes traces useful for reproducing
// field reports without a server.
//
// Paths ending in ZstdSuffix or LZ4Suffix are written compressed,
// flushed after every record so a crash loses at most the record
// being written.
package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/linedesk/linedesk/engine"
	"github.com/linedesk/linedesk/lib/chat"
	"github.com/linedesk/linedesk/lib/clock"
	"github.com/linedesk/linedesk/lib/codec"
)

// record is the on-disk form of one event. Field keys are short
// because every push message produces a record.
type record struct {
	Kind         string         `cbor:"k"`
	Time         int64          `cbor:"t"`
	Conversation string         `cbor:"c,omitempty"`
	Message      *chat.Message  `cbor:"m,omitempty"`
	Messages     []chat.Message `cbor:"ms,omitempty"`
	Initial      bool           `cbor:"i,omitempty"`
	User         *chat.User     `cbor:"u,omitempty"`
	Users        []chat.User    `cbor:"us,omitempty"`
}

func encodeRecord(event engine.Event, at time.Time) record {
	entry := record{Kind: engine.EventName(event), Time: at.UnixMilli()}
	switch event := event.(type) {
	case engine.PushMessage:
		entry.Message = &event.Message
	case engine.PollSnapshot:
		entry.Conversation = event.Scope
		entry.Messages = event.Messages
		entry.Initial = event.Initial
	case engine.Select:
		entry.Conversation = event.Conversation
	case engine.DirectoryUpdate:
		entry.User = &event.User
	case engine.DirectoryReset:
		entry.Users = event.Users
	}
	return entry
}

func (entry record) event() (engine.Event, error) {
	switch entry.Kind {
	case "push_message":
		if entry.Message == nil {
			return nil, errors.New("push_message record without a message")
		}
		return engine.PushMessage{Message: *entry.Message}, nil
	case "poll_snapshot":
		return engine.PollSnapshot{
			Scope:    entry.Conversation,
			Messages: entry.Messages,
			Initial:  entry.Initial,
		}, nil
	case "select":
		return engine.Select{Conversation: entry.Conversation}, nil
	case "directory_update":
		if entry.User == nil {
			return nil, errors.New("directory_update record without a user")
		}
		return engine.DirectoryUpdate{User: *entry.User}, nil
	case "directory_reset":
		return engine.DirectoryReset{Users: entry.Users}, nil
	default:
		return nil, fmt.Errorf("unknown record kind %q", entry.Kind)
	}
}

// Recorder appends events to a trace. It implements engine.Recorder
// and is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	encoder *codec.Encoder
	flusher interface{ Flush() error }
	closers []io.Closer
	clock   clock.Clock
}

// Path suffixes that select trace compression.
const (
	ZstdSuffix = ".zst"
	LZ4Suffix  = ".lz4"
)

// compressor is a streaming compression writer.
type compressor interface {
	io.WriteCloser
	Flush() error
}

// NewRecorder returns a Recorder writing to w. A nil clock uses the
// wall clock.
func NewRecorder(w io.Writer, clk clock.Clock) *Recorder {
	if clk == nil {
		clk = clock.Real()
	}
	recorder := &Recorder{encoder: codec.NewEncoder(w), clock: clk}
	if closer, ok := w.(io.Closer); ok {
		recorder.closers = []io.Closer{closer}
	}
	return recorder
}

// Create opens path for appending and returns a Recorder writing to
// it. Close releases the file. Each session appended to a compressed
// trace adds one frame.
func Create(path string, clk clock.Clock) (*Recorder, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening trace: %w", err)
	}

	var stream compressor
	switch {
	case strings.HasSuffix(path, ZstdSuffix):
		encoder, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("starting zstd trace: %w", err)
		}
		stream = encoder
	case strings.HasSuffix(path, LZ4Suffix):
		stream = lz4.NewWriter(file)
	default:
		return NewRecorder(file, clk), nil
	}

	recorder := NewRecorder(stream, clk)
	recorder.flusher = stream
	recorder.closers = []io.Closer{stream, file}
	return recorder, nil
}

// Open opens a trace written by Create for reading, decompressing it
// according to its suffix.
func Open(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace: %w", err)
	}
	switch {
	case strings.HasSuffix(path, ZstdSuffix):
		decoder, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("reading zstd trace: %w", err)
		}
		return decompressed{Reader: decoder, close: func() error {
			decoder.Close()
			return file.Close()
		}}, nil
	case strings.HasSuffix(path, LZ4Suffix):
		return decompressed{Reader: lz4.NewReader(file), close: file.Close}, nil
	default:
		return file, nil
	}
}

type decompressed struct {
	io.Reader
	close func() error
}

func (reader decompressed) Close() error { return reader.close() }

// Record appends one event.
func (recorder *Recorder) Record(event engine.Event) error {
	entry := encodeRecord(event, recorder.clock.Now())
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if err := recorder.encoder.Encode(entry); err != nil {
		return fmt.Errorf("writing %s record: %w", entry.Kind, err)
	}
	if recorder.flusher != nil {
		if err := recorder.flusher.Flush(); err != nil {
			return fmt.Errorf("flushing %s record: %w", entry.Kind, err)
		}
	}
	return nil
}

// Close closes the underlying writer if it is an io.Closer.
func (recorder *Recorder) Close() error {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	var errs []error
	for _, closer := range recorder.closers {
		errs = append(errs, closer.Close())
	}
	recorder.closers = nil
	return errors.Join(errs...)
}

// Entry is one decoded trace record.
type Entry struct {
	// Time is when the event was recorded.
	Time  time.Time
	Event engine.Event
}

// Reader decodes a trace.
type Reader struct {
	decoder *codec.Decoder
	index   int
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{decoder: codec.NewDecoder(r)}
}

// Next returns the next entry, or io.EOF after the last one. A record
// truncated by a crash mid-write is reported as io.ErrUnexpectedEOF.
func (reader *Reader) Next() (Entry, error) {
	var entry record
	if err := reader.decoder.Decode(&entry); err != nil {
		if errors.Is(err, io.EOF) {
			return Entry{}, io.EOF
		}
		return Entry{}, fmt.Errorf("decoding record %d: %w", reader.index, err)
	}
	reader.index++
	event, err := entry.event()
	if err != nil {
		return Entry{}, fmt.Errorf("record %d: %w", reader.index-1, err)
	}
	return Entry{Time: time.UnixMilli(entry.Time), Event: event}, nil
}

// Replay feeds every event in r to apply and returns how many were
// applied.
func Replay(r io.Reader, apply func(engine.Event)) (int, error) {
	reader := NewReader(r)
	count := 0
	for {
		entry, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return count, err
		}
		apply(entry.Event)
		count++
	}
}
