package clean

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Sink accepts progress events from a run, one call per event, in emission
// order. Implementations are called from the run's worker goroutine.
type Sink interface {
	Accept(msg string)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(msg string)

// Accept calls f(msg).
func (f SinkFunc) Accept(msg string) { f(msg) }

// ConsoleSink prints events to a writer, highlighting deletions.
type ConsoleSink struct {
	mu      sync.Mutex
	w       io.Writer
	deleted *color.Color
}

// NewConsoleSink returns a ConsoleSink writing to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w, deleted: color.New(color.FgGreen)}
}

// Accept prints msg on its own line.
func (s *ConsoleSink) Accept(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.HasPrefix(msg, "Deleted") {
		s.deleted.Fprintln(s.w, msg)
		return
	}
	fmt.Fprintln(s.w, msg)
}

// Log is the ordered, append-only event stream of one run. Each event is
// stored and then forwarded to the downstream Sink, if any.
type Log struct {
	mu     sync.Mutex
	events []string
	sink   Sink
}

// NewLog returns an empty Log forwarding to sink (which may be nil).
func NewLog(sink Sink) *Log {
	return &Log{sink: sink}
}

// Accept appends msg and forwards it downstream.
func (l *Log) Accept(msg string) {
	l.mu.Lock()
	l.events = append(l.events, msg)
	l.mu.Unlock()

	if l.sink != nil {
		l.sink.Accept(msg)
	}
}

// Events returns a copy of the events from index from onwards, so observers
// can drain the stream incrementally.
func (l *Log) Events(from int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if from < 0 {
		from = 0
	}
	if from >= len(l.events) {
		return nil
	}
	return append([]string(nil), l.events[from:]...)
}

// Len returns the number of events so far.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func (l *Log) reset() {
	l.mu.Lock()
	l.events = nil
	l.mu.Unlock()
}
