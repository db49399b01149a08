// Package logger is the chip's central log. Messages carry a tag naming the
// unit that logged them; a message identical to the previous one bumps its
// count instead of adding a line, and only the most recent entries are kept.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Entry is one logged message.
type Entry struct {
	Time   time.Time
	Tag    string
	Detail string
	Count  int // times logged in a row, at least 1
}

func (e Entry) String() string {
	if e.Count > 1 {
		return fmt.Sprintf("%s: %s [x%d]\n", e.Tag, e.Detail, e.Count)
	}
	return fmt.Sprintf("%s: %s\n", e.Tag, e.Detail)
}

type logger struct {
	mu      sync.Mutex
	limit   int
	entries []Entry
	echo    io.Writer
}

func newLogger(limit int) *logger {
	return &logger{limit: limit}
}

// add logs every line of detail as a separate entry.
func (l *logger) add(tag, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range strings.Split(detail, "\n") {
		if line != "" {
			l.addLine(tag, line)
		}
	}
}

func (l *logger) addLine(tag, detail string) {
	now := time.Now()
	if n := len(l.entries); n > 0 {
		last := &l.entries[n-1]
		if last.Tag == tag && last.Detail == detail {
			last.Count++
			last.Time = now
			return
		}
	}

	e := Entry{Time: now, Tag: tag, Detail: detail, Count: 1}
	if len(l.entries) == l.limit {
		copy(l.entries, l.entries[1:])
		l.entries[len(l.entries)-1] = e
	} else {
		l.entries = append(l.entries, e)
	}
	if l.echo != nil {
		fmt.Fprint(l.echo, e)
	}
}

var central = newLogger(256)

// Log adds detail to the central log under tag.
func Log(tag, detail string) {
	central.add(tag, detail)
}

// Logf is Log with a format string.
func Logf(tag, format string, args ...interface{}) {
	central.add(tag, fmt.Sprintf(format, args...))
}

// Clear empties the central log.
func Clear() {
	central.mu.Lock()
	defer central.mu.Unlock()
	central.entries = central.entries[:0]
}

// Write prints the central log to w.
func Write(w io.Writer) {
	for _, e := range Entries() {
		fmt.Fprint(w, e)
	}
}

// SetEcho prints new entries to w as they are logged. A nil w turns echoing
// off.
func SetEcho(w io.Writer) {
	central.mu.Lock()
	defer central.mu.Unlock()
	central.echo = w
}

// Entries returns a copy of the central log.
func Entries() []Entry {
	central.mu.Lock()
	defer central.mu.Unlock()
	return append([]Entry(nil), central.entries...)
}
