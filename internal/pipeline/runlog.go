package pipeline

import (
	"fmt"
	"log"
	"time"
)

// StepLog is the append-only processing log for one pipeline run. Each stage
// action adds exactly one timestamped line; entries are never mutated after
// being appended.
type StepLog struct {
	entries []string
}

// NewStepLog creates an empty step log.
func NewStepLog() *StepLog {
	return &StepLog{}
}

// Step records a timestamped human-readable line and mirrors it to the
// process log.
func (l *StepLog) Step(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.entries = append(l.entries, fmt.Sprintf("%s - %s", time.Now().Format("15:04:05"), msg))
	log.Printf("[Pipeline] %s", msg)
}

// Entries returns the log lines in chronological order.
func (l *StepLog) Entries() []string {
	return l.entries
}
