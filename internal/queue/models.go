package queue

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a queue item.
type Status string

const (
	// StatusPending marks an item waiting to be processed.
	StatusPending Status = "pending"
	// StatusOrganizing marks an item currently being processed.
	StatusOrganizing Status = "organizing"
	// StatusCompleted marks an item whose processing finished.
	StatusCompleted Status = "completed"
	// StatusFailed marks an item whose processing hit a recoverable error.
	StatusFailed Status = "failed"
)

// ParseStatus converts user input into a Status.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusPending, StatusOrganizing, StatusCompleted, StatusFailed:
		return Status(value), nil
	}
	return "", fmt.Errorf("unknown status %q", value)
}

// EventKind records how a file came to tidy's attention.
type EventKind string

const (
	// KindCreated is a live arrival notification. Renames into a watched
	// root surface as creates on every supported platform, so arrivals
	// have a single kind.
	KindCreated EventKind = "created"
	// KindScan is an entry produced by the reconciliation walk.
	KindScan EventKind = "scan"
)

// Result describes how a completed item was resolved.
type Result string

const (
	// ResultMoved means the file was relocated into its category folder.
	ResultMoved Result = "moved"
	// ResultDuplicate means identical content already existed and the
	// candidate was deleted.
	ResultDuplicate Result = "duplicate"
	// ResultVanished means the file disappeared before processing; a lost
	// race, not an error.
	ResultVanished Result = "vanished"
)

// Item is one observed file event.
type Item struct {
	ID           int64
	Path         string
	Root         string
	Kind         EventKind
	Status       Status
	Category     string
	FinalPath    string
	Result       Result
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Terminal reports whether the item has finished processing.
func (i *Item) Terminal() bool {
	return i.Status == StatusCompleted || i.Status == StatusFailed
}
