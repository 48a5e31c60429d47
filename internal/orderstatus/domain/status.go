package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Status is a stage in the production pipeline. The ordinal drives
// progress display, so the declaration order is the pipeline order.
type Status int

const (
	StatusPending Status = iota
	StatusDesign
	StatusPrinting
	StatusDelivered
)

var statusLabels = [...]string{
	StatusPending:   "Pending",
	StatusDesign:    "Design",
	StatusPrinting:  "Printing",
	StatusDelivered: "Delivered",
}

// ErrUnknownStatus rejects labels outside the pipeline at every write
// boundary.
var ErrUnknownStatus = errors.New("unknown order status")

func (s Status) String() string {
	if s < StatusPending || int(s) >= len(statusLabels) {
		return "Pending"
	}
	return statusLabels[s]
}

func (s Status) Valid() bool {
	return s >= StatusPending && int(s) < len(statusLabels)
}

// Progress reports how far along the pipeline this status is, as a
// percentage of completed stages.
func (s Status) Progress() int {
	if !s.Valid() {
		return 0
	}
	return int(s) * 100 / (len(statusLabels) - 1)
}

// ParseStatus maps a label to its Status. Matching is case-insensitive;
// anything outside the pipeline is an error, never silently coerced.
func ParseStatus(label string) (Status, error) {
	needle := strings.TrimSpace(label)
	for i, known := range statusLabels {
		if strings.EqualFold(needle, known) {
			return Status(i), nil
		}
	}
	return StatusPending, fmt.Errorf("%w: %q", ErrUnknownStatus, label)
}

// Pipeline returns all stages in order.
func Pipeline() []Status {
	stages := make([]Status, len(statusLabels))
	for i := range statusLabels {
		stages[i] = Status(i)
	}
	return stages
}

// Stage is one pipeline step relative to a current status.
type Stage struct {
	Label   string `json:"label"`
	Reached bool   `json:"reached"`
}

// Stages renders the whole pipeline with every stage up to and
// including s marked reached.
func (s Status) Stages() []Stage {
	stages := make([]Stage, len(statusLabels))
	for i, label := range statusLabels {
		stages[i] = Stage{Label: label, Reached: s.Valid() && Status(i) <= s}
	}
	return stages
}
