package models

import (
	"fmt"
	"strings"

	"github.com/starford/notesapp/internal/apperr"
)

// Priority is the urgency level of a note. The value is what gets stored.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// User-facing labels, as offered by the priority picker.
const (
	LabelHigh   = "High Priority"
	LabelMedium = "Medium Priority"
	LabelLow    = "Low Priority"
)

// Labels returns the picker labels in display order.
func Labels() []string {
	return []string{LabelHigh, LabelMedium, LabelLow}
}

// Priorities returns the levels in display order.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// Label returns the user-facing label of p.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return LabelHigh
	case PriorityMedium:
		return LabelMedium
	case PriorityLow:
		return LabelLow
	}
	return string(p)
}

// Rank orders priorities: HIGH=3, MEDIUM=2, LOW=1, anything else 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Valid reports whether p is one of the enumeration values.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// ParsePriority maps a picker label to a Priority. The bare level names
// ("high", "MEDIUM", ...) are accepted as well; matching ignores case and
// surrounding whitespace.
func ParsePriority(label string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "high priority", "high":
		return PriorityHigh, nil
	case "medium priority", "medium":
		return PriorityMedium, nil
	case "low priority", "low":
		return PriorityLow, nil
	}
	return "", fmt.Errorf("%w: %q", apperr.ErrUnknownPriority, label)
}
