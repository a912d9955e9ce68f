// Package screen holds the list and edit screen controllers. Controllers
// own screen state and talk to the outside world only through the
// presentation and navigation interfaces below.
package screen

import (
	"context"
	"errors"

	"github.com/starford/notesapp/internal/models"
	"github.com/starford/notesapp/internal/status"
)

var (
	// ErrPosition is returned when a list position has no note.
	ErrPosition = errors.New("screen: no note at position")
	// ErrClosed is returned by a controller that has been closed.
	ErrClosed = errors.New("screen: controller closed")
)

// MessageKind selects how a message is presented.
type MessageKind int

const (
	Toast MessageKind = iota
	Snackbar
)

func (k MessageKind) String() string {
	if k == Snackbar {
		return "snackbar"
	}
	return "toast"
}

// Action is an optional button attached to a snackbar.
type Action struct {
	Label string
	Run   func(ctx context.Context) error
}

// Message is a transient status message.
type Message struct {
	Kind   MessageKind
	Text   string
	Action *Action
}

// Dialog is a yes/no confirmation request.
type Dialog struct {
	Title    string
	Message  string
	Positive string
	Negative string
}

func (d Dialog) withDefaults() Dialog {
	if d.Positive == "" {
		d.Positive = status.Yes
	}
	if d.Negative == "" {
		d.Negative = status.No
	}
	return d
}

// Notifier presents toasts and snackbars.
type Notifier interface {
	Notify(m Message)
}

// Confirmer asks the user a yes/no question and blocks until answered.
// A cancelled context counts as a negative answer.
type Confirmer interface {
	Confirm(ctx context.Context, d Dialog) bool
}

// Navigator switches between the list and edit screens.
type Navigator interface {
	ToEdit(n models.Note)
	ToList()
}

// View renders the list screen.
type View interface {
	Render(state ListState, notes []models.Note)
}

func toast(text string) Message {
	return Message{Kind: Toast, Text: text}
}
