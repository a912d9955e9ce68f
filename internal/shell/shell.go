// Package shell is a line-oriented terminal front-end for the list and
// edit screens.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/starford/notesapp/internal/models"
	"github.com/starford/notesapp/internal/notestore"
	"github.com/starford/notesapp/internal/screen"
	"github.com/starford/notesapp/internal/status"
)

// errQuit ends the command loop.
var errQuit = errors.New("quit")

// Shell reads commands from in and writes screens and messages to out.
// It implements every screen boundary and routes between the list and
// edit screens; entering a screen creates its controller, leaving it
// closes the controller.
type Shell struct {
	store notestore.NoteStore
	out   io.Writer
	lines <-chan string
	done  chan struct{}

	outMu sync.Mutex

	// Fields below are owned by the Run goroutine.
	list  *screen.ListController
	edit  *screen.EditController
	draft screen.Form
	undo  *screen.Action
}

// New creates a shell over store. Reading from in starts immediately.
func New(store notestore.NoteStore, in io.Reader, out io.Writer) *Shell {
	lines := make(chan string)
	done := make(chan struct{})
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
		if err := sc.Err(); err != nil {
			slog.Warn("shell: read input failed", slog.String("error", err.Error()))
		}
	}()
	return &Shell{store: store, out: out, lines: lines, done: done}
}

// Run executes commands until quit, end of input or ctx is done. A shell
// runs once.
func (s *Shell) Run(ctx context.Context) error {
	s.ToList()
	defer close(s.done)
	defer s.closeScreens()

	for {
		s.prompt()
		line, ok := s.readLine(ctx)
		if !ok {
			s.println("")
			return ctx.Err()
		}
		err := s.exec(ctx, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			s.printf("! %v\n", err)
		}
	}
}

func (s *Shell) exec(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	if cmd == "" {
		return nil
	}
	switch cmd {
	case "quit", "exit":
		return errQuit
	case "help":
		s.help()
		return nil
	}
	if s.edit != nil {
		return s.execEdit(ctx, cmd, arg)
	}
	return s.execList(ctx, cmd, arg)
}

func (s *Shell) execList(ctx context.Context, cmd, arg string) error {
	switch cmd {
	case "add":
		return s.add(ctx)
	case "search":
		s.list.Search(arg)
	case "sort":
		switch strings.ToLower(arg) {
		case "high":
			s.list.SortHigh()
		case "low":
			s.list.SortLow()
		default:
			return fmt.Errorf("usage: sort high|low")
		}
	case "swipe":
		n, err := position(arg)
		if err != nil {
			return err
		}
		return s.list.Swipe(ctx, n)
	case "undo":
		if s.undo == nil {
			return fmt.Errorf("nothing to undo")
		}
		action := s.undo
		s.undo = nil
		// Failures are already reported as a toast.
		_ = action.Run(ctx)
	case "delete-all":
		return s.list.DeleteAll(ctx)
	case "open":
		n, err := position(arg)
		if err != nil {
			return err
		}
		return s.list.Select(n)
	case "ls", "list":
		s.Render(s.list.State(), s.list.Items())
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}

func (s *Shell) execEdit(ctx context.Context, cmd, arg string) error {
	switch cmd {
	case "title":
		s.draft.Title = arg
	case "desc":
		s.draft.Description = arg
	case "priority":
		s.draft.PriorityLabel = arg
	case "show":
	case "save":
		return s.edit.Save(ctx, s.draft)
	case "delete":
		return s.edit.Delete(ctx)
	case "back":
		s.edit.Back()
		return nil
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	s.showDraft()
	return nil
}

// add prompts for the fields of a new note and inserts it.
func (s *Shell) add(ctx context.Context) error {
	var f screen.Form
	for _, field := range []struct {
		label string
		dst   *string
	}{
		{"Title", &f.Title},
		{"Description", &f.Description},
		{"Priority (" + strings.Join(models.Labels(), ", ") + ")", &f.PriorityLabel},
	} {
		s.printf("%s: ", field.label)
		line, ok := s.readLine(ctx)
		if !ok {
			return ctx.Err()
		}
		*field.dst = line
	}

	if !models.Validate(f.Title, f.Description) {
		s.Notify(screen.Message{Kind: screen.Toast, Text: status.Incomplete})
		return nil
	}
	p, err := models.ParsePriority(f.PriorityLabel)
	if err != nil {
		s.Notify(screen.Message{Kind: screen.Toast, Text: status.Incomplete})
		return nil
	}
	n, err := s.store.Insert(ctx, models.Note{Title: f.Title, Description: f.Description, Priority: p})
	if err != nil {
		s.Notify(screen.Message{Kind: screen.Toast, Text: status.Failed(err)})
		return nil
	}
	s.Notify(screen.Message{Kind: screen.Toast, Text: fmt.Sprintf("Added '%s'", n.Title)})
	return nil
}

// Render implements screen.View.
func (s *Shell) Render(state screen.ListState, notes []models.Note) {
	var b strings.Builder
	fmt.Fprintf(&b, "\n== Notes [%s] %d ==\n", state, len(notes))
	if len(notes) == 0 {
		b.WriteString("  (no notes)\n")
	}
	for i, n := range notes {
		fmt.Fprintf(&b, "  %d. %s  <%s>\n", i, n.Title, n.Priority.Label())
		if d := strings.TrimSpace(n.Description); d != "" {
			fmt.Fprintf(&b, "     %s\n", d)
		}
	}
	s.write(b.String())
}

// Notify implements screen.Notifier. A snackbar action becomes the
// target of the undo command.
func (s *Shell) Notify(m screen.Message) {
	if m.Action != nil {
		s.undo = m.Action
		s.printf("» %s  [%s: type %q]\n", m.Text, m.Action.Label, strings.ToLower(m.Action.Label))
		return
	}
	s.printf("» %s\n", m.Text)
}

// Confirm implements screen.Confirmer by reading the answer from input.
func (s *Shell) Confirm(ctx context.Context, d screen.Dialog) bool {
	s.printf("%s\n%s [%s/%s]: ", d.Title, d.Message, d.Positive, d.Negative)
	line, ok := s.readLine(ctx)
	if !ok {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes" || answer == strings.ToLower(d.Positive)
}

// ToEdit implements screen.Navigator.
func (s *Shell) ToEdit(n models.Note) {
	s.closeScreens()
	s.edit = screen.NewEditController(s.store, n, s, s, s)
	s.draft = s.edit.Form()
	s.showDraft()
}

// ToList implements screen.Navigator.
func (s *Shell) ToList() {
	s.closeScreens()
	s.list = screen.NewListController(s.store, s, s, s, s)
}

func (s *Shell) closeScreens() {
	if s.list != nil {
		s.list.Close()
		s.list = nil
	}
	s.edit = nil
	s.undo = nil
}

func (s *Shell) showDraft() {
	n := s.edit.Note()
	s.printf("\n== Edit #%d ==\n  title:    %s\n  desc:     %s\n  priority: %s\n",
		n.ID, s.draft.Title, s.draft.Description, s.draft.PriorityLabel)
}

func (s *Shell) help() {
	if s.edit != nil {
		s.write(`edit screen:
  title <text>      set the title
  desc <text>       set the description
  priority <label>  set the priority (High Priority, Medium Priority, Low Priority)
  show              show the pending fields
  save              save changes and return to the list
  delete            delete this note
  back              return to the list without saving
  quit              exit
`)
		return
	}
	s.write(`list screen:
  add               create a note
  search <text>     show notes containing text
  sort high|low     order by priority
  swipe <n>         delete note n
  undo              restore the last swiped note
  delete-all        delete every note
  open <n>          edit note n
  ls                show the list again
  quit              exit
`)
}

func (s *Shell) prompt() {
	if s.edit != nil {
		s.write("edit> ")
		return
	}
	s.write("notes> ")
}

func (s *Shell) readLine(ctx context.Context) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-s.lines:
		return line, ok
	}
}

func (s *Shell) printf(format string, args ...any) {
	s.write(fmt.Sprintf(format, args...))
}

func (s *Shell) println(line string) {
	s.write(line + "\n")
}

func (s *Shell) write(text string) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	_, _ = io.WriteString(s.out, text)
}

func position(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("expected a note number, got %q", arg)
	}
	return n, nil
}
