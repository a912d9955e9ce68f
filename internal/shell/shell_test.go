package shell

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/notesapp/internal/models"
	"github.com/starford/notesapp/internal/notestore"
	"github.com/starford/notesapp/internal/testutil"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type session struct {
	t     *testing.T
	store *notestore.DB
	in    *io.PipeWriter
	out   *syncBuffer
	done  chan error
}

func start(t *testing.T) *session {
	t.Helper()
	store := testutil.TestStore(t)
	r, w := io.Pipe()
	out := &syncBuffer{}
	s := &session{t: t, store: store, in: w, out: out, done: make(chan error, 1)}

	sh := New(store, r, out)
	go func() { s.done <- sh.Run(context.Background()) }()
	t.Cleanup(func() { w.Close() })
	return s
}

func (s *session) send(lines ...string) {
	s.t.Helper()
	for _, l := range lines {
		_, err := io.WriteString(s.in, l+"\n")
		require.NoError(s.t, err)
	}
}

func (s *session) waitOutput(want string) {
	s.t.Helper()
	require.Eventually(s.t, func() bool {
		return strings.Contains(s.out.String(), want)
	}, 2*time.Second, 10*time.Millisecond, "output never contained %q:\n%s", want, s.out.String())
}

func (s *session) notes() []models.Note {
	s.t.Helper()
	all, err := s.store.List(context.Background(), notestore.All())
	require.NoError(s.t, err)
	return all
}

func TestShellListFlow(t *testing.T) {
	s := start(t)
	s.waitOutput("== Notes [idle] 0 ==")

	s.send("add", "Buy milk", "", "Low Priority")
	s.waitOutput("» Added 'Buy milk'")
	s.send("add", "Fix bug", "crash on start", "high")
	s.waitOutput("» Added 'Fix bug'")

	s.send("sort high")
	s.waitOutput("== Notes [sorted-high] 2 ==\n  0. Fix bug  <High Priority>\n     crash on start\n  1. Buy milk")

	s.send("swipe 0")
	s.waitOutput(`» Deleted 'Fix bug'  [Undo: type "undo"]`)
	require.Len(t, s.notes(), 1)

	s.send("undo")
	require.Eventually(t, func() bool { return len(s.notes()) == 2 }, 2*time.Second, 10*time.Millisecond)

	s.send("search milk")
	s.waitOutput("== Notes [searching] 1 ==\n  0. Buy milk")

	s.send("delete-all", "no")
	s.waitOutput("Delete All\nAre you sure want to remove all? [Yes/No]: ")
	assert.Len(t, s.notes(), 2)

	s.send("delete-all", "yes")
	s.waitOutput("» Successfully Removed All")
	assert.Empty(t, s.notes())

	s.send("quit")
	require.NoError(t, <-s.done)
}

func TestShellAddRejectsIncomplete(t *testing.T) {
	s := start(t)
	s.waitOutput("notes> ")

	s.send("add", " ", "", "Low Priority")
	s.waitOutput("» Tolong di Isi Semua Persyaratannya")
	s.send("add", "t", "", "Urgent")
	require.Eventually(t, func() bool {
		return strings.Count(s.out.String(), "Tolong di Isi Semua Persyaratannya") == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, s.notes())

	s.send("swipe x")
	s.waitOutput(`! expected a note number, got "x"`)
	s.send("swipe 5")
	s.waitOutput("! screen: no note at position: 5")
	s.send("frobnicate")
	s.waitOutput(`! unknown command "frobnicate", try help`)
}

func TestShellEditFlow(t *testing.T) {
	s := start(t)
	_, err := s.store.Insert(context.Background(), models.Note{Title: "Fix bug", Priority: models.PriorityLow})
	require.NoError(t, err)
	s.waitOutput("  0. Fix bug  <Low Priority>")

	s.send("open 0")
	s.waitOutput("== Edit #")
	s.send("help")
	s.waitOutput("edit screen:")

	s.send("title Fix login bug", "priority High Priority", "save")
	s.waitOutput("» Berhasil di Update")
	s.waitOutput("  0. Fix login bug  <High Priority>")

	got := s.notes()
	require.Len(t, got, 1)
	assert.Equal(t, "Fix login bug", got[0].Title)
	assert.Equal(t, models.PriorityHigh, got[0].Priority)

	s.send("open 0", "delete", "y")
	s.waitOutput("Delete 'Fix login bug'?\nAre you sure want to remove 'Fix login bug'? [Yes/No]: ")
	s.waitOutput("» Successfully Removed : Fix login bug")
	assert.Empty(t, s.notes())

	s.in.Close()
	require.NoError(t, <-s.done)
}

func TestShellEditBackDiscardsDraft(t *testing.T) {
	s := start(t)
	_, err := s.store.Insert(context.Background(), models.Note{Title: "keep", Priority: models.PriorityMedium})
	require.NoError(t, err)
	s.waitOutput("  0. keep")

	s.send("open 0", "title changed")
	s.waitOutput("  title:    changed")
	before := strings.Count(s.out.String(), "  0. keep")

	s.send("back")
	require.Eventually(t, func() bool {
		return strings.Count(s.out.String(), "  0. keep") > before
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "keep", s.notes()[0].Title)
}
