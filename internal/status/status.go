// Package status holds the user-visible status texts shared by every
// front-end (terminal screens, HTTP responses, MCP tool results).
package status

import "fmt"

const (
	Updated    = "Berhasil di Update"
	Incomplete = "Tolong di Isi Semua Persyaratannya"
	RemovedAll = "Successfully Removed All"
	Undo       = "Undo"
	Yes        = "Yes"
	No         = "No"

	DeleteAllTitle   = "Delete All"
	DeleteAllMessage = "Are you sure want to remove all?"
)

// Deleted is the swipe-delete snackbar text.
func Deleted(title string) string {
	return fmt.Sprintf("Deleted '%s'", title)
}

// Removed is the edit-screen delete confirmation toast.
func Removed(title string) string {
	return "Successfully Removed : " + title
}

// DeleteNoteTitle is the edit-screen delete dialog title.
func DeleteNoteTitle(title string) string {
	return fmt.Sprintf("Delete '%s'?", title)
}

// DeleteNoteMessage is the edit-screen delete dialog body.
func DeleteNoteMessage(title string) string {
	return fmt.Sprintf("Are you sure want to remove '%s'?", title)
}

// Failed renders an unexpected error for display.
func Failed(err error) string {
	return "Error: " + err.Error()
}
