// Package checksum computes content digests used as note versions.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/starford/notesapp/internal/models"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Note returns the version digest of n. Any field change yields a new
// value; it is served as the ETag and checked against If-Match.
func Note(n models.Note) string {
	buf := make([]byte, 0, 64+len(n.Title)+len(n.Description))
	buf = strconv.AppendInt(buf, n.ID, 10)
	buf = append(buf, 0)
	buf = strconv.AppendQuote(buf, n.Title)
	buf = append(buf, 0)
	buf = strconv.AppendQuote(buf, n.Description)
	buf = append(buf, 0)
	buf = append(buf, n.Priority...)
	return Sum(buf)
}
