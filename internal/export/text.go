package export

import (
	"regexp"
	"strings"

	"github.com/myrjola/chartnote/internal/clinical"
)

func entryText(entries []clinical.NoteEntry, sep string) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e.Timestamp+" - "+e.Content)
	}
	return strings.Join(parts, sep)
}

// PlainText renders entries for the clipboard, separated by blank lines.
func PlainText(entries []clinical.NoteEntry) string {
	return entryText(entries, "\n\n")
}

var whitespace = regexp.MustCompile(`\s`)

// Filename returns the download name for a patient's note, e.g. "note_evolution_Ch._101.pdf".
func Filename(patientID, ext string) string {
	name := whitespace.ReplaceAllString(patientID, "_")
	if name == "" {
		name = "patient"
	}
	return "note_evolution_" + name + "." + ext
}
