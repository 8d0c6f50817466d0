package export

import (
	"io"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/myrjola/chartnote/internal/clinical"
	"github.com/myrjola/chartnote/internal/errors"
)

// DOCX writes a word-processing document with a heading and one table row per entry: the
// timestamp, then the content with one paragraph per line.
func DOCX(w io.Writer, patientID string, entries []clinical.NoteEntry) error {
	if len(entries) == 0 {
		return ErrNothingToExport
	}
	if patientID == "" {
		patientID = "N/A"
	}

	document, err := godocx.NewDocument()
	if err != nil {
		return errors.Wrap(err, "create docx")
	}
	if _, err = document.AddHeading("Note d'évolution - Patient: "+patientID, 1); err != nil {
		return errors.Wrap(err, "add heading")
	}

	table := document.AddTable()
	table.Style("LightList-Accent4")
	for _, entry := range entries {
		row := table.AddRow()
		row.AddCell().AddParagraph(entry.Timestamp)
		content := row.AddCell()
		for _, line := range strings.Split(entry.Content, "\n") {
			content.AddParagraph(line)
		}
	}

	if err = document.Write(w); err != nil {
		return errors.Wrap(err, "write docx")
	}
	return nil
}
