package session

import (
	"context"
	"log/slog"
	"slices"

	"github.com/myrjola/chartnote/internal/clinical"
	"github.com/myrjola/chartnote/internal/errors"
)

// AppendNote adds an entry at the end of the patient's note. A missing id is generated.
func (s *Store) AppendNote(ctx context.Context, patientID string, entry clinical.NoteEntry) (clinical.NoteEntry, error) {
	if entry.ID == "" {
		entry.ID = s.newID()
	}
	err := s.updatePatient(ctx, patientID, func(p *clinical.PatientState) error {
		p.Notes = append(p.Notes, entry)
		return nil
	})
	return entry, err
}

// UpdateNote replaces the content of an entry. The timestamp is kept.
func (s *Store) UpdateNote(ctx context.Context, patientID, noteID, content string) (clinical.NoteEntry, error) {
	var updated clinical.NoteEntry
	err := s.updatePatient(ctx, patientID, func(p *clinical.PatientState) error {
		i := slices.IndexFunc(p.Notes, func(e clinical.NoteEntry) bool { return e.ID == noteID })
		if i < 0 {
			return errors.Wrap(ErrNoteNotFound, "update note", slog.String("note_id", noteID))
		}
		p.Notes[i].Content = content
		updated = p.Notes[i]
		return nil
	})
	return updated, err
}

// DeleteNote removes an entry.
func (s *Store) DeleteNote(ctx context.Context, patientID, noteID string) error {
	return s.updatePatient(ctx, patientID, func(p *clinical.PatientState) error {
		i := slices.IndexFunc(p.Notes, func(e clinical.NoteEntry) bool { return e.ID == noteID })
		if i < 0 {
			return errors.Wrap(ErrNoteNotFound, "delete note", slog.String("note_id", noteID))
		}
		p.Notes = slices.Delete(p.Notes, i, i+1)
		return nil
	})
}

// CommitGeneratedNote appends a generated entry and clears the form, keeping shift and gender.
// The patient is looked up again, so a patient renamed or deleted during generation yields
// ErrPatientNotFound.
func (s *Store) CommitGeneratedNote(ctx context.Context, patientID string, entry clinical.NoteEntry) error {
	return s.updatePatient(ctx, patientID, func(p *clinical.PatientState) error {
		p.Notes = append(p.Notes, entry)
		p.Form = p.Form.ResetKeepingContext()
		return nil
	})
}
