package session

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"github.com/myrjola/chartnote/internal/clinical"
	"github.com/myrjola/chartnote/internal/errors"
)

const TemplateKeyPrefix = "nurse-note-template-"

var (
	ErrInvalidTemplateName = errors.NewSentinel("template name is blank")
	ErrTemplateNotFound    = errors.NewSentinel("template not found")
)

// Template is a named snapshot of a patient's form and notes.
type Template struct {
	Name  string              `json:"name"`
	State clinical.SavedState `json:"state"`
}

func templateKey(name string) string {
	return TemplateKeyPrefix + name
}

// SaveTemplate stores the patient's current form and notes under name, overwriting any
// template with the same name.
func (s *Store) SaveTemplate(ctx context.Context, name, patientID string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidTemplateName
	}
	p, err := s.Patient(patientID)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", errors.Wrap(err, "marshal template")
	}
	if err = s.kv.Set(ctx, templateKey(name), string(data)); err != nil {
		return "", errors.Wrap(err, "save template", slog.String("template", name))
	}
	return name, nil
}

// Templates lists stored templates ordered by name. Entries that fail to decode are logged and
// skipped.
func (s *Store) Templates(ctx context.Context) ([]Template, error) {
	raw, err := s.kv.ListPrefix(ctx, TemplateKeyPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "list templates")
	}
	templates := make([]Template, 0, len(raw))
	for key, value := range raw {
		name := strings.TrimPrefix(key, TemplateKeyPrefix)
		state, err := s.decodeTemplate(value)
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "skipping malformed template",
				slog.String("template", name), errors.SlogError(err))
			continue
		}
		templates = append(templates, Template{Name: name, State: state})
	}
	slices.SortFunc(templates, func(a, b Template) int { return strings.Compare(a.Name, b.Name) })
	return templates, nil
}

func (s *Store) decodeTemplate(value string) (clinical.SavedState, error) {
	var stored storedPatient
	if err := json.Unmarshal([]byte(value), &stored); err != nil {
		return clinical.SavedState{}, errors.Wrap(err, "decode template")
	}
	return stored.patientState(s.newID)
}

// LoadTemplate overwrites the form and notes of the patient with the template.
func (s *Store) LoadTemplate(ctx context.Context, name, patientID string) (clinical.PatientState, error) {
	name = strings.TrimSpace(name)
	value, found, err := s.get(ctx, templateKey(name))
	if err != nil {
		return clinical.PatientState{}, err
	}
	if !found {
		return clinical.PatientState{}, errors.Wrap(ErrTemplateNotFound, "load template", slog.String("template", name))
	}
	state, err := s.decodeTemplate(value)
	if err != nil {
		return clinical.PatientState{}, errors.Wrap(ErrTemplateNotFound, "load template: "+err.Error(),
			slog.String("template", name))
	}
	if err = state.Form.Validate(); err != nil {
		return clinical.PatientState{}, errors.Wrap(err, "load template", slog.String("template", name))
	}
	var loaded clinical.PatientState
	err = s.updatePatient(ctx, patientID, func(p *clinical.PatientState) error {
		*p = state.Clone()
		loaded = state.Clone()
		return nil
	})
	return loaded, err
}

// DeleteTemplate removes the template. Deleting a missing template is not an error.
func (s *Store) DeleteTemplate(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidTemplateName
	}
	if err := s.kv.Delete(ctx, templateKey(name)); err != nil {
		return errors.Wrap(err, "delete template", slog.String("template", name))
	}
	return nil
}
