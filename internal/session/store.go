// Package session keeps the multi-patient registry of the shift: every patient's form and
// note entries, the active patient and the room-number counter.
package session

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/myrjola/chartnote/internal/clinical"
	"github.com/myrjola/chartnote/internal/errors"
	"github.com/myrjola/chartnote/internal/repositories"
)

const (
	KeyPatients       = "nurse-shift-patients"
	KeyActiveID       = "nurse-shift-active-id"
	KeyNextRoomNumber = "nurse-next-room-number"

	firstRoomNumber = 101
)

var (
	ErrPatientNotFound  = errors.NewSentinel("patient not found")
	ErrPatientExists    = errors.NewSentinel("patient already exists")
	ErrLastPatient      = errors.NewSentinel("cannot delete the last patient")
	ErrInvalidPatientID = errors.NewSentinel("patient id is blank")
	ErrNoteNotFound     = errors.NewSentinel("note entry not found")
)

// KeyValueStore is the persistence the store writes through. Get returns an error wrapping
// repositories.ErrNotFound for absent keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, key string) error
	ListPrefix(ctx context.Context, prefix string) (map[string]string, error)
}

// Patient is one registry entry of a Snapshot.
type Patient struct {
	ID    string                `json:"id"`
	State clinical.PatientState `json:"state"`
}

// Snapshot is a deep copy of the registry in registry order.
type Snapshot struct {
	Patients       []Patient `json:"patients"`
	ActiveID       string    `json:"activeId"`
	NextRoomNumber int       `json:"nextRoomNumber"`
}

// Patient returns the patient with id.
func (s Snapshot) Patient(id string) (clinical.PatientState, bool) {
	for _, p := range s.Patients {
		if p.ID == id {
			return p.State, true
		}
	}
	return clinical.PatientState{}, false
}

// Store serialises every mutation behind a mutex. A mutation builds a new registry, persists
// it and only then replaces the current one, so a failed write leaves the store unchanged.
type Store struct {
	kv     KeyValueStore
	logger *slog.Logger
	newID  func() string

	mu       sync.Mutex
	reg      registry
	activeID string
	nextRoom int
}

func NewStore(kv KeyValueStore, logger *slog.Logger) *Store {
	return &Store{
		kv:       kv,
		logger:   logger.With(slog.String("source", "session.Store")),
		newID:    uuid.NewString,
		reg:      newRegistry(),
		nextRoom: firstRoomNumber,
	}
}

// Load reads the persisted registry and writes it back normalised. Malformed data is logged and
// treated as absent. An empty registry is bootstrapped with a blank patient "Ch. 101".
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, activeID, nextRoom, err := s.read(ctx)
	if err != nil {
		return err
	}
	if err = s.persist(ctx, reg, activeID, nextRoom); err != nil {
		return err
	}
	s.reg, s.activeID, s.nextRoom = reg, activeID, nextRoom
	s.logger.LogAttrs(ctx, slog.LevelInfo, "patient registry loaded",
		slog.Int("patients", len(reg.ids)), slog.String("active_id", activeID))
	return nil
}

// Refresh reads the persisted registry like Load but never writes, for read-only callers.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, activeID, nextRoom, err := s.read(ctx)
	if err != nil {
		return err
	}
	s.reg, s.activeID, s.nextRoom = reg, activeID, nextRoom
	return nil
}

// read decodes the persisted state. The caller holds s.mu.
func (s *Store) read(ctx context.Context) (registry, string, int, error) {
	reg := newRegistry()
	raw, found, err := s.get(ctx, KeyPatients)
	if err != nil {
		return registry{}, "", 0, err
	}
	if found {
		if reg, err = decodeRegistry([]byte(raw), s.newID); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "discarding malformed patient registry", errors.SlogError(err))
			reg = newRegistry()
		}
		s.sanitize(ctx, reg)
	}

	activeID := ""
	if len(reg.ids) > 0 {
		var saved string
		if saved, _, err = s.get(ctx, KeyActiveID); err != nil {
			return registry{}, "", 0, err
		}
		activeID = reg.ids[0]
		if reg.has(saved) {
			activeID = saved
		}
	} else {
		id := "Ch. " + strconv.Itoa(firstRoomNumber)
		reg.put(id, clinical.NewPatientState())
		activeID = id
	}

	nextRoom := reg.nextRoomNumber()
	saved, found, err := s.get(ctx, KeyNextRoomNumber)
	if err != nil {
		return registry{}, "", 0, err
	}
	if found {
		if n, convErr := strconv.Atoi(strings.TrimSpace(saved)); convErr == nil {
			nextRoom = max(nextRoom, n)
		} else {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "ignoring malformed room number", slog.String("value", saved))
		}
	}
	return reg, activeID, nextRoom, nil
}

// sanitize replaces forms that no longer validate with blank forms so that later merge patches
// can succeed. Notes are kept.
func (s *Store) sanitize(ctx context.Context, reg registry) {
	for _, id := range reg.ids {
		p := reg.patients[id]
		if err := p.Form.Validate(); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "resetting invalid stored form",
				slog.String("patient_id", id), errors.SlogError(err))
			p.Form = p.Form.ResetKeepingContext()
			if p.Form.Validate() != nil {
				p.Form = clinical.NewFormState()
			}
			reg.patients[id] = p
		}
	}
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.kv.Get(ctx, key)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "read key", slog.String("key", key))
	}
	return value, true, nil
}

// persist writes the whole registry, the active id and the room counter in one batch.
func (s *Store) persist(ctx context.Context, reg registry, activeID string, nextRoom int) error {
	data, err := json.Marshal(reg)
	if err != nil {
		return errors.Wrap(err, "marshal registry")
	}
	if err = s.kv.SetMany(ctx, map[string]string{
		KeyPatients:       string(data),
		KeyActiveID:       activeID,
		KeyNextRoomNumber: strconv.Itoa(nextRoom),
	}); err != nil {
		return errors.Wrap(err, "persist registry")
	}
	return nil
}

// mutate re-reads the persisted state, runs fn on it and commits the result once persisted.
// Re-reading picks up writes from other processes sharing the database, such as the command
// line tools.
func (s *Store) mutate(ctx context.Context, fn func(reg *registry, activeID *string, nextRoom *int) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, activeID, nextRoom, err := s.read(ctx)
	if err != nil {
		return err
	}
	if err = fn(&reg, &activeID, &nextRoom); err != nil {
		return err
	}
	if err = s.persist(ctx, reg, activeID, nextRoom); err != nil {
		return err
	}
	s.reg, s.activeID, s.nextRoom = reg, activeID, nextRoom
	return nil
}

// updatePatient applies fn to a deep copy of the patient.
func (s *Store) updatePatient(ctx context.Context, id string, fn func(p *clinical.PatientState) error) error {
	return s.mutate(ctx, func(reg *registry, _ *string, _ *int) error {
		current, ok := reg.patients[id]
		if !ok {
			return errors.Wrap(ErrPatientNotFound, "update patient", slog.String("patient_id", id))
		}
		p := current.Clone()
		if err := fn(&p); err != nil {
			return err
		}
		reg.put(id, p)
		return nil
	})
}

// Snapshot returns a deep copy of the registry.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	patients := make([]Patient, 0, len(s.reg.ids))
	for _, id := range s.reg.ids {
		patients = append(patients, Patient{ID: id, State: s.reg.patients[id].Clone()})
	}
	return Snapshot{Patients: patients, ActiveID: s.activeID, NextRoomNumber: s.nextRoom}
}

// ActiveID returns the id of the active patient.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Patient returns a deep copy of the patient.
func (s *Store) Patient(id string) (clinical.PatientState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.reg.patients[id]
	if !ok {
		return clinical.PatientState{}, errors.Wrap(ErrPatientNotFound, "get patient", slog.String("patient_id", id))
	}
	return p.Clone(), nil
}

// AddPatient creates a blank patient "Ch. N" with the next free room number, makes it active
// and returns its id.
func (s *Store) AddPatient(ctx context.Context) (string, error) {
	var id string
	err := s.mutate(ctx, func(reg *registry, activeID *string, nextRoom *int) error {
		n := *nextRoom
		id = "Ch. " + strconv.Itoa(n)
		for reg.has(id) {
			n++
			id = "Ch. " + strconv.Itoa(n)
		}
		reg.put(id, clinical.NewPatientState())
		*activeID = id
		*nextRoom = n + 1
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// CreatePatient adds a blank patient under an explicit id and makes it active.
func (s *Store) CreatePatient(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrInvalidPatientID
	}
	err := s.mutate(ctx, func(reg *registry, activeID *string, _ *int) error {
		if reg.has(id) {
			return errors.Wrap(ErrPatientExists, "create patient", slog.String("patient_id", id))
		}
		reg.put(id, clinical.NewPatientState())
		*activeID = id
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Select makes the patient active.
func (s *Store) Select(ctx context.Context, id string) error {
	return s.mutate(ctx, func(reg *registry, activeID *string, _ *int) error {
		if !reg.has(id) {
			return errors.Wrap(ErrPatientNotFound, "select patient", slog.String("patient_id", id))
		}
		*activeID = id
		return nil
	})
}

// Rename moves the patient to newID keeping its position. A blank or unchanged newID is a
// no-op and returns oldID.
func (s *Store) Rename(ctx context.Context, oldID, newID string) (string, error) {
	newID = strings.TrimSpace(newID)
	if newID == "" || newID == oldID {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.reg.has(oldID) {
			return "", errors.Wrap(ErrPatientNotFound, "rename patient", slog.String("patient_id", oldID))
		}
		return oldID, nil
	}
	err := s.mutate(ctx, func(reg *registry, activeID *string, _ *int) error {
		if !reg.has(oldID) {
			return errors.Wrap(ErrPatientNotFound, "rename patient", slog.String("patient_id", oldID))
		}
		if reg.has(newID) {
			return errors.Wrap(ErrPatientExists, "rename patient", slog.String("patient_id", newID))
		}
		reg.rename(oldID, newID)
		if *activeID == oldID {
			*activeID = newID
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return newID, nil
}

// Delete removes the patient. The last remaining patient cannot be deleted, reset it instead.
// Deleting the active patient activates the first remaining one.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, func(reg *registry, activeID *string, _ *int) error {
		if !reg.has(id) {
			return errors.Wrap(ErrPatientNotFound, "delete patient", slog.String("patient_id", id))
		}
		if len(reg.ids) <= 1 {
			return errors.Wrap(ErrLastPatient, "delete patient", slog.String("patient_id", id))
		}
		reg.remove(id)
		if *activeID == id {
			*activeID = reg.ids[0]
		}
		return nil
	})
}

// Reset clears the form and the notes of the patient.
func (s *Store) Reset(ctx context.Context, id string) error {
	return s.updatePatient(ctx, id, func(p *clinical.PatientState) error {
		*p = clinical.NewPatientState()
		return nil
	})
}

// UpdateForm merges a JSON patch into the patient's form and returns the new form.
func (s *Store) UpdateForm(ctx context.Context, id string, patch []byte) (clinical.FormState, error) {
	var form clinical.FormState
	err := s.updatePatient(ctx, id, func(p *clinical.PatientState) error {
		next, err := clinical.ApplyPatch(p.Form, patch)
		if err != nil {
			return err
		}
		p.Form = next
		form = next.Clone()
		return nil
	})
	return form, err
}

// ApplyScenario replaces the patient's form with the scenario on top of a blank form that
// keeps shift and gender.
func (s *Store) ApplyScenario(ctx context.Context, id string, scenario clinical.Scenario) (clinical.FormState, error) {
	var form clinical.FormState
	err := s.updatePatient(ctx, id, func(p *clinical.PatientState) error {
		next, err := clinical.ApplyScenario(p.Form, scenario)
		if err != nil {
			return err
		}
		p.Form = next
		form = next.Clone()
		return nil
	})
	return form, err
}
