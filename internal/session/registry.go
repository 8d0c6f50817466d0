package session

import (
	"bytes"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/myrjola/chartnote/internal/clinical"
	"github.com/myrjola/chartnote/internal/errors"
)

// registry is an ordered set of patients. Every mutation works on a freshly decoded copy.
type registry struct {
	ids      []string
	patients map[string]clinical.PatientState
}

func newRegistry() registry {
	return registry{ids: []string{}, patients: map[string]clinical.PatientState{}}
}

func (r registry) has(id string) bool {
	_, ok := r.patients[id]
	return ok
}

// put replaces the patient in place or appends it when new.
func (r *registry) put(id string, p clinical.PatientState) {
	if !r.has(id) {
		r.ids = append(r.ids, id)
	}
	r.patients[id] = p
}

func (r *registry) remove(id string) {
	delete(r.patients, id)
	r.ids = slices.DeleteFunc(r.ids, func(s string) bool { return s == id })
}

func (r *registry) rename(oldID, newID string) {
	p := r.patients[oldID]
	delete(r.patients, oldID)
	r.patients[newID] = p
	r.ids[slices.Index(r.ids, oldID)] = newID
}

// MarshalJSON writes the registry as a JSON object whose keys keep the registry order.
func (r registry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range r.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, errors.Wrap(err, "marshal patient id")
		}
		value, err := json.Marshal(r.patients[id])
		if err != nil {
			return nil, errors.Wrap(err, "marshal patient", slog.String("patient_id", id))
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// storedPatient accepts both the current record shape and the legacy one holding a single
// aiNote string.
type storedPatient struct {
	Form   json.RawMessage       `json:"formState"`
	Notes  *[]clinical.NoteEntry `json:"noteEntries"`
	AINote *string               `json:"aiNote"`
}

// decodeRegistry reads a registry object keeping its key order. Legacy aiNote records are
// converted with MigrateLegacyNote. A key seen twice keeps its first position and last value.
func decodeRegistry(data []byte, newID func() string) (registry, error) {
	reg := newRegistry()
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return reg, errors.Wrap(err, "read registry start")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return reg, errors.New("registry is not an object")
	}
	for dec.More() {
		if tok, err = dec.Token(); err != nil {
			return reg, errors.Wrap(err, "read patient id")
		}
		id, ok := tok.(string)
		if !ok {
			return reg, errors.New("patient id is not a string")
		}
		var stored storedPatient
		if err = dec.Decode(&stored); err != nil {
			return reg, errors.Wrap(err, "decode patient", slog.String("patient_id", id))
		}
		p, err := stored.patientState(newID)
		if err != nil {
			return reg, errors.Wrap(err, "decode patient", slog.String("patient_id", id))
		}
		reg.put(id, p)
	}
	if _, err = dec.Token(); err != nil {
		return reg, errors.Wrap(err, "read registry end")
	}
	return reg, nil
}

func (s storedPatient) patientState(newID func() string) (clinical.PatientState, error) {
	p := clinical.NewPatientState()
	if len(s.Form) > 0 && string(s.Form) != "null" {
		if err := json.Unmarshal(s.Form, &p.Form); err != nil {
			return p, errors.Wrap(err, "decode form")
		}
		p.Form.Normalize()
	}
	switch {
	case s.Notes != nil:
		p.Notes = *s.Notes
	case s.AINote != nil:
		p.Notes = MigrateLegacyNote(*s.AINote, newID)
	}
	if p.Notes == nil {
		p.Notes = []clinical.NoteEntry{}
	}
	return p, nil
}

// UnknownTimestamp marks a legacy note entry whose time could not be recovered.
const UnknownTimestamp = "??:??"

var legacyMarker = regexp.MustCompile(`(\d{2}:\d{2})\s*-\s*`)

// MigrateLegacyNote splits a legacy single-string note on its "HH:MM - " markers. Text before
// the first marker is dropped along with entries that are empty once trimmed. A note without
// markers becomes a single entry stamped UnknownTimestamp.
func MigrateLegacyNote(note string, newID func() string) []clinical.NoteEntry {
	entries := []clinical.NoteEntry{}
	matches := legacyMarker.FindAllStringSubmatchIndex(note, -1)
	if len(matches) == 0 {
		if note != "" {
			entries = append(entries, clinical.NoteEntry{ID: newID(), Timestamp: UnknownTimestamp, Content: note})
		}
		return entries
	}
	for i, m := range matches {
		end := len(note)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		content := strings.TrimSpace(note[m[1]:end])
		if content == "" {
			continue
		}
		entries = append(entries, clinical.NoteEntry{ID: newID(), Timestamp: note[m[2]:m[3]], Content: content})
	}
	return entries
}

// roomNumber extracts the digits of a patient id, "Ch. 104" gives 104.
func roomNumber(id string) (int, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, id)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// nextRoomNumber is one past the highest room number in the registry, or 101.
func (r registry) nextRoomNumber() int {
	highest, found := 0, false
	for _, id := range r.ids {
		if n, ok := roomNumber(id); ok && (!found || n > highest) {
			highest, found = n, true
		}
	}
	if !found {
		return firstRoomNumber
	}
	return highest + 1
}
