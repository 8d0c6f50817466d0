// Package clinical holds the nursing assessment form, its closed vocabularies and the
// Morse, Braden and CIWA-Ar risk scales.
package clinical

import (
	"reflect"
	"slices"
)

// FormState is the assessment currently being entered for one patient.
type FormState struct {
	Shift  string `json:"shift"`
	Gender string `json:"gender"`

	Admission Admission `json:"admission"`

	Position     Findings `json:"position"`
	Alertness    Findings `json:"alertness"`
	NeuroSigns   Findings `json:"neuroSigns"`
	Respiratory  Findings `json:"respiratory"`
	VitalSigns   Findings `json:"vitalSigns"`
	Digestive    Findings `json:"digestive"`
	Urinary      Findings `json:"urinary"`
	Skin         Findings `json:"skin"`
	Geriatric    Findings `json:"geriatric"`
	Palliative   Findings `json:"palliative"`
	Observations Findings `json:"observations"`
	Visits       Findings `json:"visits"`

	// O2Flow is the oxygen flow in L/min, appended to the oxygen-use finding.
	O2Flow          string `json:"o2Flow"`
	PalliativeOther string `json:"palliativeOther"`
	Particularities string `json:"particularities"`

	Pain   Pain   `json:"pain"`
	Morse  Morse  `json:"morse"`
	Braden Braden `json:"braden"`
	CIWA   CIWA   `json:"ciwa"`
}

type Admission struct {
	Checkboxes        []string `json:"checkboxes"`
	Orientation       []string `json:"orientation"`
	Autonomy          string   `json:"autonomy"`
	PersonalEffects   string   `json:"personalEffects"`
	VenousAccess      bool     `json:"venousAccess"`
	VenousAccessGauge string   `json:"venousAccessGauge"`
	VenousAccessSite  string   `json:"venousAccessSite"`
	PICCLine          bool     `json:"piccLine"`
	PICCLineSite      string   `json:"piccLineSite"`
	Drains            []string `json:"drains"`
	Tubes             []string `json:"tubes"`
}

// Findings is the record kept for every body-system section. Single-select sections use at
// most one Selected value. Medication and Interventions only apply to sections that list
// interventions.
type Findings struct {
	Selected      []string `json:"selected"`
	Medication    string   `json:"medication"`
	Interventions []string `json:"interventions"`
}

// Pain is the PQRSTU assessment.
type Pain struct {
	P          []string `json:"p"`
	Q          []string `json:"q"`
	R          []string `json:"r"`
	Site       string   `json:"site"`
	S          string   `json:"s"`
	T          []string `json:"t"`
	U          []string `json:"u"`
	Medication string   `json:"medication"`
	NonPharma  []string `json:"nonPharma"`
}

// NoteEntry is one timestamped paragraph of a patient's progress note.
type NoteEntry struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Content   string `json:"content"`
}

// PatientState is everything kept for one patient.
type PatientState struct {
	Form  FormState   `json:"formState"`
	Notes []NoteEntry `json:"noteEntries"`
}

// SavedState is a named template. It has the same shape as a patient.
type SavedState = PatientState

// NewFormState returns a blank form.
func NewFormState() FormState {
	var f FormState
	f.Braden = NewBraden()
	f.Normalize()
	return f
}

// NewPatientState returns a patient with a blank form and no notes.
func NewPatientState() PatientState {
	return PatientState{Form: NewFormState(), Notes: []NoteEntry{}}
}

// Findings returns the record for the section or nil for an unknown id.
func (f *FormState) Findings(id SectionID) *Findings {
	switch id {
	case SectionPosition:
		return &f.Position
	case SectionAlertness:
		return &f.Alertness
	case SectionNeuroSigns:
		return &f.NeuroSigns
	case SectionRespiratory:
		return &f.Respiratory
	case SectionVitalSigns:
		return &f.VitalSigns
	case SectionDigestive:
		return &f.Digestive
	case SectionUrinary:
		return &f.Urinary
	case SectionSkin:
		return &f.Skin
	case SectionGeriatric:
		return &f.Geriatric
	case SectionPalliative:
		return &f.Palliative
	case SectionObservations:
		return &f.Observations
	case SectionVisits:
		return &f.Visits
	}
	return nil
}

// Normalize replaces nil slices with empty ones so that a form never has absent fields.
func (f *FormState) Normalize() {
	for _, s := range []*[]string{
		&f.Admission.Checkboxes, &f.Admission.Orientation, &f.Admission.Drains, &f.Admission.Tubes,
		&f.Pain.P, &f.Pain.Q, &f.Pain.R, &f.Pain.T, &f.Pain.U, &f.Pain.NonPharma,
	} {
		if *s == nil {
			*s = []string{}
		}
	}
	for _, section := range Sections {
		findings := f.Findings(section.ID)
		if findings.Selected == nil {
			findings.Selected = []string{}
		}
		if findings.Interventions == nil {
			findings.Interventions = []string{}
		}
	}
}

// Clone returns a deep copy.
func (f FormState) Clone() FormState {
	c := f
	c.Admission.Checkboxes = slices.Clone(f.Admission.Checkboxes)
	c.Admission.Orientation = slices.Clone(f.Admission.Orientation)
	c.Admission.Drains = slices.Clone(f.Admission.Drains)
	c.Admission.Tubes = slices.Clone(f.Admission.Tubes)
	c.Pain.P = slices.Clone(f.Pain.P)
	c.Pain.Q = slices.Clone(f.Pain.Q)
	c.Pain.R = slices.Clone(f.Pain.R)
	c.Pain.T = slices.Clone(f.Pain.T)
	c.Pain.U = slices.Clone(f.Pain.U)
	c.Pain.NonPharma = slices.Clone(f.Pain.NonPharma)
	for _, section := range Sections {
		src := f.Findings(section.ID)
		dst := c.Findings(section.ID)
		dst.Selected = slices.Clone(src.Selected)
		dst.Interventions = slices.Clone(src.Interventions)
	}
	c.Normalize()
	return c
}

// ResetKeepingContext returns a blank form that keeps only the shift and gender of f.
func (f FormState) ResetKeepingContext() FormState {
	blank := NewFormState()
	blank.Shift = f.Shift
	blank.Gender = f.Gender
	return blank
}

// IsEmpty reports whether the form equals a blank form when shift and gender are ignored.
func (f FormState) IsEmpty() bool {
	c := f.Clone()
	c.Shift, c.Gender = "", ""
	return reflect.DeepEqual(c, NewFormState())
}

// Clone returns a deep copy.
func (p PatientState) Clone() PatientState {
	notes := slices.Clone(p.Notes)
	if notes == nil {
		notes = []NoteEntry{}
	}
	return PatientState{Form: p.Form.Clone(), Notes: notes}
}
