package clinical_test

import (
	"testing"

	"github.com/myrjola/chartnote/internal/clinical"
	"github.com/stretchr/testify/require"
)

func TestFormState_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *clinical.FormState)
		wantErr error
	}{
		{name: "valid", mutate: func(f *clinical.FormState) {
			f.Shift = clinical.ShiftDay
			f.Respiratory.Selected = []string{clinical.OxygenUse}
			f.Respiratory.Interventions = []string{"Auscultation pulmonaire"}
			f.Respiratory.Medication = "Ventolin"
			f.Alertness.Selected = []string{"Alerte"}
			f.Pain.S = "Non évaluable"
		}},
		{name: "unknown shift", mutate: func(f *clinical.FormState) {
			f.Shift = "Matin"
		}, wantErr: clinical.ErrInvalidForm},
		{name: "unknown finding", mutate: func(f *clinical.FormState) {
			f.Position.Selected = []string{"Couché"}
		}, wantErr: clinical.ErrInvalidForm},
		{name: "duplicate finding", mutate: func(f *clinical.FormState) {
			f.Position.Selected = []string{"Debout", "Debout"}
		}, wantErr: clinical.ErrInvalidForm},
		{name: "two values in single choice section", mutate: func(f *clinical.FormState) {
			f.VitalSigns.Selected = []string{"Normal", "Anormal"}
		}, wantErr: clinical.ErrInvalidForm},
		{name: "medication on section without interventions", mutate: func(f *clinical.FormState) {
			f.Geriatric.Medication = "Haldol"
		}, wantErr: clinical.ErrInvalidForm},
		{name: "intervention from another section", mutate: func(f *clinical.FormState) {
			f.Digestive.Interventions = []string{"Auscultation pulmonaire"}
		}, wantErr: clinical.ErrInvalidForm},
		{name: "unknown gauge", mutate: func(f *clinical.FormState) {
			f.Admission.VenousAccessGauge = "#16"
		}, wantErr: clinical.ErrInvalidForm},
		{name: "o2 flow without oxygen use", mutate: func(f *clinical.FormState) {
			f.O2Flow = "2"
		}, wantErr: clinical.ErrInvalidForm},
		{name: "o2 flow with oxygen use", mutate: func(f *clinical.FormState) {
			f.Respiratory.Selected = []string{clinical.OxygenUse}
			f.O2Flow = "2"
		}},
		{name: "venous site without venous access", mutate: func(f *clinical.FormState) {
			f.Admission.VenousAccessSite = "bras droit (BD)"
		}, wantErr: clinical.ErrInvalidForm},
		{name: "gauge without venous access", mutate: func(f *clinical.FormState) {
			f.Admission.VenousAccessGauge = "#20"
		}, wantErr: clinical.ErrInvalidForm},
		{name: "picc site without picc line", mutate: func(f *clinical.FormState) {
			f.Admission.PICCLineSite = "bras gauche (BG)"
		}, wantErr: clinical.ErrInvalidForm},
		{name: "unknown pain severity", mutate: func(f *clinical.FormState) {
			f.Pain.S = "Extrême"
		}, wantErr: clinical.ErrInvalidForm},
		{name: "score outside table", mutate: func(f *clinical.FormState) {
			f.Morse.Gait = 5
		}, wantErr: clinical.ErrInvalidScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := clinical.NewFormState()
			tt.mutate(&f)
			err := f.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestApplyPatch(t *testing.T) {
	f := clinical.NewFormState()
	f.Shift = clinical.ShiftNight
	f.Pain.Site = "Genou"

	next, err := clinical.ApplyPatch(f, []byte(`{"pain":{"s":"Légère (1-3/10)"},"position":{"selected":["Debout"]}}`))
	require.NoError(t, err)
	require.Equal(t, clinical.ShiftNight, next.Shift, "untouched fields are preserved")
	require.Equal(t, "Genou", next.Pain.Site, "nested objects merge")
	require.Equal(t, "Légère (1-3/10)", next.Pain.S)
	require.Equal(t, []string{"Debout"}, next.Position.Selected)
	require.Empty(t, f.Position.Selected, "input is not mutated")

	next, err = clinical.ApplyPatch(next, []byte(`{"position":{"selected":null}}`))
	require.NoError(t, err)
	require.Equal(t, []string{}, next.Position.Selected)

	_, err = clinical.ApplyPatch(f, []byte(`{"position":{"selected":["Nope"]}}`))
	require.ErrorIs(t, err, clinical.ErrInvalidForm)

	_, err = clinical.ApplyPatch(f, []byte(`{"unknownField":1}`))
	require.ErrorIs(t, err, clinical.ErrInvalidForm)

	_, err = clinical.ApplyPatch(f, []byte(`not json`))
	require.ErrorIs(t, err, clinical.ErrInvalidForm)
}

func TestScenarios(t *testing.T) {
	all := clinical.Scenarios()
	require.Len(t, all, 20)

	current := clinical.NewFormState()
	current.Shift = clinical.ShiftDay
	current.Gender = clinical.GenderFemale
	current.Particularities = "sera écrasé"

	for _, s := range all {
		t.Run(s.Label, func(t *testing.T) {
			got, err := clinical.ApplyScenario(current, s)
			require.NoError(t, err)
			require.Equal(t, clinical.ShiftDay, got.Shift)
			require.Equal(t, clinical.GenderFemale, got.Gender)
			require.NotEqual(t, "sera écrasé", got.Particularities)
			require.False(t, got.IsEmpty())
		})
	}

	fall, err := clinical.ScenarioByLabel("Chute du Patient")
	require.NoError(t, err)
	got, err := clinical.ApplyScenario(current, fall)
	require.NoError(t, err)
	require.Equal(t, 65, got.Morse.Total())

	withdrawal, err := clinical.ScenarioByLabel("Sevrage Alcool (ROH)")
	require.NoError(t, err)
	got, err = clinical.ApplyScenario(current, withdrawal)
	require.NoError(t, err)
	require.Equal(t, 18, got.CIWA.Total())
	require.Equal(t, clinical.CIWAModerate, got.CIWA.Category())

	_, err = clinical.ScenarioByLabel("Inexistant")
	require.ErrorIs(t, err, clinical.ErrUnknownScenario)
}
