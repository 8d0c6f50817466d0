package clinical

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/myrjola/chartnote/internal/errors"
)

var ErrInvalidForm = errors.NewSentinel("invalid form")

// Validate checks every field of the form against its closed vocabulary. It returns the first
// violation wrapped around ErrInvalidForm or ErrInvalidScore.
func (f FormState) Validate() error {
	checks := []func() error{
		func() error { return oneOf("shift", f.Shift, Shifts) },
		func() error { return oneOf("gender", f.Gender, Genders) },
		f.Admission.validate,
		f.validateSections,
		f.validateDependents,
		f.Pain.validate,
		f.Morse.Validate,
		f.Braden.Validate,
		f.CIWA.Validate,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (a Admission) validate() error {
	if err := subsetOf("admission.checkboxes", a.Checkboxes, AdmissionOptions); err != nil {
		return err
	}
	if err := subsetOf("admission.orientation", a.Orientation, OrientationOptions); err != nil {
		return err
	}
	if err := oneOf("admission.autonomy", a.Autonomy, AutonomyOptions); err != nil {
		return err
	}
	if err := oneOf("admission.venousAccessGauge", a.VenousAccessGauge, GaugeOptions); err != nil {
		return err
	}
	if err := oneOf("admission.venousAccessSite", a.VenousAccessSite, LimbSiteOptions); err != nil {
		return err
	}
	if err := oneOf("admission.piccLineSite", a.PICCLineSite, LimbSiteOptions); err != nil {
		return err
	}
	if err := subsetOf("admission.drains", a.Drains, DrainOptions); err != nil {
		return err
	}
	return subsetOf("admission.tubes", a.Tubes, TubeOptions)
}

func (f FormState) validateSections() error {
	for _, section := range Sections {
		findings := f.Findings(section.ID)
		field := string(section.ID)
		if err := subsetOf(field+".selected", findings.Selected, section.Options); err != nil {
			return err
		}
		if section.Kind == SingleSelect && len(findings.Selected) > 1 {
			return invalid(field+".selected", "single choice section holds several values")
		}
		if !section.HasInterventions() {
			if findings.Medication != "" || len(findings.Interventions) > 0 {
				return invalid(field, "section takes no medication or interventions")
			}
			continue
		}
		if err := subsetOf(field+".interventions", findings.Interventions, section.Interventions); err != nil {
			return err
		}
	}
	return nil
}

// validateDependents rejects qualifiers set without the finding they qualify.
func (f FormState) validateDependents() error {
	a := f.Admission
	switch {
	case f.O2Flow != "" && !slices.Contains(f.Respiratory.Selected, OxygenUse):
		return invalid("o2Flow", "requires "+OxygenUse)
	case a.VenousAccessGauge != "" && !a.VenousAccess:
		return invalid("admission.venousAccessGauge", "requires venousAccess")
	case a.VenousAccessSite != "" && !a.VenousAccess:
		return invalid("admission.venousAccessSite", "requires venousAccess")
	case a.PICCLineSite != "" && !a.PICCLine:
		return invalid("admission.piccLineSite", "requires piccLine")
	}
	return nil
}

func (p Pain) validate() error {
	for _, dim := range PainDimensions {
		field := "pain." + dim.Key
		if dim.Kind == SingleSelect {
			if err := oneOf(field, p.S, dim.Options); err != nil {
				return err
			}
			continue
		}
		if err := subsetOf(field, dim.Values(p), dim.Options); err != nil {
			return err
		}
	}
	return subsetOf("pain.nonPharma", p.NonPharma, PainNonPharmaOptions)
}

// oneOf accepts the empty string or a member of options.
func oneOf(field, value string, options []string) error {
	if value == "" || slices.Contains(options, value) {
		return nil
	}
	return invalid(field, fmt.Sprintf("unknown value %q", value))
}

// subsetOf accepts values drawn from options without duplicates.
func subsetOf(field string, values, options []string) error {
	for i, v := range values {
		if !slices.Contains(options, v) {
			return invalid(field, fmt.Sprintf("unknown value %q", v))
		}
		if slices.Contains(values[:i], v) {
			return invalid(field, fmt.Sprintf("duplicate value %q", v))
		}
	}
	return nil
}

func invalid(field, reason string) error {
	return errors.Wrap(ErrInvalidForm, field+": "+reason, slog.String("field", field))
}
