// Package summary compiles an assessment form into the French clinical summary that feeds
// the narrative model.
package summary

import (
	"fmt"
	"strings"

	"github.com/myrjola/chartnote/internal/clinical"
)

// Compile renders the form as newline separated blocks. A blank form compiles to "".
func Compile(f clinical.FormState) string {
	return strings.Join(Blocks(f), "\n")
}

// Blocks returns the non-empty summary blocks in their fixed order: context, admission,
// body-system sections, risk scales, pain, particularities.
func Blocks(f clinical.FormState) []string {
	var blocks []string
	add := func(b string) {
		if b != "" {
			blocks = append(blocks, b)
		}
	}

	if f.Shift != "" {
		add(fmt.Sprintf("Contexte: note rédigée durant le quart de %s.", f.Shift))
	}
	if f.Gender != "" {
		add(fmt.Sprintf("Genre du patient: %s.", f.Gender))
	}
	add(admission(f.Admission))
	for _, section := range clinical.Sections {
		add(sectionBlock(section, f))
	}
	for _, b := range scales(f) {
		add(b)
	}
	add(pain(f.Pain))
	if p := strings.TrimSpace(f.Particularities); p != "" {
		add("- Particularités / Événements notables : " + p)
	}
	return blocks
}

// IsEmpty reports whether nothing beyond shift and gender has been entered.
func IsEmpty(f clinical.FormState) bool {
	return f.IsEmpty()
}

// AdmissionFilled reports whether any admission detail has been entered.
func AdmissionFilled(a clinical.Admission) bool {
	return len(a.Checkboxes) > 0 ||
		len(a.Orientation) > 0 ||
		a.Autonomy != "" ||
		strings.TrimSpace(a.PersonalEffects) != "" ||
		a.VenousAccess ||
		a.PICCLine ||
		len(a.Drains) > 0 ||
		len(a.Tubes) > 0 ||
		strings.TrimSpace(a.VenousAccessSite) != "" ||
		strings.TrimSpace(a.PICCLineSite) != ""
}

func admission(a clinical.Admission) string {
	if !AdmissionFilled(a) {
		return ""
	}
	details := make([]string, 0, 8)
	details = append(details, a.Checkboxes...)
	if len(a.Orientation) > 0 {
		details = append(details, fmt.Sprintf("Orientation: %s.", strings.Join(a.Orientation, ", ")))
	} else {
		details = append(details, "Orientation: Non évaluée ou non orienté(e).")
	}
	if a.Autonomy != "" {
		details = append(details, fmt.Sprintf("Autonomie fonctionnelle: %s.", a.Autonomy))
	}
	if effects := strings.TrimSpace(a.PersonalEffects); effects != "" {
		details = append(details, fmt.Sprintf("Effets personnels: %s.", effects))
	}
	if a.VenousAccess {
		text := "Accès veineux (CVP) fonctionnel"
		if a.VenousAccessGauge != "" {
			text += ", calibre " + a.VenousAccessGauge
		}
		if a.VenousAccessSite != "" {
			text += " au " + a.VenousAccessSite
		}
		details = append(details, text+".")
	}
	if a.PICCLine {
		text := "PICC Line en place et fonctionnel"
		if a.PICCLineSite != "" {
			text += " au " + a.PICCLineSite
		}
		details = append(details, text+".")
	}
	if len(a.Drains) > 0 {
		details = append(details, fmt.Sprintf("Drains en place: %s.", strings.Join(a.Drains, ", ")))
	}
	if len(a.Tubes) > 0 {
		details = append(details, fmt.Sprintf("Sondes en place: %s.", strings.Join(a.Tubes, ", ")))
	}
	return "- Admission : " + strings.Join(details, " ")
}

func sectionBlock(section clinical.Section, f clinical.FormState) string {
	findings := f.Findings(section.ID)
	var content []string

	if len(findings.Selected) > 0 {
		switch {
		case section.Kind == clinical.SingleSelect && section.SpecialSheet:
			content = append(content, findings.Selected[0]+", voir feuille spéciale")
		case section.Kind == clinical.SingleSelect:
			content = append(content, findings.Selected[0])
		default:
			content = append(content, strings.Join(withOxygenFlow(section.ID, findings.Selected, f.O2Flow), ", "))
		}
	}
	if section.ID == clinical.SectionPalliative {
		if other := strings.TrimSpace(f.PalliativeOther); other != "" {
			content = append(content, "Autres: "+other)
		}
	}
	if section.HasInterventions() {
		if findings.Medication != "" {
			content = append(content, "médicament administré: "+findings.Medication)
		}
		if len(findings.Interventions) > 0 {
			content = append(content, "interventions: "+strings.Join(findings.Interventions, ", "))
		}
	}
	if len(content) == 0 {
		return ""
	}
	return fmt.Sprintf("- %s : %s.", section.Title, strings.Join(content, "; "))
}

// withOxygenFlow appends the flow rate to the oxygen-use finding of the respiratory section.
func withOxygenFlow(id clinical.SectionID, selected []string, flow string) []string {
	if id != clinical.SectionRespiratory || flow == "" {
		return selected
	}
	out := make([]string, len(selected))
	for i, v := range selected {
		if v == clinical.OxygenUse {
			v = fmt.Sprintf("%s (%s L/min)", clinical.OxygenUse, flow)
		}
		out[i] = v
	}
	return out
}

func scales(f clinical.FormState) []string {
	var out []string
	if f.Morse.Filled() {
		out = append(out, fmt.Sprintf("- Risque de Chute (Morse): Score %d. %s.", f.Morse.Total(), f.Morse.Category().Label))
	}
	if f.Braden.Filled() {
		out = append(out, fmt.Sprintf("- Risque de Plaie de Pression (Braden): Score %d/23. %s.",
			f.Braden.Total(), f.Braden.Category().Label))
	}
	if f.CIWA.Filled() {
		out = append(out, fmt.Sprintf("- Sevrage d'Alcool (CIWA-Ar): Score %d. %s.", f.CIWA.Total(), f.CIWA.Category().Label))
	}
	return out
}

func pain(p clinical.Pain) string {
	var lines []string
	for _, dim := range clinical.PainDimensions {
		values := dim.Values(p)
		if dim.Key == "r" {
			if len(values) == 0 && p.Site == "" {
				continue
			}
			text := strings.Join(values, ", ")
			if p.Site != "" {
				if text != "" {
					text += "; "
				}
				text += "Site: " + p.Site
			}
			lines = append(lines, fmt.Sprintf("  - %s : %s", dim.Label, text))
			continue
		}
		if len(values) > 0 {
			lines = append(lines, fmt.Sprintf("  - %s : %s", dim.Label, strings.Join(values, ", ")))
		}
	}
	if len(lines) == 0 && p.Medication == "" && len(p.NonPharma) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("- Douleur (PQRSTU) :")
	for _, line := range lines {
		b.WriteString("\n" + line)
	}
	if p.Medication != "" {
		b.WriteString("\n  - Intervention pharmacologique (Médicament) : " + p.Medication)
	}
	if len(p.NonPharma) > 0 {
		b.WriteString("\n  - Interventions non pharmacologiques : " + strings.Join(p.NonPharma, ", "))
	}
	return b.String()
}
