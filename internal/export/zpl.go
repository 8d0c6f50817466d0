package export

import (
	"fmt"
	"slices"
	"strings"

	"github.com/myrjola/chartnote/internal/clinical"
)

// LabelData is what the thermal wristband label shows.
type LabelData struct {
	PatientID string
	Gender    string
	FallRisk  clinical.RiskCategory
	Allergies bool
}

// LabelDataFor derives the label fields from the patient's form.
func LabelDataFor(patientID string, f clinical.FormState) LabelData {
	return LabelData{
		PatientID: patientID,
		Gender:    f.Gender,
		FallRisk:  f.Morse.Category(),
		Allergies: slices.Contains(f.Admission.Checkboxes, clinical.AllergiesChecked),
	}
}

// zplField strips the ZPL command prefixes so that values cannot inject commands.
var zplField = strings.NewReplacer("^", "", "~", "")

// ZPL renders a 406x203 dot label (2x1 in at 203 dpi) with a Code 128 barcode of the patient id.
func ZPL(d LabelData) string {
	gender := d.Gender
	if gender == "" {
		gender = "N/A"
	}
	risk := "Faible"
	switch d.FallRisk.Code {
	case clinical.MorseHigh.Code:
		risk = "Eleve"
	case clinical.MorseLowModerate.Code:
		risk = "Modere"
	}
	allergies := "Non"
	if d.Allergies {
		allergies = "Oui"
	}
	id := zplField.Replace(d.PatientID)

	return fmt.Sprintf(`^XA
^PW406
^LL203
^CI28

^FO20,20^A0N,40,40^FD%s^FS
^FO20,70^A0N,25,25^FDGenre: %s^FS
^FO220,70^A0N,25,25^FDRisque Chute: %s^FS
^FO20,105^A0N,25,25^FDAllergies: %s^FS
^FO40,140^BY2,2,60^BCN,60,Y,N,N^FD%s^FS

^XZ`, id, zplField.Replace(gender), risk, allergies, id)
}
