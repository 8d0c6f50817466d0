package clinical

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/myrjola/chartnote/internal/errors"
)

// RiskCategory is the classification of a scale total. Code is stable, Label is the French
// wording used in the compiled summary.
type RiskCategory struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

var (
	MorseHigh        = RiskCategory{Code: "high", Label: "Risque élevé (>=51)"}
	MorseLowModerate = RiskCategory{Code: "low-moderate", Label: "Risque faible à modéré (25-50)"}
	MorseNone        = RiskCategory{Code: "none", Label: "Aucun risque identifié (0-24)"}

	BradenVeryHigh = RiskCategory{Code: "very-high", Label: "Risque très élevé (<=9)"}
	BradenHigh     = RiskCategory{Code: "high", Label: "Risque élevé (10-12)"}
	BradenModerate = RiskCategory{Code: "moderate", Label: "Risque modéré (13-14)"}
	BradenMild     = RiskCategory{Code: "mild", Label: "Risque léger (15-18)"}
	BradenNone     = RiskCategory{Code: "none", Label: "Pas de risque (19-23)"}

	CIWASevere   = RiskCategory{Code: "severe", Label: "Sevrage sévère (>18)"}
	CIWAModerate = RiskCategory{Code: "moderate", Label: "Sevrage modéré (10-18)"}
	CIWAMild     = RiskCategory{Code: "mild", Label: "Sevrage léger (<10)"}
)

var ErrInvalidScore = errors.NewSentinel("score not in option table")

// ScaleItem is one sub-score of a scale with its closed option table.
type ScaleItem struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Options []int  `json:"options"`
}

// Morse is the Morse Fall Scale.
type Morse struct {
	History            int `json:"history"`
	SecondaryDiagnosis int `json:"secondaryDiagnosis"`
	AmbulatoryAid      int `json:"ambulatoryAid"`
	IVTherapy          int `json:"ivTherapy"`
	Gait               int `json:"gait"`
	MentalStatus       int `json:"mentalStatus"`
}

var MorseItems = []ScaleItem{
	{Key: "history", Label: "Antécédents de chute (dans les 3 derniers mois)", Options: []int{0, 25}},
	{Key: "secondaryDiagnosis", Label: "Diagnostic secondaire", Options: []int{0, 15}},
	{Key: "ambulatoryAid", Label: "Aide à la marche", Options: []int{0, 15, 30}},
	{Key: "ivTherapy", Label: "Thérapie intraveineuse / Cathéter veineux", Options: []int{0, 20}},
	{Key: "gait", Label: "Démarche / Transfert", Options: []int{0, 10, 20}},
	{Key: "mentalStatus", Label: "État mental (conscience de ses propres limites)", Options: []int{0, 15}},
}

func (m Morse) values() []int {
	return []int{m.History, m.SecondaryDiagnosis, m.AmbulatoryAid, m.IVTherapy, m.Gait, m.MentalStatus}
}

func (m Morse) Total() int { return sum(m.values()) }

// Filled reports whether any sub-score differs from 0.
func (m Morse) Filled() bool { return anyDiffers(m.values(), 0) }

func (m Morse) Category() RiskCategory { return MorseCategory(m.Total()) }

func (m Morse) Validate() error { return validateItems("morse", MorseItems, m.values()) }

// MorseCategory classifies a Morse total.
func MorseCategory(total int) RiskCategory {
	switch {
	case total >= 51:
		return MorseHigh
	case total >= 25:
		return MorseLowModerate
	default:
		return MorseNone
	}
}

// Braden is the Braden pressure-injury scale. Lower totals mean higher risk.
type Braden struct {
	SensoryPerception int `json:"sensoryPerception"`
	Moisture          int `json:"moisture"`
	Activity          int `json:"activity"`
	Mobility          int `json:"mobility"`
	Nutrition         int `json:"nutrition"`
	FrictionAndShear  int `json:"frictionAndShear"`
}

var BradenItems = []ScaleItem{
	{Key: "sensoryPerception", Label: "Perception sensorielle", Options: []int{1, 2, 3, 4}},
	{Key: "moisture", Label: "Humidité", Options: []int{1, 2, 3, 4}},
	{Key: "activity", Label: "Activité", Options: []int{1, 2, 3, 4}},
	{Key: "mobility", Label: "Mobilité", Options: []int{1, 2, 3, 4}},
	{Key: "nutrition", Label: "Nutrition", Options: []int{1, 2, 3, 4}},
	{Key: "frictionAndShear", Label: "Friction et cisaillement", Options: []int{1, 2, 3}},
}

// NewBraden returns the baseline Braden scale with every sub-score at 1.
func NewBraden() Braden {
	return Braden{SensoryPerception: 1, Moisture: 1, Activity: 1, Mobility: 1, Nutrition: 1, FrictionAndShear: 1}
}

func (b Braden) values() []int {
	return []int{b.SensoryPerception, b.Moisture, b.Activity, b.Mobility, b.Nutrition, b.FrictionAndShear}
}

func (b Braden) Total() int { return sum(b.values()) }

// Filled reports whether any sub-score differs from 1.
func (b Braden) Filled() bool { return anyDiffers(b.values(), 1) }

func (b Braden) Category() RiskCategory { return BradenCategory(b.Total()) }

func (b Braden) Validate() error { return validateItems("braden", BradenItems, b.values()) }

// BradenCategory classifies a Braden total.
func BradenCategory(total int) RiskCategory {
	switch {
	case total >= 19:
		return BradenNone
	case total >= 15:
		return BradenMild
	case total >= 13:
		return BradenModerate
	case total >= 10:
		return BradenHigh
	default:
		return BradenVeryHigh
	}
}

// CIWA is the CIWA-Ar alcohol withdrawal scale.
type CIWA struct {
	NauseaVomiting int `json:"nauseaVomiting"`
	Tremor         int `json:"tremor"`
	Sweats         int `json:"sweats"`
	Anxiety        int `json:"anxiety"`
	Agitation      int `json:"agitation"`
	Tactile        int `json:"tactile"`
	Auditory       int `json:"auditory"`
	Visual         int `json:"visual"`
	Headache       int `json:"headache"`
	Orientation    int `json:"orientation"`
}

var CIWAItems = []ScaleItem{
	{Key: "nauseaVomiting", Label: "Nausées et vomissements", Options: []int{0, 1, 4, 7}},
	{Key: "tremor", Label: "Tremblements", Options: []int{0, 1, 4, 7}},
	{Key: "sweats", Label: "Sueurs paroxystiques", Options: []int{0, 1, 4, 7}},
	{Key: "anxiety", Label: "Anxiété", Options: []int{0, 1, 4, 7}},
	{Key: "agitation", Label: "Agitation", Options: []int{0, 1, 2, 4, 7}},
	{Key: "tactile", Label: "Perturbations tactiles", Options: []int{0, 1, 2, 3, 5, 7}},
	{Key: "auditory", Label: "Perturbations auditives", Options: []int{0, 1, 2, 3, 5, 7}},
	{Key: "visual", Label: "Perturbations visuelles", Options: []int{0, 1, 2, 3, 5, 7}},
	{Key: "headache", Label: "Céphalées, sensation de tête pleine", Options: []int{0, 1, 2, 3, 5, 7}},
	{Key: "orientation", Label: "Orientation et état de conscience", Options: []int{0, 1, 2, 3, 4}},
}

func (c CIWA) values() []int {
	return []int{
		c.NauseaVomiting, c.Tremor, c.Sweats, c.Anxiety, c.Agitation,
		c.Tactile, c.Auditory, c.Visual, c.Headache, c.Orientation,
	}
}

func (c CIWA) Total() int { return sum(c.values()) }

// Filled reports whether any sub-score differs from 0.
func (c CIWA) Filled() bool { return anyDiffers(c.values(), 0) }

func (c CIWA) Category() RiskCategory { return CIWACategory(c.Total()) }

func (c CIWA) Validate() error { return validateItems("ciwa", CIWAItems, c.values()) }

// CIWACategory classifies a CIWA-Ar total.
func CIWACategory(total int) RiskCategory {
	switch {
	case total > 18:
		return CIWASevere
	case total >= 10:
		return CIWAModerate
	default:
		return CIWAMild
	}
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

func anyDiffers(values []int, baseline int) bool {
	return slices.ContainsFunc(values, func(v int) bool { return v != baseline })
}

// validateItems expects values in the same order as items.
func validateItems(scale string, items []ScaleItem, values []int) error {
	for i, item := range items {
		if !slices.Contains(item.Options, values[i]) {
			return errors.Wrap(ErrInvalidScore, fmt.Sprintf("%s.%s: %d", scale, item.Key, values[i]),
				slog.String("scale", scale), slog.String("item", item.Key), slog.Int("value", values[i]))
		}
	}
	return nil
}
