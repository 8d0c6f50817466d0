// Package export renders note entries as PDF pages, DOCX tables, labels and ZPL.
package export

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/myrjola/chartnote/internal/errors"
)

const KeyLayoutSettings = "nurse-layout-settings"

var ErrInvalidSettings = errors.NewSentinel("invalid layout settings")

// LayoutSettings positions the note on a pre-printed A4 progress-note form. Lengths are in
// centimetres, font size and spacing in points.
type LayoutSettings struct {
	PositionY      float64 `json:"positionY"      validate:"gte=1,lte=10"`
	PositionX      float64 `json:"positionX"      validate:"gte=1,lte=5"`
	TextBlockWidth float64 `json:"textBlockWidth" validate:"gte=10,lte=18"`
	FontFamily     string  `json:"fontFamily"     validate:"oneof=Helvetica Times Courier"`
	FontSize       float64 `json:"fontSize"       validate:"gte=8,lte=16"`
	FontWeight     int     `json:"fontWeight"     validate:"oneof=300 400 500 600 700"`
	LineHeight     float64 `json:"lineHeight"     validate:"gte=1,lte=2.5"`
	EntrySpacing   float64 `json:"entrySpacing"   validate:"gte=0,lte=20"`
	Opacity        float64 `json:"opacity"        validate:"gte=10,lte=100"`
	LabelWidth     float64 `json:"labelWidth"     validate:"gt=0,lte=30"`
	LabelHeight    float64 `json:"labelHeight"    validate:"gt=0,lte=30"`
}

func DefaultLayoutSettings() LayoutSettings {
	return LayoutSettings{
		PositionY:      4.7,
		PositionX:      2.2,
		TextBlockWidth: 15.7,
		FontFamily:     "Helvetica",
		FontSize:       10.5,
		FontWeight:     400,
		LineHeight:     1.5,
		EntrySpacing:   4,
		Opacity:        100,
		LabelWidth:     8.9,
		LabelHeight:    6.2,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (s LayoutSettings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return errors.Wrap(ErrInvalidSettings, first.Field()+" fails "+first.Tag(),
				slog.String("field", first.Field()), slog.String("rule", first.Tag()))
		}
		return errors.Wrap(ErrInvalidSettings, err.Error())
	}
	return nil
}

// MergeLayoutSettings decodes a partial settings object over base and validates the result.
func MergeLayoutSettings(base LayoutSettings, raw []byte) (LayoutSettings, error) {
	merged := base
	if err := json.Unmarshal(raw, &merged); err != nil {
		return base, errors.Wrap(ErrInvalidSettings, "decode: "+err.Error())
	}
	if err := merged.Validate(); err != nil {
		return base, err
	}
	return merged, nil
}

// LoadLayoutSettings decodes persisted settings over the defaults. Anything unusable yields the
// defaults together with the reason, which callers log.
func LoadLayoutSettings(raw string) (LayoutSettings, error) {
	if raw == "" {
		return DefaultLayoutSettings(), nil
	}
	return MergeLayoutSettings(DefaultLayoutSettings(), []byte(raw))
}
