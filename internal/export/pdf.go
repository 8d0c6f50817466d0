package export

import (
	"bytes"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/myrjola/chartnote/internal/clinical"
	"github.com/myrjola/chartnote/internal/errors"
)

var (
	ErrNothingToExport  = errors.NewSentinel("no note entries to export")
	ErrUnsupportedImage = errors.NewSentinel("unsupported background image")
)

const (
	mmPerPoint = 0.352778
	// dateColumnWidth is the width in mm of the timestamp column on the paper form.
	dateColumnWidth = 31
	bottomMargin    = 20
	backgroundName  = "background"
)

// Image is a page background such as a scanned blank progress-note form.
type Image struct {
	Data []byte
	// Type is the fpdf image type: "PNG", "JPG" or "GIF".
	Type string
}

// Geometry holds the vertical layout used by Paginate, in mm.
type Geometry struct {
	Top        float64
	PageHeight float64
	Bottom     float64
	Spacing    float64
}

// Placement is where an entry starts: zero-based page and y of its first line.
type Placement struct {
	Page int
	Y    float64
}

// Paginate places entries of the given heights top to bottom. An entry that would cross the
// bottom margin moves to the next page, unless it already starts at the top of a page.
func Paginate(heights []float64, g Geometry) []Placement {
	placements := make([]Placement, 0, len(heights))
	page, y := 0, g.Top
	for _, h := range heights {
		if y+h > g.PageHeight-g.Bottom && y > g.Top {
			page++
			y = g.Top
		}
		placements = append(placements, Placement{Page: page, Y: y})
		y += h + g.Spacing
	}
	return placements
}

func fontStyle(weight int) string {
	if weight >= 600 { //nolint:mnd // semi-bold and heavier map to the bold core font.
		return "B"
	}
	return ""
}

// wrap splits text into lines no wider than width in the current font. Text must already be
// translated to the core font encoding.
func wrap(pdf *fpdf.Fpdf, text string, width float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		split := pdf.SplitLines([]byte(paragraph), width)
		if len(split) == 0 {
			lines = append(lines, "")
			continue
		}
		for _, l := range split {
			lines = append(lines, string(l))
		}
	}
	return lines
}

// PDF writes the entries onto A4 pages laid out for a pre-printed form: timestamp column at
// positionX, wrapped content 31 mm to the right. background, when not nil, is drawn on every
// page.
func PDF(w io.Writer, entries []clinical.NoteEntry, s LayoutSettings, background *Image) error {
	if len(entries) == 0 && background == nil {
		return ErrNothingToExport
	}
	if err := s.Validate(); err != nil {
		return err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreator("chartnote", true)
	pdf.SetAutoPageBreak(false, 0)
	pageWidth, pageHeight := pdf.GetPageSize()

	if background != nil {
		switch background.Type {
		case "PNG", "JPG", "GIF":
		default:
			return errors.Wrap(ErrUnsupportedImage, background.Type)
		}
		pdf.RegisterImageOptionsReader(backgroundName,
			fpdf.ImageOptions{ImageType: background.Type, ReadDpi: false, AllowNegativePosition: false},
			bytes.NewReader(background.Data))
	}
	addPage := func() {
		pdf.AddPage()
		if background != nil {
			pdf.SetAlpha(1, "Normal")
			pdf.ImageOptions(backgroundName, 0, 0, pageWidth, pageHeight, false,
				fpdf.ImageOptions{ImageType: background.Type, ReadDpi: false, AllowNegativePosition: false}, 0, "")
		}
	}

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont(s.FontFamily, fontStyle(s.FontWeight), s.FontSize)
	pdf.SetTextColor(0, 0, 0)
	_, fontHeight := pdf.GetFontSize()
	lineStep := fontHeight * s.LineHeight

	dateX := s.PositionX * 10
	noteX := dateX + dateColumnWidth
	noteWidth := s.TextBlockWidth * 10

	wrapped := make([][]string, len(entries))
	heights := make([]float64, len(entries))
	for i, e := range entries {
		wrapped[i] = wrap(pdf, tr(e.Content), noteWidth)
		heights[i] = float64(len(wrapped[i])) * lineStep
	}
	placements := Paginate(heights, Geometry{
		Top:        s.PositionY * 10,
		PageHeight: pageHeight,
		Bottom:     bottomMargin,
		Spacing:    s.EntrySpacing * mmPerPoint,
	})

	addPage()
	page := 0
	for i, e := range entries {
		p := placements[i]
		for page < p.Page {
			addPage()
			page++
		}
		pdf.SetAlpha(s.Opacity/100, "Normal") //nolint:mnd // percent.
		pdf.Text(dateX, p.Y, tr(e.Timestamp))
		for j, line := range wrapped[i] {
			pdf.Text(noteX, p.Y+float64(j)*lineStep, line)
		}
	}

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "write pdf")
	}
	return nil
}

// LabelPDF writes every entry as "HH:MM - content" on a single label-sized page in 8 pt with
// 5 mm margins.
func LabelPDF(w io.Writer, entries []clinical.NoteEntry, s LayoutSettings) error {
	if len(entries) == 0 {
		return ErrNothingToExport
	}
	if err := s.Validate(); err != nil {
		return err
	}
	width, height := s.LabelWidth*10, s.LabelHeight*10
	pdf := fpdf.NewCustom(&fpdf.InitType{ //nolint:exhaustruct // defaults are fine.
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetCreator("chartnote", true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 8) //nolint:mnd // label font size.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	_, fontHeight := pdf.GetFontSize()

	const margin = 5
	lines := wrap(pdf, tr(entryText(entries, "\n")), width-2*margin)
	for i, line := range lines {
		pdf.Text(margin, margin+float64(i)*fontHeight*1.15, line) //nolint:mnd // default line height factor.
	}

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "write label pdf")
	}
	return nil
}
