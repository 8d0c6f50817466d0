package export_test

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/myrjola/chartnote/internal/clinical"
	"github.com/myrjola/chartnote/internal/export"
	"github.com/stretchr/testify/require"
)

func sampleEntries(n int) []clinical.NoteEntry {
	entries := make([]clinical.NoteEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, clinical.NoteEntry{
			ID:        string(rune('a' + i%26)),
			Timestamp: "0" + string(rune('0'+i%10)) + ":15",
			Content:   strings.Repeat("Patiente confortable, aucune plainte exprimée. ", 1+i%7),
		})
	}
	return entries
}

func TestPaginate_NeverSplitsEntries(t *testing.T) {
	g := export.Geometry{Top: 47, PageHeight: 297, Bottom: 20, Spacing: 4 * 0.352778}
	rng := rand.New(rand.NewSource(1))
	for run := 0; run < 200; run++ {
		heights := make([]float64, rng.Intn(40))
		for i := range heights {
			heights[i] = 1 + rng.Float64()*120
		}
		placements := export.Paginate(heights, g)
		require.Len(t, placements, len(heights))
		for i, p := range placements {
			fits := p.Y+heights[i] <= g.PageHeight-g.Bottom
			require.True(t, fits || p.Y == g.Top, "entry %d crosses the margin mid-page", i)
			if i > 0 {
				prev := placements[i-1]
				require.GreaterOrEqual(t, p.Page, prev.Page)
				if p.Page == prev.Page {
					require.InDelta(t, prev.Y+heights[i-1]+g.Spacing, p.Y, 1e-9)
				} else {
					require.Equal(t, prev.Page+1, p.Page)
					require.Equal(t, g.Top, p.Y)
				}
			}
		}
	}
}

func TestPaginate_OversizedEntryAtTop(t *testing.T) {
	g := export.Geometry{Top: 47, PageHeight: 297, Bottom: 20}
	got := export.Paginate([]float64{500, 10}, g)
	require.Equal(t, []export.Placement{{Page: 0, Y: 47}, {Page: 1, Y: 47}}, got)
}

// docxDocument is the subset of word/document.xml the tests read.
type docxDocument struct {
	Heading string `xml:"body>p>r>t"`
	Rows    []struct {
		Cells []struct {
			Paragraphs []struct {
				Text string `xml:"r>t"`
			} `xml:"p"`
		} `xml:"tc"`
	} `xml:"body>tbl>tr"`
}

func readDocument(t *testing.T, data []byte) docxDocument {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	var doc docxDocument
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		require.NoError(t, xml.NewDecoder(rc).Decode(&doc))
		require.NoError(t, rc.Close())
	}
	require.Contains(t, names, "[Content_Types].xml")
	require.Contains(t, names, "word/styles.xml")
	return doc
}

func TestDOCX(t *testing.T) {
	for _, n := range []int{1, 2, 9} {
		entries := sampleEntries(n)
		var buf bytes.Buffer
		require.NoError(t, export.DOCX(&buf, "Ch. 101", entries))

		doc := readDocument(t, buf.Bytes())
		require.Equal(t, "Note d'évolution - Patient: Ch. 101", doc.Heading)
		require.Len(t, doc.Rows, n)
		for i, row := range doc.Rows {
			require.Len(t, row.Cells, 2)
			require.Equal(t, entries[i].Timestamp, row.Cells[0].Paragraphs[0].Text)
			require.Equal(t, entries[i].Content, row.Cells[1].Paragraphs[0].Text)
		}
	}
}

func TestDOCX_LinesAndEscaping(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.DOCX(&buf, "Ch. <1>", []clinical.NoteEntry{
		{Timestamp: "08:00", Content: "TA 120/80 & FC < 100\nRepos au lit"},
	}))
	doc := readDocument(t, buf.Bytes())
	require.Equal(t, "Note d'évolution - Patient: Ch. <1>", doc.Heading)
	paragraphs := doc.Rows[0].Cells[1].Paragraphs
	require.Len(t, paragraphs, 2)
	require.Equal(t, "TA 120/80 & FC < 100", paragraphs[0].Text)
	require.Equal(t, "Repos au lit", paragraphs[1].Text)

	require.ErrorIs(t, export.DOCX(io.Discard, "Ch. 101", nil), export.ErrNothingToExport)
}

func TestZPL(t *testing.T) {
	form := clinical.NewFormState()
	form.Gender = clinical.GenderFemale
	form.Admission.Checkboxes = []string{clinical.AllergiesChecked}
	form.Morse = clinical.Morse{History: 25, AmbulatoryAid: 30}

	want := "^XA\n^PW406\n^LL203\n^CI28\n\n" +
		"^FO20,20^A0N,40,40^FDCh. 101^FS\n" +
		"^FO20,70^A0N,25,25^FDGenre: Féminin^FS\n" +
		"^FO220,70^A0N,25,25^FDRisque Chute: Eleve^FS\n" +
		"^FO20,105^A0N,25,25^FDAllergies: Oui^FS\n" +
		"^FO40,140^BY2,2,60^BCN,60,Y,N,N^FDCh. 101^FS\n\n^XZ"
	require.Equal(t, want, export.ZPL(export.LabelDataFor("Ch. 101", form)))
}

func TestZPL_FallRisk(t *testing.T) {
	tests := []struct {
		morse clinical.Morse
		want  string
	}{
		{clinical.Morse{}, "Risque Chute: Faible"},
		{clinical.Morse{SecondaryDiagnosis: 15}, "Risque Chute: Faible"},
		{clinical.Morse{History: 25}, "Risque Chute: Modere"},
		{clinical.Morse{History: 25, AmbulatoryAid: 15, Gait: 10}, "Risque Chute: Modere"},
		{clinical.Morse{History: 25, AmbulatoryAid: 15, Gait: 10, MentalStatus: 15}, "Risque Chute: Eleve"},
	}
	for _, tt := range tests {
		form := clinical.NewFormState()
		form.Morse = tt.morse
		got := export.ZPL(export.LabelDataFor("Ch. 7", form))
		require.Contains(t, got, tt.want, "total %d", tt.morse.Total())
		require.Contains(t, got, "Genre: N/A")
		require.Contains(t, got, "Allergies: Non")
	}
}

func TestZPL_StripsCommands(t *testing.T) {
	got := export.ZPL(export.LabelData{PatientID: "Ch. 1^XZ~JA"})
	require.Contains(t, got, "^FDCh. 1XZJA^FS")
}

func pngBackground(t *testing.T) *export.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &export.Image{Data: buf.Bytes(), Type: "PNG"}
}

func TestPDF(t *testing.T) {
	settings := export.DefaultLayoutSettings()

	var buf bytes.Buffer
	require.NoError(t, export.PDF(&buf, sampleEntries(60), settings, pngBackground(t)))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	require.NoError(t, export.PDF(&buf, nil, settings, pngBackground(t)), "background alone is printable")

	bold := settings
	bold.FontWeight = 700
	bold.FontFamily = "Times"
	bold.Opacity = 40
	require.NoError(t, export.PDF(io.Discard, sampleEntries(3), bold, nil))

	require.ErrorIs(t, export.PDF(io.Discard, nil, settings, nil), export.ErrNothingToExport)
	require.ErrorIs(t, export.PDF(io.Discard, sampleEntries(1), settings, &export.Image{Type: "BMP"}),
		export.ErrUnsupportedImage)
}

func TestLabelPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.LabelPDF(&buf, sampleEntries(2), export.DefaultLayoutSettings()))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	require.ErrorIs(t, export.LabelPDF(io.Discard, nil, export.DefaultLayoutSettings()), export.ErrNothingToExport)
}

func TestLayoutSettings(t *testing.T) {
	require.NoError(t, export.DefaultLayoutSettings().Validate())

	merged, err := export.MergeLayoutSettings(export.DefaultLayoutSettings(), []byte(`{"fontSize":12,"fontFamily":"Courier"}`))
	require.NoError(t, err)
	require.InDelta(t, 12.0, merged.FontSize, 1e-9)
	require.Equal(t, "Courier", merged.FontFamily)
	require.InDelta(t, 4.7, merged.PositionY, 1e-9, "untouched fields keep their value")

	for _, raw := range []string{`{"fontFamily":"Arial"}`, `{"opacity":5}`, `{"fontWeight":450}`, `{"labelWidth":0}`, `[`} {
		_, err = export.MergeLayoutSettings(export.DefaultLayoutSettings(), []byte(raw))
		require.ErrorIs(t, err, export.ErrInvalidSettings, raw)
	}

	loaded, err := export.LoadLayoutSettings(`{"positionY":`)
	require.Error(t, err)
	require.Equal(t, export.DefaultLayoutSettings(), loaded)
	loaded, err = export.LoadLayoutSettings("")
	require.NoError(t, err)
	require.Equal(t, export.DefaultLayoutSettings(), loaded)
}

func TestPlainTextAndFilename(t *testing.T) {
	entries := []clinical.NoteEntry{
		{Timestamp: "08:00", Content: "Réveil."},
		{Timestamp: "09:00", Content: "Déjeuner."},
	}
	require.Equal(t, "08:00 - Réveil.\n\n09:00 - Déjeuner.", export.PlainText(entries))
	require.Equal(t, "", export.PlainText(nil))
	require.Equal(t, "note_evolution_Ch._101.pdf", export.Filename("Ch. 101", "pdf"))
	require.Equal(t, "note_evolution_patient.docx", export.Filename("", "docx"))
}
