package main

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/myrjola/chartnote/internal/contexthelpers"
	"github.com/myrjola/chartnote/internal/errors"
	"github.com/myrjola/chartnote/internal/export"
)

const maxBackgroundBytes = 10 << 20

var imageTypes = map[string]string{
	"image/png":  "PNG",
	"image/jpeg": "JPG",
	"image/gif":  "GIF",
}

func (app *application) attachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// background reads the optional scanned form uploaded as the multipart field "background".
func background(w http.ResponseWriter, r *http.Request) (*export.Image, error) {
	if r.Method != http.MethodPost {
		return nil, nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBackgroundBytes)
	if err := r.ParseMultipartForm(maxBackgroundBytes); err != nil {
		return nil, errors.Join(errBadRequest, errors.Wrap(err, "parse multipart form"))
	}
	file, _, err := r.FormFile("background")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(errBadRequest, errors.Wrap(err, "read background"))
	}
	defer func(file multipart.File) {
		_ = file.Close()
	}(file)
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Join(errBadRequest, errors.Wrap(err, "read background"))
	}
	imageType, ok := imageTypes[http.DetectContentType(data)]
	if !ok {
		return nil, errors.Wrap(export.ErrUnsupportedImage, http.DetectContentType(data))
	}
	return &export.Image{Data: data, Type: imageType}, nil
}

// exportPDF prints the note onto A4 pages with the stored layout, optionally over a background.
func (app *application) exportPDF(w http.ResponseWriter, r *http.Request) {
	patientID := contexthelpers.PatientID(r.Context())
	state, err := app.store.Patient(patientID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	bg, err := background(w, r)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	settings, err := app.prefs.LayoutSettings(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err = export.PDF(&buf, state.Notes, settings, bg); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.metrics.observeExport("pdf")
	app.attachment(w, "application/pdf", export.Filename(patientID, "pdf"), buf.Bytes())
}

func (app *application) exportDOCX(w http.ResponseWriter, r *http.Request) {
	patientID := contexthelpers.PatientID(r.Context())
	state, err := app.store.Patient(patientID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err = export.DOCX(&buf, patientID, state.Notes); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.metrics.observeExport("docx")
	app.attachment(w, "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		export.Filename(patientID, "docx"), buf.Bytes())
}

// exportLabel prints the note on the adhesive label size of the layout settings.
func (app *application) exportLabel(w http.ResponseWriter, r *http.Request) {
	patientID := contexthelpers.PatientID(r.Context())
	state, err := app.store.Patient(patientID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	settings, err := app.prefs.LayoutSettings(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err = export.LabelPDF(&buf, state.Notes, settings); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.metrics.observeExport("label")
	app.attachment(w, "application/pdf", export.Filename(patientID, "label.pdf"), buf.Bytes())
}

// exportZPL renders the wristband label for a Zebra printer.
func (app *application) exportZPL(w http.ResponseWriter, r *http.Request) {
	patientID := contexthelpers.PatientID(r.Context())
	state, err := app.store.Patient(patientID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.metrics.observeExport("zpl")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(export.ZPL(export.LabelDataFor(patientID, state.Form))))
}
