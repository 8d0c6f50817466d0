package exports

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/myrjola/chartnote/cmd/cli/workspace"
	"github.com/myrjola/chartnote/internal/errors"
	"github.com/myrjola/chartnote/internal/export"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "export",
	Title: "Documents",
}

var imageTypes = map[string]string{
	".png":  "PNG",
	".jpg":  "JPG",
	".jpeg": "JPG",
	".gif":  "GIF",
}

func init() {
	workspace.AddFlags(Export, true)
	Export.Flags().String("out", "", "output file, defaults to note_evolution_<patient>.<format>")
	Export.Flags().String("background", "", "PNG, JPEG or GIF printed behind every PDF page")
	workspace.AddFlags(ZPL, true)
}

func readBackground(path string) (*export.Image, error) {
	if path == "" {
		return nil, nil
	}
	imageType, ok := imageTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, errors.Wrap(export.ErrUnsupportedImage, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read background")
	}
	return &export.Image{Data: data, Type: imageType}, nil
}

var Export = &cobra.Command{
	Use:       "export pdf|docx|label",
	GroupID:   "export",
	Short:     "Export a patient's note",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"pdf", "docx", "label"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := workspace.Open(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer func() {
			_ = ws.Close()
		}()
		patientID, err := ws.PatientID(cmd)
		if err != nil {
			return err
		}
		state, err := ws.Store.Patient(patientID)
		if err != nil {
			return err
		}
		settings, err := ws.Prefs.LayoutSettings(cmd.Context())
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		format := args[0]
		ext := format
		switch format {
		case "pdf":
			backgroundPath, _ := cmd.Flags().GetString("background")
			background, bgErr := readBackground(backgroundPath)
			if bgErr != nil {
				return bgErr
			}
			err = export.PDF(&buf, state.Notes, settings, background)
		case "docx":
			err = export.DOCX(&buf, patientID, state.Notes)
		case "label":
			ext = "label.pdf"
			err = export.LabelPDF(&buf, state.Notes, settings)
		}
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = export.Filename(patientID, ext)
		}
		if err = os.WriteFile(out, buf.Bytes(), 0o600); err != nil { //nolint:mnd // owner read/write
			return errors.Wrap(err, "write export")
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	},
}

var ZPL = &cobra.Command{
	Use:     "zpl",
	GroupID: "export",
	Short:   "Print the ZPL wristband label of a patient",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ws, err := workspace.Open(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer func() {
			_ = ws.Close()
		}()
		patientID, err := ws.PatientID(cmd)
		if err != nil {
			return err
		}
		state, err := ws.Store.Patient(patientID)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), export.ZPL(export.LabelDataFor(patientID, state.Form)))
		return err
	},
}
