package notes

import (
	"fmt"
	"io"
	"os"

	"github.com/myrjola/chartnote/internal/clinical"
	"github.com/myrjola/chartnote/internal/errors"
	"github.com/myrjola/chartnote/internal/summary"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "notes",
	Title: "Assessment forms",
}

var Summary = &cobra.Command{
	Use:     "summary <form.json>",
	GroupID: "notes",
	Short:   "Compile an assessment form into the clinical summary",
	Long: `Reads a form in the JSON shape of PATCH /api/form, applies it to a blank form and prints
the clinical summary the note generator receives. Use - to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return errors.Wrap(err, "read form")
		}
		form, err := clinical.ApplyPatch(clinical.NewFormState(), data)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), summary.Compile(form))
		return err
	},
}
