package templates

import (
	"fmt"

	"github.com/myrjola/chartnote/cmd/cli/workspace"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "templates",
	Title: "Templates",
}

func init() {
	workspace.AddFlags(list, false)
	workspace.AddFlags(restore, true)
	Templates.AddCommand(list, restore)
}

var Templates = &cobra.Command{
	Use:     "templates",
	GroupID: "templates",
	Short:   "Manage saved form templates",
}

var list = &cobra.Command{
	Use:   "list",
	Short: "List template names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ws, err := workspace.Open(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer func() {
			_ = ws.Close()
		}()
		templates, err := ws.Store.Templates(cmd.Context())
		if err != nil {
			return err
		}
		for _, t := range templates {
			if _, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d entries\n", t.Name, len(t.State.Notes)); err != nil {
				return err
			}
		}
		return nil
	},
}

var restore = &cobra.Command{
	Use:   "restore <name>",
	Short: "Overwrite a patient's form and notes with a template",
	Args:  cobra.ExactArgs(1),
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
		if _, err = ws.Store.LoadTemplate(cmd.Context(), args[0], patientID); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "restored %q into %s\n", args[0], patientID)
		return err
	},
}
