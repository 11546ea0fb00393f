package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTemplateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "template <name>",
		Short: "Print the unrendered formula template",
		Long: `Print the formula template with its ${VERSION} and ${SHA} placeholders.
A <name>.template.rb file in the definitions directory is printed as is;
otherwise the template is generated from the <name> definition.`,
		Example: `  formulary template tagify`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository()
			if err != nil {
				return err
			}

			tmpl, err := repo.GetTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), tmpl.Text)
			return err
		},
	}
}
