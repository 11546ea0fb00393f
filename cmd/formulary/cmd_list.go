package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/zoomio/formulary/internal/domain/entities"
)

const maxDescriptionWidth = 60

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available formula definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := a.repository()
			if err != nil {
				return err
			}

			formulas, err := repo.ListFormulas(cmd.Context())
			if err != nil {
				return err
			}

			if len(formulas) == 0 {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "No formulas found in %s\n", a.cfg.DefinitionsDir)
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), formatFormulasTable(formulas))
			return err
		},
	}
}

func formatFormulasTable(formulas []*entities.Formula) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Name", "Description", "Version Source", "Dependencies"})

	for _, f := range formulas {
		deps := make([]string, 0, len(f.Dependencies))
		for _, d := range f.Dependencies {
			if d.Kind != "" {
				deps = append(deps, d.Name+" ("+d.Kind+")")
				continue
			}
			deps = append(deps, d.Name)
		}

		source := f.Version.Source
		if source == "" {
			source = "-"
		}

		t.AppendRow(table.Row{
			f.Name,
			text.Trim(f.Description, maxDescriptionWidth),
			source,
			strings.Join(deps, ", "),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft},
		{Number: 4, Align: text.AlignLeft},
	})

	t.SortBy([]table.SortBy{
		{Name: "Name", Mode: table.Asc},
	})

	return t.Render()
}
