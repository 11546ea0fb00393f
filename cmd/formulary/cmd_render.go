package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		version string
		sha     string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "render <name>",
		Short: "Render a formula for a version and archive digest",
		Long: `Substitute the version and SHA-256 digest into the formula template.
Both values are validated before substitution and the result is inspected
for anything brew could not install from.`,
		Example: `  formulary render tagify --version 1.2.3 --sha e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855
  formulary render tagify --version 1.2.3 --sha <digest> --output Formula/tagify.rb`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository()
			if err != nil {
				return err
			}
			renderer, err := a.renderService()
			if err != nil {
				return err
			}

			tmpl, err := repo.GetTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			rendered, err := renderer.Render(tmpl, version, sha)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), rendered.Text)
				return err
			}

			//nolint:gosec // G306: formula files are world-readable like the rest of a tap
			if err := os.WriteFile(output, []byte(rendered.Text), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			a.log.Info().Str("path", output).Str("version", version).Msg("Rendered formula")
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "release version substituted for ${VERSION}")
	cmd.Flags().StringVar(&sha, "sha", "", "SHA-256 of the source archive substituted for ${SHA}")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the formula to a file instead of stdout")
	_ = cmd.MarkFlagRequired("version")
	_ = cmd.MarkFlagRequired("sha")

	return cmd
}
