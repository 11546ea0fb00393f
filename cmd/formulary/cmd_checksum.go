package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zoomio/formulary/internal/domain-adapters/gateways"
)

func newChecksumCmd(a *app) *cobra.Command {
	var (
		version string
		file    string
	)

	cmd := &cobra.Command{
		Use:   "checksum [name]",
		Short: "Print the SHA-256 of a formula's source archive",
		Long: `Download the source archive a formula points at for a version and print
its SHA-256 digest. With --file the digest of a local file is printed instead.`,
		Example: `  formulary checksum tagify --version 1.2.3
  formulary checksum tagify --version latest
  formulary checksum --file tagify-1.2.3.tar.gz`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				if len(args) > 0 {
					return errors.New("--file and a formula name are mutually exclusive")
				}
				sum, err := gateways.NewChecksumVerifier().CalculateChecksum(file)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", sum, file)
				return err
			}

			if len(args) == 0 {
				return errors.New("a formula name or --file is required")
			}

			repo, err := a.repository()
			if err != nil {
				return err
			}
			def, err := repo.GetFormula(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			resolved, err := a.versionFetcher().ResolveVersion(cmd.Context(), def, version)
			if err != nil {
				return err
			}

			render, err := a.renderService()
			if err != nil {
				return err
			}
			if err := render.ValidateVersion(resolved); err != nil {
				return err
			}

			archive, err := a.downloader().FetchArchive(cmd.Context(), def.SourceURL(resolved))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", archive.SHA256, archive.URL)
			return err
		},
	}

	cmd.Flags().StringVar(&version, "version", gateways.LatestVersion, "release version, or latest to resolve it")
	cmd.Flags().StringVar(&file, "file", "", "hash a local file instead of downloading")

	return cmd
}
