package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zoomio/formulary/internal/domain/services"
	"github.com/zoomio/formulary/internal/external-adapters/gpg"
)

func newVerifyCmd(a *app) *cobra.Command {
	var (
		offline bool
		keyPath string
	)

	cmd := &cobra.Command{
		Use:   "verify <formula.rb>",
		Short: "Check a rendered formula before anyone installs it",
		Long: `Parse a rendered formula and report anything that would make brew fail:
leftover placeholders, a missing or malformed url or sha256, or an empty
version in the archive URL. Unless --offline is set the archive is
downloaded and its digest compared with the declared sha256.

With --key the detached signature <formula.rb>.asc is checked as well.`,
		Example: `  formulary verify Formula/tagify.rb
  formulary verify Formula/tagify.rb --offline
  formulary verify Formula/tagify.rb --key tap-signing.pub.asc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			//nolint:gosec // G304: path is the formula the user asked to verify
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			verifier := services.NewVerifier(a.downloader(), a.domainLog)
			result, err := verifier.Verify(cmd.Context(), string(data), offline)
			if err != nil {
				var ierr *services.InspectionError
				if errors.As(err, &ierr) {
					for _, f := range ierr.Findings {
						a.log.Error().Str("kind", string(f.Kind)).Msg(f.Detail)
					}
				}
				return err
			}

			if keyPath != "" {
				v := gpg.NewVerifier()
				if err := v.ImportKeyFromFile(keyPath); err != nil {
					return err
				}
				a.log.Debug().Str("key", keyPath).Int("keys", v.GetKeyringSize()).Msg("Imported public key")
				if err := v.VerifyFormula(path); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "OK %s\n", result.Formula.ClassName)
			fmt.Fprintf(out, "  url:    %s\n", result.Formula.URL)
			fmt.Fprintf(out, "  sha256: %s\n", result.Formula.SHA256)
			if result.Archive != nil {
				fmt.Fprintf(out, "  archive matched (%d bytes)\n", result.Archive.Size)
			}
			if keyPath != "" {
				fmt.Fprintf(out, "  signature: %s%s\n", path, gpg.SignatureSuffix)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "skip downloading the archive")
	cmd.Flags().StringVar(&keyPath, "key", "", "public key to check the formula's detached signature with")

	return cmd
}
