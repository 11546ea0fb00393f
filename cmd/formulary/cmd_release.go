package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zoomio/formulary/internal/config"
	"github.com/zoomio/formulary/internal/domain-adapters/gateways"
	orchestrators "github.com/zoomio/formulary/internal/domain-orchestrators"
	"github.com/zoomio/formulary/internal/external-adapters/gpg"
	"github.com/zoomio/formulary/internal/external-adapters/tap"
)

func newReleaseCmd(a *app) *cobra.Command {
	var req orchestrators.ReleaseRequest

	cmd := &cobra.Command{
		Use:   "release <name>",
		Short: "Render a formula for a release and publish it into a tap",
		Long: `Resolve the version, download the source archive, render the formula with
its digest, check it and write it to <tap>/Formula/<name>.rb.

With --sign an ASCII-armored detached signature is written next to it using
the configured signing_key and signing_passphrase.`,
		Example: `  formulary release tagify --tap ../homebrew-tap
  formulary release tagify --version 1.2.3 --dry-run
  formulary release tagify --sign`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = args[0]

			repo, err := a.repository()
			if err != nil {
				return err
			}
			renderer, err := a.renderService()
			if err != nil {
				return err
			}

			orchCfg := orchestrators.ReleaseOrchestratorConfig{Logger: a.domainLog}
			if a.cfg.TapDir != "" {
				orchCfg.Publisher = tap.NewWriter(a.cfg.TapDir, a.domainLog)
			}
			if req.Sign && !req.DryRun && a.cfg.SigningKey != "" {
				signer, err := gpg.NewSignerFromFile(a.cfg.SigningKey, a.cfg.SigningPassphrase)
				if err != nil {
					return err
				}
				orchCfg.Signer = signer
			}

			orch := orchestrators.NewReleaseOrchestrator(repo, a.versionFetcher(), a.downloader(), renderer, orchCfg)
			result, err := orch.Release(cmd.Context(), req)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), result.GetReleaseSummary())
			return err
		},
	}

	cmd.Flags().StringVar(&req.Version, "version", gateways.LatestVersion, "release version, or latest to resolve it")
	cmd.Flags().String("tap", "", "tap checkout to publish into (overrides tap_dir)")
	cmd.Flags().BoolVar(&req.Sign, "sign", false, "write a detached OpenPGP signature next to the formula")
	cmd.Flags().BoolVar(&req.DryRun, "dry-run", false, "render and check without publishing")
	_ = a.v.BindPFlag(config.KeyTapDir, cmd.Flags().Lookup("tap"))

	return cmd
}
