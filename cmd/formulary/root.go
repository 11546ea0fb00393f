package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zoomio/formulary/internal/config"
	"github.com/zoomio/formulary/internal/domain-adapters/gateways"
	"github.com/zoomio/formulary/internal/domain/interfaces"
	"github.com/zoomio/formulary/internal/domain/services"
	"github.com/zoomio/formulary/internal/external-adapters/filestore"
	"github.com/zoomio/formulary/internal/logger"
)

// app carries what every subcommand needs once flags and config are resolved
type app struct {
	v          *viper.Viper
	cfg        *config.Config
	log        *zerolog.Logger
	domainLog  interfaces.Logger
	configFile string
	envFile    string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "formulary",
		Short: "Render, verify and publish Homebrew formulae",
		Long: `formulary owns Homebrew formula templates with ${VERSION} and ${SHA}
placeholders. It renders them for a release, checks the result the way
brew would before install, and publishes it into a tap checkout.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default .formulary.yaml in the working directory or $XDG_CONFIG_HOME/formulary)")
	pf.StringVar(&a.envFile, "env-file", "", "path to a .env file (default .env in the working directory, if present)")
	pf.String("log-level", logger.DefaultLogLevel, "log level: trace, debug, info, warn, error")
	pf.String("definitions-dir", "formulas", "directory holding formula definitions and templates")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	_ = a.v.BindPFlag(config.KeyLogLevel, pf.Lookup("log-level"))
	_ = a.v.BindPFlag(config.KeyDefinitionsDir, pf.Lookup("definitions-dir"))

	root.AddCommand(
		newTemplateCmd(a),
		newRenderCmd(a),
		newChecksumCmd(a),
		newVerifyCmd(a),
		newReleaseCmd(a),
		newListCmd(a),
		newVersionCmd(),
	)

	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if err := config.LoadEnv(a.envFile); err != nil {
		return err
	}

	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if a.verbose {
		level = "debug"
	}
	a.log = logger.New(logger.WithLevel(level), logger.WithOutput(cmd.ErrOrStderr()))
	a.domainLog = logger.NewDomainLogger(a.log)

	if cfg.ConfigFile != "" {
		a.log.Debug().Str("file", cfg.ConfigFile).Msg("Loaded config")
	}
	a.log.Debug().Str("command", cmd.Name()).Msg("Command started")
	return nil
}

func (a *app) validator() (*services.Validator, error) {
	v, err := services.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to set up validation: %w", err)
	}
	return v, nil
}

func (a *app) repository() (*filestore.FormulaRepository, error) {
	v, err := a.validator()
	if err != nil {
		return nil, err
	}
	return filestore.NewFormulaRepository(a.cfg.DefinitionsDir, services.NewTemplateWriter(v), a.domainLog), nil
}

func (a *app) renderService() (*services.RenderService, error) {
	v, err := a.validator()
	if err != nil {
		return nil, err
	}
	return services.NewRenderService(v, a.domainLog), nil
}

func (a *app) downloader() *gateways.Downloader {
	return gateways.NewDownloader(gateways.DownloaderConfig{
		CacheDir:      a.cfg.CacheDir,
		Timeout:       a.cfg.HTTPTimeout,
		RetryAttempts: a.cfg.RetryAttempts,
		Logger:        a.domainLog,
	})
}

func (a *app) versionFetcher() *gateways.VersionFetcher {
	github := gateways.NewHTTPGitHubGateway(gateways.GitHubConfig{
		BaseURL:       a.cfg.GitHubAPIURL,
		Token:         a.cfg.GitHubToken,
		RetryAttempts: a.cfg.RetryAttempts,
		Logger:        a.domainLog,
	})
	return gateways.NewVersionFetcher(github, a.domainLog)
}
