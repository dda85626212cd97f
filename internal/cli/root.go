// Package cli is the forge3d command tree.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"forge3d/internal/config"
	"forge3d/internal/logging"
)

// Version is stamped at build time with -ldflags "-X forge3d/internal/cli.Version=...".
var Version = "dev"

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	baseURL    string
}

// env is what subcommands see once the persistent pre-run has resolved config.
type env struct {
	cfg    config.Config
	log    zerolog.Logger
	out    io.Writer
	errOut io.Writer
}

// Execute builds the command tree and runs it with args.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	root := NewRootCmd(out, errOut)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCmd constructs the cobra tree writing to out and errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	var flags globalFlags
	e := &env{out: out, errOut: errOut, log: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "forge3d",
		Short:         "Text/image to 3D model client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	// Persistent flags -> Config
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (.yaml, .json or .toml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug|info|warn|error|off (defaults FORGE3D_LOG_LEVEL or info)")
	root.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "Generation service URL (defaults FORGE3D_BASE_URL)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(flags)
		if err != nil {
			return err
		}
		e.cfg = cfg
		opts := logging.Options{Level: cfg.Log.Level, Console: errOut}
		if cfg.Log.File != "" {
			opts.File = logging.DefaultFileConfig(cfg.Log.File)
		}
		e.log = logging.New(opts)
		return nil
	}

	root.AddCommand(
		newHealthCmd(e),
		newGenerateCmd(e),
		newHistoryCmd(e),
		newImportCmd(e),
		newSamplesCmd(e),
		newServeCmd(e),
		newVersionCmd(e),
	)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(out) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(out) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(out, true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenPowerShellCompletionWithDesc(out) }})
	root.AddCommand(completionCmd)

	return root
}

// loadConfig layers the config file, FORGE3D_* variables and flags over the defaults.
func loadConfig(f globalFlags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		c, err := config.Load(f.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.baseURL != "" {
		cfg.Remote.BaseURL = f.baseURL
	}
	if err := cfg.Resolve(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newVersionCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the forge3d version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(e.out, "forge3d %s\n", Version)
			return err
		},
	}
}
