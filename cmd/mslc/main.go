// Command mslc is the MSL shader compiler CLI.
//
// Usage:
//
//	mslc build [files...]         # Compile to .bc/.md/.glsl/.hlsl
//	mslc show FILE --target hlsl  # Print assembled source
//	mslc dis FILE.bc              # Bytecode listing
//	mslc meta FILE.md             # Metadata as YAML
//	mslc version
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/mslc/internal/config"
)

const mslcVersion = "0.1.0-dev"

// app carries state shared by the subcommands.
type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "mslc",
		Short:         "Compile MSL shaders to bytecode, GLSL and HLSL",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: ./mslc.toml, then ~/.config/mslc/config.toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		a.buildCmd(),
		a.showCmd(),
		a.disCmd(),
		a.metaCmd(),
		versionCmd(),
	)
	return root
}

// load resolves the configuration and builds the logger. Flags override
// file values.
func (a *app) load(stderr io.Writer) error {
	cfg, err := config.Resolve(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	if cfg.Path != "" {
		a.log.Debug("config loaded", "path", cfg.Path)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the mslc version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "mslc version %s\n", mslcVersion)
			return err
		},
	}
}
