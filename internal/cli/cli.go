package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"locmerge/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "locmerge",
		Short: "Carry re-authored game text into an existing translation",
		Long: `locmerge compares the shipped string tables with a re-authored (enhanced) set,
collects the entries whose source text changed together with their current
translations into a reviewable work file, and patches the reviewed translations
back into the localization resource of a mod.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Project file (default "+config.ProjectFileName+" if present)")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if err := setLogLevel(cfg.LogLevel); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	rootCmd.AddCommand(diffCmd(load))
	rootCmd.AddCommand(statusCmd(load))
	rootCmd.AddCommand(replaceCmd(load))
	rootCmd.AddCommand(patchCmd(load))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

type configLoader func() (*config.Config, error)

func diffCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Generate the work file from enhanced vs original string tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			keep, _ := cmd.Flags().GetBool("keep-existing")

			ctx, cancel := setupContext()
			defer cancel()

			return runDiff(ctx, cfg, keep)
		},
	}
	cmd.Flags().Bool("keep-existing", false, "Refuse to overwrite an existing work file")
	return cmd
}

func statusCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Compare the work file with the current content trees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			ctx, cancel := setupContext()
			defer cancel()

			return runStatus(ctx, cfg, cmd.OutOrStdout())
		},
	}
}

func replaceCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replace <old> <new>",
		Short: "Find and replace text in the proposed translations",
		Long: `Replaces <old> with <new> in the loc_new field of every work file entry
containing it. Each replacement is shown for approval (y/n/all) unless --yes is
given. Decisions are appended to the review history.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			yes, _ := cmd.Flags().GetBool("yes")

			ctx, cancel := setupContext()
			defer cancel()

			return runReplace(ctx, cfg, replaceOptions{
				Search:      args[0],
				Replacement: args[1],
				AutoApprove: yes,
				In:          cmd.InOrStdin(),
				Out:         cmd.OutOrStdout(),
			})
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Approve every replacement without asking")
	return cmd
}

func patchCmd(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Patch reviewed translations into the resource and package the mod",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			skipPak, _ := cmd.Flags().GetBool("skip-pak")

			ctx, cancel := setupContext()
			defer cancel()

			return runPatch(ctx, cfg, skipPak)
		},
	}
	cmd.Flags().Bool("skip-pak", false, "Write the patched resource but do not build the archive")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "locmerge version %s (%s)\n", version, commit)
		},
	}
}

func setLogLevel(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
