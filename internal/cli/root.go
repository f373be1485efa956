package cli

import (
	"context"
	"runtime"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	imageaugmentor "github.com/menta2k/image-augmentor"
)

// Execute runs the augment CLI and returns an error if any command fails.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand creates the root cobra command with all subcommands
// registered. The logger writes to the command's error stream at info
// level, or debug level with --verbose.
func NewRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "augment",
		Short:        "augment writes randomly transformed copies of training images",
		Long:         `augment applies random rotation, translation, shear and zoom to an image and, when given, its label image, using one shared transform per variant.`,
		Version:      imageaugmentor.GetVersion(),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate("augment {{.Version}}\n")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRunCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printKeyValue(cmd.OutOrStdout(), "augment", imageaugmentor.GetVersion())
			printKeyValue(cmd.OutOrStdout(), "go", runtime.Version())
			return nil
		},
	}
}
