package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/technosupport/mxtools/internal/platform/paths"
	"github.com/technosupport/mxtools/internal/tasks"
)

// NewProgramCommand builds mxpgm.
func NewProgramCommand() *cobra.Command {
	var (
		flags       targetFlags
		commandFile string
		fileOut     string
		verify      bool
	)
	cmd := &cobra.Command{
		Use:   "mxpgm",
		Short: "Program Mobotix cameras with a remoteconfig command file",
		Long: `Send a remoteconfig command file to one or more cameras. Every {COLUMN}
token in the command file is replaced by that column's value from the
device list row of the camera being programmed.

Examples:
  mxpgm -l cameras.csv -c hostname.txt -v
  mxpgm -l cameras.csv -c hostname.txt -f received.txt`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			banner(cmd.OutOrStdout(), "mxpgm")
			if commandFile == "" {
				return argErr("the program requires a commandfile parameter (-c [file])")
			}
			s, err := flags.open(cmd, "mxpgm", true)
			if err != nil {
				return err
			}
			tpl, err := os.ReadFile(commandFile)
			if err != nil {
				return argErr("the commandfile %q does not exist", commandFile)
			}

			task := &tasks.Program{
				Camera:   s.camera,
				Template: tpl,
				Verify:   verify,
				Stdout:   s.out,
			}
			if fileOut != "" && !verify {
				if err := paths.Writable(fileOut); err != nil {
					return err
				}
				task.Responses, err = tasks.NewResponseLog(fileOut)
				if err != nil {
					return err
				}
			}

			s.log.Info("starting", "devices", len(s.list.Enabled()), "verify", verify)
			return finish(s.run(cmd.Context(), task))
		},
	}
	flags.register(cmd)
	f := cmd.Flags()
	f.StringVarP(&commandFile, "commandfile", "c", "", "remoteconfig command file template")
	f.StringVarP(&fileOut, "fileout", "f", "", "write every camera response to this file")
	f.BoolVarP(&verify, "verify", "v", false, "don't program the cameras, print the resulting command files")
	return cmd
}
