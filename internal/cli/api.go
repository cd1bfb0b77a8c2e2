package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/technosupport/mxtools/internal/tasks"
)

// NewAPICommand builds mxapi.
func NewAPICommand() *cobra.Command {
	var (
		flags   targetFlags
		command string
	)
	cmd := &cobra.Command{
		Use:   "mxapi",
		Short: "Send an HTTP API command to one or more Mobotix cameras",
		Long: `Send one HTTP API command to a single camera (-d) or to every enabled
camera of a device list (-l).

Examples:
  mxapi -d 10.0.0.5 -a "/control/rcontrol?action=sound&soundfile=Bell"
  mxapi -l cameras.csv -a "/control/control?section=event_env&read_profile=env:MI"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			banner(cmd.OutOrStdout(), "mxapi")
			if command == "" {
				return argErr("the program requires an api command (-a [command])")
			}
			s, err := flags.open(cmd, "mxapi", true)
			if err != nil {
				return err
			}
			path := command
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}
			rep := s.run(cmd.Context(), &tasks.APICommand{Camera: s.camera, Path: path})
			return finish(rep)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&command, "apicommand", "a", "", "API command to send, e.g. /control/rcontrol?action=...")
	return cmd
}
