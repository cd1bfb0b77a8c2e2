package cli

import (
	"github.com/spf13/cobra"

	"github.com/technosupport/mxtools/internal/tasks"
)

// NewMicCommand builds mxmic.
func NewMicCommand() *cobra.Command {
	var (
		flags          targetFlags
		on, off, check bool
		output         string
	)
	cmd := &cobra.Command{
		Use:   "mxmic",
		Short: "Switch or check the MI (microphone) event of Mobotix cameras",
		Long: `Arm, disarm or check the env:MI event profile.

--miccheck writes every camera with an armed MI profile to the output list
(header IP), which can be fed back with -l after a maintenance window.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			banner(cmd.OutOrStdout(), "mxmic")

			var mode tasks.MicMode
			n := 0
			if on {
				mode, n = tasks.MicOn, n+1
			}
			if off {
				mode, n = tasks.MicOff, n+1
			}
			if check {
				mode, n = tasks.MicCheck, n+1
			}
			if n != 1 {
				return argErr("exactly one of --micon, --micoff or --miccheck is required")
			}

			s, err := flags.open(cmd, "mxmic", true)
			if err != nil {
				return err
			}

			if mode == tasks.MicCheck {
				if err := tasks.CreateMicList(output); err != nil {
					return err
				}
			}

			rep := s.run(cmd.Context(), &tasks.Mic{Camera: s.camera, Mode: mode})

			if mode == tasks.MicCheck {
				active := tasks.ActiveHosts(rep)
				if err := tasks.AppendMicList(output, active); err != nil {
					return err
				}
				s.log.Info("mic list written", "output", output, "active", len(active))
			}
			return finish(rep)
		},
	}
	flags.register(cmd)
	f := cmd.Flags()
	f.BoolVar(&on, "micon", false, "switch the MI event on")
	f.BoolVar(&off, "micoff", false, "switch the MI event off")
	f.BoolVar(&check, "miccheck", false, "check the MI event and save cameras with MI armed")
	f.StringVarP(&output, "output", "o", tasks.DefaultMicList, "IP list written by --miccheck")
	return cmd
}
