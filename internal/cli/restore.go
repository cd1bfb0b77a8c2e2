package cli

import (
	"github.com/spf13/cobra"

	"github.com/technosupport/mxtools/internal/platform/paths"
	"github.com/technosupport/mxtools/internal/tasks"
)

// NewRestoreCommand builds mxrestore.
func NewRestoreCommand() *cobra.Command {
	var (
		flags    targetFlags
		override bool
		reboot   bool
		verbose  bool
		cfgDir   string
	)
	cmd := &cobra.Command{
		Use:   "mxrestore",
		Short: "Restore saved configurations to Mobotix cameras",
		Long: `Upload the newest <ip-with-dashes>_*.cfg of each camera. The firmware
version recorded in the file must match the version the camera runs,
unless --override is given.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			banner(cmd.OutOrStdout(), "mxrestore")
			if verbose && !cmd.Flags().Changed("log-level") {
				if err := cmd.Flags().Set("log-level", "debug"); err != nil {
					return err
				}
			}
			s, err := flags.open(cmd, "mxrestore", true)
			if err != nil {
				return err
			}
			dir := cfgDir
			if dir == "" {
				dir = paths.ResolveWorkDir(s.cfg.WorkDir)
			}
			task := tasks.NewRestore(s.camera, dir, override, reboot, s.log)
			return finish(s.run(cmd.Context(), task))
		},
	}
	flags.register(cmd)
	f := cmd.Flags()
	f.BoolVarP(&override, "override", "o", false, "write config even if SW versions are unequal")
	f.BoolVarP(&reboot, "reboot", "r", false, "reboot the camera after restoring")
	f.BoolVarP(&verbose, "verbose", "v", false, "show verbose output")
	f.StringVar(&cfgDir, "cfgdir", "", "directory holding the backups (default $MX_WORKDIR or .)")
	return cmd
}
