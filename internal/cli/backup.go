package cli

import (
	"github.com/spf13/cobra"

	"github.com/technosupport/mxtools/internal/platform/paths"
	"github.com/technosupport/mxtools/internal/tasks"
)

// NewBackupCommand builds mxbackup.
func NewBackupCommand() *cobra.Command {
	var (
		flags  targetFlags
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "mxbackup",
		Short: "Save the configuration of Mobotix cameras",
		Long: `Download the complete configuration of each camera into
<ip-with-dashes>_<YYMMDD-HHMM>.cfg in the output directory.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			banner(cmd.OutOrStdout(), "mxbackup")
			s, err := flags.open(cmd, "mxbackup", false)
			if err != nil {
				return err
			}
			dir := outDir
			if dir == "" {
				dir = paths.ResolveWorkDir(s.cfg.WorkDir)
			}
			if err := paths.EnsureDir(dir); err != nil {
				return err
			}
			return finish(s.run(cmd.Context(), &tasks.Backup{Camera: s.camera, Dir: dir}))
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&outDir, "outdir", "o", "", "directory receiving the backups (default $MX_WORKDIR or .)")
	return cmd
}
