package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/technosupport/mxtools/internal/extract"
	"github.com/technosupport/mxtools/internal/logging"
)

// NewExtractCommand builds mxtract.
func NewExtractCommand() *cobra.Command {
	var (
		flags     globalFlags
		ext       string
		output    string
		source    string
		recursive bool
		watch     bool
	)
	cmd := &cobra.Command{
		Use:   "mxtract",
		Short: "Extract device dependent data from Mobotix config files into a CSV",
		Long: `Read every config file in the source directory and write one CSV row
per file holding its device specific settings (network, sensors, event
profiles). The columns are the union of all keys found.

Examples:
  mxtract
  mxtract -e .bak -o sensors.csv -s backups --recursive
  mxtract -s backups --watch`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			banner(out, "mxtract")

			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			log, err := logging.New(out, cfg.LogLevel, cfg.Color)
			if err != nil {
				return argErr("%v", err)
			}

			if !cmd.Flags().Changed("extension") {
				log.Info("source files extension " + extract.DefaultExt + " is assumed")
			} else {
				log.Info("only processing " + ext + " files")
			}
			if fi, err := os.Stat(source); err != nil || !fi.IsDir() {
				return argErr("the source directory %q does not exist", source)
			}

			job := extract.Job{
				Dir:       source,
				Ext:       ext,
				Output:    output,
				Recursive: recursive,
				Logger:    log,
			}

			report := func(sum extract.Summary, err error) {
				if err != nil {
					log.Error("extraction failed", "err", err)
					return
				}
				fmt.Fprintf(out, "%d files processed in %d ms\n", sum.Files, sum.Elapsed.Milliseconds())
			}

			if watch {
				log.Info("watching for config file changes", "dir", source)
				return job.Watch(cmd.Context(), extract.DefaultDebounce, report)
			}

			log.Info("start extracting device dependent data from Mobotix config files")
			sum, err := job.Run()
			if err != nil {
				return err
			}
			report(sum, nil)
			return nil
		},
	}
	flags.registerBase(cmd)
	f := cmd.Flags()
	f.StringVarP(&ext, "extension", "e", extract.DefaultExt, "extension of the config files to read")
	f.StringVarP(&output, "output", "o", extract.DefaultOutput, "CSV file to write")
	f.StringVarP(&source, "source", "s", ".", "directory holding the config files")
	f.BoolVar(&recursive, "recursive", false, "include subdirectories")
	f.BoolVar(&watch, "watch", false, "keep running and re-extract whenever a config file changes")
	return cmd
}
