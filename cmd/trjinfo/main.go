//trjinfo is a small toolbox for particle-simulation trajectories:
//inspection, format conversion through on-the-fly transformations, and
//quick plots of per-frame observables.
package main

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	trj "github.com/molsim/trajectory"
	"github.com/molsim/trajectory/format/rumd"
	"github.com/molsim/trajectory/format/xyz"
)

var rootCmd = &cobra.Command{
	Use:   "trjinfo",
	Short: "Inspect, convert and plot particle-simulation trajectories.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("verbose"); v {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(plotCmd)
}

//openByFormat picks the format plugin from the filename suffix.
func openByFormat(path string) (trj.Reader, error) {
	if strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".zst") {
		return rumd.Open(path)
	}
	return xyz.Open(path)
}

//openerFor returns the OpenFunc matching the suffix of the first
//path, for aggregating many files of one format.
func openerFor(path string) trj.OpenFunc {
	if strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".zst") {
		return rumd.Open
	}
	return xyz.Open
}

//openTrajectory opens one file directly or many as a SuperTrajectory.
func openTrajectory(paths []string) (trj.Reader, error) {
	if len(paths) == 1 {
		return openByFormat(paths[0])
	}
	return trj.NewSuper(paths, openerFor(paths[0]))
}
