package main

import (
	"math"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	trj "github.com/molsim/trajectory"
	"github.com/molsim/trajectory/format/rumd"
	"github.com/molsim/trajectory/format/xyz"
)

var convertCmd = &cobra.Command{
	Use:   "convert <src> <dst>",
	Short: "Convert a trajectory, optionally through on-the-fly transformations.",
	Long: `Convert reads every frame of src and writes it to dst; the output
format is picked from the destination suffix. Transformations
requested by flags are stacked on the reader, innermost first:
slicing, species normalization, matrix removal, unfolding, sorting,
centering.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, dst := args[0], args[1]
		r, err := openByFormat(src)
		if err != nil {
			return err
		}
		first, _ := cmd.Flags().GetInt("first")
		last, _ := cmd.Flags().GetInt("last")
		every, _ := cmd.Flags().GetInt("every")
		if first != 0 || last != -1 || every != 1 {
			//--last is inclusive; -1 means the end, and the slice
			//clamps anyway.
			stop := last + 1
			if last == -1 {
				stop = math.MaxInt
			}
			r, err = trj.NewSliced(r, first, stop, every)
			if err != nil {
				return err
			}
		}
		if ok, _ := cmd.Flags().GetBool("normalize-ids"); ok {
			r = trj.NewNormalizeID(r)
		}
		if matrix, _ := cmd.Flags().GetIntSlice("matrix-fix"); len(matrix) > 0 {
			r = trj.NewMatrixFix(r, matrix...)
		}
		if ok, _ := cmd.Flags().GetBool("unfold"); ok {
			r = trj.NewUnfolded(r)
		}
		if ok, _ := cmd.Flags().GetBool("sort"); ok {
			r = trj.NewSorted(r)
		}
		if ok, _ := cmd.Flags().GetBool("center"); ok {
			r = trj.NewCentered(r)
		}

		in := trj.New(r)
		defer in.Close()

		var w trj.Writer
		if strings.HasSuffix(dst, ".gz") || strings.HasSuffix(dst, ".zst") {
			w, err = rumd.New(dst, trj.WriteMode)
		} else {
			w, err = xyz.New(dst, trj.WriteMode)
		}
		if err != nil {
			return err
		}
		out := trj.NewWriter(w)
		defer out.Close()

		if dt, err := in.Timestep(); err == nil {
			if err := out.SetTimestep(dt); err != nil {
				return err
			}
		}
		n := 0
		for {
			s, err := in.Next()
			if _, ok := err.(trj.LastFrameError); ok {
				break
			}
			if err != nil {
				return err
			}
			if err := out.Write(s, in.Steps()[n]); err != nil {
				return err
			}
			n++
		}
		log.Infof("converted %d frames from %s to %s", n, src, dst)
		return nil
	},
}

func init() {
	convertCmd.Flags().Bool("center", false, "center positions in the cell")
	convertCmd.Flags().Bool("unfold", false, "unfold periodic boundary crossings")
	convertCmd.Flags().Bool("sort", false, "sort particles by species id")
	convertCmd.Flags().Bool("normalize-ids", false, "shift species ids to start from 1")
	convertCmd.Flags().IntSlice("matrix-fix", nil, "species ids to remove as matrix particles")
	convertCmd.Flags().Int("first", 0, "first frame to convert")
	convertCmd.Flags().Int("last", -1, "last frame to convert (inclusive, -1 for the end)")
	convertCmd.Flags().Int("every", 1, "keep one frame every this many")
}
