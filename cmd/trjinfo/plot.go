package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	trj "github.com/molsim/trajectory"
)

var plotCmd = &cobra.Command{
	Use:   "plot <files...>",
	Short: "Plot a per-frame observable against time.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		obs, _ := cmd.Flags().GetString("observable")

		r, err := openTrajectory(args)
		if err != nil {
			return err
		}
		t := trj.New(r)
		defer t.Close()

		//Read the frames before asking for times, so lazily indexing
		//formats know their step list.
		var values []float64
		for {
			s, err := t.Next()
			if _, ok := err.(trj.LastFrameError); ok {
				break
			}
			if err != nil {
				return err
			}
			switch obs {
			case "density":
				rho, err := s.Density()
				if err != nil {
					return err
				}
				values = append(values, rho)
			case "temperature":
				values = append(values, s.Temperature())
			default:
				values = append(values, float64(s.Len()))
			}
		}
		times, err := t.Times()
		if err != nil {
			return err
		}

		pts := make(plotter.XYs, len(values))
		for i, v := range values {
			pts[i].X = times[i]
			pts[i].Y = v
		}
		p := plot.New()
		p.Title.Text = t.Filename()
		p.X.Label.Text = "time"
		p.Y.Label.Text = obs
		p.Add(plotter.NewGrid())
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		p.Add(line)
		if err := p.Save(6*vg.Inch, 4*vg.Inch, out); err != nil {
			return err
		}
		log.Infof("wrote %s with %d points", out, len(pts))
		return nil
	},
}

func init() {
	plotCmd.Flags().String("out", "trajectory.png", "output image file")
	plotCmd.Flags().String("observable", "particles", "observable to plot: particles, density or temperature")
}
