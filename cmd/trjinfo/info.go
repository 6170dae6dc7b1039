package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	trj "github.com/molsim/trajectory"
)

var infoCmd = &cobra.Command{
	Use:   "info <files...>",
	Short: "Print steps, timestep, block size and ensemble information.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openTrajectory(args)
		if err != nil {
			return err
		}
		t := trj.New(r)
		defer t.Close()

		s, err := t.Read(0)
		if err != nil {
			return err
		}
		dt, err := t.Timestep()
		if err != nil {
			return err
		}
		block, err := t.BlockSize()
		if err != nil {
			return err
		}
		total, err := t.TotalTime()
		if err != nil {
			return err
		}
		fmt.Printf("path            %s\n", t.Filename())
		fmt.Printf("frames          %d\n", t.Len())
		fmt.Printf("steps           %d .. %d\n", t.Steps()[0], t.Steps()[t.Len()-1])
		fmt.Printf("timestep        %g\n", dt)
		fmt.Printf("total time      %g\n", total)
		if block > 0 {
			fmt.Printf("block size      %d\n", block)
		} else {
			fmt.Printf("block size      none detected\n")
		}
		fmt.Printf("grandcanonical  %v\n", t.Grandcanonical())
		fmt.Printf("particles       %d\n", s.Len())
		if rho, err := s.Density(); err == nil {
			fmt.Printf("density         %g\n", rho)
		} else {
			log.Debugf("no density: %v", err)
		}
		fmt.Printf("ensemble        %s\n", s.Ensemble())
		return nil
	},
}
