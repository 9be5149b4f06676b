package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hrp-kinetics/kinfit/kinetics"
)

var (
	zeroVmax       float64
	zeroKm         float64
	zeroOffsetRate float64
	zeroOffsetConc float64
)

var zeroCmd = &cobra.Command{
	Use:   "zero",
	Short: "Scan a fitted model for the concentration where the rate reaches zero",
	Run: func(cmd *cobra.Command, args []string) {
		p := kinetics.Params{Vmax: zeroVmax, Km: zeroKm}
		off := kinetics.Offsets{Rate: zeroOffsetRate, Conc: zeroOffsetConc}
		fmt.Println(formatZero(kinetics.LocateZeroRate(p, off, cutoffRate)))
	},
}

func formatZero(conc float64, found bool) string {
	if !found {
		return "not found"
	}
	return fmt.Sprintf("%g", conc)
}

func init() {
	zeroCmd.Flags().Float64Var(&zeroVmax, "vmax", 0, "Fitted Vmax")
	zeroCmd.Flags().Float64Var(&zeroKm, "km", 0, "Fitted Km")
	zeroCmd.Flags().Float64Var(&zeroOffsetRate, "offset-rate", 0, "Rate offset subtracted before fitting")
	zeroCmd.Flags().Float64Var(&zeroOffsetConc, "offset-conc", 0, "Concentration offset subtracted before fitting")
}
