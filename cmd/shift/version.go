package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/shift"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of shift",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("shift version %s\n", shift.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
