package main

import (
	"fmt"

	"github.com/spf13/cobra"

	travelassistant "github.com/LamiKaan/travel-assistant"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("travel-assistant version %s\n", travelassistant.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
