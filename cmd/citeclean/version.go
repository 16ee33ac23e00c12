package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/citeclean"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of citeclean",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "citeclean version %s\n", strings.TrimSpace(citeclean.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
