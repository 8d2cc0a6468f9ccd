package main

import (
	"fmt"
	"os"
)

func main() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(pubkeyCmd)
	rootCmd.AddCommand(advanceEpochCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(fileReportCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(transferCmd)
	rootCmd.AddCommand(queryCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
