package main

import (
	"fmt"

	"github.com/calehh/bounty-app/app"
	"github.com/spf13/cobra"
)

// GitCommit is set at build time with -ldflags "-X main.GitCommit=...".
var GitCommit string

const (
	VersionMajor = 0
	VersionMinor = 1
	VersionPatch = 0
)

var Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)

func VersionWithCommit(gitCommit string) string {
	vsn := Version
	if len(gitCommit) >= 8 {
		vsn += "-" + gitCommit[:8]
	}
	return vsn
}

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print the bountyd and application protocol versions",
	Aliases: []string{"V"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bountyd %s (app protocol %d)\n", VersionWithCommit(GitCommit), app.AppVersion)
	},
}
