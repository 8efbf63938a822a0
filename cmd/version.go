package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time. Without it the module version
// recorded by `go install` is reported.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the doxnav version and build details",
	Run: func(cmd *cobra.Command, args []string) {
		info, _ := debug.ReadBuildInfo()
		fmt.Fprintln(cmd.OutOrStdout(), versionString(Version, info))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// versionString formats the version line. The ldflags version wins over
// the module version, and a build without either reports "dev".
func versionString(version string, info *debug.BuildInfo) string {
	v := version
	if (v == "" || v == "dev") && info != nil && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	if v == "" {
		v = "dev"
	}
	goVersion := runtime.Version()
	if info != nil && info.GoVersion != "" {
		goVersion = info.GoVersion
	}
	return fmt.Sprintf("doxnav %s (%s, %s/%s)", v, goVersion, runtime.GOOS, runtime.GOARCH)
}
