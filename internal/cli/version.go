package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo carries values injected at link time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// versionResult is the output of the version command.
type versionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// String implements fmt.Stringer.
func (v versionResult) String() string {
	return fmt.Sprintf("keytree %s (commit: %s, built: %s, %s %s)", v.Version, v.Commit, v.Date, v.GoVersion, v.Platform)
}

// versionCmd prints build information.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Show the keytree version, commit, build date and Go runtime.`,
	Example: `  keytree version
  keytree version -o json`,
	GroupID: groupConfig,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		v, commit, date := buildInfoValues(buildInfo)
		return GetCmdContext(cmd).Fmt.Print(versionResult{
			Version:   v,
			Commit:    commit,
			Date:      date,
			GoVersion: runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		})
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
}

// formatVersion renders build info as "v1.2.3 (commit: abc1234, built: 2024-01-15)".
func formatVersion(info BuildInfo) string {
	v, commit, date := buildInfoValues(info)
	return fmt.Sprintf("%s (commit: %s, built: %s)", v, commit, date)
}

func buildInfoValues(info BuildInfo) (version, commit, date string) {
	version, commit, date = info.Version, info.Commit, info.Date
	if version == "" {
		version = "dev"
	}
	if commit == "" {
		commit = "unknown"
	}
	if date == "" {
		date = "unknown"
	}
	return version, commit, date
}
