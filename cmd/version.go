package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/abhisek/parsons/internal/catalog"
)

// version is set via -ldflags at build time. When it is not, a module
// version stamped by `go install` is used instead.
var version = "(devel)"

type buildInfo struct {
	Version       string `json:"version"`
	Commit        string `json:"commit,omitempty"`
	Modified      bool   `json:"modified,omitempty"`
	GoVersion     string `json:"goVersion"`
	Platform      string `json:"platform"`
	CatalogSchema string `json:"catalogSchema"`
}

func currentBuild() buildInfo {
	b := buildInfo{
		Version:       version,
		GoVersion:     runtime.Version(),
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
		CatalogSchema: catalog.SupportedMajor,
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	if b.Version == "(devel)" && semver.IsValid(info.Main.Version) {
		b.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			b.Commit = s.Value[:min(len(s.Value), 12)]
		case "vcs.modified":
			b.Modified = s.Value == "true"
		}
	}
	return b
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build and catalog schema versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		b := currentBuild()
		out := cmd.OutOrStdout()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(b)
		}

		fmt.Fprintln(out, "parsons", b.Version)
		if b.Commit != "" {
			dirty := ""
			if b.Modified {
				dirty = " (modified)"
			}
			fmt.Fprintf(out, "  commit:  %s%s\n", b.Commit, dirty)
		}
		fmt.Fprintf(out, "  go:      %s %s\n", b.GoVersion, b.Platform)
		fmt.Fprintf(out, "  catalog: schema %s.x\n", b.CatalogSchema)
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "Print build information as JSON")
}
