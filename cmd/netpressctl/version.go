package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"netpress/internal/app"
)

func newVersionCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print client and server versions",
		RunE: func(c *cobra.Command, _ []string) error {
			report, err := opts.client().Health(c.Context())
			if err != nil {
				if opts.jsonOutput {
					return writeJSON(map[string]any{"client": app.Version})
				}
				fmt.Printf("client=%s server=unreachable (%v)\n", app.Version, err)
				return nil
			}

			if opts.jsonOutput {
				return writeJSON(map[string]any{
					"client": app.Version,
					"server": report.Version,
					"skew":   versionSkew(app.Version, report.Version),
				})
			}
			fmt.Printf("client=%s server=%s\n", app.Version, report.Version)
			if skew := versionSkew(app.Version, report.Version); skew != "" {
				fmt.Printf("warning: client and server differ in %s version\n", skew)
			}
			return nil
		},
	}
}

// versionSkew reports "major" or "minor" when the two versions diverge at
// that level, empty otherwise. Unparseable versions report nothing.
func versionSkew(client, server string) string {
	clientV, serverV := "v"+client, "v"+server
	if !semver.IsValid(clientV) || !semver.IsValid(serverV) {
		return ""
	}
	if semver.Major(clientV) != semver.Major(serverV) {
		return "major"
	}
	if semver.MajorMinor(clientV) != semver.MajorMinor(serverV) {
		return "minor"
	}
	return ""
}
