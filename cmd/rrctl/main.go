// Package main provides rrctl, an operator tool that reads the live catalog the
// same way the server does.
//
// Usage:
//
//	rrctl rooms --order desc
//	rrctl nav 12 03
//	rrctl tag-nav 木 01
//	rrctl post 42 > post.md
//	rrctl sitemap -o public/sitemap.xml
package main

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/roomandroom/roomandroom-server/internal/di"
)

var (
	envFile  string
	logLevel string

	// injector is built lazily by the first command that needs services.
	injector *do.RootScope
)

var rootCmd = &cobra.Command{
	Use:           "rrctl",
	Short:         "Inspect the room and room. catalog",
	Long:          "rrctl fetches the catalog from the CMS and prints listings, navigation and posts as the site would resolve them.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(roomsCmd, navCmd, tagsCmd, tagNavCmd, postCmd, sitemapCmd)
}

// container returns the DI container, configured from the environment and the
// persistent flags.
func container() *do.RootScope {
	if injector == nil {
		injector = di.NewContainer([]string{"-env-file", envFile, "-log-level", logLevel})
	}
	return injector
}

func main() {
	err := rootCmd.Execute()
	if injector != nil {
		if serr := injector.Shutdown(); serr != nil {
			fmt.Fprintln(os.Stderr, "Shutdown:", serr)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
