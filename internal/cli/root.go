// Package cli provides the command-line interface for the service.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ashik5757/Minio-Private-Bucket/internal/logging"
)

var (
	verbose bool

	logger *logging.Logger
)

// Version information - set by the main package at startup (injected
// via LDFLAGS in release builds).
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "minio-browser",
		Short: "Browse an S3-compatible bucket and download folders as archives",
		Long: `minio-browser ` + Version + ` - Built: ` + BuildTime + `

Exposes a single S3-compatible bucket (MinIO or AWS S3) over HTTP:
browse the key tree, inspect folders, stream single objects and
download whole folders as ZIP archives with live progress and
cancellation.

Connection settings come from the environment: ENDPOINT_URL,
BUCKET_NAME, ACCESS_KEY, SECRET_KEY (see the README for tunables).`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewDefaultLogger()
			if verbose {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.Version = Version + " (" + BuildTime + ")"

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newFetchCmd())

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}
