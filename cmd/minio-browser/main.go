package main

import (
	"fmt"
	"os"

	"github.com/ashik5757/Minio-Private-Bucket/internal/cli"
	"github.com/ashik5757/Minio-Private-Bucket/internal/version"
)

// Version information - injected at build time via LDFLAGS
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime
	cli.Version = Version
	cli.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
