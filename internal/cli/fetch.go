package cli

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"github.com/ashik5757/Minio-Private-Bucket/internal/archive"
	"github.com/ashik5757/Minio-Private-Bucket/internal/config"
	"github.com/ashik5757/Minio-Private-Bucket/internal/storage"
	"github.com/ashik5757/Minio-Private-Bucket/internal/util/format"
)

func newFetchCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fetch <prefix>",
		Short: "Archive a bucket folder to a local ZIP file",
		Long: `Enumerate every object under the given prefix and write them into a
local ZIP archive, without going through the HTTP server.

Uses the same bucket configuration as serve (BUCKET_NAME,
ENDPOINT_URL, ACCESS_KEY, SECRET_KEY).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to <folder>.zip)")
	return cmd
}

func runFetch(cmd *cobra.Command, prefix, output string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	store, err := storage.NewClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	normalized := storage.NormalizePrefix(prefix)
	listing, err := store.ListFolder(ctx, normalized)
	if err != nil {
		return err
	}
	if listing.Count() == 0 {
		return fmt.Errorf("no objects found under prefix %q", prefix)
	}

	if output == "" {
		name := path.Base(strings.TrimSuffix(normalized, "/"))
		if name == "" || name == "." {
			name = "download"
		}
		output = name + ".zip"
	}

	fmt.Fprintf(os.Stderr, "Archiving %d objects (%s) from %s\n",
		listing.Count(), format.Size(listing.TotalBytes), normalized)

	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))

	var p *mpb.Progress
	if isTerminal {
		p = mpb.New(
			mpb.WithOutput(os.Stderr),
			mpb.WithWidth(80),
		)
	} else {
		// Non-TTY: disable the progress bar, keep text output only
		p = mpb.New(mpb.WithOutput(io.Discard))
	}

	bar := p.New(listing.TotalBytes,
		mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding(" ").Rbound("]"),
		mpb.PrependDecorators(
			decor.Name(output+" ", decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace),
			decor.Name("  "),
			decor.Percentage(decor.WCSyncSpace),
		),
	)

	builder := archive.NewBuilder(logger)
	err = builder.BuildFile(ctx, output, listing, store, func(obj storage.Object) bool {
		bar.IncrInt64(obj.Size)
		return true
	})
	if err != nil {
		// An incomplete bar would block Wait forever.
		bar.Abort(true)
		p.Wait()
		return err
	}
	p.Wait()

	fmt.Fprintf(os.Stderr, "Wrote %s\n", output)
	return nil
}
