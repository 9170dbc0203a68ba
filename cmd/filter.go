package cmd

import (
	"fmt"
	"io"
	"os"

	"facet/feature/versions/engine"
	"facet/feature/versions/gemset"

	"github.com/spf13/cobra"
)

var filterFlags struct {
	allowlist     string
	blocklist     string
	stripVersions bool
	stream        bool
}

// filterCmd runs the engine once over a local file or stdin.
var filterCmd = &cobra.Command{
	Use:   "filter <versions-file|-> [output-file|-]",
	Short: "Filter a versions index file locally",
	Long: `Filter reads a versions index from a file (or stdin with "-"), applies the
allow/block lists and writes the filtered copy to a file (or stdout).

Examples:
  facet filter versions.txt filtered.txt --allowlist allowlist.txt
  curl -s https://rubygems.org/versions | facet filter - --allowlist allowlist.txt > filtered.txt`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		allow, err := loadListFile(filterFlags.allowlist)
		if err != nil {
			return err
		}
		block, err := loadListFile(filterFlags.blocklist)
		if err != nil {
			return err
		}
		policy := gemset.Resolve(allow, block)

		var in io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return &engine.RunError{Kind: engine.ErrInputUnreadable, Content: args[0], Err: err}
			}
			defer f.Close()
			in = f
		}

		var out io.Writer = os.Stdout
		if len(args) == 2 && args[1] != "-" {
			f, err := os.Create(args[1])
			if err != nil {
				return &engine.RunError{Kind: engine.ErrOutputUnwritable, Content: args[1], Err: err}
			}
			defer f.Close()
			out = f
		}

		mode := engine.ModeDedup
		if filterFlags.stream {
			mode = engine.ModeStream
		}

		stats, err := engine.Run(in, out, policy, engine.Options{
			Mode:          mode,
			StripVersions: filterFlags.stripVersions,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "filtered %d records (%d admitted, %d emitted, policy %s)\n",
			stats.BodyLines, stats.Admitted, stats.Emitted, policy.Mode())
		return nil
	},
}

// loadListFile reads a gem list from disk; empty path means no list.
func loadListFile(path string) (gemset.Set, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &engine.RunError{Kind: engine.ErrListUnreadable, Content: path, Err: err}
	}
	defer f.Close()

	set, err := gemset.Load(f)
	if err != nil {
		return nil, &engine.RunError{Kind: engine.ErrListUnreadable, Content: path, Err: err}
	}
	return set, nil
}

func init() {
	filterCmd.Flags().StringVar(&filterFlags.allowlist, "allowlist", "", "file with gem names to keep (one per line)")
	filterCmd.Flags().StringVar(&filterFlags.blocklist, "blocklist", "", "file with gem names to drop (one per line)")
	filterCmd.Flags().BoolVar(&filterFlags.stripVersions, "strip-versions", false, "replace version lists with '0' in output")
	filterCmd.Flags().BoolVar(&filterFlags.stream, "stream", false, "keep every occurrence instead of deduplicating")
	RootCmd.AddCommand(filterCmd)
}
