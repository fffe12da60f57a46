package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/craftbeerbot/internal/catalog"
)

// CatalogOptions holds flags for the catalog command.
type CatalogOptions struct {
	*RootOptions
	File string
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the beers the bot can order",
		Long: `List the beer catalog with product ids.

By default the catalog compiled into the bot is shown. With --file, a
CUE catalog is loaded and validated instead, which is how edits to
beers.cue are checked before a release.

Examples:
  beerbot catalog
  beerbot catalog --file ./beers.cue
  beerbot catalog --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "CUE catalog to load instead of the built-in one")

	return cmd
}

func runCatalog(opts *CatalogOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	var cat *catalog.Catalog
	var err error
	if opts.File != "" {
		var src []byte
		src, err = os.ReadFile(opts.File)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read catalog", err)
		}
		cat, err = catalog.Load(src)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), map[string]string{"file": opts.File})
		return WrapExitError(ExitFailure, "invalid catalog", err)
	}

	if opts.Format == "json" {
		return formatter.Success(cat.All())
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, e := range cat.All() {
		fmt.Fprintf(tw, "%d\t%s\n", e.ID, e.Name)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d beers\n", cat.Len())
	return nil
}
