package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/overlap/internal/config"
	"github.com/JonMunkholm/overlap/internal/core"
	"github.com/JonMunkholm/overlap/internal/export"
	"github.com/JonMunkholm/overlap/internal/source"
	"github.com/spf13/cobra"
)

var errDuplicateDataset = errors.New("invalid request: dataset loaded twice")

// app carries what every subcommand needs.
type app struct {
	cfg *config.Config
}

func (a *app) defaultKey() core.KeyColumn {
	if a.cfg.Compare.DefaultKeyColumn != "" {
		return core.ColumnNamed(a.cfg.Compare.DefaultKeyColumn)
	}
	return core.FirstColumn()
}

// newRootCmd builds the command tree. cfg supplies the default key column
// and the index worker count.
func newRootCmd(cfg *config.Config) *cobra.Command {
	a := &app{cfg: cfg}

	root := &cobra.Command{
		Use:   "overlap",
		Short: "Check which students appear across spreadsheets",
		Long: `overlap compares the student identifiers of one sheet against other
sheets and reports, per row, whether the student appears elsewhere.

Input files may be .xlsx workbooks (every sheet is a dataset), .csv files
(one dataset named after the file) or JSON payloads. Several files can be
given; their datasets are combined in argument order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(a.compareCmd(), a.gapsCmd(), a.searchCmd())
	return root
}

type keyFlags struct {
	name     string
	position int
}

func (k *keyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&k.name, "key-column", "", "identifier column name (default: first column)")
	cmd.Flags().IntVar(&k.position, "key-position", -1, "identifier column, 0-based position")
}

func (k *keyFlags) spec() *core.KeyColumnSpec {
	switch {
	case k.name != "":
		return &core.KeyColumnSpec{Name: k.name}
	case k.position >= 0:
		pos := k.position
		return &core.KeyColumnSpec{Position: &pos}
	}
	return nil
}

type outputFlags struct {
	path        string
	indexColumn string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.path, "out", "o", "", "write the result to a .xlsx or .csv file instead of stdout")
	cmd.Flags().StringVar(&o.indexColumn, "index-column", "", "prepend the row number under this header")
}

// write sends t to the output file, or as CSV to w.
func (o *outputFlags) write(w io.Writer, sheet string, t *core.Table) error {
	opts := export.Options{IndexColumn: o.indexColumn}
	if o.path == "" {
		return export.WriteCSV(w, t, opts)
	}

	format, err := export.ParseFormat(strings.TrimPrefix(filepath.Ext(o.path), "."))
	if err != nil {
		return err
	}

	f, err := os.Create(o.path)
	if err != nil {
		return err
	}
	if format == export.FormatCSV {
		err = export.WriteCSV(f, t, opts)
	} else {
		err = export.WriteXLSX(f, sheet, t, opts)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", o.path, err)
	}
	return nil
}

func (a *app) compareCmd() *cobra.Command {
	var (
		subject, refs, policy, numbering string
		canonical                        string
		enrich, carry                    []string
		sortByStatus                     bool
		key                              keyFlags
		out                              outputFlags
	)

	cmd := &cobra.Command{
		Use:   "compare FILE...",
		Short: "Mark each row of a sheet as Overlapped or Unique",
		Long: `Mark each row of the subject sheet as Overlapped when its identifier
appears in the reference sheets, Unique otherwise.

Examples:
  # MSE against every other sheet, one column per sheet
  overlap compare term1.xlsx --subject MSE --policy per_reference

  # Pull Class from the master list, overlapped rows first
  overlap compare new.csv master.csv --subject new --refs master \
      --policy pair --enrich Class --sort-by-status --out result.xlsx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := loadFiles(args)
			if err != nil {
				return err
			}

			p, err := core.ParsePolicy(policy)
			if err != nil {
				return err
			}
			n, err := core.ParseNumbering(numbering)
			if err != nil {
				return err
			}
			if subject == "" && wb.Len() > 0 {
				subject = wb.Names()[0]
			}

			req := core.CompareRequest{
				Subject:          subject,
				References:       core.ParseSelection(refs),
				KeyColumn:        key.spec(),
				Policy:           p,
				EnrichmentFields: enrich,
				Canonical:        canonical,
				Carry:            carry,
				SortByStatus:     sortByStatus,
				Numbering:        n,
			}

			cmp, err := req.Resolve(wb, a.defaultKey())
			if err != nil {
				return err
			}
			cmp.Options.IndexWorkers = a.cfg.Compare.IndexWorkers

			table, err := cmp.Run(cmd.Context())
			if err != nil {
				return err
			}
			return out.write(cmd.OutOrStdout(), cmp.Subject.Name, table)
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "sheet to check (default: first dataset)")
	cmd.Flags().StringVarP(&refs, "refs", "r", "all", `reference sheets: "all" or a comma-separated list`)
	cmd.Flags().StringVarP(&policy, "policy", "p", "any", "any, per_reference or pair")
	cmd.Flags().StringSliceVar(&enrich, "enrich", nil, "columns to pull from the canonical sheet")
	cmd.Flags().StringVar(&canonical, "canonical", "", "sheet to pull --enrich columns from (default: first reference)")
	cmd.Flags().StringSliceVar(&carry, "carry", nil, "subject columns to keep (default: all)")
	cmd.Flags().BoolVar(&sortByStatus, "sort-by-status", false, "list Overlapped rows first")
	cmd.Flags().StringVar(&numbering, "numbering", "none", "none, sequence (S.No column) or index")
	key.register(cmd)
	out.register(cmd)
	return cmd
}

func (a *app) gapsCmd() *cobra.Command {
	var (
		newName, canonical string
		fields             []string
		key                keyFlags
		out                outputFlags
	)

	cmd := &cobra.Command{
		Use:   "gaps FILE...",
		Short: "List students of one sheet missing from another",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := loadFiles(args)
			if err != nil {
				return err
			}

			req := core.GapRequest{
				New:       newName,
				Canonical: canonical,
				KeyColumn: key.spec(),
				Fields:    fields,
			}
			table, err := req.Run(wb, a.defaultKey())
			if err != nil {
				return err
			}
			return out.write(cmd.OutOrStdout(), newName+" gaps", table)
		},
	}

	cmd.Flags().StringVar(&newName, "new", "", "sheet with the new students")
	cmd.Flags().StringVar(&canonical, "canonical", "", "master sheet")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "columns of the new sheet to report (default: all)")
	cmd.MarkFlagRequired("new")
	cmd.MarkFlagRequired("canonical")
	key.register(cmd)
	out.register(cmd)
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	var key keyFlags

	cmd := &cobra.Command{
		Use:   "search ID FILE...",
		Short: "List the sheets that contain a student identifier",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := loadFiles(args[1:])
			if err != nil {
				return err
			}

			found, err := core.Search(wb, key.spec().KeyColumn(a.defaultKey()), args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintf(w, "%s: not found\n", args[0])
				return nil
			}
			for _, name := range found {
				fmt.Fprintln(w, name)
			}
			return nil
		},
	}
	key.register(cmd)
	return cmd
}

// loadFiles reads every file and combines their datasets in argument order.
func loadFiles(paths []string) (*core.Workbook, error) {
	wb := core.NewWorkbook()
	from := make(map[string]string)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		part, err := source.Load(filepath.Base(path), data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, ds := range part.Datasets() {
			if prev, ok := from[ds.Name]; ok {
				return nil, fmt.Errorf("%w: %q is in %s and %s", errDuplicateDataset, ds.Name, prev, path)
			}
			from[ds.Name] = path
			wb.Add(ds)
		}
	}
	return wb, nil
}

// run executes the command tree against args and reports failures as user
// messages on stderr.
func run(ctx context.Context, root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if core.IsUserFacing(err) {
			fmt.Fprintln(stderr, core.FormatUserError(err))
			fmt.Fprintln(stderr, "  detail:", err)
		} else {
			fmt.Fprintln(stderr, "error:", err)
		}
		return 1
	}
	return 0
}
