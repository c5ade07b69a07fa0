package commands

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Bernardxu123/unicom-calc/internal/ledger"
)

func newExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "export <json|csv|xlsx> [file]",
		Short:     "Export the ledger as a backup (json) or a bill (csv, xlsx)",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"json", "csv", "xlsx"},
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.ToLower(args[0])
			s := a.ledger.Snapshot()

			var buf bytes.Buffer
			switch format {
			case "json":
				b, err := ledger.ExportSnapshot(s)
				if err != nil {
					return err
				}
				buf.Write(b)
			case "csv":
				if err := ledger.WriteCSV(&buf, s); err != nil {
					return err
				}
			case "xlsx":
				if err := ledger.WriteXLSX(&buf, s); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q, want json, csv or xlsx", args[0])
			}

			path := ledger.ExportFileName(s, format)
			if len(args) == 2 {
				path = args[1]
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the ledger with a json backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			if err := a.ledger.ImportBackup(data); err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "imported")
			return nil
		},
	}
}
