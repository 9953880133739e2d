package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ledgerfold-dev/ledgerfold/internal/filespec"
	"github.com/ledgerfold-dev/ledgerfold/internal/importer"
)

func newImportCommand() *cobra.Command {
	var output string
	var label string

	cmd := &cobra.Command{
		Use:   "import <importer> <input>",
		Short: "Convert a bank statement into a fingerprinted journal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := importer.DefaultRegistry()
			imp := registry.Get(args[0])
			if imp == nil {
				return fmt.Errorf("unknown importer %q (available: %s)",
					args[0], strings.Join(registry.Names(), ", "))
			}

			input := filespec.FileSpec(args[1])
			r, err := input.Open()
			if err != nil {
				return err
			}
			defer r.Close()

			journal, err := imp.Import(r, importer.Options{Label: label})
			if err != nil {
				return fmt.Errorf("importing %s: %w", input, err)
			}
			return filespec.WriteJournal(filespec.FileSpec(output), journal)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "journal file to write, - for stdout")
	cmd.Flags().StringVar(&label, "label", "", "fingerprint namespace label (default: chosen by the importer)")

	return cmd
}
