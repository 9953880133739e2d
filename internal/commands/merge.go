package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerfold-dev/ledgerfold/internal/config"
	"github.com/ledgerfold-dev/ledgerfold/internal/filespec"
	"github.com/ledgerfold-dev/ledgerfold/internal/merge"
	"github.com/ledgerfold-dev/ledgerfold/internal/model"
)

func newMergeCommand(loadConfig func() (*config.Config, error)) *cobra.Command {
	var output string
	var unmergedPath string

	cmd := &cobra.Command{
		Use:   "merge <destination> <sources...>",
		Short: "Fold source journals into a destination journal",
		Long: "Fold source journals into a destination journal. Postings are matched by\n" +
			"fingerprint, then by a soft match on date, amount, balance, and account.\n" +
			"Transactions that match ambiguously are written to the --unmerged journal\n" +
			"for manual resolution.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			merger := merge.NewMerger(merge.WithDateWindow(cfg.Merge.WindowDays))
			var unmerged []*model.Transaction

			for _, arg := range args {
				input := filespec.FileSpec(arg)
				journal, err := filespec.ReadJournal(input)
				if err != nil {
					return err
				}
				for _, group := range merge.GroupBySource(journal, input.String()) {
					um, err := merger.Merge(group)
					if err != nil {
						return fmt.Errorf("merging %s: %w", input, err)
					}
					unmerged = append(unmerged, um...)
				}
			}

			if len(unmerged) > 0 {
				if unmergedPath == "" {
					return fmt.Errorf("%d transactions went unmerged and no --unmerged file was given", len(unmerged))
				}
				side := model.NewJournal()
				for _, trn := range unmerged {
					side.AddTransaction(trn)
				}
				// Source tags stay on unmerged transactions for context.
				if err := filespec.WriteJournal(filespec.FileSpec(unmergedPath), side); err != nil {
					return err
				}
			}

			merged := merger.Build()
			merge.StripSources(merged)
			return filespec.WriteJournal(filespec.FileSpec(output), merged)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "journal file to write, - for stdout")
	cmd.Flags().StringVarP(&unmergedPath, "unmerged", "u", "", "journal file for transactions needing manual resolution")

	return cmd
}
