package commands

import (
	"github.com/spf13/cobra"

	"github.com/ledgerfold-dev/ledgerfold/internal/config"
	"github.com/ledgerfold-dev/ledgerfold/internal/filespec"
	"github.com/ledgerfold-dev/ledgerfold/internal/rules"
)

func newApplyRulesCommand(loadConfig func() (*config.Config, error)) *cobra.Command {
	var output string
	var rulesPath string
	var stepBudget int

	cmd := &cobra.Command{
		Use:   "apply-rules <input>",
		Short: "Run the rule program over every posting of a journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			prog, err := rules.LoadFile(rulesPath)
			if err != nil {
				return err
			}
			if stepBudget > 0 {
				prog.StepBudget = stepBudget
			} else if cfg.Rules.StepBudget > 0 {
				prog.StepBudget = cfg.Rules.StepBudget
			}

			journal, err := filespec.ReadJournal(filespec.FileSpec(args[0]))
			if err != nil {
				return err
			}
			if err := prog.ApplyJournal(journal); err != nil {
				return err
			}
			return filespec.WriteJournal(filespec.FileSpec(output), journal)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "journal file to write, - for stdout")
	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "rule program file (required)")
	_ = cmd.MarkFlagRequired("rules")
	cmd.Flags().IntVar(&stepBudget, "step-budget", 0, "rule evaluations allowed per posting (default from config)")

	return cmd
}
