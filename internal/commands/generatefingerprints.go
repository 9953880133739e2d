package commands

import (
	"github.com/spf13/cobra"

	"github.com/ledgerfold-dev/ledgerfold/internal/filespec"
	"github.com/ledgerfold-dev/ledgerfold/internal/fingerprint"
)

func newGenerateFingerprintsCommand() *cobra.Command {
	var output string
	var label string

	cmd := &cobra.Command{
		Use:   "generate-fingerprints <input>",
		Short: "Assign default fingerprints to postings lacking one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := filespec.ReadJournal(filespec.FileSpec(args[0]))
			if err != nil {
				return err
			}

			for _, trn := range journal.Transactions {
				for _, post := range trn.Postings {
					if len(post.Fingerprints()) == 0 {
						fp := fingerprint.NewUUID(label)
						post.Comment.Values[fp.Name] = fp.Value
					}
				}
			}
			return filespec.WriteJournal(filespec.FileSpec(output), journal)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "journal file to write, - for stdout")
	cmd.Flags().StringVar(&label, "label", "default", "fingerprint namespace label")

	return cmd
}
