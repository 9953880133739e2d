package ledgerfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledgerfold-dev/ledgerfold/internal/model"
)

const indent = "    "

// Format writes the journal as Ledger text. Output is deterministic for a
// given journal: tags are emitted in sorted order and spacing is fixed.
func Format(w io.Writer, journal *model.Journal) error {
	for i, trn := range journal.Transactions {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := formatTransaction(w, trn); err != nil {
			return err
		}
	}
	return nil
}

// FormatString renders the journal as a string.
func FormatString(journal *model.Journal) (string, error) {
	var sb strings.Builder
	if err := Format(&sb, journal); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func formatTransaction(w io.Writer, trn *model.Transaction) error {
	header := trn.Date.Format("2006-01-02")
	if trn.Status != "" {
		header += " " + trn.Status
	}
	if trn.Code != "" {
		header += " (" + trn.Code + ")"
	}
	if trn.Description != "" {
		header += " " + trn.Description
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	if err := writeCommentLines(w, trn.Comment); err != nil {
		return err
	}

	for _, post := range trn.Postings {
		line := indent + post.Account
		if post.Amount != nil {
			line += "  " + post.Amount.String()
		}
		if post.Balance != nil {
			if post.Amount == nil {
				// Keep the two-space account separator when the amount is
				// elided.
				line += "  =" + post.Balance.String()
			} else {
				line += " =" + post.Balance.String()
			}
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if err := writeCommentLines(w, post.Comment); err != nil {
			return err
		}
	}
	return nil
}

func writeCommentLines(w io.Writer, comment model.Comment) error {
	if comment.IsEmpty() {
		return nil
	}
	for _, line := range strings.Split(comment.Format(), "\n") {
		if _, err := fmt.Fprintln(w, indent+"; "+line); err != nil {
			return err
		}
	}
	return nil
}
