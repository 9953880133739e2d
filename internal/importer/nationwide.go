package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerfold-dev/ledgerfold/internal/fingerprint"
	"github.com/ledgerfold-dev/ledgerfold/internal/model"
)

// NationwideCSV parses Nationwide (nationwide.co.uk) current-account CSV
// exports: an account-name/balance header block followed by six-column
// transaction rows.
type NationwideCSV struct{}

const (
	nwBankName   = "Nationwide"
	nwDateFormat = "02 Jan 2006"
	nwCommodity  = "GBP"

	nwFpAlgo    = "nwcsv6"
	nwFpVersion = 1

	nwColDate    = 0
	nwColType    = 1
	nwColDesc    = 2
	nwColPaidOut = 3
	nwColPaidIn  = 4
	nwColBalance = 5
	nwNumFields  = 6
)

// Name returns the importer name.
func (p *NationwideCSV) Name() string { return "nationwide" }

// Import reads a Nationwide CSV export.
func (p *NationwideCSV) Import(r io.Reader, opts Options) (*model.Journal, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading nationwide CSV: %w", err)
	}

	accountName, rows, err := nwSplitHeader(records)
	if err != nil {
		return nil, err
	}

	label := opts.Label
	if label == "" {
		label = sanitizeLabel(accountName)
	}

	journal := model.NewJournal()
	var prevDate time.Time
	seqInDay := 0
	for i, rec := range rows {
		if len(rec) != nwNumFields {
			return nil, fmt.Errorf("row %d: expected %d fields, got %d", i+1, nwNumFields, len(rec))
		}
		date, err := time.Parse(nwDateFormat, rec[nwColDate])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", i+1, rec[nwColDate], err)
		}
		if date.Equal(prevDate) {
			seqInDay++
		} else {
			prevDate = date
			seqInDay = 0
		}

		paidOut, err := nwParseMoney(rec[nwColPaidOut])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing paid out %q: %w", i+1, rec[nwColPaidOut], err)
		}
		paidIn, err := nwParseMoney(rec[nwColPaidIn])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing paid in %q: %w", i+1, rec[nwColPaidIn], err)
		}
		balance, err := nwParseMoney(rec[nwColBalance])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing balance %q: %w", i+1, rec[nwColBalance], err)
		}

		amount := model.NewAmount(paidIn.Sub(paidOut), nwCommodity)
		balanceAmount := model.NewAmount(balance, nwCommodity)

		fp := func(side string) model.Fingerprint {
			return fingerprint.New(nwFpAlgo, nwFpVersion, label).
				Date(date).
				Int64(int64(seqInDay)).
				String(rec[nwColType]).
				String(rec[nwColDesc]).
				Decimal(paidOut).
				Decimal(paidIn).
				String(side).
				Build()
		}

		trn := model.NewTransaction(date, rec[nwColDesc])

		self := selfPosting(amount, accountName, nwBankName, fp("self"))
		self.Balance = &balanceAmount
		self.Comment.Values[model.TrnTypeTag] = rec[nwColType]
		trn.AddPosting(self)

		peer := peerPosting(amount, fp("peer"))
		trn.AddPosting(peer)

		journal.AddTransaction(trn)
	}
	return journal, nil
}

// nwSplitHeader consumes the "Account Name:"/"Account Balance:"/"Available
// Balance:" block and the column header row, returning the account name and
// the transaction rows.
func nwSplitHeader(records [][]string) (accountName string, rows [][]string, err error) {
	for i, rec := range records {
		if len(rec) == 0 {
			continue
		}
		switch strings.TrimSuffix(rec[0], ":") {
		case "Account Name":
			if len(rec) > 1 {
				accountName = rec[1]
			}
		case "Account Balance", "Available Balance":
			// Statement-level balances; the per-row balance column is used
			// instead.
		case "Date":
			return accountName, records[i+1:], nil
		}
	}
	return "", nil, fmt.Errorf("bad file format: missing transaction header row")
}

// nwParseMoney parses values such as "£12.34" or "". Empty is zero.
func nwParseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "£"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// selfPosting builds the posting for the statement's own account.
func selfPosting(amount model.Amount, accountName, bankName string, fp model.Fingerprint) *model.Posting {
	post := model.NewPosting(assetsUnknown)
	post.Amount = &amount
	post.Comment.Flags[model.ImportSelfTag] = true
	post.Comment.Flags[model.UnknownAccountTag] = true
	post.Comment.Values[model.AccountTag] = accountName
	post.Comment.Values[model.BankTag] = bankName
	post.Comment.Values[fp.Name] = fp.Value
	return post
}

// peerPosting builds the balancing posting against the counterparty.
func peerPosting(amount model.Amount, fp model.Fingerprint) *model.Posting {
	account := incomeUnknown
	if amount.Quantity.IsNegative() {
		// Money left the account, so the peer is an expense.
		account = expensesUnknown
	}
	peerAmount := amount.Neg()
	post := model.NewPosting(account)
	post.Amount = &peerAmount
	post.Comment.Flags[model.ImportPeerTag] = true
	post.Comment.Flags[model.UnknownAccountTag] = true
	post.Comment.Values[fp.Name] = fp.Value
	return post
}

// sanitizeLabel reduces an account name to a fingerprint label.
func sanitizeLabel(name string) string {
	label := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return -1
		}
	}, name)
	if label == "" {
		return "default"
	}
	return label
}
