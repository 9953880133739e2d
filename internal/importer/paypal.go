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

// PayPalCSV parses PayPal activity CSV exports.
type PayPalCSV struct{}

const (
	ppBankName   = "PayPal"
	ppDateFormat = "02/01/2006"

	ppFpAlgo    = "ppcsv1"
	ppFpVersion = 1

	ppColDate     = 0
	ppColName     = 1
	ppColType     = 2
	ppColStatus   = 3
	ppColCurrency = 4
	ppColAmount   = 5
	ppColReceipt  = 6
	ppColBalance  = 7
	ppNumFields   = 8
)

// Name returns the importer name.
func (p *PayPalCSV) Name() string { return "paypal" }

// Import reads a PayPal activity CSV.
func (p *PayPalCSV) Import(r io.Reader, opts Options) (*model.Journal, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = ppNumFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading paypal CSV: %w", err)
	}
	if len(records) == 0 {
		return model.NewJournal(), nil
	}

	label := opts.Label
	if label == "" {
		label = "paypal"
	}

	journal := model.NewJournal()
	// Skip the header row.
	for i, rec := range records[1:] {
		row := i + 2

		date, err := time.Parse(ppDateFormat, rec[ppColDate])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", row, rec[ppColDate], err)
		}
		quantity, err := decimal.NewFromString(strings.ReplaceAll(rec[ppColAmount], ",", ""))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", row, rec[ppColAmount], err)
		}
		balance, err := decimal.NewFromString(strings.ReplaceAll(rec[ppColBalance], ",", ""))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing balance %q: %w", row, rec[ppColBalance], err)
		}

		currency := rec[ppColCurrency]
		amount := model.NewAmount(quantity, currency)
		balanceAmount := model.NewAmount(balance, currency)

		fp := func(side string) model.Fingerprint {
			return fingerprint.New(ppFpAlgo, ppFpVersion, label).
				Date(date).
				String(rec[ppColName]).
				String(rec[ppColType]).
				String(rec[ppColReceipt]).
				Decimal(quantity).
				String(currency).
				String(side).
				Build()
		}

		description := rec[ppColName]
		if description == "" {
			description = rec[ppColType]
		}
		trn := model.NewTransaction(date, description)

		self := selfPosting(amount, "PayPal", ppBankName, fp("self"))
		self.Balance = &balanceAmount
		self.Comment.Values[model.TrnTypeTag] = rec[ppColType]
		if rec[ppColReceipt] != "" {
			self.Comment.Values["receipt"] = rec[ppColReceipt]
		}
		trn.AddPosting(self)

		trn.AddPosting(peerPosting(amount, fp("peer")))
		journal.AddTransaction(trn)
	}
	return journal, nil
}
