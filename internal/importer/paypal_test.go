package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerfold-dev/ledgerfold/internal/model"
)

const paypalSample = `Date,Name,Type,Status,Currency,Amount,Receipt ID,Balance
15/01/2024,Web Store,Express Checkout Payment,Completed,USD,-25.00,R123,75.00
16/01/2024,Alice,Payment Received,Completed,USD,10.00,,85.00
`

func TestPayPalImport(t *testing.T) {
	journal, err := (&PayPalCSV{}).Import(strings.NewReader(paypalSample), Options{})
	require.NoError(t, err)
	require.Len(t, journal.Transactions, 2)

	first := journal.Transactions[0]
	assert.Equal(t, "Web Store", first.Description)
	assert.Equal(t, "2024-01-15", first.Date.Format("2006-01-02"))

	self := first.Postings[0]
	assert.Equal(t, "USD -25", self.Amount.String())
	assert.Equal(t, "USD 75", self.Balance.String())
	assert.Equal(t, "PayPal", self.Comment.Values[model.BankTag])
	assert.Equal(t, "Express Checkout Payment", self.Comment.Values[model.TrnTypeTag])
	assert.Equal(t, "R123", self.Comment.Values["receipt"])

	fps := self.Fingerprints()
	require.Len(t, fps, 1)
	assert.Equal(t, "fp-ppcsv1.1.paypal", fps[0].Name)

	peer := first.Postings[1]
	assert.Equal(t, "expenses:unknown", peer.Account)
	assert.Equal(t, "USD 25", peer.Amount.String())

	second := journal.Transactions[1]
	assert.Equal(t, "income:unknown", second.Postings[1].Account)
	assert.NotContains(t, second.Postings[0].Comment.Values, "receipt")
}

func TestPayPalEmpty(t *testing.T) {
	journal, err := (&PayPalCSV{}).Import(strings.NewReader(""), Options{})
	require.NoError(t, err)
	assert.Empty(t, journal.Transactions)
}

func TestPayPalBadRow(t *testing.T) {
	_, err := (&PayPalCSV{}).Import(strings.NewReader(
		"Date,Name,Type,Status,Currency,Amount,Receipt ID,Balance\nnot-a-date,A,B,C,USD,1.00,,1.00\n"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}
