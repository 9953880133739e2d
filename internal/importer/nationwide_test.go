package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerfold-dev/ledgerfold/internal/model"
)

const nationwideSample = `"Account Name:","Smart Junior ISA ****1234"
"Account Balance:","£1,500.00"
"Available Balance:","£1,500.00"

"Date","Transaction type","Description","Paid out","Paid in","Balance"
"15 Jan 2024","Visa purchase","COFFEE SHOP","£3.50","","£96.50"
"15 Jan 2024","Visa purchase","COFFEE SHOP","£3.50","","£93.00"
"16 Jan 2024","Bank credit","SALARY","","£1,407.00","£1,500.00"
`

func TestNationwideImport(t *testing.T) {
	journal, err := (&NationwideCSV{}).Import(strings.NewReader(nationwideSample), Options{Label: "checking"})
	require.NoError(t, err)
	require.Len(t, journal.Transactions, 3)

	first := journal.Transactions[0]
	assert.Equal(t, "COFFEE SHOP", first.Description)
	assert.Equal(t, "2024-01-15", first.Date.Format("2006-01-02"))
	require.Len(t, first.Postings, 2)

	self := first.Postings[0]
	assert.Equal(t, "assets:unknown", self.Account)
	assert.True(t, self.HasFlag(model.ImportSelfTag))
	assert.True(t, self.HasFlag(model.UnknownAccountTag))
	require.NotNil(t, self.Amount)
	assert.Equal(t, "GBP -3.5", self.Amount.String())
	require.NotNil(t, self.Balance)
	assert.Equal(t, "GBP 96.5", self.Balance.String())
	assert.Equal(t, "Smart Junior ISA ****1234", self.Comment.Values[model.AccountTag])
	assert.Equal(t, "Nationwide", self.Comment.Values[model.BankTag])
	assert.Equal(t, "Visa purchase", self.Comment.Values[model.TrnTypeTag])

	peer := first.Postings[1]
	assert.Equal(t, "expenses:unknown", peer.Account)
	assert.True(t, peer.HasFlag(model.ImportPeerTag))
	assert.Equal(t, "GBP 3.5", peer.Amount.String())
	assert.Nil(t, peer.Balance)

	credit := journal.Transactions[2]
	assert.Equal(t, "income:unknown", credit.Postings[1].Account)
	assert.Equal(t, "GBP 1407", credit.Postings[0].Amount.String())
}

func TestNationwideFingerprints(t *testing.T) {
	run := func() *model.Journal {
		journal, err := (&NationwideCSV{}).Import(strings.NewReader(nationwideSample), Options{Label: "checking"})
		require.NoError(t, err)
		return journal
	}

	first := run()
	second := run()

	var keys []string
	seen := make(map[string]bool)
	for _, trn := range first.Transactions {
		for _, post := range trn.Postings {
			fps := post.Fingerprints()
			require.Len(t, fps, 1)
			assert.Equal(t, "fp-nwcsv6.1.checking", fps[0].Name)
			assert.False(t, seen[fps[0].Key()], "fingerprint %s repeated", fps[0].Key())
			seen[fps[0].Key()] = true
			keys = append(keys, fps[0].Key())
		}
	}

	// Identical lookalike rows on the same day get distinct fingerprints,
	// and a re-import reproduces the same ones.
	var again []string
	for _, trn := range second.Transactions {
		for _, post := range trn.Postings {
			again = append(again, post.Fingerprints()[0].Key())
		}
	}
	assert.Equal(t, keys, again)
}

func TestNationwideMissingHeader(t *testing.T) {
	_, err := (&NationwideCSV{}).Import(strings.NewReader("no,such,format\n"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing transaction header")
}

func TestNationwideDefaultLabel(t *testing.T) {
	journal, err := (&NationwideCSV{}).Import(strings.NewReader(nationwideSample), Options{})
	require.NoError(t, err)
	fps := journal.Transactions[0].Postings[0].Fingerprints()
	require.Len(t, fps, 1)
	assert.Equal(t, "fp-nwcsv6.1.smartjuniorisa1234", fps[0].Name)
}

func TestRegistry(t *testing.T) {
	registry := DefaultRegistry()
	assert.NotNil(t, registry.Get("nationwide"))
	assert.NotNil(t, registry.Get("NATIONWIDE"))
	assert.NotNil(t, registry.Get("paypal"))
	assert.Nil(t, registry.Get("no-such"))
	assert.Equal(t, []string{"nationwide", "paypal"}, registry.Names())

	assert.Panics(t, func() { registry.Register(&NationwideCSV{}) })
}
