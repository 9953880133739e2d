package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAmountEqual(t *testing.T) {
	tests := []struct {
		a, b Amount
		want bool
	}{
		{NewAmount(dec("10.00"), "GBP"), NewAmount(dec("10"), "GBP"), true},
		{NewAmount(dec("10.00"), "GBP"), NewAmount(dec("10.01"), "GBP"), false},
		{NewAmount(dec("10.00"), "GBP"), NewAmount(dec("10.00"), "USD"), false},
		{NewAmount(dec("-3.50"), "GBP"), NewAmount(dec("-3.5"), "GBP"), true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.a.Equal(tt.b), "%s == %s", tt.a, tt.b)
	}
}

func TestAmountString(t *testing.T) {
	tests := []struct {
		amount Amount
		want   string
	}{
		{NewAmount(dec("10.00"), "GBP"), "GBP 10"},
		{NewAmount(dec("-3.50"), "GBP"), "GBP -3.5"},
		{NewAmount(dec("1.25"), "$"), "$1.25"},
		{NewAmount(dec("-1.25"), "$"), "-$1.25"},
		{Amount{Quantity: dec("7.5"), Commodity: Commodity{Name: "USD", Side: CommodityRight}}, "7.5 USD"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.amount.String())
	}
}

func TestPostingFingerprints(t *testing.T) {
	post := NewPosting("assets:checking")
	post.Comment.Values["fp-nwcsv6.1.checking"] = "zzz"
	post.Comment.Values["fp-a.1.x"] = "abc"
	post.Comment.Values["bank"] = "Nationwide"

	fps := post.Fingerprints()
	require.Len(t, fps, 2)
	assert.Equal(t, Fingerprint{Name: "fp-a.1.x", Value: "abc"}, fps[0])
	assert.Equal(t, Fingerprint{Name: "fp-nwcsv6.1.checking", Value: "zzz"}, fps[1])
	assert.Equal(t, "fp-a.1.x=abc", fps[0].Key())
}

func TestPostingCloneIsDeep(t *testing.T) {
	amount := NewAmount(dec("10"), "GBP")
	post := NewPosting("assets:checking")
	post.Amount = &amount
	post.Comment.Values["fp-a.1.x"] = "abc"

	clone := post.Clone()
	clone.Account = "assets:other"
	clone.Amount.Quantity = dec("99")
	clone.Comment.Values["fp-a.1.x"] = "changed"

	assert.Equal(t, "assets:checking", post.Account)
	assert.True(t, post.Amount.Quantity.Equal(dec("10")))
	assert.Equal(t, "abc", post.Comment.Values["fp-a.1.x"])
}

func TestCloneHeaderCopiesNoPostings(t *testing.T) {
	trn := NewTransaction(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "Coffee")
	trn.Code = "123"
	trn.Status = "*"
	trn.Comment.Values["source-file"] = "a.journal"
	trn.AddPosting(NewPosting("assets:checking"))

	header := trn.CloneHeader()
	assert.Equal(t, trn.Date, header.Date)
	assert.Equal(t, "Coffee", header.Description)
	assert.Equal(t, "123", header.Code)
	assert.Equal(t, "*", header.Status)
	assert.Equal(t, "a.journal", header.Comment.Values["source-file"])
	assert.Empty(t, header.Postings)

	header.Comment.Values["source-file"] = "b.journal"
	assert.Equal(t, "a.journal", trn.Comment.Values["source-file"])
}

func TestTagPredicates(t *testing.T) {
	assert.True(t, IsFingerprint("fp-nwcsv6.1.checking"))
	assert.False(t, IsFingerprint("bank"))
	assert.True(t, IsCandidate("candidate-fp-a.1.x"))
	assert.False(t, IsCandidate("fp-a.1.x"))
}
