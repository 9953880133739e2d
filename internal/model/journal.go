package model

import (
	"sort"
	"time"
)

// Fingerprint is one cross-run posting identity: a value tag whose name
// starts with "fp-". Only exact (Name, Value) equality matters; the
// namespace inside the name and the value bytes are opaque.
type Fingerprint struct {
	Name  string
	Value string
}

// Key returns the string used to index a fingerprint.
func (f Fingerprint) Key() string {
	return f.Name + "=" + f.Value
}

// Posting is one leg of a transaction: an account, an optional amount (nil
// for the elided balancing leg), an optional balance assertion, and a
// comment carrying its tags. A posting belongs to exactly one transaction.
type Posting struct {
	Account string
	Amount  *Amount
	Balance *Amount
	Comment Comment
}

// NewPosting creates a posting with an empty comment.
func NewPosting(account string) *Posting {
	return &Posting{Account: account, Comment: NewComment()}
}

// Fingerprints returns the posting's fingerprint tags sorted by name then
// value.
func (p *Posting) Fingerprints() []Fingerprint {
	var fps []Fingerprint
	for name, value := range p.Comment.Values {
		if IsFingerprint(name) {
			fps = append(fps, Fingerprint{Name: name, Value: value})
		}
	}
	sort.Slice(fps, func(i, j int) bool {
		if fps[i].Name != fps[j].Name {
			return fps[i].Name < fps[j].Name
		}
		return fps[i].Value < fps[j].Value
	})
	return fps
}

// HasFlag reports whether the posting carries the named flag tag.
func (p *Posting) HasFlag(name string) bool {
	return p.Comment.Flags[name]
}

// Clone deep-copies the posting, including its tags.
func (p *Posting) Clone() *Posting {
	out := &Posting{Account: p.Account, Comment: p.Comment.Clone()}
	if p.Amount != nil {
		a := *p.Amount
		out.Amount = &a
	}
	if p.Balance != nil {
		b := *p.Balance
		out.Balance = &b
	}
	return out
}

// Transaction is a dated, described set of postings. The date is immutable
// once set; posting order is stable unless a posting is removed.
type Transaction struct {
	Date        time.Time
	Status      string // "", "!", or "*"
	Code        string
	Description string
	Comment     Comment
	Postings    []*Posting
}

// NewTransaction creates an empty transaction.
func NewTransaction(date time.Time, description string) *Transaction {
	return &Transaction{Date: date, Description: description, Comment: NewComment()}
}

// AddPosting appends a posting to the transaction.
func (t *Transaction) AddPosting(p *Posting) {
	t.Postings = append(t.Postings, p)
}

// CloneHeader copies the transaction's date, status, code, description, and
// tags, but none of its postings.
func (t *Transaction) CloneHeader() *Transaction {
	return &Transaction{
		Date:        t.Date,
		Status:      t.Status,
		Code:        t.Code,
		Description: t.Description,
		Comment:     t.Comment.Clone(),
	}
}

// Journal is an ordered sequence of transactions. Uniqueness is enforced at
// the posting level via fingerprints, not on transactions.
type Journal struct {
	Transactions []*Transaction
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{}
}

// AddTransaction appends a transaction to the journal.
func (j *Journal) AddTransaction(t *Transaction) {
	j.Transactions = append(j.Transactions, t)
}
