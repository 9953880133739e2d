// Package importer converts bank statement exports into journal
// transactions tagged with importer fingerprints.
package importer

import (
	"io"
	"sort"
	"strings"

	"github.com/ledgerfold-dev/ledgerfold/internal/model"
)

// Accounts postings are filed under until rules classify them.
const (
	assetsUnknown   = "assets:unknown"
	expensesUnknown = "expenses:unknown"
	incomeUnknown   = "income:unknown"
)

// Options carries operator settings shared by importers.
type Options struct {
	// Label is the operator-chosen fingerprint namespace label, typically a
	// bank-account nickname.
	Label string
}

// Importer converts one statement format into journal transactions.
type Importer interface {
	// Name is the format name used to select the importer.
	Name() string
	// Import reads source records and returns a journal of transactions
	// whose postings carry freshly built fingerprints.
	Import(r io.Reader, opts Options) (*model.Journal, error)
}

// Registry holds named importers.
type Registry struct {
	importers map[string]Importer
}

// NewRegistry creates an empty importer registry.
func NewRegistry() *Registry {
	return &Registry{importers: make(map[string]Importer)}
}

// Register adds an importer. Panics on duplicate name.
func (r *Registry) Register(imp Importer) {
	key := strings.ToLower(imp.Name())
	if _, ok := r.importers[key]; ok {
		panic("duplicate importer name: " + key)
	}
	r.importers[key] = imp
}

// Get returns the importer for name, or nil.
func (r *Registry) Get(name string) Importer {
	return r.importers[strings.ToLower(name)]
}

// Names returns the registered importer names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.importers))
	for name := range r.importers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with all built-in importers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&NationwideCSV{})
	r.Register(&PayPalCSV{})
	return r
}
