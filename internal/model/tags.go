package model

import "strings"

// Tag names and prefixes shared across importers, rules, and merging.
const (
	// AccountTag holds the bank-provided account name.
	AccountTag = "account"
	// BankTag holds the bank identifier set by the importer.
	BankTag = "bank"
	// TrnTypeTag holds the bank-provided transaction type.
	TrnTypeTag = "trn_type"
	// SourceFileTag marks which input file a transaction came from.
	SourceFileTag = "source-file"

	// ImportSelfTag flags the posting for the account whose statement is
	// being imported.
	ImportSelfTag = "import-self"
	// ImportPeerTag flags the balancing posting against another account.
	ImportPeerTag = "import-peer"
	// UnknownAccountTag flags a posting whose account name is a placeholder.
	UnknownAccountTag = "unknown-account"

	// FingerprintPrefix starts the name of every fingerprint value tag.
	// The name and value must be identical on each re-import of the same
	// source record.
	FingerprintPrefix = "fp-"
	// CandidatePrefix starts candidate tags added to ambiguous postings
	// during merging.
	CandidatePrefix = "candidate-"
)

// IsFingerprint reports whether name is a fingerprint tag name.
func IsFingerprint(name string) bool {
	return strings.HasPrefix(name, FingerprintPrefix)
}

// IsCandidate reports whether name is a merge candidate tag name.
func IsCandidate(name string) bool {
	return strings.HasPrefix(name, CandidatePrefix)
}
