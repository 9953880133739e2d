// Package fingerprint builds the stable cross-run identities attached to
// imported postings as fp-* value tags.
//
// Tag names follow the grammar fp-<algo>.<version>.<userlabel>. Values are
// base64 (unpadded) of a sha1 over length-prefixed source-record fields, so
// the same record always produces the same tag on every import run.
package fingerprint

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"hash"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerfold-dev/ledgerfold/internal/model"
)

// Builder accumulates length-prefixed field values into a fingerprint.
type Builder struct {
	hash hash.Hash
	name string
}

// New creates a Builder for the given algorithm family, revision, and
// operator-chosen label.
func New(algo string, version int, label string) *Builder {
	return &Builder{
		hash: sha1.New(),
		name: fmt.Sprintf("%s%s.%d.%s", model.FingerprintPrefix, algo, version, label),
	}
}

func (b *Builder) bytes(v []byte) *Builder {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(v)))
	b.hash.Write(buf[:])
	b.hash.Write(v)
	return b
}

// String adds a string field.
func (b *Builder) String(s string) *Builder {
	return b.bytes([]byte(s))
}

// Int64 adds an integer field.
func (b *Builder) Int64(v int64) *Builder {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	return b.bytes(buf[:])
}

// Date adds a calendar date field.
func (b *Builder) Date(t time.Time) *Builder {
	return b.String(t.Format("2006-01-02"))
}

// Decimal adds an exact decimal field.
func (b *Builder) Decimal(d decimal.Decimal) *Builder {
	return b.String(d.String())
}

// Amount adds an amount field: quantity then commodity.
func (b *Builder) Amount(a model.Amount) *Builder {
	return b.Decimal(a.Quantity).String(a.Commodity.Name)
}

// Build returns the finished fingerprint tag.
func (b *Builder) Build() model.Fingerprint {
	sum := b.hash.Sum(nil)
	return model.Fingerprint{
		Name:  b.name,
		Value: base64.RawStdEncoding.EncodeToString(sum),
	}
}

// NewUUID returns a freshly generated default fingerprint for postings that
// lack one. Unlike Builder fingerprints it is random, not derived from the
// record.
func NewUUID(label string) model.Fingerprint {
	return model.Fingerprint{
		Name:  fmt.Sprintf("%suuid.1.%s", model.FingerprintPrefix, label),
		Value: uuid.NewString(),
	}
}
