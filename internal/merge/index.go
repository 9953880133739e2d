package merge

import (
	"fmt"
	"time"

	"github.com/ledgerfold-dev/ledgerfold/internal/model"
)

const dateKeyFormat = "2006-01-02"

// postIdx and trnIdx are stable handles into the merger's arenas. Entries
// are never removed before Build, so a handle stays valid for the merger's
// lifetime.
type postIdx int
type trnIdx int

type postHolder struct {
	parent trnIdx
	post   *model.Posting
}

type trnHolder struct {
	trn   *model.Transaction // header only; postings live in the post arena
	posts []postIdx
}

// DateMatcher decides which destination dates a source posting may soft-match
// against. The default is strict equality; a windowed matcher admits nearby
// dates so delayed transfers do not duplicate.
type DateMatcher interface {
	CandidateDates(date time.Time) []time.Time
}

type strictDate struct{}

func (strictDate) CandidateDates(date time.Time) []time.Time {
	return []time.Time{date}
}

type windowDate struct{ days int }

func (w windowDate) CandidateDates(date time.Time) []time.Time {
	dates := make([]time.Time, 0, 2*w.days+1)
	for offset := -w.days; offset <= w.days; offset++ {
		dates = append(dates, date.AddDate(0, 0, offset))
	}
	return dates
}

// indexedPostings is the merger's posting arena plus its fingerprint and
// date indexes. The indexes are updated on every append and merge.
type indexedPostings struct {
	arena         []postHolder
	byFingerprint map[string]postIdx
	byDate        map[string][]postIdx
}

func newIndexedPostings() *indexedPostings {
	return &indexedPostings{
		byFingerprint: make(map[string]postIdx),
		byDate:        make(map[string][]postIdx),
	}
}

func (ix *indexedPostings) get(idx postIdx) *postHolder {
	return &ix.arena[idx]
}

// add appends a posting owned by parent, indexing it under date.
func (ix *indexedPostings) add(post *model.Posting, parent trnIdx, date time.Time) (postIdx, error) {
	idx := postIdx(len(ix.arena))
	ix.arena = append(ix.arena, postHolder{parent: parent, post: post})
	if err := ix.registerFingerprints(post.Fingerprints(), idx); err != nil {
		return 0, err
	}
	key := date.Format(dateKeyFormat)
	ix.byDate[key] = append(ix.byDate[key], idx)
	return idx, nil
}

// registerFingerprints claims fingerprints for idx. A fingerprint already
// claimed by a different posting is a fingerprint-integrity error.
func (ix *indexedPostings) registerFingerprints(fps []model.Fingerprint, idx postIdx) error {
	for _, fp := range fps {
		existing, ok := ix.byFingerprint[fp.Key()]
		if ok && existing != idx {
			return &InputError{Reason: fmt.Sprintf(
				"multiple postings claiming fingerprint %q added or merged", fp.Key())}
		}
		ix.byFingerprint[fp.Key()] = idx
	}
	return nil
}

type matchKind int

const (
	matchZero matchKind = iota
	matchFingerprint
	matchSoft
)

// findMatching runs Existing Posting Lookup for a source posting: a
// fingerprint match first, then the soft-match fallback over the candidate
// dates. Returned indices are deduplicated; soft matches are listed by
// candidate date, then in destination order within a date.
func (ix *indexedPostings) findMatching(post *model.Posting, date time.Time, dates DateMatcher) (matchKind, []postIdx) {
	var byFp []postIdx
	for _, fp := range post.Fingerprints() {
		if idx, ok := ix.byFingerprint[fp.Key()]; ok {
			byFp = appendUnique(byFp, idx)
		}
	}
	if len(byFp) > 0 {
		return matchFingerprint, byFp
	}

	var soft []postIdx
	for _, candidate := range dates.CandidateDates(date) {
		for _, idx := range ix.byDate[candidate.Format(dateKeyFormat)] {
			if ix.softMatches(idx, post) {
				soft = appendUnique(soft, idx)
			}
		}
	}
	if len(soft) > 0 {
		return matchSoft, soft
	}
	return matchZero, nil
}

// softMatches applies the soft-match criteria other than the date, which the
// caller has already filtered on: equal amounts, equal balances when both
// sides have one, and equal accounts when neither side is unknown-account.
func (ix *indexedPostings) softMatches(idx postIdx, src *model.Posting) bool {
	dest := ix.get(idx).post

	if !amountsEqual(dest.Amount, src.Amount) {
		return false
	}
	if dest.Balance != nil && src.Balance != nil && !dest.Balance.Equal(*src.Balance) {
		return false
	}
	if !dest.HasFlag(model.UnknownAccountTag) && !src.HasFlag(model.UnknownAccountTag) &&
		dest.Account != src.Account {
		return false
	}
	return true
}

// mergeInto folds a source posting into the destination posting at idx.
func (ix *indexedPostings) mergeInto(idx postIdx, src *model.Posting) error {
	dest := ix.get(idx).post

	// Two identities claiming one posting: a fingerprint name present on
	// both sides must carry the same value.
	for _, fp := range src.Fingerprints() {
		if have, ok := dest.Comment.Values[fp.Name]; ok && have != fp.Value {
			return &InputError{Reason: fmt.Sprintf(
				"conflicting values for fingerprint %q on merged posting %q: %q vs %q",
				fp.Name, dest.Account, have, fp.Value)}
		}
	}
	if err := ix.registerFingerprints(src.Fingerprints(), idx); err != nil {
		return err
	}

	if dest.Balance == nil && src.Balance != nil {
		b := *src.Balance
		dest.Balance = &b
	}

	if dest.HasFlag(model.UnknownAccountTag) && !src.HasFlag(model.UnknownAccountTag) {
		delete(dest.Comment.Flags, model.UnknownAccountTag)
		dest.Account = src.Account
	}
	delete(src.Comment.Flags, model.UnknownAccountTag)

	dest.Comment.MergeFrom(src.Comment)
	return nil
}

func amountsEqual(a, b *model.Amount) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func appendUnique(idxs []postIdx, idx postIdx) []postIdx {
	for _, have := range idxs {
		if have == idx {
			return idxs
		}
	}
	return append(idxs, idx)
}
