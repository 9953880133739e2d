// Package merge folds source journals into a destination journal without
// duplicating, losing, or corrupting postings.
//
// Each source posting is resolved against the destination by fingerprint
// identity first, then by a soft match on date, amount, balance, and
// account. Exactly one match merges; zero appends; several divert the whole
// source transaction to the unmerged side journal for a human to resolve.
// Because every merged posting keeps its source fingerprints, re-merging
// any input yields the same journal.
package merge

import (
	"fmt"
	"sort"

	"github.com/ledgerfold-dev/ledgerfold/internal/model"
)

// InputError reports bad input to merge, including fingerprint-integrity
// violations.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "bad merge input: " + e.Reason
}

// Merger accumulates a destination journal across Merge calls.
type Merger struct {
	posts *indexedPostings
	trns  []trnHolder
	dates DateMatcher
}

// Option configures a Merger.
type Option func(*Merger)

// WithDateWindow widens soft-match date equality to ± days.
func WithDateWindow(days int) Option {
	return func(m *Merger) {
		if days > 0 {
			m.dates = windowDate{days: days}
		}
	}
}

// NewMerger creates an empty Merger with strict date matching.
func NewMerger(opts ...Option) *Merger {
	m := &Merger{
		posts: newIndexedPostings(),
		dates: strictDate{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type postPlanKind int

const (
	planAppend postPlanKind = iota
	planMergePost
)

type postPlan struct {
	post *model.Posting
	kind postPlanKind
	dest postIdx // valid for planMergePost
}

type trnPlanKind int

const (
	planNewTrn trnPlanKind = iota
	planMergeTrn
	planUnmergedTrn
)

type trnPlan struct {
	kind     trnPlanKind
	header   *model.Transaction
	dest     trnIdx // valid for planMergeTrn
	posts    []postPlan
	unmerged *model.Transaction // valid for planUnmergedTrn
}

// Merge folds the source transactions in. Decisions for the whole call are
// made against the destination as it stood before the call, then applied:
// source postings never match siblings from the same call. Transactions
// whose postings matched ambiguously are returned for human resolution
// instead of being merged.
func (m *Merger) Merge(src []*model.Transaction) ([]*model.Transaction, error) {
	plans, err := m.makePending(src)
	if err != nil {
		return nil, err
	}
	if err := checkPending(plans); err != nil {
		return nil, err
	}
	return m.applyPending(plans)
}

func (m *Merger) makePending(src []*model.Transaction) ([]trnPlan, error) {
	var plans []trnPlan
	// Fingerprints seen on postings so far in this call; a repeat within
	// one source batch means two postings claim one identity.
	seen := make(map[string]bool)

	for _, trn := range src {
		plan, err := m.planTransaction(trn, seen)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (m *Merger) planTransaction(src *model.Transaction, seen map[string]bool) (trnPlan, error) {
	if len(src.Postings) == 0 {
		// Nothing to match against: merging would re-add the transaction
		// on every run, so hand it back instead.
		header := src.CloneHeader()
		return trnPlan{kind: planUnmergedTrn, unmerged: header}, nil
	}

	header := src.CloneHeader()
	var posts []postPlan
	ambiguous := false

	for _, srcPost := range src.Postings {
		post := srcPost.Clone()

		for name := range post.Comment.Values {
			if model.IsCandidate(name) {
				return trnPlan{}, &InputError{Reason: fmt.Sprintf(
					"posting %q has a candidate tag; resolve and remove it before merging", post.Account)}
			}
		}
		for _, fp := range post.Fingerprints() {
			if seen[fp.Key()] {
				return trnPlan{}, &InputError{Reason: fmt.Sprintf(
					"multiple postings with the same fingerprint %q in one input set", fp.Key())}
			}
			seen[fp.Key()] = true
		}

		kind, idxs := m.posts.findMatching(post, src.Date, m.dates)
		switch kind {
		case matchFingerprint:
			if len(idxs) > 1 {
				return trnPlan{}, &InputError{Reason: fmt.Sprintf(
					"posting %q matches %d destination postings by fingerprint", post.Account, len(idxs))}
			}
			posts = append(posts, postPlan{post: post, kind: planMergePost, dest: idxs[0]})
		case matchSoft:
			if len(idxs) == 1 {
				posts = append(posts, postPlan{post: post, kind: planMergePost, dest: idxs[0]})
				break
			}
			// Ambiguous: record each candidate on the source posting and
			// divert the transaction.
			if len(post.Fingerprints()) == 0 {
				return trnPlan{}, &InputError{Reason: fmt.Sprintf(
					"posting %q matches %d destination postings but has no fingerprint to defer on",
					post.Account, len(idxs))}
			}
			for _, idx := range idxs {
				fp, err := m.primaryFingerprint(idx)
				if err != nil {
					return trnPlan{}, err
				}
				addCandidateTag(post, fp)
			}
			ambiguous = true
			posts = append(posts, postPlan{post: post, kind: planAppend})
		case matchZero:
			posts = append(posts, postPlan{post: post, kind: planAppend})
		}
	}

	if ambiguous {
		for _, plan := range posts {
			header.AddPosting(plan.post)
		}
		return trnPlan{kind: planUnmergedTrn, unmerged: header}, nil
	}

	dest, found, err := m.findExistingDestTrn(src, posts)
	if err != nil {
		return trnPlan{}, err
	}
	if found {
		return trnPlan{kind: planMergeTrn, header: header, dest: dest, posts: posts}, nil
	}
	return trnPlan{kind: planNewTrn, header: header, posts: posts}, nil
}

// findExistingDestTrn picks the default destination transaction: the parent
// of the postings that matched exactly one destination posting. Matches
// spread over several destination transactions would split the source
// transaction, which is an input error.
func (m *Merger) findExistingDestTrn(src *model.Transaction, posts []postPlan) (trnIdx, bool, error) {
	var candidates []trnIdx
	for _, plan := range posts {
		if plan.kind != planMergePost {
			continue
		}
		parent := m.posts.get(plan.dest).parent
		unique := true
		for _, have := range candidates {
			if have == parent {
				unique = false
				break
			}
		}
		if unique {
			candidates = append(candidates, parent)
		}
	}

	switch len(candidates) {
	case 0:
		return 0, false, nil
	case 1:
		return candidates[0], true, nil
	default:
		return 0, false, &InputError{Reason: fmt.Sprintf(
			"input transaction on %s (%q) matches %d existing transactions",
			src.Date.Format("2006-01-02"), src.Description, len(candidates))}
	}
}

// checkPending rejects batches where several source postings resolved to
// the same destination posting.
func checkPending(plans []trnPlan) error {
	counts := make(map[postIdx]int)
	for _, plan := range plans {
		if plan.kind == planUnmergedTrn {
			continue
		}
		for _, post := range plan.posts {
			if post.kind == planMergePost {
				counts[post.dest]++
			}
		}
	}
	for _, n := range counts {
		if n > 1 {
			return &InputError{Reason: fmt.Sprintf(
				"%d input postings match the same destination posting", n)}
		}
	}
	return nil
}

func (m *Merger) applyPending(plans []trnPlan) ([]*model.Transaction, error) {
	var unmerged []*model.Transaction
	for _, plan := range plans {
		switch plan.kind {
		case planUnmergedTrn:
			unmerged = append(unmerged, plan.unmerged)
		case planNewTrn:
			dest := m.addTransaction(plan.header)
			if err := m.applyPostPlans(dest, plan.posts); err != nil {
				return nil, err
			}
		case planMergeTrn:
			if err := m.applyPostPlans(plan.dest, plan.posts); err != nil {
				return nil, err
			}
		}
	}
	return unmerged, nil
}

func (m *Merger) applyPostPlans(dest trnIdx, posts []postPlan) error {
	for _, plan := range posts {
		switch plan.kind {
		case planAppend:
			idx, err := m.posts.add(plan.post, dest, m.trns[dest].trn.Date)
			if err != nil {
				return err
			}
			m.trns[dest].posts = append(m.trns[dest].posts, idx)
		case planMergePost:
			if err := m.posts.mergeInto(plan.dest, plan.post); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Merger) addTransaction(header *model.Transaction) trnIdx {
	idx := trnIdx(len(m.trns))
	m.trns = append(m.trns, trnHolder{trn: header})
	return idx
}

func (m *Merger) primaryFingerprint(idx postIdx) (model.Fingerprint, error) {
	holder := m.posts.get(idx)
	fps := holder.post.Fingerprints()
	if len(fps) == 0 {
		return model.Fingerprint{}, &InputError{Reason: fmt.Sprintf(
			"ambiguous match against destination posting %q which has no fingerprint",
			holder.post.Account)}
	}
	return fps[0], nil
}

// addCandidateTag records one candidate destination on a source posting.
// A second candidate sharing the fingerprint name gets a numbered tag name,
// since a posting holds one value per name.
func addCandidateTag(post *model.Posting, fp model.Fingerprint) {
	name := model.CandidatePrefix + fp.Name
	for n := 2; ; n++ {
		have, ok := post.Comment.Values[name]
		if !ok || have == fp.Value {
			break
		}
		name = fmt.Sprintf("%s%d-%s", model.CandidatePrefix, n, fp.Name)
	}
	post.Comment.Values[name] = fp.Value
}

// Build assembles the merged journal: transactions stably sorted by date,
// insertion order preserved within a date.
func (m *Merger) Build() *model.Journal {
	journal := model.NewJournal()
	for i := range m.trns {
		holder := &m.trns[i]
		trn := holder.trn
		trn.Postings = nil
		for _, idx := range holder.posts {
			trn.AddPosting(m.posts.get(idx).post)
		}
		journal.AddTransaction(trn)
	}
	sort.SliceStable(journal.Transactions, func(i, j int) bool {
		return journal.Transactions[i].Date.Before(journal.Transactions[j].Date)
	})
	return journal
}
