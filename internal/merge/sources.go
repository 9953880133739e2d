package merge

import (
	"sort"

	"github.com/ledgerfold-dev/ledgerfold/internal/model"
)

// GroupBySource splits a journal's transactions into per-source groups
// using the source-file transaction tag, defaulting it to defaultSource
// where absent. Each group should be merged as its own batch so postings
// from one statement run never match siblings from the same run. Groups
// come back sorted by source name for determinism.
func GroupBySource(journal *model.Journal, defaultSource string) [][]*model.Transaction {
	groups := make(map[string][]*model.Transaction)
	for _, trn := range journal.Transactions {
		source, ok := trn.Comment.Values[model.SourceFileTag]
		if !ok || source == "" {
			source = defaultSource
			trn.Comment.Values[model.SourceFileTag] = source
		}
		groups[source] = append(groups[source], trn)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([][]*model.Transaction, 0, len(names))
	for _, name := range names {
		out = append(out, groups[name])
	}
	return out
}

// StripSources removes source-file tags from merged output. Unmerged
// transactions keep theirs so the human resolving them has the context, and
// so a re-merge of the unmerged file still groups by original source.
func StripSources(journal *model.Journal) {
	for _, trn := range journal.Transactions {
		delete(trn.Comment.Values, model.SourceFileTag)
	}
}
