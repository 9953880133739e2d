package merge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerfold-dev/ledgerfold/internal/ledgerfmt"
	"github.com/ledgerfold-dev/ledgerfold/internal/model"
)

func TestGroupBySource(t *testing.T) {
	journal, err := ledgerfmt.Parse(strings.NewReader(`
2024-01-01 A
    ; source-file: b.journal
    assets:checking  GBP 1
    ; fp-a.1.x: one

2024-01-02 B
    assets:checking  GBP 2
    ; fp-b.1.x: two

2024-01-03 C
    ; source-file: a.journal
    assets:checking  GBP 3
    ; fp-c.1.x: three
`), "test")
	require.NoError(t, err)

	groups := GroupBySource(journal, "default.journal")
	require.Len(t, groups, 3)

	// Groups come back sorted by source name.
	assert.Equal(t, "C", groups[0][0].Description)
	assert.Equal(t, "A", groups[1][0].Description)
	assert.Equal(t, "B", groups[2][0].Description)

	// The untagged transaction was annotated with the default source.
	assert.Equal(t, "default.journal", groups[2][0].Comment.Values[model.SourceFileTag])
}

func TestStripSources(t *testing.T) {
	journal := model.NewJournal()
	trn := model.NewTransaction(date(2024, 1, 1), "A")
	trn.Comment.Values[model.SourceFileTag] = "a.journal"
	journal.AddTransaction(trn)

	StripSources(journal)
	assert.NotContains(t, journal.Transactions[0].Comment.Values, model.SourceFileTag)
}
