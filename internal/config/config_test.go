package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerfold-dev/ledgerfold/internal/rules"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, rules.DefaultStepBudget, cfg.Rules.StepBudget)
	assert.Equal(t, 0, cfg.Merge.WindowDays)
}

func TestLoadOptionalMissingFile(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "ledgerfold.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledgerfold.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  step_budget: 500\nmerge:\n  window_days: 3\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Rules.StepBudget)
	assert.Equal(t, 3, cfg.Merge.WindowDays)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledgerfold.yaml")
	require.NoError(t, os.WriteFile(path, []byte("merge:\n  window_days: 2\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, rules.DefaultStepBudget, cfg.Rules.StepBudget)
	assert.Equal(t, 2, cfg.Merge.WindowDays)
}

func TestSaveRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledgerfold.yaml")
	cfg := &Config{
		Rules: RulesConfig{StepBudget: 123},
		Merge: MergeConfig{WindowDays: 4},
	}
	require.NoError(t, Save(path, cfg))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledgerfold.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [not, a, mapping"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
