package policy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beadhub/beadhub/internal/store"
)

func TestDefaultBundleIsValidJSON(t *testing.T) {
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(DefaultBundle(), &parsed))
	assert.Contains(t, parsed, "invariants")
}

func TestDefaultBundleCopyComparesEqual(t *testing.T) {
	a := DefaultBundle()
	b := make([]byte, len(DefaultBundle()))
	copy(b, DefaultBundle())
	assert.True(t, store.BundlesEqual(a, b))
}
