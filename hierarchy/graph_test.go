package hierarchy

import (
	"testing"

	"github.com/poiesic/icdmap/icd10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	g, err := Build(icd10.BuiltinCatalog())
	require.NoError(t, err)

	rootIdx, ok := g.Lookup(RootKey)
	require.True(t, ok)
	root := g.Node(rootIdx)
	assert.Equal(t, KindRoot, root.Kind)
	assert.Equal(t, int32(-1), root.Parent)
	assert.NotEmpty(t, root.Children)

	// Every code climbs to the root through its prefixes and chapter.
	idx, ok := g.Lookup("E1152")
	require.True(t, ok)

	var chain []string
	for idx >= 0 {
		chain = append(chain, g.Node(idx).Key)
		idx = g.Node(idx).Parent
	}
	assert.Equal(t, []string{"E1152", "E115", "E11", "chapter:04", "root"}, chain)
}

func TestBuild_SynthesizesInteriorPrefixes(t *testing.T) {
	entries := []icd10.Entry{
		{Code: "J45", LongDesc: "Asthma"},
		{Code: "J45909", LongDesc: "Unspecified asthma, uncomplicated"},
	}

	g, err := Build(entries)
	require.NoError(t, err)

	// J4590 and J459 appear in no entry but are needed to connect J45909.
	for _, key := range []string{"J45909", "J4590", "J459", "J45"} {
		idx, ok := g.Lookup(key)
		require.True(t, ok, "missing node %s", key)
		assert.Equal(t, KindCode, g.Node(idx).Kind)
	}

	assert.Equal(t, []string{"J459"}, g.ChildrenOf("J45"))
	assert.Equal(t, []string{"J4590"}, g.ChildrenOf("J459"))
}

func TestBuild_Deterministic(t *testing.T) {
	a, err := Build(icd10.BuiltinCatalog())
	require.NoError(t, err)
	b, err := Build(icd10.BuiltinCatalog())
	require.NoError(t, err)

	require.Equal(t, a.Len(), b.Len())
	for i := 0; i < a.Len(); i++ {
		assert.Equal(t, a.Node(int32(i)).Key, b.Node(int32(i)).Key)
	}
}

func TestBuild_DuplicatesCollapse(t *testing.T) {
	entries := []icd10.Entry{
		{Code: "I10", LongDesc: "Essential (primary) hypertension"},
		{Code: "I10", LongDesc: "Essential (primary) hypertension"},
	}

	g, err := Build(entries)
	require.NoError(t, err)
	// root, chapter, one code node
	assert.Equal(t, 3, g.Len())
}

func TestBuild_Empty(t *testing.T) {
	_, err := Build(nil)
	assert.ErrorIs(t, err, ErrEmptyCodeSet)
}

func TestBuild_UnplaceableCode(t *testing.T) {
	// E95 has a valid shape but falls in the gap between chapters 4 and 5.
	_, err := Build([]icd10.Entry{{Code: "E95", LongDesc: "Nothing"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, icd10.ErrUnknownChapter)
}

func TestGraph_Codes(t *testing.T) {
	g, err := Build(icd10.BuiltinCatalog())
	require.NoError(t, err)

	codes := g.Codes()
	assert.NotEmpty(t, codes)
	for _, c := range codes {
		assert.NotEqual(t, RootKey, c)
		assert.NotContains(t, c, "chapter:")
	}
	assert.Contains(t, codes, "E1152")
	assert.Contains(t, codes, "J4590", "synthesized prefixes count as codes")
}

func TestGraph_Neighbors(t *testing.T) {
	g, err := Build(icd10.BuiltinCatalog())
	require.NoError(t, err)

	idx, ok := g.Lookup("E11")
	require.True(t, ok)

	degree := g.Degree(idx)
	require.Greater(t, degree, 1)

	// First neighbor is the parent, the rest are children.
	parent := g.Neighbor(idx, 0)
	assert.Equal(t, "chapter:04", g.Node(parent).Key)
	childKeys := make([]string, 0, degree-1)
	for j := 1; j < degree; j++ {
		childKeys = append(childKeys, g.Node(g.Neighbor(idx, j)).Key)
	}
	assert.Contains(t, childKeys, "E115")
	assert.Contains(t, childKeys, "E119")
}
