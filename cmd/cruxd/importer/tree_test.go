package importer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruxdb/cruxd/cmd/cruxd/identity"
)

func TestTreeInsertMany(t *testing.T) {
	tree := New()
	tree.InsertMany("Oregon|Central Oregon|Smith Rock", map[string]any{"url": ""})

	require.Equal(t, 3, tree.Len())

	leaf := tree.AtPath("Oregon|Central Oregon|Smith Rock")
	require.NotNil(t, leaf)
	assert.True(t, leaf.IsLeaf)
	assert.Equal(t, "Smith Rock", leaf.Name())
	assert.Equal(t, "Oregon|Central Oregon", leaf.Parent)

	mid := tree.AtPath("Oregon|Central Oregon")
	require.NotNil(t, mid)
	assert.False(t, mid.IsLeaf)
	assert.Equal(t, []string{"Oregon|Central Oregon|Smith Rock"}, mid.Children)

	root := tree.AtPath("Oregon")
	require.NotNil(t, root)
	assert.Empty(t, root.Parent)
}

func TestTreeInsertMany_SharedPrefix(t *testing.T) {
	tree := New()
	tree.InsertMany("Oregon|Central Oregon|Smith Rock", nil)
	tree.InsertMany("Oregon|Central Oregon|Paulina Peak", nil)

	assert.Equal(t, 4, tree.Len())
	mid := tree.AtPath("Oregon|Central Oregon")
	require.NotNil(t, mid)
	assert.Len(t, mid.Children, 2)

	// re-inserting is a no-op
	tree.InsertMany("Oregon|Central Oregon|Smith Rock", nil)
	assert.Equal(t, 4, tree.Len())
	assert.Len(t, mid.Children, 2)
}

func TestTreeWalk_ParentsFirst(t *testing.T) {
	tree := New()
	tree.InsertMany("Utah|Moab|Wall Street", nil)
	tree.InsertMany("Utah|Little Cottonwood", nil)

	seen := map[string]bool{}
	err := tree.Walk(func(n *Node) error {
		if n.Parent != "" {
			assert.True(t, seen[n.Parent], "parent %q must be visited before %q", n.Parent, n.Key)
		}
		seen[n.Key] = true
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 4)
}

func TestTreeWithRoot(t *testing.T) {
	usa := identity.FromCountryCode("USA")
	tree := NewWithRoot("USA", usa)
	tree.InsertMany("Nevada|Red Rocks", nil)

	leaf := tree.AtPath("Nevada|Red Rocks")
	require.NotNil(t, leaf)

	// path tokens and ancestors include the grafted root
	assert.Equal(t, []string{"USA", "Nevada", "Red Rocks"}, tree.PathTokens(leaf))

	chain, err := tree.Ancestors(leaf)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, usa, chain[0])
	assert.Equal(t, leaf.ID, chain[2])

	// ids hash the full path including the root name
	assert.Equal(t, identity.FromPath("USA", "Nevada", "Red Rocks"), leaf.ID)
}

func TestTreeSourceURLIdentity(t *testing.T) {
	tree := New()
	tree.InsertMany("Oregon|Smith Rock", map[string]any{
		"url": "https://www.mountainproject.com/area/105788989/smith-rock",
	})

	leaf := tree.AtPath("Oregon|Smith Rock")
	require.NotNil(t, leaf)

	want, ok := identity.FromSourceURL("https://www.mountainproject.com/area/105788989/smith-rock")
	require.True(t, ok)
	assert.Equal(t, want, leaf.ID)

	// the container still hashes its path
	assert.Equal(t, identity.FromPath("Oregon"), tree.AtPath("Oregon").ID)
}

func TestTreeAncestors_SelfInclusive(t *testing.T) {
	tree := New()
	tree.InsertMany("Spain|Catalunya|Siurana", nil)

	node := tree.AtPath("Spain|Catalunya")
	chain, err := tree.Ancestors(node)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{
		identity.FromPath("Spain"),
		identity.FromPath("Spain", "Catalunya"),
	}, chain)
}
