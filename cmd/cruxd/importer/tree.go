// Package importer holds the staging tree used while importing or
// restructuring areas. Nodes live in an arena keyed by path string;
// parent and child links are arena keys, never live pointers.
package importer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cruxdb/cruxd/cmd/cruxd/identity"
	"github.com/cruxdb/cruxd/cmd/cruxd/models"
)

// Delimiter separates path segments in node keys
const Delimiter = "|"

// Node is one staged area. Key is the full delimited path from the
// sub-tree root ("Oregon|Central Oregon|Paulina Peak").
type Node struct {
	Key    string
	ID     uuid.UUID
	IsLeaf bool

	// Line is the raw source record; only leaf nodes carry one because
	// import files contain leaf data only.
	Line map[string]any

	Parent   string   // arena key, empty at the sub-tree root
	Children []string // arena keys, insertion order
}

// Name returns the node's own display name (last path segment)
func (n *Node) Name() string {
	if i := strings.LastIndex(n.Key, Delimiter); i >= 0 {
		return n.Key[i+1:]
	}
	return n.Key
}

// Tree stages a flat list of paths into a linked node arena. A tree may
// be created with a pre-existing root (sub-tree import into an existing
// country), in which case the root contributes the first path token and
// the first ancestor id.
type Tree struct {
	root  *Node
	arena map[string]*Node
	order []string
}

// New creates an empty tree with no pre-existing root
func New() *Tree {
	return &Tree{arena: make(map[string]*Node)}
}

// NewWithRoot creates a tree grafted under an existing node (for
// example a country already in the store)
func NewWithRoot(rootName string, rootID uuid.UUID) *Tree {
	return &Tree{
		root:  &Node{Key: rootName, ID: rootID},
		arena: make(map[string]*Node),
	}
}

// Root returns the pre-existing root, or nil
func (t *Tree) Root() *Node {
	return t.root
}

// Len returns the number of staged nodes (excluding a pre-existing root)
func (t *Tree) Len() int {
	return len(t.arena)
}

// InsertMany splits path on the delimiter and inserts every prefix
// left-to-right, so a node is never inserted before its ancestors.
// Re-inserting an existing path is a no-op. Intermediate segments are
// staged as containers; the terminal segment is staged as a leaf.
func (t *Tree) InsertMany(path string, line map[string]any) *Tree {
	tokens := strings.Split(path, Delimiter)
	acc := ""
	for i, tok := range tokens {
		if acc == "" {
			acc = tok
		} else {
			acc = acc + Delimiter + tok
		}
		t.insert(acc, i == len(tokens)-1, line)
	}
	return t
}

func (t *Tree) insert(key string, isLeaf bool, line map[string]any) {
	if _, ok := t.arena[key]; ok {
		return
	}

	node := &Node{Key: key, IsLeaf: isLeaf}
	if isLeaf {
		node.Line = line
	}

	if i := strings.LastIndex(key, Delimiter); i >= 0 {
		parentKey := key[:i]
		parent := t.arena[parentKey]
		if parent == nil {
			// InsertMany's left-to-right walk makes this unreachable;
			// a direct insert without prefixes would corrupt the arena.
			panic(fmt.Sprintf("importer: insert %q before its parent %q", key, parentKey))
		}
		parent.Children = append(parent.Children, key)
		node.Parent = parentKey
	}

	node.ID = identity.Resolve(t.pathTokens(key), isLeaf, sourceURL(line))
	t.arena[key] = node
	t.order = append(t.order, key)
}

// AtPath returns the staged node at path, or nil
func (t *Tree) AtPath(path string) *Node {
	return t.arena[path]
}

// Walk visits nodes in insertion order, which guarantees parents before
// children
func (t *Tree) Walk(fn func(*Node) error) error {
	for _, key := range t.order {
		if err := fn(t.arena[key]); err != nil {
			return err
		}
	}
	return nil
}

// Ancestors returns the root-to-node id chain, inclusive of the node.
// Every prefix of the node's key must already be staged; a missing
// prefix means the arena is corrupted.
func (t *Tree) Ancestors(node *Node) ([]uuid.UUID, error) {
	var chain []uuid.UUID
	if t.root != nil {
		chain = append(chain, t.root.ID)
	}

	tokens := strings.Split(node.Key, Delimiter)
	acc := ""
	for _, tok := range tokens {
		if acc == "" {
			acc = tok
		} else {
			acc = acc + Delimiter + tok
		}
		prefix := t.arena[acc]
		if prefix == nil {
			return nil, fmt.Errorf("%w: %q missing prefix %q", models.ErrCorruptPath, node.Key, acc)
		}
		chain = append(chain, prefix.ID)
	}
	return chain, nil
}

// PathTokens returns the node's display-name chain, root first. With a
// pre-existing root its name is prepended, mirroring Ancestors.
func (t *Tree) PathTokens(node *Node) []string {
	return t.pathTokens(node.Key)
}

func (t *Tree) pathTokens(key string) []string {
	tokens := strings.Split(key, Delimiter)
	if t.root == nil {
		return tokens
	}
	return append([]string{t.root.Key}, tokens...)
}

func sourceURL(line map[string]any) string {
	if line == nil {
		return ""
	}
	if u, ok := line["url"].(string); ok {
		return u
	}
	return ""
}
