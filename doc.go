/*
Package fdict implements a nested dictionary on top of a flat key-value
store. Every leaf lives under one flat key made of its path segments joined
with a delimiter ("a/b/c"), so reading or writing a leaf is a single lookup
no matter how deep it is.

	v, _ := fdict.New(map[string]any{"a": map[string]any{"b": 1}}, fdict.Options{})
	v.Set("a/c", 2)
	sub, _ := v.Get("a")        // a View rooted at "a"
	b, _ := sub.(fdict.View).Get("b") // 1, same as v.Get("a/b")

We implement:

1. Views, lightweight handles (root path + shared store) that are handed out
when navigating into a node. No data is copied when navigating.

2. Three modes with different costs for node-level operations (see Mode).

3. Pluggable backends: in-memory (default), Bolt and a portable snapshot
file (see Open).

# Technical Details

**Conflicts.**
A path can be a leaf and a node at the same time: setting a scalar at "b"
does not remove "b/c". Get returns the leaf, Node and the iterators still
reach the descendants, and ToNested keeps both (the leaf under LeafKey).

**Default mode**
keeps nothing but leaves. Node existence, subtree deletion and iteration
scan the whole store.

**FastView mode**
keeps, in memory, the direct leaf and node children of every node that has
leaves below it. Setting a leaf costs O(depth); node operations cost
O(subtree). The tables are rebuilt from the backend when a persistent store
is reopened.

**NoDel mode**
writes a marker under "node/" (the node path plus the delimiter) for every
node. Markers make node existence O(1) and are never removed, so deletion
is refused. Leaf keys can never end in the delimiter (empty segments are
rejected), and every mode skips marker keys, so a store built in NoDel mode
can be reopened, or converted with View.Convert, in another mode.

## Persistent encoding

**Bolt.** One bucket, flat keys as Bolt keys. Opened with NoSync; Sync and
Close flush. Writeback mode keeps decoded values in memory until Sync.

**Value**: tag byte (0 marker, 1 msgpack, 2 JSON), then the encoded value.

**Snapshot file**: magic, entry count (uvarint), then key and value as
uvarint-prefixed byte strings, then an xxhash64 checksum of everything
before it. Rewritten atomically on Sync.
*/
package fdict
