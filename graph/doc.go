// Package graph provides the object graph model compared and patched by
// prefabdiff.
//
// # Overview
//
// A Graph is an arena of Nodes. Each Node has a name, an ordered list of
// children, a parent link and a list of attached Behaviors. Parent and child
// links are indices into the owning Graph's arena, so a Node never owns its
// parent.
//
// Two graphs are normally alive at the same time: the instance graph (the live,
// edited object) and the template graph (the persisted reference). Nodes are
// correlated across graphs only by their path from a designated root; there is
// no stable identifier shared between graphs.
//
// # Behaviors and Properties
//
// A Behavior is a typed bundle of Properties. A Property is a tagged union: the
// Type field selects which value field is meaningful, much like a JSON value.
// GenericType properties hold nested Children and no value of their own.
//
// Property paths are the names from the behavior down to the property joined
// by ".", e.g. "stats.armor".
//
// # Paths
//
// Node paths are names joined by "/". The empty path denotes the root itself:
//
//	p, ok := graph.PathBetween(node, root) // "Body/Arm", true
//	n := graph.Resolve(root, p)            // node
//
// # Edits
//
// Mutations performed through Graph.Edit are grouped: the graph revision is
// bumped once when the outermost Edit returns, whatever the number of changes.
//
// # Thread Safety
//
// Graphs are not safe for concurrent use.
package graph
