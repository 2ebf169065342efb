// Package store reads and writes node trees as YAML documents and exports
// diff records as RFC 6902 JSON patches against those documents.
//
// A document describes one tree:
//
//	name: Player
//	behaviors:
//	  - type: Health
//	    properties:
//	      - {name: health, kind: int, value: 100}
//	      - {name: target, kind: ref, value: {node: Weapon, behavior: Gun}}
//	children:
//	  - name: Weapon
//
// Property kinds are the names of graph.Type. References name a node by its
// path from the document root, optionally a behavior type on that node and
// the ordinal of that behavior among those of the same type. Asset references
// are written {asset: location}. References are resolved once the whole tree
// is built, so they may point forward in the document.
//
// References to nodes outside the encoded tree cannot be expressed and are
// written as null.
package store
