// Package objdiff computes the differences between a live instance node and
// the template node it was created from, and applies chosen differences back
// to the template.
//
// # Records
//
// Compute returns a list of Records. Each Record is independently applicable
// and has one of four kinds:
//
//   - Delete: a behavior of the template has no counterpart on the instance
//   - Add: a behavior type of the instance is missing from the template
//   - Property: a property of a matched behavior pair differs
//   - New: the instance node has no template counterpart at all
//
// A Record is identified by its ID (kind, subject behavior, property path),
// which is stable across recomputation as long as the instance graph is the
// same, so callers can keep selection state keyed by ID while recomputing the
// records on every interaction.
//
// # Matching
//
// Behaviors are paired by type. When the instance has a single behavior of a
// type it is the counterpart of every template behavior of that type;
// otherwise the template behavior at ordinal i among its type is paired with
// the instance behavior at i modulo the instance count.
//
// Properties are matched by path. Names in the blacklist (internal
// bookkeeping) are skipped along with their whole subtree. Generic
// properties are never compared themselves, only descended into.
//
// # References
//
// References to assets, and null references, compare by identity. References
// to nodes or behaviors of the instance graph are compared by path from the
// respective roots and re-pointed at the equivalent template object when
// applied. A reference that cannot be mapped into the template is left
// untouched and reported equal.
//
// # Mutation
//
// Compute and Describe never mutate either graph. Apply mutates the template
// graph inside a graph.Graph.Edit and is idempotent.
package objdiff
