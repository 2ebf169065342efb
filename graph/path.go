package graph

import "strings"

// Separator separates node names in a node path.
const Separator = "/"

// PathBetween returns the path from ancestor down to node, walking parent
// links upward from node. The empty path means node is ancestor. The boolean
// is false when ancestor is not an ancestor of node (or either is nil).
func PathBetween(node, ancestor *Node) (string, bool) {
	if node == nil || ancestor == nil {
		return "", false
	}
	var names []string
	for n := node; n != nil; n = n.Parent() {
		if n == ancestor {
			for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
				names[i], names[j] = names[j], names[i]
			}
			return strings.Join(names, Separator), true
		}
		names = append(names, n.Name)
	}
	return "", false
}

// Resolve descends from root following path and returns the node found, or
// nil when a segment has no matching child. The empty path resolves to root.
func Resolve(root *Node, path string) *Node {
	if root == nil {
		return nil
	}
	if path == "" {
		return root
	}
	n := root
	for _, seg := range strings.Split(path, Separator) {
		n = n.Child(seg)
		if n == nil {
			return nil
		}
	}
	return n
}

// ParentPath returns path without its last segment, or the empty path when
// there is no parent segment.
func ParentPath(path string) string {
	path = strings.TrimRight(path, Separator)
	i := strings.LastIndex(path, Separator)
	if i > 0 {
		return path[:i]
	}
	return ""
}

// JoinPath joins non-empty segments with Separator.
func JoinPath(segs ...string) string {
	res := make([]string, 0, len(segs))
	for _, s := range segs {
		if s != "" {
			res = append(res, s)
		}
	}
	return strings.Join(res, Separator)
}
