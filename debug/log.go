package debug

import (
	"fmt"
	"os"

	"github.com/signadot/prefabdiff/graph"
)

// Logf writes a debug line to stderr. Nodes and behaviors are rendered by
// their path from the root of their graph.
func Logf(msg string, args ...any) {
	for i := range args {
		switch x := args[i].(type) {
		case *graph.Node:
			if x == nil {
				args[i] = "<nil>"
				continue
			}
			args[i] = x.Root().Name + "/" + x.Path()
		case *graph.Behavior:
			if n := x.Node(); n != nil {
				args[i] = n.Root().Name + "/" + n.Path() + ":" + x.Type
				continue
			}
			args[i] = fmt.Sprintf("%v", x)
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}
