package store

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/signadot/prefabdiff/graph"
)

// Marshal encodes the tree below root as a YAML document.
func Marshal(root *graph.Node, opts ...Option) ([]byte, error) {
	o := makeOptions(opts)
	e := &encoder{root: root, log: o.log}
	return yaml.Marshal(e.node(root))
}

// Encode writes the tree below root to w as a YAML document.
func Encode(w io.Writer, root *graph.Node, opts ...Option) error {
	d, err := Marshal(root, opts...)
	if err != nil {
		return err
	}
	_, err = w.Write(d)
	return err
}

// Unmarshal decodes a YAML document into a new graph and returns its root.
// JSON documents are accepted as well.
func Unmarshal(data []byte, opts ...Option) (*graph.Node, error) {
	doc := &nodeDoc{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadDocument, err)
	}
	o := makeOptions(opts)
	d := &decoder{log: o.log}
	return d.build(doc)
}

// Decode reads a YAML document from r into a new graph and returns its root.
func Decode(r io.Reader, opts ...Option) (*graph.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data, opts...)
}

// marshalJSON encodes the tree below root as a JSON document.
func marshalJSON(root *graph.Node, o *options) ([]byte, error) {
	e := &encoder{root: root, log: o.log}
	return toJSON(e.node(root))
}

func toJSON(v any) ([]byte, error) {
	return yaml.MarshalWithOptions(v, yaml.JSON())
}
