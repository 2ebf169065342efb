package main

import (
	"fmt"
	"io"
	"os"

	"github.com/signadot/prefabdiff/objdiff"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type sprintf func(string, ...any) string

// palette colors rows by record kind: deletions red, additions green and
// property changes uncolored.
type palette struct {
	del, add, prop sprintf
}

func newPalette(w io.Writer, force bool) *palette {
	p := &palette{del: fmt.Sprintf, add: fmt.Sprintf, prop: fmt.Sprintf}
	if !force {
		f, ok := w.(*os.File)
		if !ok || !isatty.IsTerminal(f.Fd()) {
			return p
		}
	}
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	red.EnableColor()
	green.EnableColor()
	p.del = red.SprintfFunc()
	p.add = green.SprintfFunc()
	return p
}

func (p *palette) kind(k objdiff.Kind) sprintf {
	switch k {
	case objdiff.Delete:
		return p.del
	case objdiff.Add, objdiff.New:
		return p.add
	}
	return p.prop
}
