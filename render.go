package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"mbtrace/pkg/decoder"
)

// renderer prints annotations one per line, with times relative to the
// first annotation seen. Errors are colored red when writing to a
// terminal.
type renderer struct {
	w        io.Writer
	color    bool
	base     int64
	haveBase bool
}

func newRenderer(w io.Writer) *renderer {
	color := false
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		color = true
		enableTerminalColor()
	}
	return &renderer{w: w, color: color}
}

func (r *renderer) Put(a decoder.Annotation) {
	if !r.haveBase {
		r.base = a.Start
		r.haveBase = true
	}
	line := fmt.Sprintf("%12.6f %12.6f  %-16s %s",
		float64(a.Start-r.base)/1e9,
		float64(a.End-r.base)/1e9,
		a.Class, a.Text)
	if r.color && a.Class.IsError() {
		line = "\x1b[31m" + line + "\x1b[0m"
	}
	fmt.Fprintln(r.w, line)
}
