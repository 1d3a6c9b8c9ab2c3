package main

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
)

// renderBanner prints an ASCII-art title ahead of sweep progress. It goes to
// the diagnostic stream so that piped results stay clean.
func renderBanner(w io.Writer, title string) {
	myFigure := figure.NewFigure("fftbench", "", true)
	fmt.Fprintln(w, myFigure.String())
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, "-----------------------------------------------")
}
