package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the Enlyst ASCII banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  _____       _           _   ", "#34d399"},
		{" | ____|_ __ | |_   _ ___| |_ ", "#2dd4bf"},
		{" |  _| | '_ \\| | | | / __| __|", "#22d3ee"},
		{" | |___| | | | | |_| \\__ \\ |_ ", "#38bdf8"},
		{" |_____|_| |_|_|\\__, |___/\\__|", "#60a5fa"},
		{"                |___/         ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
