package upload

import (
	"fmt"
	"io"
	"sync"
)

// TextDisplay is an in-memory text node. Writers are not ordered: the last Show wins.
type TextDisplay struct {
	mu      sync.Mutex
	text    string
	updates int
}

func NewTextDisplay(initial string) *TextDisplay {
	return &TextDisplay{text: initial}
}

func (d *TextDisplay) Show(text string) {
	d.mu.Lock()
	d.text = text
	d.updates++
	d.mu.Unlock()
}

func (d *TextDisplay) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

// Updates counts Show calls.
func (d *TextDisplay) Updates() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.updates
}

// WriterDisplay prints each update as one line, e.g. to stdout.
type WriterDisplay struct {
	mu sync.Mutex
	W  io.Writer
}

func NewWriterDisplay(w io.Writer) *WriterDisplay { return &WriterDisplay{W: w} }

func (d *WriterDisplay) Show(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, _ = fmt.Fprintln(d.W, text)
}

type DisplayFunc func(text string)

func (f DisplayFunc) Show(text string) { f(text) }
