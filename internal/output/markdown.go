package output

import "strings"

// Markdown accumulates an ordered sequence of opaque text blocks and
// renders them into one document. Blocks are joined with blank lines;
// the sink never inspects their contents.
type Markdown struct {
	blocks []string
}

// NewMarkdown returns an empty document.
func NewMarkdown() *Markdown {
	return &Markdown{}
}

// Add appends one block to the document.
func (m *Markdown) Add(block string) {
	m.blocks = append(m.blocks, block)
}

// Clone returns an independent copy; the orchestrator clones the shared
// preamble once per category.
func (m *Markdown) Clone() *Markdown {
	c := &Markdown{blocks: make([]string, len(m.blocks))}
	copy(c.blocks, m.blocks)
	return c
}

// Len reports the number of blocks added so far.
func (m *Markdown) Len() int {
	return len(m.blocks)
}

// Finish renders the document to a single string with a trailing
// newline.
func (m *Markdown) Finish() string {
	return strings.Join(m.blocks, "\n\n") + "\n"
}
