package prompt

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Builder assembles a prompt from blocks separated by blank lines.
type Builder struct {
	blocks []string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends free text.
func (b *Builder) Add(text string) *Builder {
	b.blocks = append(b.blocks, text)
	return b
}

// AddSection appends a "## header" section.
func (b *Builder) AddSection(header, content string) *Builder {
	return b.Add("## " + header + "\n\n" + content)
}

// AddList appends a bulleted list, with a section header when one is given.
func (b *Builder) AddList(header string, items []string) *Builder {
	var list string
	if len(items) > 0 {
		list = "- " + strings.Join(items, "\n- ")
	}
	if header == "" {
		return b.Add(list)
	}
	return b.AddSection(header, list)
}

// AddFile appends content wrapped in a <file path="..."> tag.
func (b *Builder) AddFile(path, content string) *Builder {
	return b.Add(fmt.Sprintf("<file path=%q>\n%s\n</file>", path, strings.TrimRight(content, "\n")))
}

// AddFiles appends every file, ordered by path.
func (b *Builder) AddFiles(files map[string]string) *Builder {
	for _, path := range slices.Sorted(maps.Keys(files)) {
		b.AddFile(path, files[path])
	}
	return b
}

// Build joins the blocks.
func (b *Builder) Build() string {
	return strings.Join(b.blocks, "\n\n")
}
