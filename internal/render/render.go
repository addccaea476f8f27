// Package render builds the markdown documents returned as tool results.
//
// A Doc is append-only and deterministic: identical writes always produce
// byte-identical output. Section headers are the caller's responsibility to
// emit only when the underlying data is present.
package render

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

type Doc struct {
	b strings.Builder
}

func New(title string) *Doc {
	d := &Doc{}
	d.b.WriteString("# " + title + "\n")
	return d
}

// Section starts a new second-level section.
func (d *Doc) Section(name string) {
	d.b.WriteString("\n## " + name + "\n")
}

// Subsection starts a third-level section.
func (d *Doc) Subsection(name string) {
	d.b.WriteString("\n### " + name + "\n")
}

func (d *Doc) Linef(format string, a ...any) {
	fmt.Fprintf(&d.b, format+"\n", a...)
}

func (d *Doc) Bulletf(format string, a ...any) {
	fmt.Fprintf(&d.b, "- "+format+"\n", a...)
}

// Fieldf writes a bolded "**Label:** value" line, the house style for
// headline numbers.
func (d *Doc) Fieldf(label, format string, a ...any) {
	fmt.Fprintf(&d.b, "**%s:** "+format+"\n", append([]any{label}, a...)...)
}

func (d *Doc) Blank() {
	d.b.WriteString("\n")
}

func (d *Doc) String() string {
	return strings.TrimRight(d.b.String(), "\n") + "\n"
}

var htmlConverter = md.NewConverter("", true, nil)

// StripHTML converts HTML-bearing provider text (e.g. direction steps) into
// plain markdown. Text without markup passes through untouched; conversion
// failures fall back to a literal tag strip so rendering never raises.
func StripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	out, err := htmlConverter.ConvertString(s)
	if err != nil {
		return stripTags(s)
	}
	return strings.TrimSpace(strings.ReplaceAll(out, "\n\n", " "))
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
