// Package booklet turns the note collection into a paginated A5 PDF: a table
// of contents linking to every note, then one page group per note.
//
// Generation is two steps. Build lays the whole document out as an ordered
// slice of blocks without touching PDF state; Render draws that slice in a
// single pass.
package booklet

import (
	"fmt"
	"slices"
	"strings"

	"github.com/starford/folio/internal/models"
)

// TOCLayout selects how the two table-of-contents columns are ordered.
type TOCLayout string

const (
	// TOCPaired sorts notes once by title; each row shows one note's title
	// and author.
	TOCPaired TOCLayout = "paired"
	// TOCIndependent sorts the title and author columns separately, so a
	// row's two cells generally belong to different notes.
	TOCIndependent TOCLayout = "independent"
)

// Layout defaults.
const (
	DefaultTabWidth      = 8
	DefaultMaxLineLength = 50
)

// Options configures document generation.
type Options struct {
	TOC           TOCLayout
	TabWidth      int
	MaxLineLength int
	// FontPath and BoldFontPath name UTF-8 TrueType fonts. When FontPath is
	// empty the core Courier font is used with cp1252 text.
	FontPath     string
	BoldFontPath string
}

func (o Options) withDefaults() Options {
	if o.TOC == "" {
		o.TOC = TOCPaired
	}
	if o.TabWidth <= 0 {
		o.TabWidth = DefaultTabWidth
	}
	if o.MaxLineLength <= 0 {
		o.MaxLineLength = DefaultMaxLineLength
	}
	return o
}

// Block is one element of the laid-out document.
type Block interface {
	block()
}

// Align values for Paragraph.
const (
	AlignLeft   = "L"
	AlignCenter = "C"
)

// Paragraph is a wrapped run of text. Anchor, when set, marks the paragraph
// as a link target; Link makes the text an external hyperlink.
type Paragraph struct {
	Text   string
	Size   float64
	Bold   bool
	Align  string
	Anchor string
	Link   string
}

// Rule is a horizontal line across the text column.
type Rule struct{}

// Spacer is vertical blank space, in points.
type Spacer struct {
	Height float64
}

// Preformatted is monospaced text drawn line by line, without wrapping.
type Preformatted struct {
	Lines []string
	Size  float64
}

// Entry is one table-of-contents cell.
type Entry struct {
	Anchor string
	Label  string
}

// TOCRow pairs a title cell with an author cell.
type TOCRow struct {
	Title  Entry
	Author Entry
}

// TOC is the table-of-contents grid.
type TOC struct {
	Header [2]string
	Rows   []TOCRow
}

// PageBreak ends the current page. Consecutive or trailing breaks do not
// produce blank pages.
type PageBreak struct{}

func (Paragraph) block()    {}
func (Rule) block()         {}
func (Spacer) block()       {}
func (Preformatted) block() {}
func (TOC) block()          {}
func (PageBreak) block()    {}

// oneLinerGap is the space between the one-liner and its closing rule (4mm).
const oneLinerGap = 4 * 72 / 25.4

// AnchorName returns the link target name for the note at position.
func AnchorName(position int) string {
	return fmt.Sprintf("note-%d", position)
}

// Build lays out the document for notes: the table of contents followed by
// each note in collection order.
func Build(notes []models.Note, opts Options) []Block {
	opts = opts.withDefaults()

	blocks := []Block{
		Paragraph{Text: "Table of content", Size: 14, Bold: true, Align: AlignCenter},
		Paragraph{Text: "ordered by", Size: 10, Align: AlignCenter},
		buildTOC(notes, opts.TOC),
		PageBreak{},
	}
	for i, n := range notes {
		blocks = append(blocks, notePage(n, i, opts)...)
	}
	return blocks
}

func buildTOC(notes []models.Note, layout TOCLayout) TOC {
	titles := entries(notes, models.FieldTitle)
	sortEntries(titles)

	var authors []Entry
	if layout == TOCIndependent {
		authors = entries(notes, models.FieldAuthor)
		sortEntries(authors)
	} else {
		byAnchor := make(map[string]string, len(notes))
		for i, n := range notes {
			byAnchor[AnchorName(i)] = n.Get(models.FieldAuthor)
		}
		authors = make([]Entry, len(titles))
		for i, e := range titles {
			authors[i] = Entry{Anchor: e.Anchor, Label: byAnchor[e.Anchor]}
		}
	}

	rows := make([]TOCRow, len(titles))
	for i := range titles {
		rows[i] = TOCRow{Title: titles[i], Author: authors[i]}
	}
	return TOC{Header: [2]string{models.FieldTitle, models.FieldAuthor}, Rows: rows}
}

func entries(notes []models.Note, field string) []Entry {
	out := make([]Entry, len(notes))
	for i, n := range notes {
		out[i] = Entry{Anchor: AnchorName(i), Label: n.Get(field)}
	}
	return out
}

// sortEntries orders entries case-insensitively by label; ties keep
// collection order.
func sortEntries(es []Entry) {
	slices.SortStableFunc(es, func(a, b Entry) int {
		return strings.Compare(strings.ToLower(a.Label), strings.ToLower(b.Label))
	})
}

func notePage(n models.Note, position int, opts Options) []Block {
	out := []Block{
		Paragraph{Text: n.Title(), Size: 20, Bold: true, Align: AlignCenter, Anchor: AnchorName(position)},
	}
	if sub := n.Get(models.FieldSubtitle); sub != "" {
		out = append(out, Paragraph{Text: sub, Size: 12, Align: AlignCenter})
	}
	out = append(out, Paragraph{Text: byline(n), Size: 14, Align: AlignCenter})

	media := n.Get(models.FieldMediaType)
	if ep := n.Get(models.FieldEpisode); ep != "" {
		media += " - episode: " + ep
	}
	out = append(out, Paragraph{Text: media, Size: 10, Align: AlignCenter})
	if link := n.Get(models.FieldLink); link != "" {
		out = append(out, Paragraph{Text: "External Resource", Size: 10, Align: AlignCenter, Link: link})
	}

	out = append(out,
		Rule{},
		Paragraph{Text: n.Get(models.FieldOneLiner), Size: 12, Align: AlignLeft},
		Spacer{Height: oneLinerGap},
		Rule{},
	)
	if body := n.Body(); body != "" {
		lines := strings.Split(ExpandTabs(body, opts.TabWidth), "\n")
		out = append(out, Preformatted{Lines: wrapLines(lines, opts.MaxLineLength), Size: 11})
	}
	return append(out, PageBreak{})
}

// byline renders "author (year)", dropping the parentheses when year is
// blank.
func byline(n models.Note) string {
	author := n.Get(models.FieldAuthor)
	year := n.Get(models.FieldYear)
	if year == "" {
		return author
	}
	return author + " (" + year + ")"
}
