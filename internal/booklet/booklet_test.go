package booklet

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/folio/internal/models"
)

func mkNote(title, author string, kv ...string) models.Note {
	n := models.NewEmptyNote()
	n.Set(models.FieldTitle, title)
	n.Set(models.FieldAuthor, author)
	for i := 0; i+1 < len(kv); i += 2 {
		n.Set(kv[i], kv[i+1])
	}
	return n
}

func tocOf(t *testing.T, blocks []Block) TOC {
	t.Helper()
	for _, b := range blocks {
		if toc, ok := b.(TOC); ok {
			return toc
		}
	}
	t.Fatal("no TOC block")
	return TOC{}
}

func labels(rows []TOCRow, author bool) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		if author {
			out[i] = r.Author.Label
		} else {
			out[i] = r.Title.Label
		}
	}
	return out
}

func TestExpandTabs(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"a\tb", "a" + strings.Repeat(" ", 7) + "b"},
		{"abcdefgh\ti", "abcdefgh" + strings.Repeat(" ", 8) + "i"},
		{"\t\tx", strings.Repeat(" ", 16) + "x"},
		{"ab\tc\td", "ab" + strings.Repeat(" ", 6) + "c" + strings.Repeat(" ", 7) + "d"},
		{"x\n\ty", "x\n" + strings.Repeat(" ", 8) + "y"},
		{"é\tz", "é" + strings.Repeat(" ", 7) + "z"},
		{"line\r\n\tend\n", "line\n" + strings.Repeat(" ", 8) + "end"},
		{"no tabs", "no tabs"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExpandTabs(tc.in, 8), "input %q", tc.in)
	}
}

func TestExpandTabs_CustomWidth(t *testing.T) {
	assert.Equal(t, "a   b", ExpandTabs("a\tb", 4))
	assert.Equal(t, "a"+strings.Repeat(" ", 7)+"b", ExpandTabs("a\tb", 0))
}

func TestWrapLines(t *testing.T) {
	got := wrapLines([]string{"abcdefg", "", "ab"}, 3)
	assert.Equal(t, []string{"abc", "def", "g", "", "ab"}, got)
}

func TestWrapWords(t *testing.T) {
	assert.Equal(t, []string{"the quick", "brown fox"}, wrapWords("the quick brown fox", 10))
	assert.Equal(t, []string{"abcde", "fgh", "x"}, wrapWords("abcdefgh x", 5))
	assert.Empty(t, wrapWords("   ", 5))
}

func TestBuild_TOCTitleSortCaseInsensitive(t *testing.T) {
	notes := []models.Note{
		mkNote("banana", "z"),
		mkNote("Apple", "y"),
		mkNote("cherry", "x"),
	}
	for _, layout := range []TOCLayout{TOCPaired, TOCIndependent} {
		toc := tocOf(t, Build(notes, Options{TOC: layout}))
		assert.Equal(t, []string{"Apple", "banana", "cherry"}, labels(toc.Rows, false), "layout %s", layout)
		assert.Equal(t, AnchorName(1), toc.Rows[0].Title.Anchor)
		assert.Equal(t, AnchorName(0), toc.Rows[1].Title.Anchor)
	}
}

func TestBuild_TOCIndependentColumns(t *testing.T) {
	notes := []models.Note{
		mkNote("b-title", "Alpha"),
		mkNote("a-title", "beta"),
	}
	toc := tocOf(t, Build(notes, Options{TOC: TOCIndependent}))
	require.Len(t, toc.Rows, 2)
	assert.Equal(t, []string{"a-title", "b-title"}, labels(toc.Rows, false))
	assert.Equal(t, []string{"Alpha", "beta"}, labels(toc.Rows, true))
	// Row 0 mixes two notes.
	assert.NotEqual(t, toc.Rows[0].Title.Anchor, toc.Rows[0].Author.Anchor)
}

func TestBuild_TOCPairedRowsShareNote(t *testing.T) {
	notes := []models.Note{
		mkNote("b-title", "Alpha"),
		mkNote("a-title", "beta"),
	}
	toc := tocOf(t, Build(notes, Options{}))
	assert.Equal(t, []string{"a-title", "b-title"}, labels(toc.Rows, false))
	assert.Equal(t, []string{"beta", "Alpha"}, labels(toc.Rows, true))
	for _, row := range toc.Rows {
		assert.Equal(t, row.Title.Anchor, row.Author.Anchor)
	}
	assert.Equal(t, [2]string{"title", "author"}, toc.Header)
}

func TestBuild_TOCTiesKeepCollectionOrder(t *testing.T) {
	notes := []models.Note{mkNote("same", "1"), mkNote("SAME", "2"), mkNote("Same", "3")}
	toc := tocOf(t, Build(notes, Options{}))
	assert.Equal(t, []string{"same", "SAME", "Same"}, labels(toc.Rows, false))
}

func TestBuild_TOCLabelsKeepCase(t *testing.T) {
	notes := []models.Note{mkNote("The Left Hand of Darkness", "Ursula K. Le Guin")}
	for _, layout := range []TOCLayout{TOCPaired, TOCIndependent} {
		toc := tocOf(t, Build(notes, Options{TOC: layout}))
		assert.Equal(t, []string{"The Left Hand of Darkness"}, labels(toc.Rows, false), "layout %s", layout)
		assert.Equal(t, []string{"Ursula K. Le Guin"}, labels(toc.Rows, true), "layout %s", layout)
	}
}

func TestBuild_NotePageLayout(t *testing.T) {
	n := mkNote("Dune", "Herbert",
		models.FieldYear, "1965",
		models.FieldSubtitle, "Book one",
		models.FieldMediaType, "book",
		models.FieldEpisode, "3",
		models.FieldLink, "https://example.org/dune",
		models.FieldOneLiner, "Spice.",
		models.FieldNotes, "a\tb\n",
	)
	blocks := Build([]models.Note{n}, Options{})

	// TOC heading, "ordered by", TOC, break, then the note.
	require.IsType(t, PageBreak{}, blocks[3])
	page := blocks[4:]

	want := []Block{
		Paragraph{Text: "Dune", Size: 20, Bold: true, Align: AlignCenter, Anchor: "note-0"},
		Paragraph{Text: "Book one", Size: 12, Align: AlignCenter},
		Paragraph{Text: "Herbert (1965)", Size: 14, Align: AlignCenter},
		Paragraph{Text: "book - episode: 3", Size: 10, Align: AlignCenter},
		Paragraph{Text: "External Resource", Size: 10, Align: AlignCenter, Link: "https://example.org/dune"},
		Rule{},
		Paragraph{Text: "Spice.", Size: 12, Align: AlignLeft},
		Spacer{Height: oneLinerGap},
		Rule{},
		Preformatted{Lines: []string{"a       b"}, Size: 11},
		PageBreak{},
	}
	assert.Equal(t, want, page)
}

func TestBuild_OptionalHeadingLinesOmitted(t *testing.T) {
	blocks := Build([]models.Note{mkNote("Solo", "Anon")}, Options{})
	page := blocks[4:]
	var texts []string
	for _, b := range page {
		if p, ok := b.(Paragraph); ok {
			texts = append(texts, p.Text)
		}
		_, isPre := b.(Preformatted)
		assert.False(t, isPre, "empty body should not produce a preformatted block")
	}
	assert.Equal(t, []string{"Solo", "Anon", "", ""}, texts)
}

func TestBuild_OnePageBreakPerNote(t *testing.T) {
	notes := []models.Note{mkNote("a", ""), mkNote("b", ""), mkNote("c", "")}
	breaks := 0
	anchors := map[string]bool{}
	for _, b := range Build(notes, Options{}) {
		switch b := b.(type) {
		case PageBreak:
			breaks++
		case Paragraph:
			if b.Anchor != "" {
				anchors[b.Anchor] = true
			}
		}
	}
	assert.Equal(t, 1+len(notes), breaks)
	assert.Len(t, anchors, len(notes))
}

func TestBuild_LongBodyLinesWrapped(t *testing.T) {
	body := strings.Repeat("x", 120)
	blocks := Build([]models.Note{mkNote("t", "", models.FieldNotes, body)}, Options{})
	var pre Preformatted
	for _, b := range blocks {
		if p, ok := b.(Preformatted); ok {
			pre = p
		}
	}
	require.Len(t, pre.Lines, 3)
	assert.Len(t, pre.Lines[0], DefaultMaxLineLength)
	assert.Len(t, pre.Lines[2], 20)
}

func TestRender_PageCount(t *testing.T) {
	pdf, err := render(Build(nil, Options{}), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, pdf.PageCount(), "empty collection renders only the TOC page")

	notes := []models.Note{mkNote("one", "a"), mkNote("two", "b")}
	pdf, err = render(Build(notes, Options{}), Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, pdf.PageCount())
}

func TestRender_LongBodySpillsOver(t *testing.T) {
	body := strings.Repeat("line\n", 200)
	notes := []models.Note{mkNote("long", "a", models.FieldNotes, body)}
	pdf, err := render(Build(notes, Options{}), Options{})
	require.NoError(t, err)
	assert.Greater(t, pdf.PageCount(), 3)
}

func TestRender_ManyTOCRowsSpillOver(t *testing.T) {
	var notes []models.Note
	for i := 0; i < 60; i++ {
		notes = append(notes, mkNote(strings.Repeat("t", i%30+1), "author"))
	}
	pdf, err := render(Build(notes, Options{}), Options{})
	require.NoError(t, err)
	assert.Greater(t, pdf.PageCount(), 1+len(notes))
}

func TestRender_NonLatinTextDoesNotFail(t *testing.T) {
	notes := []models.Note{mkNote("Café ✓ №5", "Σωκράτης", models.FieldNotes, "naïve\t→")}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Build(notes, Options{}), Options{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRender_MissingFontFails(t *testing.T) {
	opts := Options{FontPath: filepath.Join(t.TempDir(), "missing.ttf")}
	var buf bytes.Buffer
	err := Render(&buf, Build(nil, opts), opts)
	assert.Error(t, err)
}

func TestGenerate_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "notes.pdf")
	notes := []models.Note{mkNote("Dune", "Herbert", models.FieldLink, "https://example.org")}
	require.NoError(t, Generate(path, notes, Options{TOC: TOCIndependent}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
