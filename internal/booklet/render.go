package booklet

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/natefinch/atomic"

	"github.com/starford/folio/internal/models"
)

// Page geometry in points: A5 with fixed margins.
const (
	pageSize     = "A5"
	marginTop    = 15.0
	marginBottom = 15.0
	marginLeft   = 30.0
	marginRight  = 30.0

	leading     = 1.2 // line height as a multiple of font size
	ruleInset   = 10.0
	cellPadding = 5.0
)

const (
	coreFamily = "Courier"
	ttfFamily  = "folio-mono"
)

// Generate builds and renders the booklet for notes and atomically writes it
// to path, creating the parent directory if needed.
func Generate(path string, notes []models.Note, opts Options) error {
	var buf bytes.Buffer
	if err := Render(&buf, Build(notes, opts), opts); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("booklet: mkdir: %w", err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("booklet: write %s: %w", path, err)
	}
	return nil
}

// Render draws blocks onto A5 pages and writes the PDF to w.
func Render(w io.Writer, blocks []Block, opts Options) error {
	pdf, err := render(blocks, opts)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("booklet: output: %w", err)
	}
	return nil
}

type renderer struct {
	pdf     *fpdf.Fpdf
	family  string
	tr      func(string) string
	links   map[string]int
	pending bool // a page break is owed before the next drawn block
}

func render(blocks []Block, opts Options) (*fpdf.Fpdf, error) {
	pdf := fpdf.New("P", "pt", pageSize, "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetCreator("folio", false)

	r := &renderer{pdf: pdf, links: make(map[string]int)}
	r.setupFonts(opts)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("booklet: load fonts: %w", err)
	}

	// Targets are registered up front: TOC entries precede the pages they
	// point at.
	for _, b := range blocks {
		if p, ok := b.(Paragraph); ok && p.Anchor != "" {
			r.links[p.Anchor] = pdf.AddLink()
		}
	}

	pdf.AddPage()
	for _, b := range blocks {
		if _, ok := b.(PageBreak); ok {
			r.pending = true
			continue
		}
		if r.pending {
			pdf.AddPage()
			r.pending = false
		}
		r.draw(b)
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("booklet: render: %w", err)
	}
	return pdf, nil
}

func (r *renderer) setupFonts(opts Options) {
	if opts.FontPath == "" {
		r.family = coreFamily
		r.tr = r.pdf.UnicodeTranslatorFromDescriptor("")
		return
	}
	bold := opts.BoldFontPath
	if bold == "" {
		bold = opts.FontPath
	}
	r.pdf.AddUTF8Font(ttfFamily, "", opts.FontPath)
	r.pdf.AddUTF8Font(ttfFamily, "B", bold)
	r.family = ttfFamily
	r.tr = func(s string) string { return s }
}

func (r *renderer) draw(b Block) {
	switch b := b.(type) {
	case Paragraph:
		r.paragraph(b)
	case Rule:
		r.rule()
	case Spacer:
		r.pdf.Ln(b.Height)
	case Preformatted:
		r.preformatted(b)
	case TOC:
		r.toc(b)
	}
}

func (r *renderer) setFont(bold bool, size float64) {
	style := ""
	if bold {
		style = "B"
	}
	r.pdf.SetFont(r.family, style, size)
}

func (r *renderer) paragraph(p Paragraph) {
	r.setFont(p.Bold, p.Size)
	lineHt := p.Size * leading
	if p.Anchor != "" {
		r.pdf.SetLink(r.links[p.Anchor], r.pdf.GetY(), -1)
	}
	if p.Link != "" {
		r.pdf.SetTextColor(0, 0, 255)
		r.pdf.CellFormat(0, lineHt, r.tr(p.Text), "", 1, p.Align, false, 0, p.Link)
		r.pdf.SetTextColor(0, 0, 0)
	} else {
		r.pdf.MultiCell(0, lineHt, r.tr(p.Text), "", p.Align, false)
	}
	r.pdf.Ln(p.Size * 0.3)
}

func (r *renderer) rule() {
	left, _, right, _ := r.pdf.GetMargins()
	width, _ := r.pdf.GetPageSize()
	y := r.pdf.GetY()
	r.pdf.SetLineWidth(0.5)
	r.pdf.Line(left, y, width-right-ruleInset, y)
	r.pdf.Ln(4)
}

func (r *renderer) preformatted(p Preformatted) {
	r.setFont(false, p.Size)
	lineHt := p.Size * leading
	for _, line := range p.Lines {
		r.pdf.CellFormat(0, lineHt, r.tr(line), "", 1, AlignLeft, false, 0, "")
	}
}

// toc draws a two-column grid with inner rules only, centered on the page.
// Both fonts are monospaced, so cells wrap on a character count. Rows never
// split across pages.
func (r *renderer) toc(t TOC) {
	const (
		headSize = 12.0
		bodySize = 10.0
	)
	width, height := r.pdf.GetPageSize()
	colW := width / 3
	x0 := (width - 2*colW) / 2
	bottom := height - marginBottom

	r.pdf.SetLineWidth(0.25)

	r.setFont(true, headSize)
	headHt := headSize*leading + 3*cellPadding
	y := r.pdf.GetY()
	for i, h := range t.Header {
		r.pdf.SetXY(x0+float64(i)*colW+cellPadding, y)
		r.pdf.CellFormat(colW-2*cellPadding, headSize*leading, r.tr(h), "", 0, AlignLeft, false, 0, "")
	}
	r.pdf.Line(x0+colW, y, x0+colW, y+headHt)
	y += headHt

	r.setFont(false, bodySize)
	lineHt := bodySize * leading
	perLine := max(1, int((colW-2*cellPadding)/r.pdf.GetStringWidth("M")))
	for _, row := range t.Rows {
		cells := []Entry{row.Title, row.Author}
		split := make([][]string, len(cells))
		n := 1
		for i, c := range cells {
			split[i] = wrapWords(c.Label, perLine)
			n = max(n, len(split[i]))
		}
		rowHt := float64(n)*lineHt + 2*cellPadding

		if y+rowHt > bottom {
			r.pdf.AddPage()
			y = r.pdf.GetY()
		}
		r.pdf.Line(x0, y, x0+2*colW, y)
		r.pdf.Line(x0+colW, y, x0+colW, y+rowHt)

		r.pdf.SetTextColor(0, 0, 255)
		for i, c := range cells {
			link := r.links[c.Anchor]
			for j, line := range split[i] {
				r.pdf.SetXY(x0+float64(i)*colW+cellPadding, y+cellPadding+float64(j)*lineHt)
				r.pdf.CellFormat(colW-2*cellPadding, lineHt, r.tr(line), "", 0, AlignLeft, false, link, "")
			}
		}
		r.pdf.SetTextColor(0, 0, 0)
		y += rowHt
	}
	r.pdf.SetXY(marginLeft, y)
	r.pdf.Ln(cellPadding)
}
