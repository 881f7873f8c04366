package document

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// PDFSource reads page text from a PDF file on disk.
type PDFSource struct {
	path string
}

// NewPDFSource creates a source for the PDF at path. The file is not
// opened until PageTexts is called.
func NewPDFSource(path string) *PDFSource {
	return &PDFSource{path: path}
}

// Path returns the configured file path.
func (s *PDFSource) Path() string {
	return s.path
}

// Fingerprint returns path, size and modification time of the file.
func (s *PDFSource) Fingerprint(context.Context) (string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAccess, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrAccess, s.path)
	}
	return fmt.Sprintf("pdf:%s|%d|%d", s.path, info.Size(), info.ModTime().UnixNano()), nil
}

// PageTexts opens the PDF and returns the text of each page, one line per
// line of text on the page.
func (s *PDFSource) PageTexts(ctx context.Context) (pages []string, err error) {
	// The PDF parser panics on some malformed inputs.
	defer func() {
		if p := recover(); p != nil {
			pages = nil
			err = fmt.Errorf("%w: parsing %s: %v", ErrAccess, s.path, p)
		}
	}()

	f, r, err := pdf.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrAccess, s.path, err)
	}
	defer f.Close()

	total := r.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		pages = append(pages, norm.NFC.String(pageText(page)))
	}

	slog.Debug("pdf read", "path", s.path, "pages", len(pages))
	return pages, nil
}

const (
	// lineTolerance is the vertical distance in text space below which two
	// runs of text share a line.
	lineTolerance = 1.0
	// wordGapKerning is the TJ adjustment, in thousandths of an em, at or
	// below which a gap reads as a space.
	wordGapKerning = -200
)

// pageText interprets the content streams of page and returns its text.
// A new line starts whenever the text line moves vertically, whichever of
// Td, TD, T*, Tm, ' or " moved it.
func pageText(page pdf.Page) string {
	var (
		b         strings.Builder
		enc       pdf.TextEncoding
		leading   float64
		y, lineY  float64
		started   bool
		lineBreak bool
	)

	show := func(raw string) {
		text := raw
		if enc != nil {
			text = enc.Decode(raw)
		}
		if text == "" {
			return
		}
		if started && (lineBreak || math.Abs(y-lineY) > lineTolerance) {
			b.WriteByte('\n')
		}
		b.WriteString(text)
		lineY = y
		started = true
		lineBreak = false
	}

	nextLine := func() {
		y -= leading
		lineBreak = true
	}

	interpret := func(strm pdf.Value) {
		if strm.Kind() != pdf.Stream {
			return
		}
		pdf.Interpret(strm, func(stk *pdf.Stack, op string) {
			n := stk.Len()
			args := make([]pdf.Value, n)
			for i := n - 1; i >= 0; i-- {
				args[i] = stk.Pop()
			}

			switch op {
			case "BT":
				y = 0
			case "Tf":
				if n >= 1 {
					enc = page.Font(args[0].Name()).Encoder()
				}
			case "TL":
				if n >= 1 {
					leading = args[0].Float64()
				}
			case "Td":
				if n >= 2 {
					y += args[1].Float64()
				}
			case "TD":
				if n >= 2 {
					leading = -args[1].Float64()
					y += args[1].Float64()
				}
			case "Tm":
				if n >= 6 {
					y = args[5].Float64()
				}
			case "T*":
				nextLine()
			case "Tj":
				if n >= 1 {
					show(args[0].RawString())
				}
			case "'":
				nextLine()
				if n >= 1 {
					show(args[0].RawString())
				}
			case "\"":
				nextLine()
				if n >= 3 {
					show(args[2].RawString())
				}
			case "TJ":
				if n < 1 {
					return
				}
				arr := args[0]
				for i := 0; i < arr.Len(); i++ {
					v := arr.Index(i)
					switch v.Kind() {
					case pdf.String:
						show(v.RawString())
					case pdf.Integer, pdf.Real:
						if started && v.Float64() <= wordGapKerning {
							b.WriteByte(' ')
						}
					}
				}
			}
		})
	}

	contents := page.V.Key("Contents")
	if contents.Kind() == pdf.Array {
		for i := 0; i < contents.Len(); i++ {
			interpret(contents.Index(i))
		}
	} else {
		interpret(contents)
	}

	if b.Len() == 0 {
		return ""
	}
	b.WriteByte('\n')
	return b.String()
}
