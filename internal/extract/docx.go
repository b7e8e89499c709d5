package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

const (
	wordNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	documentPart = "word/document.xml"
)

// Replacement maps a placeholder as it appears in the document to its value.
type Replacement struct {
	Pattern string
	Value   string
}

// FillText applies replacements to plain text.
func FillText(text string, repls []Replacement) string {
	rep := newReplacer(repls)
	if rep == nil {
		return text
	}
	return rep.Replace(text)
}

// newReplacer orders patterns longest first so "[Company Name]" wins over
// "[Company]" at the same position. Returns nil when there is nothing to do.
func newReplacer(repls []Replacement) *strings.Replacer {
	sorted := make([]Replacement, 0, len(repls))
	for _, r := range repls {
		if r.Pattern != "" {
			sorted = append(sorted, r)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Pattern) > len(sorted[j].Pattern)
	})
	pairs := make([]string, 0, len(sorted)*2)
	for _, r := range sorted {
		pairs = append(pairs, r.Pattern, r.Value)
	}
	return strings.NewReplacer(pairs...)
}

func openDOCX(r io.ReaderAt, size int64) (*zip.Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: docx: %v", ErrInvalidDocument, err)
	}
	for _, f := range zr.File {
		if f.Name == documentPart {
			return zr, nil
		}
	}
	return nil, fmt.Errorf("%w: docx: missing %s", ErrInvalidDocument, documentPart)
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func docxText(r io.ReaderAt, size int64) (string, error) {
	zr, err := openDOCX(r, size)
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}
		data, err := readPart(f)
		if err != nil {
			return "", err
		}
		return partText(data)
	}
	return "", nil
}

// partText flattens WordprocessingML into text: one line per paragraph,
// tabs and breaks inside runs preserved.
func partText(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		b      strings.Builder
		inText bool
		inRun  int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: docx xml: %v", ErrInvalidDocument, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "r":
				inRun++
			case "t":
				inText = true
			case "tab":
				if inRun > 0 {
					b.WriteByte('\t')
				}
			case "br", "cr":
				if inRun > 0 {
					b.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "r":
				inRun--
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// FillDOCX copies a DOCX archive to w, applying replacements to the body,
// header and footer parts. Every other entry is copied byte for byte.
func FillDOCX(r io.ReaderAt, size int64, w io.Writer, repls []Replacement) error {
	zr, err := openDOCX(r, size)
	if err != nil {
		return err
	}
	runs := make([]Replacement, len(repls))
	for i, r := range repls {
		runs[i] = Replacement{Pattern: runText(r.Pattern), Value: r.Value}
	}
	rep := newReplacer(runs)

	zw := zip.NewWriter(w)
	for _, f := range zr.File {
		if rep == nil || !fillablePart(f.Name) {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}

		data, err := readPart(f)
		if err != nil {
			return err
		}
		filled, err := fillPart(data, rep)
		if err != nil {
			return fmt.Errorf("fill %s: %w", f.Name, err)
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   f.Method,
			Modified: f.Modified,
		})
		if err != nil {
			return fmt.Errorf("create %s: %w", f.Name, err)
		}
		if _, err := fw.Write(filled); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	return zw.Close()
}

// runText drops the tabs and breaks partText emits for <w:tab/> and <w:br/>.
// Those live outside <w:t>, so they never appear in a paragraph's joined text.
func runText(s string) string {
	return strings.NewReplacer("\t", "", "\n", "").Replace(s)
}

func fillablePart(name string) bool {
	if name == documentPart {
		return true
	}
	dir, file := path.Split(name)
	if dir != "word/" || path.Ext(file) != ".xml" {
		return false
	}
	return strings.HasPrefix(file, "header") || strings.HasPrefix(file, "footer")
}

// textElem is one <w:t> element located by byte offsets in the raw part.
type textElem struct {
	tagStart    int64
	tagEnd      int64
	end         int64
	selfClosing bool
	text        string
}

type edit struct {
	start, end int64
	text       string
}

// fillPart rewrites a WordprocessingML part. Word splits a placeholder over
// several runs freely, so replacement happens on the joined text of each
// paragraph; the result goes into the paragraph's first <w:t> and the rest
// are emptied. Paragraphs without a match are left untouched.
func fillPart(data []byte, rep *strings.Replacer) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		paragraphs [][]*textElem
		cur        *textElem
		edits      []edit
	)
	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: docx xml: %v", ErrInvalidDocument, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				paragraphs = append(paragraphs, nil)
			case "t":
				if len(paragraphs) == 0 {
					continue
				}
				end := dec.InputOffset()
				cur = &textElem{
					tagStart:    start,
					tagEnd:      end,
					end:         end,
					selfClosing: bytes.HasSuffix(data[start:end], []byte("/>")),
				}
				last := len(paragraphs) - 1
				paragraphs[last] = append(paragraphs[last], cur)
			}
		case xml.CharData:
			if cur != nil {
				cur.text += string(t)
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				if cur != nil && !cur.selfClosing {
					cur.end = start
				}
				cur = nil
			case "p":
				if len(paragraphs) == 0 {
					continue
				}
				last := len(paragraphs) - 1
				edits = append(edits, paragraphEdits(data, paragraphs[last], rep)...)
				paragraphs = paragraphs[:last]
			}
		}
	}

	if len(edits) == 0 {
		return data, nil
	}
	// Nested paragraphs (text boxes) close before their parent.
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var out bytes.Buffer
	out.Grow(len(data))
	pos := int64(0)
	for _, e := range edits {
		out.Write(data[pos:e.start])
		out.WriteString(e.text)
		pos = e.end
	}
	out.Write(data[pos:])
	return out.Bytes(), nil
}

func paragraphEdits(data []byte, elems []*textElem, rep *strings.Replacer) []edit {
	if len(elems) == 0 {
		return nil
	}
	var joined strings.Builder
	for _, e := range elems {
		joined.WriteString(e.text)
	}
	filled := rep.Replace(joined.String())
	if filled == joined.String() {
		return nil
	}

	var esc bytes.Buffer
	_ = xml.EscapeText(&esc, []byte(filled))

	first := elems[0]
	name := qualifiedName(data[first.tagStart:first.tagEnd])
	open := "<" + name + ` xml:space="preserve">`

	edits := make([]edit, 0, len(elems))
	if first.selfClosing {
		edits = append(edits, edit{
			start: first.tagStart,
			end:   first.tagEnd,
			text:  open + esc.String() + "</" + name + ">",
		})
	} else {
		edits = append(edits, edit{start: first.tagStart, end: first.end, text: open + esc.String()})
	}
	for _, e := range elems[1:] {
		if e.selfClosing || e.tagEnd == e.end {
			continue
		}
		edits = append(edits, edit{start: e.tagEnd, end: e.end})
	}
	return edits
}

// qualifiedName returns the element name of a raw start tag, keeping the
// document's own namespace prefix ("w:t").
func qualifiedName(tag []byte) string {
	name := bytes.TrimPrefix(tag, []byte("<"))
	if i := bytes.IndexAny(name, " \t\r\n/>"); i >= 0 {
		name = name[:i]
	}
	return string(name)
}
