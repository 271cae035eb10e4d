// Package pdftest builds small AcroForm documents for tests. Field names may
// be qualified ("RUT HEREDERO.8.3"); every dot opens a level of the field tree
// the same way the real template nests its repeated rows.
package pdftest

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode/utf16"
)

// FieldType is the widget family of a test field
type FieldType int

const (
	Text FieldType = iota
	Checkbox
)

// Field is one terminal field placed on a page
type Field struct {
	Name string
	Type FieldType
	// Page is zero-based
	Page int
}

// TextFields is a shorthand for text fields on the first page
func TextFields(names ...string) []Field {
	fields := make([]Field, 0, len(names))
	for _, n := range names {
		fields = append(fields, Field{Name: n, Type: Text})
	}
	return fields
}

type node struct {
	partial  string
	field    *Field
	children map[string]*node
	order    []string
	objNum   int
}

func (n *node) child(partial string) *node {
	if n.children == nil {
		n.children = map[string]*node{}
	}
	c, ok := n.children[partial]
	if !ok {
		c = &node{partial: partial}
		n.children[partial] = c
		n.order = append(n.order, partial)
	}
	return c
}

type builder struct {
	objects []string
}

// reserve allocates an object number, filled in later with set
func (b *builder) reserve() int {
	b.objects = append(b.objects, "")
	return len(b.objects)
}

func (b *builder) set(num int, body string) {
	b.objects[num-1] = body
}

func (b *builder) add(body string) int {
	num := b.reserve()
	b.set(num, body)
	return num
}

// FormPDF returns a PDF with the given number of pages, one line of text per
// page, and an AcroForm holding the fields. A nil field list produces no
// AcroForm at all.
func FormPDF(pages int, fields []Field) []byte {
	if pages < 1 {
		pages = 1
	}
	b := &builder{}

	catalog := b.reserve()
	pagesObj := b.reserve()
	font := b.add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	onAppearance := b.add(stream("<< /Type /XObject /Subtype /Form /BBox [0 0 10 10] >>", "0 g 1 1 8 8 re f"))
	offAppearance := b.add(stream("<< /Type /XObject /Subtype /Form /BBox [0 0 10 10] >>", ""))

	pageNums := make([]int, pages)
	for i := range pageNums {
		pageNums[i] = b.reserve()
	}
	annots := make([][]string, pages)

	root := &node{}
	for i := range fields {
		f := fields[i]
		n := root
		for _, part := range strings.Split(f.Name, ".") {
			n = n.child(part)
		}
		n.field = &f
	}

	var top []string
	var emit func(n *node, parent int) int
	emit = func(n *node, parent int) int {
		n.objNum = b.reserve()
		var d strings.Builder
		fmt.Fprintf(&d, "<< /T %s", literal(n.partial))
		if parent > 0 {
			fmt.Fprintf(&d, " /Parent %d 0 R", parent)
		}
		if n.field != nil {
			page := min(max(n.field.Page, 0), pages-1)
			y := 700 - 20*len(annots[page])
			fmt.Fprintf(&d, " /Type /Annot /Subtype /Widget /F 4 /P %d 0 R /Rect [50 %d 300 %d]", pageNums[page], y, y+15)
			switch n.field.Type {
			case Checkbox:
				fmt.Fprintf(&d, " /FT /Btn /V /Off /AS /Off /AP << /N << /Yes %d 0 R /Off %d 0 R >> >>", onAppearance, offAppearance)
			default:
				d.WriteString(" /FT /Tx /V () /DA (/Helv 10 Tf 0 g)")
			}
			annots[page] = append(annots[page], fmt.Sprintf("%d 0 R", n.objNum))
		}
		if len(n.order) > 0 {
			kids := make([]string, 0, len(n.order))
			for _, key := range n.order {
				kids = append(kids, fmt.Sprintf("%d 0 R", emit(n.children[key], n.objNum)))
			}
			fmt.Fprintf(&d, " /Kids [%s]", strings.Join(kids, " "))
		}
		d.WriteString(" >>")
		b.set(n.objNum, d.String())
		return n.objNum
	}
	for _, key := range root.order {
		top = append(top, fmt.Sprintf("%d 0 R", emit(root.children[key], 0)))
	}

	for i, num := range pageNums {
		content := b.add(stream("<< >>", fmt.Sprintf("BT /F1 12 Tf 50 780 Td (Pagina %d) Tj ET", i+1)))
		page := fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 %d 0 R >> >>",
			pagesObj, content, font)
		if len(annots[i]) > 0 {
			page += fmt.Sprintf(" /Annots [%s]", strings.Join(annots[i], " "))
		}
		b.set(num, page+" >>")
	}

	kids := make([]string, len(pageNums))
	for i, num := range pageNums {
		kids[i] = fmt.Sprintf("%d 0 R", num)
	}
	b.set(pagesObj, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))

	cat := fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R", pagesObj)
	if fields != nil {
		cat += fmt.Sprintf(" /AcroForm << /Fields [%s] /DA (/Helv 0 Tf 0 g) /DR << /Font << /Helv %d 0 R >> >> >>",
			strings.Join(top, " "), font)
	}
	b.set(catalog, cat+" >>")

	return b.serialize(catalog)
}

// PlainPDF returns a PDF without form fields
func PlainPDF(pages int) []byte {
	return FormPDF(pages, nil)
}

func (b *builder) serialize(root int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	offsets := make([]int, len(b.objects))
	for i, body := range b.objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(b.objects)+1)
	buf.WriteString("0000000000 65535 f\r\n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n\r\n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(b.objects)+1, root, xref)
	return buf.Bytes()
}

func stream(dict, content string) string {
	dict = strings.TrimSuffix(strings.TrimSpace(dict), ">>")
	return fmt.Sprintf("%s /Length %d >>\nstream\n%s\nendstream", dict, len(content), content)
}

// literal writes a PDF text string: escaped ASCII, or UTF-16BE hex with a
// byte order mark for anything else
func literal(s string) string {
	ascii := true
	for _, r := range s {
		if r > 0x7e {
			ascii = false
			break
		}
	}
	if ascii {
		r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
		return "(" + r.Replace(s) + ")"
	}
	var hex strings.Builder
	hex.WriteString("<FEFF")
	for _, u := range utf16.Encode([]rune(s)) {
		fmt.Fprintf(&hex, "%04X", u)
	}
	hex.WriteString(">")
	return hex.String()
}

// Names returns the sorted field names, handy for table-driven assertions
func Names(fields []Field) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}
