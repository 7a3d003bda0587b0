package pdfs

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"codeberg.org/go-pdf/fpdf"

	"github.com/zeptools/docforge/csvdata"
	"github.com/zeptools/docforge/placements"
	"github.com/zeptools/docforge/raster"
)

func blankTemplate(t *testing.T, pages int) *Template {
	t.Helper()
	pdf := fpdf.New("P", "pt", "", "")
	for range pages {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: 600, Ht: 800})
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("build test template: %v", err)
	}
	tmpl, err := LoadTemplate(buf.Bytes())
	if err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}
	return tmpl
}

func testComposer(t *testing.T) *Composer {
	t.Helper()
	pool, err := raster.NewPool(context.Background(), 2, &raster.FontProvider{})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	return NewComposer(pool)
}

var namePlacement = placements.FieldPlacement{
	FieldName:  "Name",
	Page:       1,
	XFrac:      0.1,
	YFrac:      0.1,
	WidthFrac:  0.3,
	HeightFrac: 0.05,
	FontSize:   20,
}

func TestLoadTemplateRejectsGarbage(t *testing.T) {
	_, err := LoadTemplate([]byte("definitely not a pdf"))
	var docErr *DocumentError
	if !errors.As(err, &docErr) {
		t.Fatalf("err = %v, want DocumentError", err)
	}
}

func TestLoadTemplateReadsDims(t *testing.T) {
	tmpl := blankTemplate(t, 2)
	if tmpl.PageCount() != 2 {
		t.Fatalf("PageCount = %d, want 2", tmpl.PageCount())
	}
	dim, ok := tmpl.Dim(1)
	if !ok || dim.W != 600 || dim.H != 800 {
		t.Errorf("Dim(1) = %+v ok=%v, want 600x800", dim, ok)
	}
	if _, ok = tmpl.Dim(3); ok {
		t.Error("Dim(3) should report out of range")
	}
}

func TestRenderPreservesPageCountAndSkipsOutOfRangePage(t *testing.T) {
	c := testComposer(t)
	tmpl := blankTemplate(t, 1)

	beyond := namePlacement
	beyond.Page = 5 // template has one page: silently absent

	out, err := c.Render(context.Background(), tmpl, []placements.FieldPlacement{namePlacement, beyond}, csvdata.Row{"Name": "Alice"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	rendered, err := LoadTemplate(out)
	if err != nil {
		t.Fatalf("output not a valid PDF: %v", err)
	}
	if rendered.PageCount() != tmpl.PageCount() {
		t.Errorf("page count changed: %d -> %d", tmpl.PageCount(), rendered.PageCount())
	}
}

func TestRenderEmptyValueEqualsPlacementRemoved(t *testing.T) {
	c := testComposer(t)
	tmpl := blankTemplate(t, 1)

	title := namePlacement
	title.FieldName = "Title"
	row := csvdata.Row{"Name": "Alice"} // Title absent

	withEmpty, err := c.Render(context.Background(), tmpl, []placements.FieldPlacement{namePlacement, title}, row)
	if err != nil {
		t.Fatalf("render with empty-valued placement: %v", err)
	}
	withBlank, err := c.Render(context.Background(), tmpl, []placements.FieldPlacement{namePlacement, title}, csvdata.Row{"Name": "Alice", "Title": "   "})
	if err != nil {
		t.Fatalf("render with whitespace-valued placement: %v", err)
	}
	without, err := c.Render(context.Background(), tmpl, []placements.FieldPlacement{namePlacement}, row)
	if err != nil {
		t.Fatalf("render without placement: %v", err)
	}
	if !bytes.Equal(canonicalPDF(t, withEmpty), canonicalPDF(t, without)) {
		t.Error("empty-valued placement changed output; must match placement removed")
	}
	if !bytes.Equal(canonicalPDF(t, withBlank), canonicalPDF(t, without)) {
		t.Error("whitespace-valued placement changed output; must match placement removed")
	}
}

func TestRenderOverlaySizeFollowsMeasuredText(t *testing.T) {
	c := testComposer(t)
	tmpl := blankTemplate(t, 1)

	// Same placement box, much longer text: output must differ in content
	// size (text is not squeezed into the authored box).
	short, err := c.Render(context.Background(), tmpl, []placements.FieldPlacement{namePlacement}, csvdata.Row{"Name": "Al"})
	if err != nil {
		t.Fatal(err)
	}
	long, err := c.Render(context.Background(), tmpl, []placements.FieldPlacement{namePlacement}, csvdata.Row{"Name": "Alexander Freiherr von Humboldt"})
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(short, long) {
		t.Fatal("short and long values produced identical documents")
	}
	if len(long) <= len(short) {
		t.Errorf("longer text should embed a wider overlay image (%d <= %d bytes)", len(long), len(short))
	}
}

func TestRenderDeterministic(t *testing.T) {
	c := testComposer(t)
	tmpl := blankTemplate(t, 1)
	row := csvdata.Row{"Name": "Alice"}

	a, err := c.Render(context.Background(), tmpl, []placements.FieldPlacement{namePlacement}, row)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Render(context.Background(), tmpl, []placements.FieldPlacement{namePlacement}, row)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(canonicalPDF(t, a), canonicalPDF(t, b)) {
		t.Error("identical render inputs produced structurally different documents")
	}
}

// canonicalPDF rewrites every dictionary in a PDF with its entries sorted
// by key. The page importer serializes resource dictionaries in Go map
// order, so structurally identical documents only compare byte-equal in
// this canonical form. Stream payloads pass through untouched; xref
// offsets go stale, which does not matter for an equality check.
func canonicalPDF(t *testing.T, b []byte) []byte {
	t.Helper()
	var out bytes.Buffer
	for i := 0; i < len(b); {
		if bytes.HasPrefix(b[i:], []byte("<<")) {
			d, next := canonicalDict(t, b, i)
			out.Write(d)
			i = next
			j := skipPDFSpace(b, i)
			if bytes.HasPrefix(b[j:], []byte("stream")) {
				end := bytes.Index(b[j:], []byte("endstream"))
				if end < 0 {
					t.Fatal("unterminated stream")
				}
				end = j + end + len("endstream")
				out.Write(b[i:end])
				i = end
			}
			continue
		}
		out.WriteByte(b[i])
		i++
	}
	return out.Bytes()
}

func canonicalDict(t *testing.T, b []byte, i int) ([]byte, int) {
	t.Helper()
	i += 2 // past "<<"
	type entry struct{ key, val string }
	var entries []entry
	for {
		i = skipPDFSpace(b, i)
		if bytes.HasPrefix(b[i:], []byte(">>")) {
			i += 2
			break
		}
		if i >= len(b) || b[i] != '/' {
			t.Fatalf("malformed dictionary near offset %d", i)
		}
		var key, val string
		key, i = pdfToken(t, b, i)
		i = skipPDFSpace(b, i)
		val, i = pdfToken(t, b, i)
		// multi-token values like indirect references "3 0 R"
		for {
			j := skipPDFSpace(b, i)
			if j >= len(b) || b[j] == '/' || bytes.HasPrefix(b[j:], []byte(">>")) {
				break
			}
			var tok string
			tok, i = pdfToken(t, b, j)
			val += " " + tok
		}
		entries = append(entries, entry{key: key, val: val})
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].key < entries[b].key })
	var buf bytes.Buffer
	buf.WriteString("<<")
	for _, e := range entries {
		buf.WriteString(e.key)
		buf.WriteByte(' ')
		buf.WriteString(e.val)
		buf.WriteByte(' ')
	}
	buf.WriteString(">>")
	return buf.Bytes(), i
}

// pdfToken reads one object token: a name, nested dictionary, array,
// literal or hex string, or a bare atom (number, keyword, R).
func pdfToken(t *testing.T, b []byte, i int) (string, int) {
	t.Helper()
	switch {
	case bytes.HasPrefix(b[i:], []byte("<<")):
		d, next := canonicalDict(t, b, i)
		return string(d), next
	case b[i] == '[':
		depth := 0
		for j := i; j < len(b); j++ {
			switch b[j] {
			case '[':
				depth++
			case ']':
				depth--
				if depth == 0 {
					return string(b[i : j+1]), j + 1
				}
			case '(':
				j = skipPDFString(b, j) - 1
			}
		}
		t.Fatal("unterminated array")
	case b[i] == '(':
		j := skipPDFString(b, i)
		return string(b[i:j]), j
	case b[i] == '<':
		off := bytes.IndexByte(b[i:], '>')
		if off < 0 {
			t.Fatal("unterminated hex string")
		}
		return string(b[i : i+off+1]), i + off + 1
	}
	j := i
	if b[j] == '/' {
		j++
	}
	for j < len(b) && !isPDFDelim(b[j]) {
		j++
	}
	return string(b[i:j]), j
}

func skipPDFSpace(b []byte, i int) int {
	for i < len(b) && (b[i] == ' ' || b[i] == '\n' || b[i] == '\r' || b[i] == '\t') {
		i++
	}
	return i
}

func skipPDFString(b []byte, i int) int {
	depth := 0
	for ; i < len(b); i++ {
		switch b[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return i
}

func isPDFDelim(c byte) bool {
	switch c {
	case ' ', '\n', '\r', '\t', '/', '<', '>', '[', ']', '(', ')':
		return true
	}
	return false
}

func TestGenerateBatchEndToEnd(t *testing.T) {
	c := testComposer(t)
	tmpl := blankTemplate(t, 1)
	table := &csvdata.Table{
		Headers: []string{"Name"},
		Rows: []csvdata.Row{
			{"Name": "Alice"},
			{"Name": "Bob"},
		},
	}
	persistDir := filepath.Join(t.TempDir(), "out")

	var buf bytes.Buffer
	res, err := c.GenerateBatch(context.Background(), tmpl, []placements.FieldPlacement{namePlacement}, table, &buf, persistDir)
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}
	if res.Documents != 2 || res.Skipped != 0 {
		t.Errorf("result = %+v, want 2 documents, 0 skipped", res)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("archive unreadable: %v", err)
	}
	want := map[string]bool{"Alice.pdf": false, "Bob.pdf": false}
	for _, f := range zr.File {
		if _, ok := want[f.Name]; !ok {
			t.Errorf("unexpected archive entry %q", f.Name)
			continue
		}
		want[f.Name] = true
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data := new(bytes.Buffer)
		if _, err = data.ReadFrom(rc); err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		_ = rc.Close()
		doc, err := LoadTemplate(data.Bytes())
		if err != nil {
			t.Errorf("entry %s is not a valid PDF: %v", f.Name, err)
		} else if doc.PageCount() != 1 {
			t.Errorf("entry %s has %d pages, want 1", f.Name, doc.PageCount())
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("missing archive entry %q", name)
		}
	}

	for _, name := range []string{"Alice.pdf", "Bob.pdf"} {
		if _, err := os.Stat(filepath.Join(persistDir, name)); err != nil {
			t.Errorf("persisted copy %s: %v", name, err)
		}
	}
}

func TestGenerateBatchZeroRows(t *testing.T) {
	c := testComposer(t)
	tmpl := blankTemplate(t, 1)
	table := &csvdata.Table{Headers: []string{"Name"}}

	var buf bytes.Buffer
	res, err := c.GenerateBatch(context.Background(), tmpl, []placements.FieldPlacement{namePlacement}, table, &buf, "")
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}
	if res.Documents != 0 {
		t.Errorf("documents = %d, want 0", res.Documents)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("empty batch must still be a well-formed archive: %v", err)
	}
	if len(zr.File) != 0 {
		t.Errorf("expected empty archive, got %d entries", len(zr.File))
	}
}

func TestGenerateBatchSkipsRowsWithoutKey(t *testing.T) {
	c := testComposer(t)
	tmpl := blankTemplate(t, 1)
	table := &csvdata.Table{
		Headers: []string{"Name"},
		Rows: []csvdata.Row{
			{"Name": "Alice"},
			{"Name": "   "}, // sanitizes to empty
		},
	}
	var buf bytes.Buffer
	res, err := c.GenerateBatch(context.Background(), tmpl, []placements.FieldPlacement{namePlacement}, table, &buf, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Documents != 1 || res.Skipped != 1 {
		t.Errorf("result = %+v, want 1 document, 1 skipped", res)
	}
}

func TestGenerateBatchToleratesBlankFieldValue(t *testing.T) {
	c := testComposer(t)
	tmpl := blankTemplate(t, 1)

	title := namePlacement
	title.FieldName = "Title"
	table := &csvdata.Table{
		Headers: []string{"Name", "Title"},
		Rows:    []csvdata.Row{{"Name": "Alice", "Title": "   "}},
	}
	var buf bytes.Buffer
	res, err := c.GenerateBatch(context.Background(), tmpl, []placements.FieldPlacement{namePlacement, title}, table, &buf, "")
	if err != nil {
		t.Fatalf("blank field value must not abort the batch: %v", err)
	}
	if res.Documents != 1 || res.Skipped != 0 {
		t.Errorf("result = %+v, want 1 document, 0 skipped", res)
	}
}

func TestGenerateBatchAbortsOnRowFailure(t *testing.T) {
	c := testComposer(t)
	tmpl := blankTemplate(t, 1)

	bad := namePlacement
	bad.Color = "not-a-color" // fails at rasterization setup
	table := &csvdata.Table{
		Headers: []string{"Name"},
		Rows:    []csvdata.Row{{"Name": "Alice"}, {"Name": "Bob"}},
	}
	var buf bytes.Buffer
	if _, err := c.GenerateBatch(context.Background(), tmpl, []placements.FieldPlacement{bad}, table, &buf, ""); err == nil {
		t.Fatal("expected batch to abort on first row failure")
	}
	var renderErr *raster.RenderError
	_, err := c.Render(context.Background(), tmpl, []placements.FieldPlacement{bad}, csvdata.Row{"Name": "Alice"})
	if !errors.As(err, &renderErr) {
		t.Errorf("err = %v, want RenderError", err)
	}
}

func TestTemplateStore(t *testing.T) {
	root := t.TempDir()
	tmpl := blankTemplate(t, 1)
	if err := os.WriteFile(filepath.Join(root, "wedding.pdf"), tmpl.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewTemplateStore(root)
	got, err := store.Get("wedding.pdf")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.PageCount() != 1 {
		t.Errorf("PageCount = %d, want 1", got.PageCount())
	}

	// path traversal stays inside the root
	if _, err = store.Get("../../etc/passwd"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("traversal lookup err = %v, want ErrTemplateNotFound", err)
	}

	if _, err = store.Get("nope.pdf"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("missing template err = %v, want ErrTemplateNotFound", err)
	}
}
