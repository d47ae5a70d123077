package pdfpage

import (
	"bytes"
	"fmt"
	"sort"
)

// writer accumulates a PDF file body and tracks the byte offset of
// every indirect object for the cross-reference table.
type writer struct {
	buf     bytes.Buffer
	offsets map[int]int
}

func newWriter() *writer {
	w := &writer{offsets: make(map[int]int)}
	// Binary comment line per convention, so transfer tools treat the
	// file as binary.
	w.buf.WriteString("%PDF-1.5\n%\xe2\xe3\xcf\xd3\n")
	return w
}

func (w *writer) beginObject(num int) {
	w.offsets[num] = w.buf.Len()
	fmt.Fprintf(&w.buf, "%d 0 obj\n", num)
}

func (w *writer) endObject() {
	w.buf.WriteString("\nendobj\n")
}

func (w *writer) writeString(s string) {
	w.buf.WriteString(s)
}

func (w *writer) writeStream(dict string, data []byte) {
	w.buf.WriteString(dict)
	w.buf.WriteString("\nstream\n")
	w.buf.Write(data)
	w.buf.WriteString("\nendstream")
}

// writeXref emits the cross-reference table and trailer. Object
// numbers are assigned contiguously from 1, so the table is a single
// subsection starting at the free-list head.
func (w *writer) writeXref() {
	nums := make([]int, 0, len(w.offsets))
	for n := range w.offsets {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	start := w.buf.Len()
	fmt.Fprintf(&w.buf, "xref\n0 %d\n", len(nums)+1)
	w.buf.WriteString("0000000000 65535 f \n")
	for _, n := range nums {
		fmt.Fprintf(&w.buf, "%010d 00000 n \n", w.offsets[n])
	}
	fmt.Fprintf(&w.buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(nums)+1, start)
}

func (w *writer) bytes() []byte {
	return w.buf.Bytes()
}
