package hocr

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTitle extracts the bounding box and word confidence from an hOCR
// title attribute. The title grammar is a semicolon-separated list of
// fields; the bbox field is "bbox x1 y1 x2 y2" with space-separated
// integers and the confidence field is "x_wconf N".
//
// A missing or unparsable bbox yields the zero box rather than an
// error, so a single damaged attribute never fails the whole document.
// Confidence is -1 when absent.
func ParseTitle(title string) (BBox, float64) {
	box := BBox{}
	conf := -1.0

	for _, field := range strings.Split(title, ";") {
		parts := strings.Fields(field)
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "bbox":
			if b, ok := parseBBoxField(parts); ok {
				box = b
			}
		case "x_wconf":
			if len(parts) >= 2 {
				if c, err := strconv.ParseFloat(parts[1], 64); err == nil {
					conf = c
				}
			}
		}
	}

	return box, conf
}

// parseBBoxField parses the fields of a "bbox x1 y1 x2 y2" entry that
// has already been split on whitespace.
func parseBBoxField(parts []string) (BBox, bool) {
	if len(parts) < 5 {
		return BBox{}, false
	}
	coords := make([]int, 4)
	for i := 0; i < 4; i++ {
		n, err := strconv.Atoi(parts[i+1])
		if err != nil {
			return BBox{}, false
		}
		coords[i] = n
	}
	return BBox{X1: coords[0], Y1: coords[1], X2: coords[2], Y2: coords[3]}, true
}

// FormatBBox renders a bounding box in the hOCR title field form.
func FormatBBox(b BBox) string {
	return fmt.Sprintf("bbox %d %d %d %d", b.X1, b.Y1, b.X2, b.Y2)
}

// ReplaceBBox returns title with its bbox field rewritten to b. All
// other fields (confidence, baseline, and any engine-specific entries)
// are preserved verbatim. If the title has no bbox field the new one is
// inserted at the front, matching the conventional field order.
func ReplaceBBox(title string, b BBox) string {
	if strings.TrimSpace(title) == "" {
		return FormatBBox(b)
	}

	var fields []string
	replaced := false
	for _, field := range strings.Split(title, ";") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if strings.HasPrefix(field, "bbox") {
			fields = append(fields, FormatBBox(b))
			replaced = true
			continue
		}
		fields = append(fields, field)
	}
	if !replaced {
		fields = append([]string{FormatBBox(b)}, fields...)
	}

	return strings.Join(fields, "; ")
}
