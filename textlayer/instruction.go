package textlayer

import "bytes"

// Kind identifies the role of a content stream instruction.
type Kind int

const (
	// KindBeginText opens a text object (BT).
	KindBeginText Kind = iota
	// KindEndText closes a text object (ET).
	KindEndText
	// KindSetRenderMode sets the text rendering mode (Tr).
	KindSetRenderMode
	// KindSetFont selects the font and size (Tf).
	KindSetFont
	// KindSetPosition sets the text matrix (Tm).
	KindSetPosition
	// KindShowText shows a grouped text array with spacing
	// adjustments (TJ).
	KindShowText
	// KindSaveState saves the graphics state (q).
	KindSaveState
	// KindTransform concatenates a transformation matrix (cm).
	KindTransform
	// KindPaintImage paints an image XObject (Do).
	KindPaintImage
	// KindRestoreState restores the graphics state (Q).
	KindRestoreState
)

// String returns the operator mnemonic for the kind.
func (k Kind) String() string {
	switch k {
	case KindBeginText:
		return "BT"
	case KindEndText:
		return "ET"
	case KindSetRenderMode:
		return "Tr"
	case KindSetFont:
		return "Tf"
	case KindSetPosition:
		return "Tm"
	case KindShowText:
		return "TJ"
	case KindSaveState:
		return "q"
	case KindTransform:
		return "cm"
	case KindPaintImage:
		return "Do"
	case KindRestoreState:
		return "Q"
	default:
		return "?"
	}
}

// Instruction is one content stream command. Instructions are
// appended in final paint order and never reordered: the sequence is
// the page's paint order, and the image-paint quadruple following the
// text objects is what hides the text from view while leaving it
// selectable.
type Instruction struct {
	Kind  Kind
	Bytes []byte
}

// Encode joins the instruction sequence into content stream bytes,
// preserving order verbatim.
func Encode(instructions []Instruction) []byte {
	parts := make([][]byte, len(instructions))
	for i, in := range instructions {
		parts[i] = in.Bytes
	}
	return bytes.Join(parts, []byte("\n"))
}
