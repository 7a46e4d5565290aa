package reader

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/tsawler/rubrica/model"
)

// glyphWidthFactor estimates glyph advance as a fraction of the font size
// when no width table is available. Half an em tracks the average width of
// Latin text in common faces closely enough for bounding boxes.
const glyphWidthFactor = 0.5

// pdfName distinguishes name operands like /F1 from string operands.
type pdfName string

// textState mirrors the PDF text state parameters the scanner needs to
// place shown strings. tm and tlm are the text matrix and the text line
// matrix.
type textState struct {
	fontName   string
	fontSize   float64
	charSpace  float64
	wordSpace  float64
	horizScale float64 // percent, set by Tz
	leading    float64
	rise       float64
	tm         model.Matrix
	tlm        model.Matrix
}

// graphicsState is the subset of the PDF graphics state that affects text
// placement. q and Q copy the whole value.
type graphicsState struct {
	ctm  model.Matrix
	text textState
}

// scanner walks a decoded content stream and records a Span for every text
// showing operator. Operators outside the text subset consume their
// operands and are otherwise ignored. Malformed input resynchronizes at
// the next token instead of aborting the page.
type scanner struct {
	data     []byte
	pos      int
	operands []any
	fonts    map[string]fontSpec
	gs       graphicsState
	stack    []graphicsState
	spans    []Span
}

func newScanner(data []byte, fonts map[string]fontSpec) *scanner {
	return &scanner{
		data:  data,
		fonts: fonts,
		gs: graphicsState{
			ctm: model.Identity(),
			text: textState{
				fontSize:   12,
				horizScale: 100,
				tm:         model.Identity(),
				tlm:        model.Identity(),
			},
		},
	}
}

// scan runs the operator loop over the whole stream and returns the spans
// collected along the way.
func (sc *scanner) scan() []Span {
	for sc.pos < len(sc.data) {
		sc.skipWhitespace()
		if sc.pos >= len(sc.data) {
			break
		}

		c := sc.data[sc.pos]
		switch {
		case c == '%':
			sc.skipComment()
		case isOperatorByte(c):
			sc.apply(sc.readOperator())
		default:
			operand, ok := sc.readOperand()
			if !ok {
				// Resync: drop pending operands and skip the byte.
				sc.operands = sc.operands[:0]
				sc.pos++
				continue
			}
			sc.operands = append(sc.operands, operand)
		}
	}
	return sc.spans
}

// apply dispatches one operator against the pending operand stack. The
// stack is cleared afterwards whether or not the operator was understood.
func (sc *scanner) apply(op string) {
	st := &sc.gs.text

	switch op {
	case "q":
		sc.stack = append(sc.stack, sc.gs)
	case "Q":
		if n := len(sc.stack); n > 0 {
			sc.gs = sc.stack[n-1]
			sc.stack = sc.stack[:n-1]
		}
	case "cm":
		if m, ok := sc.matrixOperands(); ok {
			sc.gs.ctm = m.Multiply(sc.gs.ctm)
		}

	case "BT":
		st.tm = model.Identity()
		st.tlm = model.Identity()
	case "ET":
		// Text objects need no teardown.

	case "Tf":
		if len(sc.operands) == 2 {
			name, okN := sc.operands[0].(pdfName)
			size, okS := toFloat(sc.operands[1])
			if okN && okS {
				st.fontName = string(name)
				st.fontSize = size
			}
		}
	case "Tc":
		if v, ok := sc.singleFloat(); ok {
			st.charSpace = v
		}
	case "Tw":
		if v, ok := sc.singleFloat(); ok {
			st.wordSpace = v
		}
	case "Tz":
		if v, ok := sc.singleFloat(); ok {
			st.horizScale = v
		}
	case "TL":
		if v, ok := sc.singleFloat(); ok {
			st.leading = v
		}
	case "Ts":
		if v, ok := sc.singleFloat(); ok {
			st.rise = v
		}

	case "Tm":
		if m, ok := sc.matrixOperands(); ok {
			st.tm = m
			st.tlm = m
		}
	case "Td":
		if tx, ty, ok := sc.pairFloats(); ok {
			sc.translateLine(tx, ty)
		}
	case "TD":
		if tx, ty, ok := sc.pairFloats(); ok {
			st.leading = -ty
			sc.translateLine(tx, ty)
		}
	case "T*":
		sc.translateLine(0, -st.leading)

	case "Tj":
		if len(sc.operands) == 1 {
			if s, ok := sc.operands[0].(string); ok {
				sc.showText(s)
			}
		}
	case "TJ":
		if len(sc.operands) == 1 {
			if arr, ok := sc.operands[0].([]any); ok {
				sc.showTextArray(arr)
			}
		}
	case "'":
		if len(sc.operands) == 1 {
			if s, ok := sc.operands[0].(string); ok {
				sc.translateLine(0, -st.leading)
				sc.showText(s)
			}
		}
	case "\"":
		if len(sc.operands) == 3 {
			aw, okW := toFloat(sc.operands[0])
			ac, okC := toFloat(sc.operands[1])
			s, okS := sc.operands[2].(string)
			if okW && okC && okS {
				st.wordSpace = aw
				st.charSpace = ac
				sc.translateLine(0, -st.leading)
				sc.showText(s)
			}
		}

	case "ID":
		sc.skipInlineImage()
	}

	sc.operands = sc.operands[:0]
}

// translateLine implements Td: the next line starts at a fixed offset from
// the previous line start, and the text matrix resets to the line start.
func (sc *scanner) translateLine(tx, ty float64) {
	st := &sc.gs.text
	st.tlm = model.Translate(tx, ty).Multiply(st.tlm)
	st.tm = st.tlm
}

// showText records a span for a shown string and advances the text matrix
// by the estimated width of the string. Whitespace-only strings advance
// the position without producing a span.
func (sc *scanner) showText(raw string) {
	st := &sc.gs.text
	trm := st.tm.Multiply(sc.gs.ctm)
	origin := trm.Transform(model.Point{X: 0, Y: st.rise})
	advance := sc.advanceWidth(raw)
	end := trm.Transform(model.Point{X: advance, Y: st.rise})

	if text := decodeText(raw); strings.TrimSpace(text) != "" {
		size := st.fontSize * trm.ScaleFactor()
		name, flags := sc.resolveFont(st.fontName)
		sc.spans = append(sc.spans, Span{
			Text:     text,
			FontSize: size,
			FontName: name,
			Bold:     model.BoldFontName(name) || flags&model.ForceBoldFlag != 0,
			BBox: model.NewBBox(
				math.Min(origin.X, end.X),
				math.Min(origin.Y, end.Y),
				math.Abs(end.X-origin.X),
				size,
			),
		})
	}

	st.tm = model.Translate(advance, 0).Multiply(st.tm)
}

// showTextArray implements TJ. Numeric entries shift the text matrix by
// -n/1000 of the font size, the kerning convention of the operator.
func (sc *scanner) showTextArray(arr []any) {
	st := &sc.gs.text
	for _, item := range arr {
		switch v := item.(type) {
		case string:
			sc.showText(v)
		case float64:
			shift := -v / 1000 * st.fontSize * st.horizScale / 100
			st.tm = model.Translate(shift, 0).Multiply(st.tm)
		}
	}
}

// advanceWidth estimates the text-space advance of a shown string. Without
// width tables each glyph counts glyphWidthFactor of an em; character and
// word spacing follow the text state, and horizontal scaling applies to
// the whole advance.
func (sc *scanner) advanceWidth(raw string) float64 {
	st := &sc.gs.text
	n := float64(len(raw))
	spaces := float64(strings.Count(raw, " "))
	advance := n*st.fontSize*glyphWidthFactor + n*st.charSpace + spaces*st.wordSpace
	return advance * st.horizScale / 100
}

// resolveFont maps a font resource name to its base font name and
// descriptor flags. Unregistered resources fall back to the resource name
// itself, which still lets name-based bold detection work for streams
// that reference fonts the page dictionary does not declare.
func (sc *scanner) resolveFont(resource string) (string, int) {
	if spec, ok := sc.fonts[resource]; ok && spec.baseName != "" {
		return spec.baseName, spec.flags
	}
	return resource, 0
}

// decodeText converts raw string bytes to display text. Simple fonts
// store text close enough to Latin-1 to pass through; composite fonts
// commonly store UTF-16BE, detected by a BOM or by the zero high bytes
// Latin text produces in a two-byte encoding.
func decodeText(raw string) string {
	b := []byte(raw)
	if !looksUTF16BE(b) {
		return raw
	}
	dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	decoded, err := dec.Bytes(b)
	if err != nil {
		return raw
	}
	return string(decoded)
}

// looksUTF16BE reports whether at least half of the byte pairs have a zero
// high byte, or the data starts with a big-endian BOM.
func looksUTF16BE(b []byte) bool {
	if len(b) < 2 || len(b)%2 != 0 {
		return false
	}
	if b[0] == 0xFE && b[1] == 0xFF {
		return true
	}
	zeros := 0
	for i := 0; i < len(b); i += 2 {
		if b[i] == 0 {
			zeros++
		}
	}
	return zeros*2 >= len(b)/2
}

// Operand helpers.

func toFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func (sc *scanner) singleFloat() (float64, bool) {
	if len(sc.operands) != 1 {
		return 0, false
	}
	return toFloat(sc.operands[0])
}

func (sc *scanner) pairFloats() (float64, float64, bool) {
	if len(sc.operands) != 2 {
		return 0, 0, false
	}
	tx, okX := toFloat(sc.operands[0])
	ty, okY := toFloat(sc.operands[1])
	return tx, ty, okX && okY
}

func (sc *scanner) matrixOperands() (model.Matrix, bool) {
	if len(sc.operands) != 6 {
		return model.Matrix{}, false
	}
	var m model.Matrix
	for i, operand := range sc.operands {
		v, ok := toFloat(operand)
		if !ok {
			return model.Matrix{}, false
		}
		m[i] = v
	}
	return m, true
}

// Tokenizer.

// readOperator consumes an operator token: letters plus the quote forms
// (' and "), T*, and the digit suffixes of d0/d1.
func (sc *scanner) readOperator() string {
	start := sc.pos
	for sc.pos < len(sc.data) {
		c := sc.data[sc.pos]
		if isLetterByte(c) || c == '\'' || c == '"' || c == '*' || (c >= '0' && c <= '9') {
			sc.pos++
		} else {
			break
		}
	}
	return string(sc.data[start:sc.pos])
}

// readOperand reads one operand. The boolean result is false when the
// input at the current position cannot start an operand.
func (sc *scanner) readOperand() (any, bool) {
	sc.skipWhitespace()
	if sc.pos >= len(sc.data) {
		return nil, false
	}

	c := sc.data[sc.pos]
	switch {
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return sc.readNumber()
	case c == '(':
		return sc.readLiteralString()
	case c == '/':
		return sc.readName(), true
	case c == '[':
		return sc.readArray()
	case c == '<':
		if sc.pos+1 < len(sc.data) && sc.data[sc.pos+1] == '<' {
			return sc.readDict()
		}
		return sc.readHexString()
	default:
		return sc.readKeyword()
	}
}

// readKeyword reads a bare keyword operand. Only keywords inside arrays
// and dictionaries reach this; at the top level letters parse as
// operators.
func (sc *scanner) readKeyword() (any, bool) {
	start := sc.pos
	for sc.pos < len(sc.data) && !isWhitespaceByte(sc.data[sc.pos]) && !isDelimiterByte(sc.data[sc.pos]) {
		sc.pos++
	}
	switch string(sc.data[start:sc.pos]) {
	case "true":
		return true, true
	case "false":
		return false, true
	case "null":
		return nil, true
	}
	sc.pos = start
	return nil, false
}

// readNumber parses an integer or real. All numbers surface as float64.
func (sc *scanner) readNumber() (any, bool) {
	start := sc.pos
	if c := sc.data[sc.pos]; c == '+' || c == '-' {
		sc.pos++
	}
	digits := false
	for sc.pos < len(sc.data) {
		c := sc.data[sc.pos]
		if c >= '0' && c <= '9' {
			digits = true
			sc.pos++
		} else if c == '.' {
			sc.pos++
		} else {
			break
		}
	}
	v, err := strconv.ParseFloat(string(sc.data[start:sc.pos]), 64)
	if err != nil || !digits {
		sc.pos = start
		return nil, false
	}
	return v, true
}

// readLiteralString parses a (...) string with escape sequences and
// balanced nested parentheses.
func (sc *scanner) readLiteralString() (any, bool) {
	sc.pos++ // consume '('
	var out []byte
	depth := 1

	for sc.pos < len(sc.data) {
		c := sc.data[sc.pos]
		switch {
		case c == '\\' && sc.pos+1 < len(sc.data):
			sc.pos++
			out = sc.appendEscape(out)
		case c == '(':
			depth++
			out = append(out, c)
			sc.pos++
		case c == ')':
			depth--
			sc.pos++
			if depth == 0 {
				return string(out), true
			}
			out = append(out, c)
		default:
			out = append(out, c)
			sc.pos++
		}
	}
	return nil, false // unterminated
}

// appendEscape handles the byte after a backslash inside a literal string.
func (sc *scanner) appendEscape(out []byte) []byte {
	c := sc.data[sc.pos]
	switch c {
	case 'n':
		out = append(out, '\n')
	case 'r':
		out = append(out, '\r')
	case 't':
		out = append(out, '\t')
	case 'b':
		out = append(out, '\b')
	case 'f':
		out = append(out, '\f')
	case '(', ')', '\\':
		out = append(out, c)
	case '\r':
		// Escaped line break continues the string. Swallow a paired LF.
		if sc.pos+1 < len(sc.data) && sc.data[sc.pos+1] == '\n' {
			sc.pos++
		}
	case '\n':
		// Escaped line break, nothing emitted.
	case '0', '1', '2', '3', '4', '5', '6', '7':
		// Octal escape, one to three digits.
		v := int(c - '0')
		for i := 0; i < 2 && sc.pos+1 < len(sc.data); i++ {
			next := sc.data[sc.pos+1]
			if next < '0' || next > '7' {
				break
			}
			v = v*8 + int(next-'0')
			sc.pos++
		}
		out = append(out, byte(v&0xFF))
	default:
		// Unknown escape: the backslash is dropped, the byte kept.
		out = append(out, c)
	}
	sc.pos++
	return out
}

// readHexString parses a <...> string. An odd final digit is padded with
// a trailing zero nibble.
func (sc *scanner) readHexString() (any, bool) {
	sc.pos++ // consume '<'
	var out []byte
	var hi byte
	haveHigh := false

	for sc.pos < len(sc.data) {
		c := sc.data[sc.pos]
		switch {
		case c == '>':
			sc.pos++
			if haveHigh {
				out = append(out, hi<<4)
			}
			return string(out), true
		case isWhitespaceByte(c):
			sc.pos++
		case isHexByte(c):
			if haveHigh {
				out = append(out, hi<<4|hexVal(c))
				haveHigh = false
			} else {
				hi = hexVal(c)
				haveHigh = true
			}
			sc.pos++
		default:
			return nil, false
		}
	}
	return nil, false
}

// readName parses a /Name with #XX escape handling.
func (sc *scanner) readName() pdfName {
	sc.pos++ // consume '/'
	var out []byte

	for sc.pos < len(sc.data) {
		c := sc.data[sc.pos]
		if isWhitespaceByte(c) || isDelimiterByte(c) {
			break
		}
		if c == '#' && sc.pos+2 < len(sc.data) && isHexByte(sc.data[sc.pos+1]) && isHexByte(sc.data[sc.pos+2]) {
			out = append(out, hexVal(sc.data[sc.pos+1])<<4|hexVal(sc.data[sc.pos+2]))
			sc.pos += 3
			continue
		}
		out = append(out, c)
		sc.pos++
	}
	return pdfName(out)
}

func (sc *scanner) readArray() (any, bool) {
	sc.pos++ // consume '['
	arr := make([]any, 0, 4)

	for sc.pos < len(sc.data) {
		sc.skipWhitespace()
		if sc.pos >= len(sc.data) {
			return nil, false
		}
		if sc.data[sc.pos] == ']' {
			sc.pos++
			return arr, true
		}
		operand, ok := sc.readOperand()
		if !ok {
			return nil, false
		}
		arr = append(arr, operand)
	}
	return nil, false
}

// readDict parses the << ... >> form. Content streams carry dictionaries
// only as marked-content and inline image operands, which the scanner
// discards, so values are parsed just far enough to stay in sync.
func (sc *scanner) readDict() (any, bool) {
	sc.pos += 2 // consume '<<'
	dict := make(map[string]any)

	for sc.pos < len(sc.data) {
		sc.skipWhitespace()
		if sc.pos+1 < len(sc.data) && sc.data[sc.pos] == '>' && sc.data[sc.pos+1] == '>' {
			sc.pos += 2
			return dict, true
		}
		if sc.pos >= len(sc.data) || sc.data[sc.pos] != '/' {
			return nil, false
		}
		key := sc.readName()
		value, ok := sc.readOperand()
		if !ok {
			return nil, false
		}
		dict[string(key)] = value
	}
	return nil, false
}

func (sc *scanner) skipWhitespace() {
	for sc.pos < len(sc.data) && isWhitespaceByte(sc.data[sc.pos]) {
		sc.pos++
	}
}

// skipComment advances past a % comment to the end of the line.
func (sc *scanner) skipComment() {
	for sc.pos < len(sc.data) && sc.data[sc.pos] != '\n' && sc.data[sc.pos] != '\r' {
		sc.pos++
	}
}

// skipInlineImage advances past the binary payload of a BI/ID/EI inline
// image. The payload has no declared length, so the scanner
// resynchronizes on an EI marker at a token boundary.
func (sc *scanner) skipInlineImage() {
	for sc.pos+1 < len(sc.data) {
		if sc.data[sc.pos] == 'E' && sc.data[sc.pos+1] == 'I' &&
			(sc.pos == 0 || isWhitespaceByte(sc.data[sc.pos-1])) &&
			(sc.pos+2 >= len(sc.data) || isWhitespaceByte(sc.data[sc.pos+2])) {
			sc.pos += 2
			return
		}
		sc.pos++
	}
	sc.pos = len(sc.data)
}

// Byte classification.

func isOperatorByte(c byte) bool {
	return isLetterByte(c) || c == '\'' || c == '"'
}

func isLetterByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWhitespaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isDelimiterByte(c byte) bool {
	return c == '(' || c == ')' || c == '<' || c == '>' ||
		c == '[' || c == ']' || c == '{' || c == '}' ||
		c == '/' || c == '%'
}

func isHexByte(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
