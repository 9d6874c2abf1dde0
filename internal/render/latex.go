package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"unicode"
)

// DefaultLatexFontSize is the formula body size in points.
const DefaultLatexFontSize = 20

// scriptScale is the size ratio of superscripts and subscripts.
const scriptScale = 0.7

var latexSymbols = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ε", "varepsilon": "ε",
	"zeta": "ζ", "eta": "η", "theta": "θ", "vartheta": "ϑ", "iota": "ι", "kappa": "κ",
	"lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ", "pi": "π", "rho": "ρ", "sigma": "σ",
	"tau": "τ", "upsilon": "υ", "phi": "φ", "varphi": "φ", "chi": "χ", "psi": "ψ", "omega": "ω",
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ", "Xi": "Ξ", "Pi": "Π",
	"Sigma": "Σ", "Phi": "Φ", "Psi": "Ψ", "Omega": "Ω",
	"sum": "∑", "prod": "∏", "int": "∫", "oint": "∮", "infty": "∞", "partial": "∂", "nabla": "∇",
	"cdot": "·", "times": "×", "div": "÷", "pm": "±", "mp": "∓", "leq": "≤", "le": "≤",
	"geq": "≥", "ge": "≥", "neq": "≠", "ne": "≠", "approx": "≈", "equiv": "≡", "sim": "∼",
	"propto": "∝", "to": "→", "rightarrow": "→", "leftarrow": "←", "Rightarrow": "⇒",
	"Leftarrow": "⇐", "leftrightarrow": "↔", "mapsto": "↦", "in": "∈", "notin": "∉",
	"subset": "⊂", "subseteq": "⊆", "cup": "∪", "cap": "∩", "forall": "∀", "exists": "∃",
	"emptyset": "∅", "cdots": "⋯", "ldots": "…", "dots": "…", "prime": "′", "circ": "∘",
	"log": "log", "ln": "ln", "exp": "exp", "sin": "sin", "cos": "cos", "tan": "tan",
	"max": "max", "min": "min", "lim": "lim", "arg": "arg", "det": "det",
	"lbrace": "{", "rbrace": "}", "langle": "⟨", "rangle": "⟩", "vert": "|", "mid": "|",
}

var latexSpaces = map[string]string{
	",": " ", ";": " ", ":": " ", "!": "", " ": " ", "quad": "  ", "qquad": "    ",
}

// textCommands print their argument verbatim.
var textCommands = map[string]bool{
	"text": true, "mathrm": true, "mathbf": true, "mathit": true, "mathsf": true,
	"mathtt": true, "operatorname": true, "textbf": true, "boldsymbol": true, "mathcal": true,
}

// mathRun is a stretch of text at one vertical position.
type mathRun struct {
	text  string
	shift int // 0 baseline, 1 superscript, -1 subscript
}

// LatexRenderer rasterizes display formulas onto a transparent PNG cropped
// tight to the ink. It covers the common subset used in notebooks: Greek
// letters, operators, fractions, roots, sub- and superscripts.
//
// Layout is a single baseline with raised and lowered scripts, nothing is
// stacked: \frac{a}{b} prints inline as (a)/(b) and \sqrt has no overbar.
// Glyphs come from the Go fonts, which only carry the WGL4 repertoire. Set
// and logic symbols (\nabla, \in, \subset, \forall, \emptyset), double
// arrows and angle brackets fall back to the font's missing-glyph box.
type LatexRenderer struct {
	fontSize float64
	ink      color.Color
}

// NewLatexRenderer creates a LatexRenderer. A size <= 0 selects the default.
func NewLatexRenderer(fontSize float64) *LatexRenderer {
	if fontSize <= 0 {
		fontSize = DefaultLatexFontSize
	}
	return &LatexRenderer{fontSize: fontSize, ink: color.Black}
}

// Render draws formula, one output line per input line, and returns PNG bytes.
func (r *LatexRenderer) Render(formula string) ([]byte, error) {
	lines := strings.Split(strings.TrimRight(formula, "\n"), "\n")
	var parsed [][]mathRun
	for _, l := range lines {
		parsed = append(parsed, typeset(l))
	}
	if strings.TrimSpace(runsText(parsed)) == "" {
		return nil, ErrEmptyFormula
	}

	body, err := loadRegular(r.fontSize)
	if err != nil {
		return nil, err
	}
	script, err := loadRegular(r.fontSize * scriptScale)
	if err != nil {
		return nil, err
	}

	lineH := body.px() * 16 / 10
	width := 0
	for _, runs := range parsed {
		w := 0
		for _, run := range runs {
			w += faceFor(run, body, script).width(run.text)
		}
		width = max(width, w)
	}
	pad := body.px()
	img := image.NewRGBA(image.Rect(0, 0, width+2*pad, len(parsed)*lineH+2*pad))

	bodyCtx := newContext(img, body, r.ink)
	scriptCtx := newContext(img, script, r.ink)
	baseline := pad + body.ascent()
	for _, runs := range parsed {
		x := pad
		for _, run := range runs {
			fc, face, y := bodyCtx, body, baseline
			switch run.shift {
			case 1:
				fc, face, y = scriptCtx, script, baseline-body.px()*4/10
			case -1:
				fc, face, y = scriptCtx, script, baseline+body.px()*2/10
			}
			if _, err := drawString(fc, run.text, x, y); err != nil {
				return nil, fmt.Errorf("drawing formula: %w", err)
			}
			x += face.width(run.text)
		}
		baseline += lineH
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropImage(img, alphaBounds(img))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

func faceFor(run mathRun, body, script *fontFace) *fontFace {
	if run.shift != 0 {
		return script
	}
	return body
}

func runsText(lines [][]mathRun) string {
	var b strings.Builder
	for _, runs := range lines {
		for _, r := range runs {
			b.WriteString(r.text)
		}
	}
	return b.String()
}

// alphaBounds is the bounding box of non-transparent pixels.
func alphaBounds(img *image.RGBA) image.Rectangle {
	b := img.Bounds()
	x0, y0, x1, y1 := b.Max.X, b.Max.Y, b.Min.X, b.Min.Y
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y).A == 0 {
				continue
			}
			x0, y0 = min(x0, x), min(y0, y)
			x1, y1 = max(x1, x+1), max(y1, y+1)
		}
	}
	if x1 <= x0 || y1 <= y0 {
		return b
	}
	return image.Rect(x0, y0, x1, y1)
}

// typeset converts one line of LaTeX math into positioned text runs.
func typeset(src string) []mathRun {
	var runs []mathRun
	p := &mathParser{src: []rune(src)}
	p.parse(0, &runs, false)
	return mergeRuns(runs)
}

type mathParser struct {
	src []rune
	pos int
}

// parse consumes until end of input, or a closing brace when inGroup is set.
func (p *mathParser) parse(shift int, out *[]mathRun, inGroup bool) {
	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		switch ch {
		case '}':
			p.pos++
			if inGroup {
				return
			}
		case '{':
			p.pos++
			p.parse(shift, out, true)
		case '$', '&':
			p.pos++
		case '^', '_':
			p.pos++
			sub := 1
			if ch == '_' {
				sub = -1
			}
			next := shift
			if shift == 0 {
				next = sub
			}
			p.parseArgument(next, out)
		case '\\':
			p.pos++
			p.command(shift, out)
		default:
			p.pos++
			emit(out, string(ch), shift)
		}
	}
}

// parseArgument reads one braced group or a single token.
func (p *mathParser) parseArgument(shift int, out *[]mathRun) {
	p.skipSpaces()
	if p.pos >= len(p.src) {
		return
	}
	switch p.src[p.pos] {
	case '{':
		p.pos++
		p.parse(shift, out, true)
	case '\\':
		p.pos++
		p.command(shift, out)
	default:
		emit(out, string(p.src[p.pos]), shift)
		p.pos++
	}
}

func (p *mathParser) command(shift int, out *[]mathRun) {
	if p.pos >= len(p.src) {
		return
	}
	start := p.pos
	if !unicode.IsLetter(p.src[p.pos]) {
		p.pos++
		name := string(p.src[start:p.pos])
		if sp, ok := latexSpaces[name]; ok {
			emit(out, sp, shift)
		} else if name != "\\" {
			emit(out, name, shift)
		}
		return
	}
	for p.pos < len(p.src) && unicode.IsLetter(p.src[p.pos]) {
		p.pos++
	}
	name := string(p.src[start:p.pos])

	switch {
	case name == "frac" || name == "dfrac" || name == "tfrac":
		emit(out, "(", shift)
		p.parseArgument(shift, out)
		emit(out, ")/(", shift)
		p.parseArgument(shift, out)
		emit(out, ")", shift)
	case name == "sqrt":
		emit(out, "√(", shift)
		p.parseArgument(shift, out)
		emit(out, ")", shift)
	case name == "left" || name == "right" || name == "big" || name == "Big":
		// the delimiter that follows is printed as is
	case name == "begin" || name == "end":
		var discard []mathRun
		p.parseArgument(shift, &discard)
	case textCommands[name]:
		p.parseArgument(shift, out)
	case latexSpaces[name] != "":
		emit(out, latexSpaces[name], shift)
	default:
		if sym, ok := latexSymbols[name]; ok {
			emit(out, sym, shift)
		} else {
			emit(out, name, shift)
		}
	}
}

func (p *mathParser) skipSpaces() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func emit(out *[]mathRun, text string, shift int) {
	if text == "" {
		return
	}
	*out = append(*out, mathRun{text: text, shift: shift})
}

func mergeRuns(runs []mathRun) []mathRun {
	var merged []mathRun
	for _, r := range runs {
		if n := len(merged); n > 0 && merged[n-1].shift == r.shift {
			merged[n-1].text += r.text
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
