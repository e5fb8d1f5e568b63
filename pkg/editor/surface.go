package editor

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrReadOnly   = errors.New("surface is read-only")
	ErrStaleDraft = errors.New("document changed since the link was started")
)

// Options are the per-render display settings of a surface.
type Options struct {
	Placeholder string
	ReadOnly    bool
}

// Surface is an editable rich-text region bound to one document value.
//
// The bound value is owned by the caller. Render reconciles it with what the
// surface displays; edits are reported through the onChange callback given
// to the latest Render. A value the surface emitted itself never causes the
// display to be rebuilt, so the caret survives the round trip through the
// caller's state.
type Surface struct {
	doc    Doc
	caret  int
	anchor int

	opts        Options
	onChange    func(string)
	loaded      bool
	lastEmitted string
	rewrites    int
	version     int

	typingBold *bool
	boldMemo   *boldMemo
}

// boldMemo remembers the formatting a bold toggle replaced so that the same
// toggle on the same selection restores it exactly.
type boldMemo struct {
	start, end int
	before     []bool
	after      string
}

// New returns an empty surface. It loads its content on the first Render.
func New() *Surface {
	return &Surface{}
}

// Render binds the surface to value. The displayed content is rebuilt only
// when value differs both from the last value this surface emitted and from
// what it currently shows; an empty value always clears the display.
func (s *Surface) Render(value string, onChange func(string), opts Options) {
	s.onChange = onChange
	s.opts = opts

	if value == "" {
		if len(s.doc) > 0 {
			s.reset(nil)
		}
		s.lastEmitted = ""
		s.loaded = true
		return
	}
	if s.loaded && value == s.lastEmitted {
		return
	}
	doc := Parse(DisplayForm(value))
	if s.loaded && Serialize(doc) == Serialize(s.doc) {
		return
	}
	s.reset(doc)
	s.lastEmitted = value
	s.loaded = true
}

func (s *Surface) reset(doc Doc) {
	s.doc = doc
	s.caret = len(doc)
	s.anchor = s.caret
	s.typingBold = nil
	s.boldMemo = nil
	s.rewrites++
}

// Doc returns a copy of the displayed document.
func (s *Surface) Doc() Doc {
	return append(Doc(nil), s.doc...)
}

// Value returns the canonical markup of the displayed document.
func (s *Surface) Value() string { return Serialize(s.doc) }

// Empty reports whether there is nothing to display, in which case the
// placeholder is shown.
func (s *Surface) Empty() bool { return len(s.doc) == 0 }

// Options returns the settings from the latest Render.
func (s *Surface) Options() Options { return s.opts }

// Rewrites counts how many times Render rebuilt the display.
func (s *Surface) Rewrites() int { return s.rewrites }

// LastEmitted returns the last value sent to onChange, or the last value loaded.
func (s *Surface) LastEmitted() string { return s.lastEmitted }

// Caret returns the caret position in cells.
func (s *Surface) Caret() int { return s.caret }

// Selection returns the ordered selection bounds; ok is false when collapsed.
func (s *Surface) Selection() (start, end int, ok bool) {
	start, end = s.anchor, s.caret
	if start > end {
		start, end = end, start
	}
	return start, end, start != end
}

// TypingBold reports whether the next typed character will be bold.
func (s *Surface) TypingBold() bool { return s.typingStyle() }

func (s *Surface) writable() error {
	if s.opts.ReadOnly {
		return ErrReadOnly
	}
	return nil
}

func (s *Surface) emit() {
	v := Serialize(s.doc)
	s.lastEmitted = v
	s.version++
	if s.onChange != nil {
		s.onChange(v)
	}
}

// Navigation

func (s *Surface) setCaret(pos int, extend bool) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.doc) {
		pos = len(s.doc)
	}
	s.caret = pos
	if !extend {
		s.anchor = pos
	}
	s.typingBold = nil
}

// SetCaret places a collapsed caret at pos.
func (s *Surface) SetCaret(pos int) { s.setCaret(pos, false) }

// Select sets the selection from anchor to head; the caret ends at head.
func (s *Surface) Select(anchor, head int) {
	s.setCaret(anchor, false)
	s.setCaret(head, true)
}

// SelectAll selects the whole document.
func (s *Surface) SelectAll() { s.Select(0, len(s.doc)) }

// MoveLeft moves the caret one cell back. Without extend, a selection
// collapses to its start.
func (s *Surface) MoveLeft(extend bool) {
	if start, _, ok := s.Selection(); ok && !extend {
		s.setCaret(start, false)
		return
	}
	s.setCaret(s.caret-1, extend)
}

// MoveRight moves the caret one cell forward. Without extend, a selection
// collapses to its end.
func (s *Surface) MoveRight(extend bool) {
	if _, end, ok := s.Selection(); ok && !extend {
		s.setCaret(end, false)
		return
	}
	s.setCaret(s.caret+1, extend)
}

func (s *Surface) lineStart(pos int) int {
	for pos > 0 && !s.doc[pos-1].IsBreak() {
		pos--
	}
	return pos
}

func (s *Surface) lineEnd(pos int) int {
	for pos < len(s.doc) && !s.doc[pos].IsBreak() {
		pos++
	}
	return pos
}

func (s *Surface) MoveLineStart(extend bool) { s.setCaret(s.lineStart(s.caret), extend) }
func (s *Surface) MoveLineEnd(extend bool)   { s.setCaret(s.lineEnd(s.caret), extend) }

// MoveUp moves to the same column on the previous line.
func (s *Surface) MoveUp(extend bool) {
	ls := s.lineStart(s.caret)
	if ls == 0 {
		s.setCaret(0, extend)
		return
	}
	col := s.caret - ls
	prev := s.lineStart(ls - 1)
	s.setCaret(min(prev+col, ls-1), extend)
}

// MoveDown moves to the same column on the next line.
func (s *Surface) MoveDown(extend bool) {
	le := s.lineEnd(s.caret)
	if le == len(s.doc) {
		s.setCaret(le, extend)
		return
	}
	col := s.caret - s.lineStart(s.caret)
	next := le + 1
	s.setCaret(min(next+col, s.lineEnd(next)), extend)
}

// Editing

func (s *Surface) replaceSelection(cells Doc) {
	start, end, _ := s.Selection()
	out := make(Doc, 0, len(s.doc)-(end-start)+len(cells))
	out = append(out, s.doc[:start]...)
	out = append(out, cells...)
	out = append(out, s.doc[end:]...)
	s.doc = out
	s.caret = start + len(cells)
	s.anchor = s.caret
	s.typingBold = nil
}

// typingStyle is the bold state new text takes: an explicit toggle if one
// is pending, otherwise whatever precedes the caret on its line.
func (s *Surface) typingStyle() bool {
	if s.typingBold != nil {
		return *s.typingBold
	}
	start, _, _ := s.Selection()
	if start > 0 && !s.doc[start-1].IsBreak() {
		return s.doc[start-1].Bold
	}
	if start < len(s.doc) && !s.doc[start].IsBreak() {
		return s.doc[start].Bold
	}
	return false
}

func textCells(text string, bold bool) Doc {
	cells := make(Doc, 0, len(text))
	for _, r := range text {
		switch r {
		case '\r':
		case '\n':
			cells = append(cells, Break)
		default:
			cells = append(cells, Cell{Rune: r, Bold: bold})
		}
	}
	return cells
}

// Type inserts text at the caret, replacing any selection. Typed text never
// extends a link.
func (s *Surface) Type(text string) error {
	if err := s.writable(); err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	s.replaceSelection(textCells(text, s.typingStyle()))
	s.emit()
	return nil
}

// Backspace deletes the selection or the cell before the caret.
func (s *Surface) Backspace() error {
	if err := s.writable(); err != nil {
		return err
	}
	if _, _, ok := s.Selection(); !ok {
		if s.caret == 0 {
			return nil
		}
		s.anchor = s.caret - 1
	}
	s.replaceSelection(nil)
	s.emit()
	return nil
}

// Delete deletes the selection or the cell after the caret.
func (s *Surface) Delete() error {
	if err := s.writable(); err != nil {
		return err
	}
	if _, _, ok := s.Selection(); !ok {
		if s.caret == len(s.doc) {
			return nil
		}
		s.anchor = s.caret + 1
	}
	s.replaceSelection(nil)
	s.emit()
	return nil
}

// Confirm handles the confirm key. A URL-looking token typed just before
// the caret becomes a link, then a line break is inserted.
func (s *Surface) Confirm() error {
	if err := s.writable(); err != nil {
		return err
	}
	if _, _, ok := s.Selection(); ok {
		s.replaceSelection(nil)
	}
	s.autolink()
	s.replaceSelection(Doc{Break})
	s.emit()
	return nil
}

// autolink converts the trailing URL of the unlinked run before the caret.
// The run ends at a break, an existing link, or a change of weight.
func (s *Surface) autolink() {
	end := s.caret
	if end == 0 {
		return
	}
	last := s.doc[end-1]
	if last.IsBreak() || last.Href != "" {
		return
	}
	start := end
	for start > 0 {
		c := s.doc[start-1]
		if c.IsBreak() || c.Href != "" || c.Bold != last.Bold {
			break
		}
		start--
	}

	text := s.doc[start:end].Text()
	loc := autolinkPattern.FindStringIndex(text)
	if loc == nil {
		return
	}
	from := start + utf8.RuneCountInString(text[:loc[0]])
	href := NormalizeHref(text[loc[0]:])
	for i := from; i < end; i++ {
		s.doc[i].Href = href
	}
}

// Paste inserts clipboard text. A payload that is a single URL becomes a
// link followed by a non-breaking space; anything else is inserted as plain
// text with newlines as breaks.
func (s *Surface) Paste(text string) error {
	if err := s.writable(); err != nil {
		return err
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		return nil
	}

	var cells Doc
	if trimmed := strings.TrimSpace(text); IsURL(trimmed) {
		href := NormalizeHref(trimmed)
		for _, r := range trimmed {
			cells = append(cells, Cell{Rune: r, Href: href})
		}
		cells = append(cells, Cell{Rune: nbsp})
	} else {
		cells = textCells(text, s.typingStyle())
	}
	s.replaceSelection(cells)
	s.emit()
	return nil
}

// ToggleBold toggles bold on the selection. Repeating it on the identical
// selection restores the previous formatting exactly. With a collapsed
// caret it toggles the style of the next typed text.
func (s *Surface) ToggleBold() error {
	if err := s.writable(); err != nil {
		return err
	}
	start, end, ok := s.Selection()
	if !ok {
		b := !s.typingStyle()
		s.typingBold = &b
		return nil
	}

	if m := s.boldMemo; m != nil && m.start == start && m.end == end && m.after == Serialize(s.doc) {
		for i, b := range m.before {
			s.doc[start+i].Bold = b
		}
		s.boldMemo = nil
		s.emit()
		return nil
	}

	before := make([]bool, end-start)
	all, text := true, false
	for i := start; i < end; i++ {
		before[i-start] = s.doc[i].Bold
		if !s.doc[i].IsBreak() {
			text = true
			all = all && s.doc[i].Bold
		}
	}
	if !text {
		return nil
	}
	for i := start; i < end; i++ {
		if !s.doc[i].IsBreak() {
			s.doc[i].Bold = !all
		}
	}
	s.boldMemo = &boldMemo{start: start, end: end, before: before, after: Serialize(s.doc)}
	s.emit()
	return nil
}

// LinkDraft is a link insertion waiting for its text and URL.
type LinkDraft struct {
	s          *Surface
	start, end int
	version    int

	// Selected is the selected text the link will wrap, if any.
	Selected string
}

// NeedsText reports whether the link text must be asked for, which is the
// case when nothing was selected.
func (d *LinkDraft) NeedsText() bool { return d.start == d.end }

// BeginLink captures the current selection for a link insertion.
func (s *Surface) BeginLink() (*LinkDraft, error) {
	if err := s.writable(); err != nil {
		return nil, err
	}
	start, end, _ := s.Selection()
	return &LinkDraft{
		s:        s,
		start:    start,
		end:      end,
		version:  s.version,
		Selected: s.doc[start:end].Text(),
	}, nil
}

// Apply inserts the link. An empty URL, or empty text when text is needed,
// cancels the draft without changing anything and returns false.
func (d *LinkDraft) Apply(text, rawURL string) (bool, error) {
	s := d.s
	if err := s.writable(); err != nil {
		return false, err
	}
	if s.version != d.version {
		return false, ErrStaleDraft
	}
	if strings.TrimSpace(rawURL) == "" || (d.NeedsText() && text == "") {
		return false, nil
	}

	href := NormalizeHref(rawURL)
	var cells Doc
	if d.NeedsText() {
		for _, r := range text {
			if r == '\n' || r == '\r' {
				continue
			}
			cells = append(cells, Cell{Rune: r, Href: href})
		}
	} else {
		cells = append(cells, s.doc[d.start:d.end]...)
		for i := range cells {
			if !cells[i].IsBreak() {
				cells[i].Href = href
			}
		}
	}

	s.anchor, s.caret = d.start, d.end
	s.replaceSelection(cells)
	s.emit()
	return true, nil
}

// Prompter asks the user for a line of text. ok is false when dismissed.
type Prompter interface {
	Prompt(message, initial string) (answer string, ok bool)
}

// InsertLink runs the whole link flow synchronously against p.
func (s *Surface) InsertLink(p Prompter) (bool, error) {
	d, err := s.BeginLink()
	if err != nil {
		return false, err
	}
	text := d.Selected
	if d.NeedsText() {
		t, ok := p.Prompt(PromptLinkText, "")
		if !ok || t == "" {
			return false, nil
		}
		text = t
	}
	u, ok := p.Prompt(PromptLinkURL, DefaultURLPrefix)
	if !ok {
		return false, nil
	}
	return d.Apply(text, u)
}
