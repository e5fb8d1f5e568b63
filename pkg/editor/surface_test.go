package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// binding plays the role of the caller's state: it stores every emitted value.
type binding struct {
	value   string
	emitted []string
}

func (b *binding) onChange(v string) {
	b.value = v
	b.emitted = append(b.emitted, v)
}

func setupSurface(t *testing.T, value string) (*Surface, *binding) {
	t.Helper()
	b := &binding{value: value}
	s := New()
	s.Render(b.value, b.onChange, Options{Placeholder: "Digite..."})
	return s, b
}

func (b *binding) rerender(s *Surface) {
	s.Render(b.value, b.onChange, s.Options())
}

type fakePrompter struct {
	answers []string
	asked   []string
}

func (p *fakePrompter) Prompt(message, initial string) (string, bool) {
	p.asked = append(p.asked, message+"|"+initial)
	if len(p.answers) == 0 {
		return "", false
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, true
}

func TestFirstRenderLoads(t *testing.T) {
	s, _ := setupSurface(t, "- a\n- b")
	assert.Equal(t, 1, s.Rewrites())
	assert.Equal(t, "- a<br>- b", s.Value())
	assert.Equal(t, len(s.Doc()), s.Caret())
}

func TestSelfEmittedValueDoesNotRewrite(t *testing.T) {
	s, b := setupSurface(t, "abc")
	s.SetCaret(1)

	require.NoError(t, s.Type("X"))
	assert.Equal(t, "aXbc", b.value)
	b.rerender(s)

	assert.Equal(t, 1, s.Rewrites())
	assert.Equal(t, 2, s.Caret())

	require.NoError(t, s.Type("Y"))
	b.rerender(s)
	assert.Equal(t, "aXYbc", b.value)
	assert.Equal(t, 1, s.Rewrites())
	assert.Equal(t, 3, s.Caret())
}

func TestExternalValueRewrites(t *testing.T) {
	s, b := setupSurface(t, "week one")
	require.NoError(t, s.Type("!"))
	b.rerender(s)

	b.value = "<b>week two</b>"
	b.rerender(s)
	assert.Equal(t, 2, s.Rewrites())
	assert.Equal(t, "<b>week two</b>", s.Value())

	// Same content in a different spelling does not rebuild the display.
	b.value = "<strong>week two</strong>"
	b.rerender(s)
	assert.Equal(t, 2, s.Rewrites())
}

func TestEmptyValueClears(t *testing.T) {
	s, b := setupSurface(t, "x")
	b.value = ""
	b.rerender(s)
	assert.True(t, s.Empty())
	assert.Equal(t, "Digite...", s.Options().Placeholder)

	require.NoError(t, s.Type("y"))
	require.NoError(t, s.Backspace())
	assert.Equal(t, "", b.value)
	b.rerender(s)
	assert.Equal(t, 2, s.Rewrites())
}

func TestReadOnlyRejectsMutations(t *testing.T) {
	s := New()
	b := &binding{}
	s.Render("<b>fixed</b>", b.onChange, Options{ReadOnly: true})

	assert.ErrorIs(t, s.Type("x"), ErrReadOnly)
	assert.ErrorIs(t, s.Backspace(), ErrReadOnly)
	assert.ErrorIs(t, s.Delete(), ErrReadOnly)
	assert.ErrorIs(t, s.Confirm(), ErrReadOnly)
	assert.ErrorIs(t, s.Paste("x"), ErrReadOnly)
	assert.ErrorIs(t, s.ToggleBold(), ErrReadOnly)
	_, err := s.BeginLink()
	assert.ErrorIs(t, err, ErrReadOnly)

	assert.Empty(t, b.emitted)
	assert.Equal(t, "<b>fixed</b>", s.Value())

	s.MoveLeft(false)
	assert.Equal(t, 4, s.Caret())
}

func TestBackspaceAndDelete(t *testing.T) {
	s, b := setupSurface(t, "abc")
	require.NoError(t, s.Backspace())
	assert.Equal(t, "ab", b.value)

	s.SetCaret(0)
	require.NoError(t, s.Backspace())
	assert.Len(t, b.emitted, 1)

	require.NoError(t, s.Delete())
	assert.Equal(t, "b", b.value)

	s.SelectAll()
	require.NoError(t, s.Delete())
	assert.Equal(t, "", b.value)
}

func TestToggleBoldRoundTrip(t *testing.T) {
	s, b := setupSurface(t, "ab<b>cd</b>ef")
	original := s.Value()

	s.Select(1, 5)
	require.NoError(t, s.ToggleBold())
	assert.Equal(t, "a<b>bcde</b>f", b.value)

	require.NoError(t, s.ToggleBold())
	assert.Equal(t, original, b.value)

	require.NoError(t, s.ToggleBold())
	require.NoError(t, s.ToggleBold())
	assert.Equal(t, original, b.value)
}

func TestToggleBoldAllBoldUnbolds(t *testing.T) {
	s, b := setupSurface(t, "<b>abc</b>")
	s.Select(0, 3)
	require.NoError(t, s.ToggleBold())
	assert.Equal(t, "abc", b.value)
}

func TestToggleBoldCollapsedAffectsTyping(t *testing.T) {
	s, b := setupSurface(t, "a")
	require.NoError(t, s.ToggleBold())
	assert.True(t, s.TypingBold())
	require.NoError(t, s.Type("bc"))
	assert.Equal(t, "a<b>bc</b>", b.value)

	require.NoError(t, s.Type("d"))
	assert.Equal(t, "a<b>bcd</b>", b.value)
}

func TestToggleBoldCollapsedLeavesValueAlone(t *testing.T) {
	s, b := setupSurface(t, "a\nb")
	s.SetCaret(1)
	d, err := s.BeginLink()
	require.NoError(t, err)

	require.NoError(t, s.ToggleBold())
	assert.Empty(t, b.emitted, "no edit, no change notification")
	assert.Equal(t, "a\nb", b.value)

	ok, err := d.Apply("site", "x.com")
	require.NoError(t, err)
	assert.True(t, ok, "an open link draft survives a style toggle")
}

func TestConfirmAutolinks(t *testing.T) {
	s, b := setupSurface(t, "")
	require.NoError(t, s.Type("see www.foo.com"))
	require.NoError(t, s.Confirm())

	assert.Equal(t, `see <a href="https://www.foo.com" target="_blank" rel="noopener noreferrer">www.foo.com</a><br>`, b.value)

	require.NoError(t, s.Type("next"))
	assert.Equal(t, `see <a href="https://www.foo.com" target="_blank" rel="noopener noreferrer">www.foo.com</a><br>next`, b.value)
}

func TestConfirmMidLine(t *testing.T) {
	s, b := setupSurface(t, "")
	require.NoError(t, s.Type("plain words"))
	require.NoError(t, s.Confirm())
	assert.Equal(t, "plain words<br>", b.value)

	require.NoError(t, s.Type("x https://a.b/c"))
	s.MoveLeft(false)
	s.MoveLeft(false)
	require.NoError(t, s.Confirm())
	assert.Equal(t, `plain words<br>x <a href="https://a.b" target="_blank" rel="noopener noreferrer">https://a.b</a><br>/c`, b.value)
}

func TestConfirmKeepsSchemeCase(t *testing.T) {
	s, b := setupSurface(t, "")
	require.NoError(t, s.Type("HTTPS://X.COM"))
	require.NoError(t, s.Confirm())
	assert.Equal(t, `<a href="HTTPS://X.COM" target="_blank" rel="noopener noreferrer">HTTPS://X.COM</a><br>`, b.value)
}

func TestPasteURL(t *testing.T) {
	s, b := setupSurface(t, "")
	require.NoError(t, s.Paste("https://bar.com"))
	assert.Equal(t, `<a href="https://bar.com" target="_blank" rel="noopener noreferrer">https://bar.com</a>&nbsp;`, b.value)

	require.NoError(t, s.Type("x"))
	assert.Equal(t, `<a href="https://bar.com" target="_blank" rel="noopener noreferrer">https://bar.com</a>&nbsp;x`, b.value)
}

func TestPasteText(t *testing.T) {
	s, b := setupSurface(t, "")
	require.NoError(t, s.Paste("one\r\ntwo https://x.com"))
	assert.Equal(t, "one<br>two https://x.com", b.value)
}

func TestPasteReplacesSelection(t *testing.T) {
	s, b := setupSurface(t, "hello world")
	s.Select(6, 11)
	require.NoError(t, s.Paste("www.x.com"))
	assert.Equal(t, `hello <a href="https://www.x.com" target="_blank" rel="noopener noreferrer">www.x.com</a>&nbsp;`, b.value)
}

func TestInsertLinkWithSelection(t *testing.T) {
	s, b := setupSurface(t, "go here now")
	s.Select(3, 7)

	p := &fakePrompter{answers: []string{"example.com"}}
	ok, err := s.InsertLink(p)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{PromptLinkURL + "|https://"}, p.asked)
	assert.Equal(t, `go <a href="https://example.com" target="_blank" rel="noopener noreferrer">here</a> now`, b.value)
}

func TestInsertLinkWithoutSelection(t *testing.T) {
	s, b := setupSurface(t, "x")
	p := &fakePrompter{answers: []string{"mail", "mailto:a@b.c"}}
	ok, err := s.InsertLink(p)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{PromptLinkText + "|", PromptLinkURL + "|https://"}, p.asked)
	assert.Equal(t, `x<a href="mailto:a@b.c" target="_blank" rel="noopener noreferrer">mail</a>`, b.value)
}

func TestInsertLinkCancelled(t *testing.T) {
	s, b := setupSurface(t, "x")

	ok, err := s.InsertLink(&fakePrompter{answers: []string{""}})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.InsertLink(&fakePrompter{answers: []string{"text", ""}})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.InsertLink(&fakePrompter{})
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Empty(t, b.emitted)
}

func TestLinkDraftStale(t *testing.T) {
	s, _ := setupSurface(t, "abc")
	d, err := s.BeginLink()
	require.NoError(t, err)
	require.NoError(t, s.Type("d"))

	_, err = d.Apply("t", "https://x.com")
	assert.ErrorIs(t, err, ErrStaleDraft)
}

func TestTypedTextDoesNotExtendLinks(t *testing.T) {
	s, b := setupSurface(t, `<a href="https://x.com"><b>x</b></a>`)
	require.NoError(t, s.Type("y"))
	assert.Equal(t, `<a href="https://x.com" target="_blank" rel="noopener noreferrer"><b>x</b></a><b>y</b>`, b.value)
}

func TestLineNavigation(t *testing.T) {
	s, _ := setupSurface(t, "abcd<br>ef<br>ghij")
	s.SetCaret(3)
	s.MoveDown(false)
	assert.Equal(t, 7, s.Caret())
	s.MoveDown(false)
	assert.Equal(t, 10, s.Caret())
	s.MoveUp(false)
	assert.Equal(t, 7, s.Caret())
	s.MoveLineStart(false)
	assert.Equal(t, 5, s.Caret())
	s.MoveLineEnd(true)
	start, end, ok := s.Selection()
	assert.True(t, ok)
	assert.Equal(t, 5, start)
	assert.Equal(t, 7, end)
	s.MoveLeft(false)
	assert.Equal(t, 5, s.Caret())
}
