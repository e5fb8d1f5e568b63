package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSerialize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "hello"},
		{"bold", "<b>bo</b>ld", "<b>bo</b>ld"},
		{"strong becomes b", "<strong>x</strong>", "<b>x</b>"},
		{"nested bold collapses", "<b>a<b>b</b></b>", "<b>ab</b>"},
		{"adjacent bold merges", "<b>a</b><b>b</b>", "<b>ab</b>"},
		{"link", `<a href="https://x.com">x</a>`, `<a href="https://x.com" target="_blank" rel="noopener noreferrer">x</a>`},
		{"bold inside link", `<a href="https://x.com">a<b>b</b></a>`, `<a href="https://x.com" target="_blank" rel="noopener noreferrer">a<b>b</b></a>`},
		{"breaks", "a<br>b<br/>c", "a<br>b<br>c"},
		{"divs become lines", "a<div>b</div><div><br></div><div>c</div>", "a<br>b<br><br>c"},
		{"leading div", "<div>a</div><div>b</div>", "a<br>b"},
		{"script dropped", "a<script>alert(1)</script>b", "ab"},
		{"unknown tags unwrap", "<span style='color:red'>x</span><i>y</i>", "xy"},
		{"javascript link stripped", `<a href="javascript:alert(1)">x</a>`, "x"},
		{"data link stripped", `<a href="data:text/html,hi">x</a>`, "x"},
		{"other scheme with slashes kept", `<a href="ssh://host/x">x</a>`, `<a href="ssh://host/x" target="_blank" rel="noopener noreferrer">x</a>`},
		{"bare scheme without slashes dropped", `<a href="foo:bar">x</a>`, "x"},
		{"entities", "a &amp; b &lt;c&gt;&nbsp;", "a &amp; b &lt;c&gt;&nbsp;"},
		{"literal newline", "a\nb", "a<br>b"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Serialize(Parse(tt.input)))
		})
	}
}

func TestSerializeIsCanonical(t *testing.T) {
	inputs := []string{
		`x <b>y</b> <a href="mailto:a@b.c">mail</a><br>z`,
		"<div>one</div><p>two</p>",
		"a &amp; b",
	}
	for _, in := range inputs {
		once := Serialize(Parse(in))
		assert.Equal(t, once, Serialize(Parse(once)), in)
	}
}

func TestDisplayForm(t *testing.T) {
	assert.Equal(t, "a<br>b", DisplayForm("a\nb"))
	assert.Equal(t, "<b>a</b>\nb", DisplayForm("<b>a</b>\nb"))
	assert.Equal(t, "", DisplayForm(""))
	assert.Equal(t, "plain", DisplayForm("plain"))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "- um\n- dois", PlainText("- um\n- dois"))
	assert.Equal(t, "bold link", PlainText(`<b>bold</b> <a href="https://x.com">link</a>`))
	assert.Equal(t, "a b", PlainText("a&nbsp;b"))
}

func TestToMarkdown(t *testing.T) {
	assert.Equal(t, "**Clima** em [pesquisa](https://example.com)\n- item",
		ToMarkdown(`<b>Clima</b> em <a href="https://example.com">pesquisa</a><br>- item`))
	assert.Equal(t, "[**x**](https://x.com)", ToMarkdown(`<a href="https://x.com"><b>x</b></a>`))
	assert.Equal(t, "", ToMarkdown(""))
}

func TestNormalizeHref(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"example.com", "https://example.com"},
		{"www.example.com", "https://www.example.com"},
		{"http://x.com", "http://x.com"},
		{"HTTPS://X.COM", "HTTPS://X.COM"},
		{"mailto:a@b.c", "mailto:a@b.c"},
		{"tel:+5511999999999", "tel:+5511999999999"},
		{"sms:123", "sms:123"},
		{"ftp://files.x.com", "ftp://files.x.com"},
		{"localhost:8080", "https://localhost:8080"},
		{"ssh://host/x", "ssh://host/x"},
		{"file:///tmp/vagas.pdf", "file:///tmp/vagas.pdf"},
		{"slack://channel?id=C1", "slack://channel?id=C1"},
		{"javascript:alert(1)", "https://javascript:alert(1)"},
		{"  x.com  ", "https://x.com"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHref(tt.input))
		})
	}
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://bar.com"))
	assert.True(t, IsURL("  WWW.bar.com/x?y=1 \n"))
	assert.False(t, IsURL("see https://bar.com"))
	assert.False(t, IsURL("bar.com"))
}
