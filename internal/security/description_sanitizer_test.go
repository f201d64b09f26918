package security

import "testing"

// TestSanitize_StripsAllTags はすべてのHTMLタグが除去されることを検証する。
func TestSanitize_StripsAllTags(t *testing.T) {
	sanitizer := NewDescriptionSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "pタグが除去される",
			input: "<p>記事の要約</p>",
			want:  "記事の要約",
		},
		{
			name:  "強調タグが除去される",
			input: "Prices <strong>rose</strong> sharply",
			want:  "Prices rose sharply",
		},
		{
			name:  "リンクタグが除去されテキストのみ残る",
			input: `Read <a href="https://example.com">more</a> here`,
			want:  "Read more here",
		},
		{
			name:  "scriptタグと内容が除去される",
			input: `summary<script>alert("xss")</script>`,
			want:  "summary",
		},
		{
			name:  "タグなしの入力はそのまま",
			input: "plain text summary",
			want:  "plain text summary",
		},
		{
			name:  "空文字列は空文字列",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizer.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitize_UnescapesEntities はHTMLエンティティが表示用文字へ
// 復元されることを検証する。
func TestSanitize_UnescapesEntities(t *testing.T) {
	sanitizer := NewDescriptionSanitizer()

	if got := sanitizer.Sanitize("Fish &amp; Chips"); got != "Fish & Chips" {
		t.Errorf("Sanitize = %q, want %q", got, "Fish & Chips")
	}
	if got := sanitizer.Sanitize("&lt;not a tag&gt;"); got != "<not a tag>" {
		t.Errorf("Sanitize = %q, want %q", got, "<not a tag>")
	}
}

// TestSanitize_TrimsWhitespace は前後の空白が除去されることを検証する。
func TestSanitize_TrimsWhitespace(t *testing.T) {
	sanitizer := NewDescriptionSanitizer()

	if got := sanitizer.Sanitize("  <p> summary </p>  "); got != "summary" {
		t.Errorf("Sanitize = %q, want %q", got, "summary")
	}
}

// TestSanitize_Idempotent は同一入力に対して常に同一出力を返す
// ことを検証する。
func TestSanitize_Idempotent(t *testing.T) {
	sanitizer := NewDescriptionSanitizer()

	input := "<p>Fish &amp; Chips</p>"
	first := sanitizer.Sanitize(input)
	second := sanitizer.Sanitize(sanitizer.Sanitize(input))
	if first != second {
		t.Errorf("Sanitize not idempotent: first = %q, second = %q", first, second)
	}
}
