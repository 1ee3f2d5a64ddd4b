package pipeline

import (
	"context"
	"strings"
	"testing"
)

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		wantContains []string
		wantNot      []string
	}{
		{
			name:         "heading",
			input:        "# NAME",
			wantContains: []string{"<h1>NAME</h1>"},
		},
		{
			name:         "emphasis and strong",
			input:        "use *soft* and **hard**",
			wantContains: []string{"<em>soft</em>", "<strong>hard</strong>"},
		},
		{
			name:         "inline code",
			input:        "run `ls -l` now",
			wantContains: []string{"<code>ls -l</code>"},
		},
		{
			name:         "fenced code block",
			input:        "```\nplain code\n```",
			wantContains: []string{"<pre><code>plain code"},
		},
		{
			name:         "ordered list",
			input:        "1. one\n2. two\n",
			wantContains: []string{"<ol>", "<li>one</li>", "</ol>"},
		},
		{
			name:         "fragment has no document shell",
			input:        "# NAME",
			wantNot:      []string{"<!DOCTYPE", "<html>", "<body>"},
		},
		{
			name:         "soft line breaks stay soft",
			input:        "first line\nsecond line\n",
			wantContains: []string{"first line\nsecond line"},
			wantNot:      []string{"<br"},
		},
	}

	conv := NewGoldmarkConverter(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := conv.ToHTML(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToHTML() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q\ngot: %s", want, got)
				}
			}
			for _, notWant := range tt.wantNot {
				if strings.Contains(got, notWant) {
					t.Errorf("output should not contain %q\ngot: %s", notWant, got)
				}
			}
		})
	}
}

func TestGoldmarkConverter_SyntaxHighlighting(t *testing.T) {
	t.Parallel()

	input := "```go\nfunc main() {}\n```"

	plain, err := NewGoldmarkConverter(false).ToHTML(context.Background(), input)
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	if strings.Contains(plain, "chroma") {
		t.Errorf("highlighting disabled but chroma markup present:\n%s", plain)
	}

	lit, err := NewGoldmarkConverter(true).ToHTML(context.Background(), input)
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}
	if !strings.Contains(lit, "chroma") {
		t.Errorf("highlighting enabled but no chroma markup:\n%s", lit)
	}
}

func TestGoldmarkConverter_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewGoldmarkConverter(false).ToHTML(ctx, "# NAME"); err == nil {
		t.Fatal("ToHTML() with canceled context should fail")
	}
}
