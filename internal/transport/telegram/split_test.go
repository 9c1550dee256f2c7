package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitTextShort(t *testing.T) {
	t.Parallel()
	got := splitText("hello", 10, "")
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestSplitTextRespectsLimit(t *testing.T) {
	t.Parallel()
	s := strings.Repeat("🍲", 25)
	got := splitText(s, 10, "")
	if len(got) != 3 {
		t.Fatalf("chunks = %d, want 3", len(got))
	}
	for _, c := range got {
		if n := utf8.RuneCountInString(c); n > 10 {
			t.Fatalf("chunk has %d runes", n)
		}
	}
	if strings.Join(got, "") != s {
		t.Fatalf("content lost")
	}
}

func TestSplitTextPrefersNewline(t *testing.T) {
	t.Parallel()
	s := "aaaaaaa\nbbbbbbbbbb"
	got := splitText(s, 10, "")
	if len(got) < 2 || got[0] != "aaaaaaa" {
		t.Fatalf("got %q", got)
	}
}

func TestSplitTextSkipsTinyNewlineChunk(t *testing.T) {
	t.Parallel()
	s := "a\nbbbbbbbbbbbbbbbbbbb"
	got := splitText(s, 12, "")
	if got[0] == "a" {
		t.Fatalf("split on newline too early: %q", got)
	}
}

func TestSplitTextHTMLKeepsTagsWhole(t *testing.T) {
	t.Parallel()
	s := "hello <b>world</b>"
	got := splitText(s, 8, "HTML")
	if got[0] != "hello " {
		t.Fatalf("got %q", got)
	}
	for _, c := range got {
		if strings.Count(c, "<") != strings.Count(c, ">") {
			t.Fatalf("chunk %q splits a tag", c)
		}
	}
}
