package logger

import (
	"testing"
)

func TestMsgStringWithoutLocation(t *testing.T) {
	msg := Msg{Kind: Error, Text: "something broke"}
	observed := msg.String(StderrOptions{}, TerminalInfo{})
	expected := "error: something broke\n"
	if observed != expected {
		t.Fatalf("%q != %q", observed, expected)
	}
}

func TestMsgStringWithLocation(t *testing.T) {
	source := Source{
		PrettyPath: "entry.js",
		Contents:   "let x = 1;\nlet y = ?;\n",
	}
	log := NewDeferLog()
	log.AddRangeError(&source, Range{Loc: Loc{Start: 19}, Len: 1}, "Unexpected \"?\"")

	msgs := log.Done()
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(msgs))
	}

	observed := msgs[0].String(StderrOptions{IncludeSource: true}, TerminalInfo{})
	expected := "entry.js:2:8: error: Unexpected \"?\"\nlet y = ?;\n        ^\n"
	if observed != expected {
		t.Fatalf("%q != %q", observed, expected)
	}
}

func TestDeferLogCollectsAndSorts(t *testing.T) {
	source := Source{PrettyPath: "a.js", Contents: "abc\ndef\n"}
	log := NewDeferLog()
	log.AddError(&source, Loc{Start: 4}, "second")
	log.AddError(&source, Loc{Start: 0}, "first")

	if !log.HasErrors() {
		t.Fatal("Expected HasErrors")
	}

	msgs := log.Done()
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Text != "first" || msgs[1].Text != "second" {
		t.Fatalf("Messages are not sorted by location: %q, %q", msgs[0].Text, msgs[1].Text)
	}
}

func TestDeferLogWarningsAreNotErrors(t *testing.T) {
	log := NewDeferLog()
	log.AddWarning(nil, Loc{}, "just a warning")
	if log.HasErrors() {
		t.Fatal("A warning must not count as an error")
	}
}

func TestComputeLineAndColumn(t *testing.T) {
	contents := "a\nbc\ndef"
	line, column, lineStart, lineEnd := computeLineAndColumn(contents, 6)
	if line != 2 || column != 1 || lineStart != 5 || lineEnd != 8 {
		t.Fatalf("Got line=%d column=%d lineStart=%d lineEnd=%d", line, column, lineStart, lineEnd)
	}
}
