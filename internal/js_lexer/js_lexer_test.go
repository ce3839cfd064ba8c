package js_lexer

import (
	"testing"

	"github.com/gopackjs/gopack/internal/logger"
	"github.com/gopackjs/gopack/internal/test"
)

func lexerForTest(t *testing.T, contents string) Lexer {
	t.Helper()
	log := logger.NewDeferLog()
	return NewLexer(log, test.SourceForTest(contents))
}

func lexAll(t *testing.T, contents string) []T {
	t.Helper()
	lexer := lexerForTest(t, contents)
	tokens := []T{}
	for lexer.Token != TEndOfFile {
		tokens = append(tokens, lexer.Token)
		lexer.Next()
	}
	return tokens
}

func assertTokens(t *testing.T, contents string, expected ...T) {
	t.Helper()
	observed := lexAll(t, contents)
	if len(observed) != len(expected) {
		t.Fatalf("%q: got %d tokens, expected %d", contents, len(observed), len(expected))
	}
	for i := range observed {
		if observed[i] != expected[i] {
			t.Fatalf("%q: token %d is %s, expected %s", contents, i, observed[i], expected[i])
		}
	}
}

func expectNumber(t *testing.T, contents string, expected float64) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		lexer := lexerForTest(t, contents)
		test.AssertEqual(t, lexer.Token, TNumericLiteral)
		test.AssertEqual(t, lexer.Number, expected)
	})
}

func expectString(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		lexer := lexerForTest(t, contents)
		test.AssertEqual(t, lexer.Token, TStringLiteral)
		test.AssertEqual(t, lexer.StringLiteral, expected)
	})
}

func expectLexerError(t *testing.T, contents string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog()
		func() {
			defer func() {
				r := recover()
				if _, ok := r.(LexerPanic); !ok {
					t.Fatalf("Expected a LexerPanic, got %v", r)
				}
			}()
			lexer := NewLexer(log, test.SourceForTest(contents))
			for lexer.Token != TEndOfFile {
				lexer.Next()
			}
		}()
		if !log.HasErrors() {
			t.Fatal("Expected at least one logged error")
		}
	})
}

func TestPunctuation(t *testing.T) {
	assertTokens(t, "a + b", TIdentifier, TPlus, TIdentifier)
	assertTokens(t, "a === b", TIdentifier, TEqualsEqualsEquals, TIdentifier)
	assertTokens(t, "a !== b", TIdentifier, TExclamationEqualsEquals, TIdentifier)
	assertTokens(t, "a => b", TIdentifier, TArrow, TIdentifier)
	assertTokens(t, "a ?? b", TIdentifier, TQuestionQuestion, TIdentifier)
	assertTokens(t, "a ??= b", TIdentifier, TQuestionQuestionEquals, TIdentifier)
	assertTokens(t, "a &&= b", TIdentifier, TAmpersandAmpersandEquals, TIdentifier)
	assertTokens(t, "a ||= b", TIdentifier, TBarBarEquals, TIdentifier)
	assertTokens(t, "...a", TDotDotDot, TIdentifier)
	assertTokens(t, "a.b", TIdentifier, TDot, TIdentifier)
	assertTokens(t, "a ? b : c", TIdentifier, TQuestion, TIdentifier, TColon, TIdentifier)
	assertTokens(t, "a++", TIdentifier, TPlusPlus)
	assertTokens(t, "a--", TIdentifier, TMinusMinus)
	assertTokens(t, "a += b", TIdentifier, TPlusEquals, TIdentifier)
}

func TestKeywords(t *testing.T) {
	assertTokens(t, "return typeof new", TReturn, TTypeof, TNew)
	assertTokens(t, "import export default", TImport, TExport, TDefault)
	// Contextual keywords stay identifiers
	assertTokens(t, "let async await of as from", TIdentifier, TIdentifier, TIdentifier, TIdentifier, TIdentifier, TIdentifier)
}

func TestNumericLiterals(t *testing.T) {
	expectNumber(t, "0", 0)
	expectNumber(t, "123", 123)
	expectNumber(t, "1.5", 1.5)
	expectNumber(t, ".5", 0.5)
	expectNumber(t, "1e3", 1000)
	expectNumber(t, "1E-2", 0.01)
	expectNumber(t, "0x10", 16)
	expectNumber(t, "0o17", 15)
	expectNumber(t, "0b101", 5)
	expectNumber(t, "1_000_000", 1000000)
}

func TestStringLiterals(t *testing.T) {
	expectString(t, "'abc'", "abc")
	expectString(t, "\"abc\"", "abc")
	expectString(t, "'a\\nb'", "a\nb")
	expectString(t, "'a\\tb'", "a\tb")
	expectString(t, "'\\x41'", "A")
	expectString(t, "'\\u0041'", "A")
	expectString(t, "'\\u{1F600}'", "\U0001F600")
	expectString(t, "'it\\'s'", "it's")
	expectString(t, "'a\\\nb'", "ab")
}

func TestComments(t *testing.T) {
	assertTokens(t, "a // comment\nb", TIdentifier, TIdentifier)
	assertTokens(t, "a /* comment */ b", TIdentifier, TIdentifier)
	assertTokens(t, "/* multi\nline */ a", TIdentifier)
}

func TestNewlineTracking(t *testing.T) {
	lexer := lexerForTest(t, "a\nb c")
	test.AssertEqual(t, lexer.HasNewlineBefore, true) // start of file
	lexer.Next()
	test.AssertEqual(t, lexer.HasNewlineBefore, true) // after "\n"
	lexer.Next()
	test.AssertEqual(t, lexer.HasNewlineBefore, false)
}

func TestLexerErrors(t *testing.T) {
	expectLexerError(t, "'unterminated")
	expectLexerError(t, "'bad\nnewline'")
	expectLexerError(t, "/* unterminated")
	expectLexerError(t, "#")
	expectLexerError(t, "1abc")
	expectLexerError(t, "`template`")
}
