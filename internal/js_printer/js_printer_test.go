package js_printer

import (
	"testing"

	"github.com/gopackjs/gopack/internal/js_parser"
	"github.com/gopackjs/gopack/internal/logger"
	"github.com/gopackjs/gopack/internal/test"
)

func expectPrinted(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog()
		tree, ok := js_parser.Parse(log, test.SourceForTest(contents), js_parser.Options{})
		text := ""
		for _, msg := range log.Done() {
			text += msg.String(logger.StderrOptions{}, logger.TerminalInfo{})
		}
		test.AssertEqualWithDiff(t, text, "")
		if !ok {
			t.Fatal("Parse error")
		}
		js := Print(&tree, Options{}).JS
		test.AssertEqualWithDiff(t, string(js), expected)
	})
}

func TestParentheses(t *testing.T) {
	expectPrinted(t, "f(a = b)", "f(a = b);\n")
	expectPrinted(t, "(a && b) || c", "a && b || c;\n")
	expectPrinted(t, "a && (b || c)", "a && (b || c);\n")
	expectPrinted(t, "(a + b) * c", "(a + b) * c;\n")
	expectPrinted(t, "(a ? b : c)()", "(a ? b : c)();\n")
	expectPrinted(t, "(a, b)", "a, b;\n")
	expectPrinted(t, "f((a, b))", "f((a, b));\n")
	expectPrinted(t, "(x => x)()", "((x) => x)();\n")
}

func TestStatementStart(t *testing.T) {
	expectPrinted(t, "({a: 1});", "({a: 1});\n")
	expectPrinted(t, "(function() {})();", "(function() {\n})();\n")
	expectPrinted(t, "({}).x = 1;", "({}).x = 1;\n")
}

func TestUnaryOperators(t *testing.T) {
	expectPrinted(t, "-(-x)", "- -x;\n")
	expectPrinted(t, "+(+x)", "+ +x;\n")
	expectPrinted(t, "-(+x)", "-+x;\n")
	expectPrinted(t, "!!x", "!!x;\n")
	expectPrinted(t, "typeof typeof x", "typeof typeof x;\n")
	expectPrinted(t, "-(a + b)", "-(a + b);\n")
}

func TestNewExpressions(t *testing.T) {
	expectPrinted(t, "new Foo", "new Foo();\n")
	expectPrinted(t, "new (f())", "new (f())();\n")
	expectPrinted(t, "new (a.b())", "new (a.b())();\n")
}

func TestNumbers(t *testing.T) {
	expectPrinted(t, "x = 0", "x = 0;\n")
	expectPrinted(t, "x = 123456789", "x = 123456789;\n")
	expectPrinted(t, "x = 0.25", "x = 0.25;\n")
}

func TestStringQuoting(t *testing.T) {
	expectPrinted(t, "x = 'a\"b'", "x = \"a\\\"b\";\n")
	expectPrinted(t, "x = '\\\\'", "x = \"\\\\\";\n")
	expectPrinted(t, "x = '\\t'", "x = \"\\t\";\n")
}
