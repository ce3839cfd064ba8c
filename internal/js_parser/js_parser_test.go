package js_parser

import (
	"testing"

	"github.com/gopackjs/gopack/internal/js_printer"
	"github.com/gopackjs/gopack/internal/logger"
	"github.com/gopackjs/gopack/internal/test"
)

func expectPrinted(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog()
		tree, ok := Parse(log, test.SourceForTest(contents), Options{})
		text := ""
		for _, msg := range log.Done() {
			text += msg.String(logger.StderrOptions{}, logger.TerminalInfo{})
		}
		test.AssertEqualWithDiff(t, text, "")
		if !ok {
			t.Fatal("Parse error")
		}
		js := js_printer.Print(&tree, js_printer.Options{}).JS
		test.AssertEqualWithDiff(t, string(js), expected)
	})
}

func expectParseError(t *testing.T, contents string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog()
		_, ok := Parse(log, test.SourceForTest(contents), Options{})
		if ok {
			t.Fatal("Expected a parse error")
		}
		if !log.HasErrors() {
			t.Fatal("Expected at least one logged error")
		}
	})
}

func TestExpressions(t *testing.T) {
	expectPrinted(t, "1 + 2 * 3", "1 + 2 * 3;\n")
	expectPrinted(t, "(1 + 2) * 3", "(1 + 2) * 3;\n")
	expectPrinted(t, "a - b - c", "a - b - c;\n")
	expectPrinted(t, "a - (b - c)", "a - (b - c);\n")
	expectPrinted(t, "a = b = c", "a = b = c;\n")
	expectPrinted(t, "a += 1", "a += 1;\n")
	expectPrinted(t, "a ? b : c", "a ? b : c;\n")
	expectPrinted(t, "a ?? b", "a ?? b;\n")
	expectPrinted(t, "a === b || a !== c", "a === b || a !== c;\n")
	expectPrinted(t, "a in b", "a in b;\n")
	expectPrinted(t, "a instanceof b", "a instanceof b;\n")
	expectPrinted(t, "!x", "!x;\n")
	expectPrinted(t, "typeof x", "typeof x;\n")
	expectPrinted(t, "void 0", "void 0;\n")
	expectPrinted(t, "delete a.b", "delete a.b;\n")
	expectPrinted(t, "x++", "x++;\n")
	expectPrinted(t, "--x", "--x;\n")
	expectPrinted(t, "a, b", "a, b;\n")
	expectPrinted(t, "a.b.c", "a.b.c;\n")
	expectPrinted(t, "a[b][0]", "a[b][0];\n")
	expectPrinted(t, "f(1, ...rest)", "f(1, ...rest);\n")
	expectPrinted(t, "new Foo(1)", "new Foo(1);\n")
	expectPrinted(t, "new Foo.Bar(1)", "new Foo.Bar(1);\n")
	expectPrinted(t, "this.x", "this.x;\n")
}

func TestLiterals(t *testing.T) {
	expectPrinted(t, "x = 0x10", "x = 16;\n")
	expectPrinted(t, "x = 1_000", "x = 1000;\n")
	expectPrinted(t, "x = 1.5", "x = 1.5;\n")
	expectPrinted(t, "x = 1e3", "x = 1000;\n")
	expectPrinted(t, "x = .5", "x = 0.5;\n")
	expectPrinted(t, "x = true", "x = true;\n")
	expectPrinted(t, "x = null", "x = null;\n")
	expectPrinted(t, "x = 'a\\nb'", "x = \"a\\nb\";\n")
	expectPrinted(t, "x = \"it's\"", "x = \"it's\";\n")
	expectPrinted(t, "x = [1, , 2]", "x = [1, , 2];\n")
	expectPrinted(t, "x = {a: 1, 'b c': 2, [k]: 3, ...rest}", "x = {a: 1, \"b c\": 2, [k]: 3, ...rest};\n")
	expectPrinted(t, "x = {a}", "x = {a};\n")
}

func TestDeclarations(t *testing.T) {
	expectPrinted(t, "var a = 1, b = 2;", "var a = 1, b = 2;\n")
	expectPrinted(t, "let x = 1\nlet y = 2", "let x = 1;\nlet y = 2;\n")
	expectPrinted(t, "const {a, b: c = 1, ...rest} = obj;", "const {a, b: c = 1, ...rest} = obj;\n")
	expectPrinted(t, "const [a, , b] = arr;", "const [a, , b] = arr;\n")
	expectPrinted(t, "let let1 = 1;", "let let1 = 1;\n")
}

func TestFunctions(t *testing.T) {
	expectPrinted(t, "function f(a, b = 1, ...c) { return a; }",
		"function f(a, b = 1, ...c) {\n  return a;\n}\n")
	expectPrinted(t, "async function f() { await g(); }",
		"async function f() {\n  await g();\n}\n")
	expectPrinted(t, "x = function named() {};", "x = function named() {\n};\n")
	expectPrinted(t, "x => x", "(x) => x;\n")
	expectPrinted(t, "async x => x", "async (x) => x;\n")
	expectPrinted(t, "(a, b) => a + b", "(a, b) => a + b;\n")
	expectPrinted(t, "() => ({})", "() => ({});\n")
	expectPrinted(t, "({a}) => a", "({a}) => a;\n")
	expectPrinted(t, "x = (a) => { return a; }", "x = (a) => {\n  return a;\n};\n")
}

func TestClasses(t *testing.T) {
	expectPrinted(t, "class Foo extends Bar { constructor(a) { f(); } get x() { return 1; } }",
		"class Foo extends Bar {\n  constructor(a) {\n    f();\n  }\n  get x() {\n    return 1;\n  }\n}\n")
	expectPrinted(t, "x = class {};", "x = class {\n};\n")
}

func TestStatements(t *testing.T) {
	expectPrinted(t, "if (a) b(); else c();", "if (a)\n  b();\nelse\n  c();\n")
	expectPrinted(t, "if (a) { b(); } else if (c) { d(); }", "if (a) {\n  b();\n} else if (c) {\n  d();\n}\n")
	expectPrinted(t, "while (x) { f(); }", "while (x) {\n  f();\n}\n")
	expectPrinted(t, "for (let i = 0; i < 2; i++) f(i);", "for (let i = 0; i < 2; i++)\n  f(i);\n")
	expectPrinted(t, "while (x) break;", "while (x)\n  break;\n")
	expectPrinted(t, "while (x) continue;", "while (x)\n  continue;\n")
	expectPrinted(t, "throw new Error('x')", "throw new Error(\"x\");\n")
	expectPrinted(t, "{ f(); }", "{\n  f();\n}\n")
	expectPrinted(t, ";", ";\n")
	expectPrinted(t, "debugger", "debugger;\n")
	expectPrinted(t, "function f() { return\n1 }", "function f() {\n  return;\n  1;\n}\n")
}

func TestDirectives(t *testing.T) {
	expectPrinted(t, "'use strict'; f();", "\"use strict\";\nf();\n")
	expectPrinted(t, "function f() { 'use strict'; g(); }",
		"function f() {\n  \"use strict\";\n  g();\n}\n")
}

func TestImports(t *testing.T) {
	expectPrinted(t, "import 'p';", "import \"p\";\n")
	expectPrinted(t, "import a from 'p';", "import a from \"p\";\n")
	expectPrinted(t, "import a, {b as c} from 'p';", "import a, {b as c} from \"p\";\n")
	expectPrinted(t, "import * as ns from 'p';", "import * as ns from \"p\";\n")
	expectPrinted(t, "import a, * as ns from 'p';", "import a, * as ns from \"p\";\n")
	expectPrinted(t, "import {default as a} from 'p';", "import {default as a} from \"p\";\n")
	expectPrinted(t, "x = import('p');", "x = import(\"p\");\n")
}

func TestExports(t *testing.T) {
	expectPrinted(t, "let a, c; export {a, a as b, c};", "let a, c;\nexport {a, a as b, c};\n")
	expectPrinted(t, "export {a} from 'p';", "export {a} from \"p\";\n")
	expectPrinted(t, "export {a as b} from 'p';", "export {a as b} from \"p\";\n")
	expectPrinted(t, "export * from 'p';", "export * from \"p\";\n")
	expectPrinted(t, "export * as ns from 'p';", "export * as ns from \"p\";\n")
	expectPrinted(t, "export default 1;", "export default 1;\n")
	expectPrinted(t, "export default function f() {}", "export default function f() {\n}\n")
	expectPrinted(t, "export default class {}", "export default class {\n}\n")
	expectPrinted(t, "export const x = 1;", "export const x = 1;\n")
	expectPrinted(t, "export var y;", "export var y;\n")
	expectPrinted(t, "export function f() {}", "export function f() {\n}\n")
	expectPrinted(t, "export class C {}", "export class C {\n}\n")
}

func TestAwait(t *testing.T) {
	expectPrinted(t, "x = await f()", "x = await f();\n")
	expectPrinted(t, "let {a} = await import('p');", "let {a} = await import(\"p\");\n")
	// "await" is still usable as a plain identifier
	expectPrinted(t, "await = 1", "await = 1;\n")
}

func TestParseErrors(t *testing.T) {
	expectParseError(t, "var")
	expectParseError(t, "import * from 'p'")
	expectParseError(t, "import {a} 'p'")
	expectParseError(t, "export")
	expectParseError(t, "for (x of y) {}")
	expectParseError(t, "for (x in y) {}")
	expectParseError(t, "x = `y`;")
	expectParseError(t, "x = /regex/;")
	expectParseError(t, "f(")
	expectParseError(t, "function () {}")
}
