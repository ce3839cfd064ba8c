package hoister

import (
	"strings"
	"testing"

	"github.com/gopackjs/gopack/internal/graph"
	"github.com/gopackjs/gopack/internal/js_ast"
	"github.com/gopackjs/gopack/internal/js_parser"
	"github.com/gopackjs/gopack/internal/js_printer"
	"github.com/gopackjs/gopack/internal/logger"
	"github.com/gopackjs/gopack/internal/test"
)

func parseForTest(t *testing.T, contents string) js_ast.AST {
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
	return tree
}

func dep(id string, specifier string) *graph.Dependency {
	return graph.NewDependency(id, specifier)
}

func asyncDep(id string, specifier string) *graph.Dependency {
	d := graph.NewDependency(id, specifier)
	d.IsAsync = true
	return d
}

func hoistModule(t *testing.T, contents string, deps ...*graph.Dependency) (*graph.Asset, *Result) {
	t.Helper()
	tree := parseForTest(t, contents)
	asset := graph.NewAsset("test", "/entry.js")
	for _, d := range deps {
		asset.AddDependency(d)
	}
	result, err := Hoist(asset, &tree)
	if err != nil {
		t.Fatalf("Hoist failed: %v", err)
	}
	return asset, result
}

func expectHoisted(t *testing.T, contents string, expected string, deps ...*graph.Dependency) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		asset, _ := hoistModule(t, contents, deps...)
		js := js_printer.Print(asset.AST, js_printer.Options{}).JS
		test.AssertEqualWithDiff(t, string(js), expected)
	})
}

func assertSymbol(t *testing.T, table *graph.SymbolTable, exported string, local string) {
	t.Helper()
	entry, ok := table.Get(exported)
	if !ok {
		t.Fatalf("Missing symbol %q", exported)
	}
	test.AssertEqual(t, entry.Local, local)
}

func assertNoSymbol(t *testing.T, table *graph.SymbolTable, exported string) {
	t.Helper()
	if table.HasExportSymbol(exported) {
		t.Fatalf("Unexpected symbol %q", exported)
	}
}

func assertWeak(t *testing.T, table *graph.SymbolTable, exported string, isWeak bool) {
	t.Helper()
	entry, ok := table.Get(exported)
	if !ok {
		t.Fatalf("Missing symbol %q", exported)
	}
	test.AssertEqual(t, entry.IsWeak, isWeak)
}

////////////////////////////////////////////////////////////////////////////////
// ES modules

func TestPureESModule(t *testing.T) {
	d := dep("a", "./a")
	asset, _ := hoistModule(t, "import {x} from './a'; export const y = x + 1;", d)

	test.AssertEqual(t, asset.Meta.Bool("isES6Module"), true)
	test.AssertEqual(t, asset.Meta.Bool("shouldWrap"), false)
	assertSymbol(t, asset.Symbols, "y", "$test$export$y")
	assertSymbol(t, d.Symbols, "x", "$test$import$a$x")

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `var $test$exports = {};
$parcel$require("test", "./a");
const $test$export$y = $test$import$a$x + 1;
$parcel$export($test$exports, "y", function() {
  return $test$export$y;
});
`)

	test.AssertEqual(t, strings.Count(js, "$parcel$require("), 1)
	test.AssertEqual(t, strings.Count(js, "$parcel$export("), 1)
	assertNoLeftoverModuleSyntax(t, asset.AST)
}

func TestExportLet(t *testing.T) {
	expectHoisted(t, "export let count = 0;",
		`var $test$exports = {};
let $test$export$count = 0;
$parcel$export($test$exports, "count", function() {
  return $test$export$count;
});
`)
}

func TestExportFunction(t *testing.T) {
	expectHoisted(t, "export function add(a, b) { return a + b; }",
		`var $test$exports = {};
function $test$export$add(a, b) {
  return a + b;
}
$parcel$export($test$exports, "add", function() {
  return $test$export$add;
});
`)
}

func TestExportClauseRename(t *testing.T) {
	expectHoisted(t, "let a = 1; export {a as b};",
		`var $test$exports = {};
let $test$export$b = 1;
$parcel$export($test$exports, "b", function() {
  return $test$export$b;
});
`)
}

func TestExportClauseReassignedUsesAlias(t *testing.T) {
	expectHoisted(t, "let foo = 1; foo = 2; export {foo};",
		`var $test$exports = {};
let $test$var$foo = 1;
$test$var$foo = 2;
var $test$export$foo = $test$var$foo;
$parcel$export($test$exports, "foo", function() {
  return $test$export$foo;
});
`)
}

func TestExportDefaultExpression(t *testing.T) {
	expectHoisted(t, "export default 42;",
		`var $test$exports = {};
var $test$export$default = 42;
$parcel$export($test$exports, "default", function() {
  return $test$export$default;
});
`)
}

func TestExportDefaultNamedFunction(t *testing.T) {
	asset, _ := hoistModule(t, "export default function foo() {}")
	assertSymbol(t, asset.Symbols, "default", "$test$export$default")

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `var $test$exports = {};
function $test$export$default() {
}
$parcel$export($test$exports, "default", function() {
  return $test$export$default;
});
`)
}

func TestExportDefaultReassignedBinding(t *testing.T) {
	expectHoisted(t, "let foo = 1; foo = 2; export default foo;",
		`var $test$exports = {};
let $test$var$foo = 1;
$test$var$foo = 2;
var $test$export$default = $test$var$foo;
$parcel$export($test$exports, "default", function() {
  return $test$export$default;
});
`)
}

func TestWeakImportReExport(t *testing.T) {
	d := dep("a", "./a")
	asset, _ := hoistModule(t, "import {x} from './a'; export {x};", d)

	assertWeak(t, d.Symbols, "x", true)
	assertSymbol(t, asset.Symbols, "x", "$test$import$a$x")
}

func TestImportUsedTwiceIsNotWeak(t *testing.T) {
	d := dep("a", "./a")
	hoistModule(t, "import {x} from './a'; f(x); export {x};", d)
	assertWeak(t, d.Symbols, "x", false)
}

func TestReExportFrom(t *testing.T) {
	d := dep("a", "./a")
	asset, _ := hoistModule(t, "export {x as y} from './a';", d)

	assertWeak(t, d.Symbols, "x", true)
	assertSymbol(t, d.Symbols, "x", "$test$import$a$x")
	assertSymbol(t, asset.Symbols, "y", "$test$import$a$x")

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `var $test$exports = {};
$parcel$require("test", "./a");
$parcel$export($test$exports, "y", $test$import$a$x);
`)
}

func TestExportStarWildcard(t *testing.T) {
	d := dep("a", "./a")
	asset, _ := hoistModule(t, "export * from './a';", d)

	assertSymbol(t, d.Symbols, "*", "*")
	assertWeak(t, d.Symbols, "*", true)

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `var $test$exports = {};
$parcel$exportWildcard($test$exports, $parcel$require("test", "./a"));
`)
}

func TestExportStarAs(t *testing.T) {
	d := dep("a", "./a")
	asset, _ := hoistModule(t, "export * as ns from './a';", d)

	assertSymbol(t, d.Symbols, "*", "$test$import$a")
	assertSymbol(t, asset.Symbols, "ns", "$test$import$a")

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `var $test$exports = {};
$parcel$require("test", "./a");
$parcel$export($test$exports, "ns", $test$import$a);
`)
}

func TestImportOrderIsPreserved(t *testing.T) {
	expectHoisted(t, "import './a'; f(); import './b';",
		`$parcel$require("test", "./a");
$parcel$require("test", "./b");
f();
`, dep("a", "./a"), dep("b", "./b"))
}

func TestMissingImportDependency(t *testing.T) {
	tree := parseForTest(t, "import {x} from './a';")
	asset := graph.NewAsset("test", "/entry.js")
	_, err := Hoist(asset, &tree)
	if _, ok := err.(*DependencyInvariantError); !ok {
		t.Fatalf("Expected DependencyInvariantError, got %v", err)
	}
}

////////////////////////////////////////////////////////////////////////////////
// Namespace imports

func TestNamespaceImportStaticMembers(t *testing.T) {
	d := dep("m", "./m")
	asset, _ := hoistModule(t, "import * as ns from './m'; console.log(ns.x, ns.y);", d)

	assertSymbol(t, d.Symbols, "x", "$test$import$m$x")
	assertSymbol(t, d.Symbols, "y", "$test$import$m$y")
	assertNoSymbol(t, d.Symbols, "*")

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `$parcel$require("test", "./m");
console.log($test$import$m$x, $test$import$m$y);
`)
}

func TestNamespaceImportEscapes(t *testing.T) {
	d := dep("m", "./m")
	asset, _ := hoistModule(t, "import * as ns from './m'; f(ns);", d)

	assertSymbol(t, d.Symbols, "*", "$test$import$m")
	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `$parcel$require("test", "./m");
f($test$import$m);
`)
}

func TestDefaultImport(t *testing.T) {
	d := dep("a", "./a")
	asset, _ := hoistModule(t, "import foo from './a'; foo();", d)

	assertSymbol(t, d.Symbols, "default", "$test$import$a$foo")
	test.AssertEqual(t, d.Meta.Bool("hasDefaultImport"), true)

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `$parcel$require("test", "./a");
$test$import$a$foo();
`)
}

func TestUnreferencedImportInThirdPartyCode(t *testing.T) {
	d := dep("a", "./a")
	tree := parseForTest(t, "import {unused} from './a';")
	asset := graph.NewAsset("test", "/entry.js")
	asset.IsSource = false
	asset.AddDependency(d)
	if _, err := Hoist(asset, &tree); err != nil {
		t.Fatalf("Hoist failed: %v", err)
	}
	assertNoSymbol(t, d.Symbols, "unused")
}

////////////////////////////////////////////////////////////////////////////////
// CommonJS

func TestCJSStaticExportsAssign(t *testing.T) {
	asset, _ := hoistModule(t, "exports.foo = 1;")

	test.AssertEqual(t, asset.Meta.Bool("isCommonJS"), true)
	test.AssertEqual(t, asset.Meta.Bool("shouldWrap"), false)
	assertSymbol(t, asset.Symbols, "foo", "$test$export$foo")
	assertSymbol(t, asset.Symbols, "*", "$test$exports")

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `var $test$exports = {};
var $test$export$foo = 1;
$parcel$export($test$exports, "foo", function() {
  return $test$export$foo;
});
`)
}

func TestCJSSecondAssignmentWritesThroughBinding(t *testing.T) {
	expectHoisted(t, "exports.foo = 1; exports.foo = 2;",
		`var $test$exports = {};
var $test$export$foo = 1;
$parcel$export($test$exports, "foo", function() {
  return $test$export$foo;
});
$test$export$foo = 2;
`)
}

func TestCJSModuleExportsMember(t *testing.T) {
	expectHoisted(t, "module.exports.bar = f();",
		`var $test$exports = {};
var $test$export$bar = f();
$parcel$export($test$exports, "bar", function() {
  return $test$export$bar;
});
`)
}

func TestCJSNestedAssignmentHoistsDeclaration(t *testing.T) {
	expectHoisted(t, "if (cond) { exports.foo = 1; }",
		`var $test$exports = {};
var $test$export$foo;
$parcel$export($test$exports, "foo", function() {
  return $test$export$foo;
});
if (cond) {
  $test$export$foo = 1;
}
`)
}

func TestCJSExportsReassigned(t *testing.T) {
	asset, _ := hoistModule(t, "exports = {}; exports.foo = 1;")

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `var $test$cjs_exports;
$test$cjs_exports = {};
$test$cjs_exports.foo = 1;
`)
	assertSymbol(t, asset.Symbols, "*", "$test$exports")
}

func TestModuleId(t *testing.T) {
	expectHoisted(t, "var id = module.id;",
		`var $test$var$id = "test";
`)
}

func TestModuleHot(t *testing.T) {
	expectHoisted(t, "if (module.hot) { f(); }",
		`if (null) {
  f();
}
`)
}

func TestModuleRequireInBrowser(t *testing.T) {
	expectHoisted(t, "var r = module.require;",
		`var $test$var$r = null;
`)
}

func TestModuleBundleRoot(t *testing.T) {
	expectHoisted(t, "module.bundle.root('x');",
		`parcelRequire("x");
`)
}

func TestTypeofModule(t *testing.T) {
	expectHoisted(t, "var t = typeof module;",
		`var $test$var$t = "object";
`)
}

func TestTypeofRequire(t *testing.T) {
	expectHoisted(t, "var t = typeof require;",
		`var $test$var$t = "function";
`)
}

func TestGlobalRewrite(t *testing.T) {
	expectHoisted(t, "global.x = 1;",
		`$parcel$global.x = 1;
`)
}

func TestThisAtTopLevelInCJS(t *testing.T) {
	expectHoisted(t, "exports.a = 1; this.b = 2;",
		`var $test$exports = {};
var $test$export$a = 1;
$parcel$export($test$exports, "a", function() {
  return $test$export$a;
});
$test$exports.b = 2;
`)
}

func TestThisAtTopLevelInESModule(t *testing.T) {
	expectHoisted(t, "export const x = 1; f(this);",
		`var $test$exports = {};
const $test$export$x = 1;
$parcel$export($test$exports, "x", function() {
  return $test$export$x;
});
f(undefined);
`)
}

func TestThisInsideFunctionIsUntouched(t *testing.T) {
	expectHoisted(t, "exports.f = function() { return this; };",
		`var $test$exports = {};
var $test$export$f = function() {
  return this;
};
$parcel$export($test$exports, "f", function() {
  return $test$export$f;
});
`)
}

func TestUseStrictIsStripped(t *testing.T) {
	expectHoisted(t, "'use strict'; var a = 1;",
		`var $test$var$a = 1;
`)
}

func TestUseStrictInFunctionIsStripped(t *testing.T) {
	expectHoisted(t, "function f() { 'use strict'; return 1; }",
		`function $test$var$f() {
  return 1;
}
`)
}

////////////////////////////////////////////////////////////////////////////////
// require()

func TestRequireRewrite(t *testing.T) {
	d := dep("a", "./a")
	asset, result := hoistModule(t, "var a = require('./a');", d)

	test.AssertEqual(t, asset.Meta.Bool("isCommonJS"), true)
	test.AssertEqual(t, len(result.WrapRequests), 0)

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `var $test$var$a = $parcel$require("test", "./a");
`)
}

func TestRequireUnknownSpecifierIsLeftAlone(t *testing.T) {
	expectHoisted(t, "require('./nope');",
		`require("./nope");
`)
}

func TestRequireResolve(t *testing.T) {
	expectHoisted(t, "var p = require.resolve('./a');",
		`var $test$var$p = $parcel$require$resolve("test", "./a");
`, dep("a", "./a"))
}

func TestRequireShadowedIsLeftAlone(t *testing.T) {
	expectHoisted(t, "function f(require) { return require('./a'); }",
		`function $test$var$f(require) {
  return require("./a");
}
`, dep("a", "./a"))
}

func TestConditionalRequireRequestsWrap(t *testing.T) {
	d := dep("a", "./a")
	_, result := hoistModule(t, "if (cond) { require('./a'); }", d)

	test.AssertEqual(t, d.Meta.Bool("shouldWrap"), true)
	test.AssertEqual(t, len(result.WrapRequests), 1)
	test.AssertEqual(t, result.WrapRequests[0].Specifier, "./a")
}

func TestLogicalRequireRequestsWrap(t *testing.T) {
	d := dep("a", "./a")
	_, result := hoistModule(t, "var x = cond && require('./a');", d)

	test.AssertEqual(t, d.Meta.Bool("shouldWrap"), true)
	test.AssertEqual(t, len(result.WrapRequests), 1)
}

func TestRequireInFunctionRequestsWrap(t *testing.T) {
	d := dep("a", "./a")
	_, result := hoistModule(t, "function load() { return require('./a'); }", d)

	test.AssertEqual(t, d.Meta.Bool("shouldWrap"), true)
	test.AssertEqual(t, len(result.WrapRequests), 1)
}

func TestTopLevelRequireDoesNotRequestWrap(t *testing.T) {
	d := dep("a", "./a")
	_, result := hoistModule(t, "require('./a');", d)

	test.AssertEqual(t, d.Meta.Bool("shouldWrap"), false)
	test.AssertEqual(t, len(result.WrapRequests), 0)
}

////////////////////////////////////////////////////////////////////////////////
// Dynamic import()

func TestAwaitImportDestructuring(t *testing.T) {
	d := asyncDep("m", "./m")
	asset, _ := hoistModule(t, "let {a, b} = await import('./m');", d)

	assertSymbol(t, d.Symbols, "a", "$test$importAsync$m$a")
	assertSymbol(t, d.Symbols, "b", "$test$importAsync$m$b")
	assertNoSymbol(t, d.Symbols, "*")

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `let {a: $test$importAsync$m$a, b: $test$importAsync$m$b} = await $parcel$require("test", "./m");
`)
}

func TestAwaitImportNamespace(t *testing.T) {
	d := asyncDep("m", "./m")
	asset, _ := hoistModule(t, "let ns = await import('./m'); f(ns.go);", d)

	assertSymbol(t, d.Symbols, "go", "$test$importAsync$m$go")
	assertNoSymbol(t, d.Symbols, "*")

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `let $test$var$ns = await $parcel$require("test", "./m");
f($test$importAsync$m$go);
`)
}

func TestAwaitImportNamespaceReassignedFallsBack(t *testing.T) {
	d := asyncDep("m", "./m")
	hoistModule(t, "let ns = await import('./m'); ns = other; f(ns.go);", d)

	test.AssertEqual(t, d.Meta.Bool("isCommonJS"), true)
	assertSymbol(t, d.Symbols, "*", "$test$require$$$m")
}

func TestImportThenPattern(t *testing.T) {
	d := asyncDep("m", "./m")
	asset, _ := hoistModule(t, "import('./m').then(({a}) => a + 1);", d)

	assertSymbol(t, d.Symbols, "a", "$test$importAsync$m$a")
	assertNoSymbol(t, d.Symbols, "*")

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `$parcel$require("test", "./m").then(({a: $test$importAsync$m$a}) => $test$importAsync$m$a + 1);
`)
}

func TestImportThenNamespace(t *testing.T) {
	d := asyncDep("m", "./m")
	asset, _ := hoistModule(t, "import('./m').then(ns => ns.go());", d)

	assertSymbol(t, d.Symbols, "go", "$test$importAsync$m$go")
	assertNoSymbol(t, d.Symbols, "*")

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `$parcel$require("test", "./m").then((ns) => $test$importAsync$m$go());
`)
}

func TestImportThenEscapingNamespaceFallsBack(t *testing.T) {
	d := asyncDep("m", "./m")
	hoistModule(t, "import('./m').then(ns => use(ns));", d)

	test.AssertEqual(t, d.Meta.Bool("isCommonJS"), true)
	assertSymbol(t, d.Symbols, "*", "$test$require$$$m")
}

func TestObjectPatternAssignFromImport(t *testing.T) {
	d := asyncDep("m", "./m")
	asset, _ := hoistModule(t, "let a; ({a} = await import('./m'));", d)

	assertSymbol(t, d.Symbols, "a", "$test$importAsync$m$a")

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `let $test$importAsync$m$a;
({a: $test$importAsync$m$a} = await $parcel$require("test", "./m"));
`)
}

////////////////////////////////////////////////////////////////////////////////
// Wrapping

func TestTopLevelReturnWraps(t *testing.T) {
	asset, _ := hoistModule(t, "return 42;")

	test.AssertEqual(t, asset.Meta.Bool("shouldWrap"), true)
	test.AssertEqual(t, asset.Meta.Bool("isCommonJS"), true)
	test.AssertEqual(t, asset.Meta.Bool("isES6Module"), false)
	assertSymbol(t, asset.Symbols, "*", "$test$exports")

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `var $test$exports = (function() {
  var exports = this;
  var module = {exports: this};
  return 42;
  return module.exports;
}).call({});
`)
}

func TestEvalWraps(t *testing.T) {
	asset, _ := hoistModule(t, "eval('x');")

	test.AssertEqual(t, asset.Meta.Bool("shouldWrap"), true)

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `var $test$exports = (function() {
  var exports = this;
  var module = {exports: this};
  eval("x");
  return module.exports;
}).call({});
`)
}

func TestFreeModuleReferenceWraps(t *testing.T) {
	asset, _ := hoistModule(t, "f(module);")

	test.AssertEqual(t, asset.Meta.Bool("shouldWrap"), true)
	test.AssertEqual(t, asset.Meta.Bool("isCommonJS"), true)
}

func TestShadowedEvalDoesNotWrap(t *testing.T) {
	asset, _ := hoistModule(t, "function f(eval) { eval('x'); } f(g);")
	test.AssertEqual(t, asset.Meta.Bool("shouldWrap"), false)
}

func TestWrappedESModuleGetsInteropFlag(t *testing.T) {
	d := dep("a", "./a")
	asset, _ := hoistModule(t, "import {x} from './a'; eval('x');", d)

	test.AssertEqual(t, asset.Meta.Bool("shouldWrap"), true)
	test.AssertEqual(t, asset.Meta.Bool("isES6Module"), false)
	test.AssertEqual(t, asset.Meta.Bool("isCommonJS"), true)

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `$parcel$require("test", "./a");
var $test$exports = (function() {
  var exports = this;
  var module = {exports: this};
  exports.__esModule = true;
  eval("x");
  return module.exports;
}).call({});
`)
}

func TestWrappedModuleWithExports(t *testing.T) {
	asset, _ := hoistModule(t, "export const y = 1; eval('x');")

	test.AssertEqual(t, asset.Meta.Bool("shouldWrap"), true)
	test.AssertEqual(t, asset.Meta.Bool("isCommonJS"), true)
	test.AssertEqual(t, asset.Meta.Bool("isES6Module"), false)
	assertSymbol(t, asset.Symbols, "y", "$test$export$y")
	assertSymbol(t, asset.Symbols, "*", "$test$exports")

	// The getter registration must target the wrapper's synthesized local
	// exports object; the asset-level binding is still undefined while the
	// closure runs
	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	if strings.Contains(js, "$parcel$export($test$exports") {
		t.Fatal("Export registration reads the asset-level exports object inside the wrapper")
	}
	test.AssertEqualWithDiff(t, js, `var $test$exports = (function() {
  var exports = this;
  var module = {exports: this};
  exports.__esModule = true;
  const $test$export$y = 1;
  $parcel$export(exports, "y", function() {
    return $test$export$y;
  });
  eval("x");
  return module.exports;
}).call({});
`)
}

func TestWrappedModuleWithFreeModuleAndExport(t *testing.T) {
	asset, _ := hoistModule(t, "export const y = 1; f(module);")

	test.AssertEqual(t, asset.Meta.Bool("shouldWrap"), true)
	assertSymbol(t, asset.Symbols, "y", "$test$export$y")

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `var $test$exports = (function() {
  var exports = this;
  var module = {exports: this};
  exports.__esModule = true;
  const $test$export$y = 1;
  $parcel$export(exports, "y", function() {
    return $test$export$y;
  });
  f(module);
  return module.exports;
}).call({});
`)
}

func TestWrappedWildcardReExport(t *testing.T) {
	d := dep("a", "./a")
	asset, _ := hoistModule(t, "export * from './a'; eval('x');", d)

	assertSymbol(t, d.Symbols, "*", "*")
	assertWeak(t, d.Symbols, "*", true)

	// The wildcard copy runs inside the closure, against the synthesized
	// exports object
	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	test.AssertEqualWithDiff(t, js, `var $test$exports = (function() {
  var exports = this;
  var module = {exports: this};
  exports.__esModule = true;
  $parcel$exportWildcard(exports, $parcel$require("test", "./a"));
  eval("x");
  return module.exports;
}).call({});
`)
}

////////////////////////////////////////////////////////////////////////////////
// Export resolution bailout

func TestFreeExportsReferenceBailsOut(t *testing.T) {
	asset, _ := hoistModule(t, "exports.foo = 1; f(exports);")

	test.AssertEqual(t, asset.Meta.Bool("resolveExportsBailedOut"), true)
	test.AssertEqual(t, len(asset.Dependencies), 1)

	selfDep := asset.Dependencies[0]
	test.AssertEqual(t, selfDep.ModuleSpecifier, "./entry.js")
	assertSymbol(t, selfDep.Symbols, "*", "@exports")

	// Individually tracked exports are cleared; only the namespace remains
	assertNoSymbol(t, asset.Symbols, "foo")
	assertSymbol(t, asset.Symbols, "*", "$test$exports")
}

////////////////////////////////////////////////////////////////////////////////
// Error handling

func TestUnsupportedAST(t *testing.T) {
	asset := graph.NewAsset("test", "/entry.js")
	_, err := Hoist(asset, &js_ast.AST{Model: "other-model", Version: 9})
	if _, ok := err.(*UnsupportedASTError); !ok {
		t.Fatalf("Expected UnsupportedASTError, got %v", err)
	}

	_, err = Hoist(asset, nil)
	if _, ok := err.(*UnsupportedASTError); !ok {
		t.Fatalf("Expected UnsupportedASTError, got %v", err)
	}
}

////////////////////////////////////////////////////////////////////////////////
// Whole-output invariants

func assertNoLeftoverModuleSyntax(t *testing.T, tree *js_ast.AST) {
	t.Helper()
	for _, stmt := range tree.Stmts {
		switch stmt.Data.(type) {
		case *js_ast.SImport, *js_ast.SExportClause, *js_ast.SExportFrom,
			*js_ast.SExportStar, *js_ast.SExportDefault:
			t.Fatal("Leftover import/export node after hoisting")
		}
	}
}

var runtimePlaceholders = map[string]bool{
	"$parcel$require":         true,
	"$parcel$require$resolve": true,
	"$parcel$export":          true,
	"$parcel$exportWildcard":  true,
	"$parcel$global":          true,
	"parcelRequire":           true,
	"exports":                 true,
}

func assertRenamingClosure(t *testing.T, tree *js_ast.AST) {
	t.Helper()
	check := func(ref js_ast.Ref) {
		name := tree.Symbol(ref).OriginalName
		if strings.HasPrefix(name, "$test$") || runtimePlaceholders[name] {
			return
		}
		t.Fatalf("Top-level binding %q escaped the rename", name)
	}
	for _, member := range tree.ModuleScope.Members {
		if tree.Symbol(member.Ref).Kind == js_ast.SymbolUnbound {
			continue
		}
		check(member.Ref)
	}
	for _, ref := range tree.ModuleScope.Generated {
		check(ref)
	}
}

func TestRenamingClosure(t *testing.T) {
	sources := []string{
		"var a = 1; function b() {} class C {} export const d = a;",
		"exports.x = 1; var helper = 2;",
		"import {x} from './a'; export {x}; var y = x;",
		"let {a, b} = await import('./m'); var keep = a;",
	}
	for _, contents := range sources {
		asset, _ := hoistModule(t, contents, dep("a", "./a"), asyncDep("m", "./m"))
		assertRenamingClosure(t, asset.AST)
		assertNoLeftoverModuleSyntax(t, asset.AST)
	}
}

// Re-running the transform over its own printed output must find a module
// that is already clean: no ES module syntax left and no wrap triggered by
// anything the transform itself emitted. The exception is eval, which is
// preserved verbatim and legitimately forces a wrap every time.
func TestClassificationIsStable(t *testing.T) {
	sources := []string{
		"import {x} from './a'; export const y = x + 1;",
		"exports.foo = 1;",
		"return 42;",
	}
	for _, contents := range sources {
		asset, _ := hoistModule(t, contents, dep("a", "./a"))
		js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)

		second, _ := hoistModule(t, js)
		test.AssertEqual(t, second.Meta.Bool("shouldWrap"), false)
		test.AssertEqual(t, second.Meta.Bool("isES6Module"), false)
	}

	asset, _ := hoistModule(t, "eval('x');")
	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	second, _ := hoistModule(t, js)
	test.AssertEqual(t, second.Meta.Bool("shouldWrap"), true)
}

// Every non-weak, non-namespace symbol must resolve to a name that actually
// appears in the output
func TestSymbolTableReachability(t *testing.T) {
	d := dep("a", "./a")
	m := asyncDep("m", "./m")
	asset, _ := hoistModule(t, "import {x} from './a'; export const y = x; let {a} = await import('./m'); f(a);", d, m)

	js := string(js_printer.Print(asset.AST, js_printer.Options{}).JS)
	tables := []*graph.SymbolTable{asset.Symbols, d.Symbols, m.Symbols}
	for _, table := range tables {
		for _, exported := range table.ExportSymbols() {
			if exported == graph.NamespaceSymbol {
				continue
			}
			entry, _ := table.Get(exported)
			if entry.IsWeak {
				continue
			}
			if !strings.Contains(js, entry.Local) {
				t.Fatalf("Symbol %q resolves to %q which is not in the output", exported, entry.Local)
			}
		}
	}
}
