package graph

import (
	"testing"

	"github.com/gopackjs/gopack/internal/test"
)

func TestSymbolTableBasics(t *testing.T) {
	table := &SymbolTable{}
	test.AssertEqual(t, table.Len(), 0)
	test.AssertEqual(t, table.HasExportSymbol("x"), false)

	table.Ensure()
	table.Set("x", SymbolEntry{Local: "$a$export$x"})
	table.Set("default", SymbolEntry{Local: "$a$export$default"})
	table.Set("*", SymbolEntry{Local: "$a$exports"})

	test.AssertEqual(t, table.Len(), 3)
	entry, ok := table.Get("x")
	test.AssertEqual(t, ok, true)
	test.AssertEqual(t, entry.Local, "$a$export$x")

	// Overwriting keeps one slot
	table.Set("x", SymbolEntry{Local: "$a$export$x2"})
	test.AssertEqual(t, table.Len(), 3)
}

func TestSymbolTableOrderAndDelete(t *testing.T) {
	table := &SymbolTable{}
	table.Set("b", SymbolEntry{Local: "lb"})
	table.Set("a", SymbolEntry{Local: "la"})
	table.Set("c", SymbolEntry{Local: "lc"})

	names := table.ExportSymbols()
	test.AssertEqual(t, len(names), 3)
	test.AssertEqual(t, names[0], "b")
	test.AssertEqual(t, names[1], "a")
	test.AssertEqual(t, names[2], "c")

	table.Delete("a")
	names = table.ExportSymbols()
	test.AssertEqual(t, len(names), 2)
	test.AssertEqual(t, names[0], "b")
	test.AssertEqual(t, names[1], "c")

	// Deleting a missing name is a no-op
	table.Delete("missing")
	test.AssertEqual(t, table.Len(), 2)
}

func TestSymbolTableLocalLookup(t *testing.T) {
	table := &SymbolTable{}
	table.Set("x", SymbolEntry{Local: "$a$export$x"})

	test.AssertEqual(t, table.HasLocalSymbol("$a$export$x"), true)
	test.AssertEqual(t, table.HasLocalSymbol("$a$export$y"), false)

	exported, ok := table.LocalSymbol("$a$export$x")
	test.AssertEqual(t, ok, true)
	test.AssertEqual(t, exported, "x")
}

func TestSymbolTableRejectsInvalidNames(t *testing.T) {
	table := &SymbolTable{}
	defer func() {
		if recover() == nil {
			t.Fatal("Expected a panic for a non-identifier exported name")
		}
	}()
	table.Set("not a name", SymbolEntry{Local: "x"})
}

func TestEnsureIsIdempotent(t *testing.T) {
	table := &SymbolTable{}
	table.Ensure()
	table.Set("x", SymbolEntry{Local: "lx"})
	table.Ensure()
	test.AssertEqual(t, table.Len(), 1)
}

func TestMeta(t *testing.T) {
	meta := Meta{}
	test.AssertEqual(t, meta.Bool("isCommonJS"), false)
	test.AssertEqual(t, meta.String("exportsIdentifier"), "")

	meta.Set("isCommonJS", true)
	meta.Set("exportsIdentifier", "$a$exports")
	test.AssertEqual(t, meta.Bool("isCommonJS"), true)
	test.AssertEqual(t, meta.String("exportsIdentifier"), "$a$exports")

	// A value of the wrong type reads as the zero value
	meta.Set("isCommonJS", "yes")
	test.AssertEqual(t, meta.Bool("isCommonJS"), false)
}

func TestAssetDependencies(t *testing.T) {
	asset := NewAsset("a1", "/src/entry.js")
	test.AssertEqual(t, asset.IsSource, true)

	dep := asset.AddDependency(NewDependency("d1", "./util"))
	test.AssertEqual(t, asset.DependencyForSpecifier("./util"), dep)
	if asset.DependencyForSpecifier("./missing") != nil {
		t.Fatal("Expected nil for an unknown specifier")
	}
}

func TestEnvironment(t *testing.T) {
	var env *Environment
	test.AssertEqual(t, env.IsNode(), false)
	test.AssertEqual(t, (&Environment{Context: ContextBrowser}).IsNode(), false)
	test.AssertEqual(t, (&Environment{Context: ContextNode}).IsNode(), true)
}
