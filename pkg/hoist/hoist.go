// Package hoist is the public surface of the scope-hoisting transform. The
// caller supplies an asset (with its declared dependencies) and the asset's
// parsed tree; the transform mutates both in place and reports which
// dependencies need to be wrapped.
package hoist

import (
	"github.com/gopackjs/gopack/internal/graph"
	"github.com/gopackjs/gopack/internal/hoister"
	"github.com/gopackjs/gopack/internal/js_ast"
)

// Result re-exports the transform's first-class outputs
type Result = hoister.Result

// WrapRequest asks the caller to wrap the named dependency's module
type WrapRequest = hoister.WrapRequest

// Hoist rewrites the asset's tree for concatenation. The tree must carry a
// recognized model/version tag or an UnsupportedAST error is returned. On
// success the asset's metadata, symbol table, dependency symbol tables, and
// tree have all been updated in place.
func Hoist(asset *graph.Asset, tree *js_ast.AST) (*Result, error) {
	return hoister.Hoist(asset, tree)
}
