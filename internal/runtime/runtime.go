// Package runtime holds the JavaScript definitions of the placeholders the
// hoisting pass emits. A packager prepends this code (or substitutes its own
// implementations) before concatenating hoisted modules; the hoisting pass
// itself only guarantees that these are the only "$parcel$"-prefixed names it
// introduces.
package runtime

const Code = `
	var $parcel$global = typeof globalThis !== 'undefined'
		? globalThis
		: typeof self !== 'undefined'
			? self
			: typeof window !== 'undefined'
				? window
				: typeof global !== 'undefined'
					? global
					: {}

	var $parcel$modules = {}
	var $parcel$inits = {}

	// The module registry shared by every bundle on the page
	var parcelRequire = $parcel$global.parcelRequire
	if (parcelRequire == null) {
		parcelRequire = function (id) {
			if (id in $parcel$modules) {
				return $parcel$modules[id].exports
			}
			if (id in $parcel$inits) {
				var init = $parcel$inits[id]
				delete $parcel$inits[id]
				var module = {id: id, exports: {}}
				$parcel$modules[id] = module
				init.call(module.exports, module, module.exports)
				return module.exports
			}
			var err = new Error("Cannot find module '" + id + "'")
			err.code = 'MODULE_NOT_FOUND'
			throw err
		}
		parcelRequire.register = function register(id, init) {
			$parcel$inits[id] = init
		}
		$parcel$global.parcelRequire = parcelRequire
	}

	// Resolves to the export namespace of a dependency. The packager
	// rewrites the (assetId, source) pair to the resolved module id.
	function $parcel$require(assetId, source) {
		return parcelRequire($parcel$resolve(assetId, source))
	}

	// Resolves to a dependency's module id
	function $parcel$require$resolve(assetId, source) {
		return $parcel$resolve(assetId, source)
	}

	function $parcel$resolve(assetId, source) {
		var resolved = parcelRequire.resolution && parcelRequire.resolution[assetId + ':' + source]
		if (resolved == null) {
			throw new Error("Cannot resolve dependency '" + source + "'")
		}
		return resolved
	}

	// Defines a live getter on an exports object
	function $parcel$export(exports, name, get) {
		Object.defineProperty(exports, name, {get: get, enumerable: true, configurable: true})
	}

	// Defines a live getter on target for each own enumerable key of source
	// except "default" and "__esModule"
	function $parcel$exportWildcard(target, source) {
		Object.keys(source).forEach(function (key) {
			if (key === 'default' || key === '__esModule') {
				return
			}
			Object.defineProperty(target, key, {
				enumerable: true,
				get: function () {
					return source[key]
				},
			})
		})
		return target
	}
`
