package main

// A small shell around the hoisting transform: parse one file, fabricate a
// dependency per import specifier, hoist, and print the rewritten module to
// stdout. This exists to exercise the library end to end; a real bundler
// drives the same API from its build pipeline.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopackjs/gopack/internal/graph"
	"github.com/gopackjs/gopack/internal/js_parser"
	"github.com/gopackjs/gopack/internal/js_printer"
	"github.com/gopackjs/gopack/internal/logger"
	"github.com/gopackjs/gopack/pkg/hoist"
)

const helpText = `Usage: gopack [options] file.js

Options:
  --id=...              Asset id used for generated names (default: file name)
  --node                Treat the target environment as node
  --color=...           Force the use of color terminal output (true | false)
  --log-level=...       Disable logging (info | warning | error | silent)
  --help                Print this message
`

func main() {
	osArgs := os.Args[1:]

	options := logger.StderrOptions{
		IncludeSource: true,
		ErrorLimit:    10,
	}
	assetID := ""
	isNode := false
	inputPath := ""

	for _, arg := range osArgs {
		switch {
		case arg == "--help" || arg == "-h":
			fmt.Print(helpText)
			os.Exit(0)

		case arg == "--node":
			isNode = true

		case strings.HasPrefix(arg, "--id="):
			assetID = arg[len("--id="):]

		case arg == "--color=false":
			options.Color = logger.ColorNever
		case arg == "--color=true":
			options.Color = logger.ColorAlways

		case arg == "--log-level=info":
			options.LogLevel = logger.LevelInfo
		case arg == "--log-level=warning":
			options.LogLevel = logger.LevelWarning
		case arg == "--log-level=error":
			options.LogLevel = logger.LevelError
		case arg == "--log-level=silent":
			options.LogLevel = logger.LevelSilent

		case strings.HasPrefix(arg, "-"):
			logger.PrintErrorToStderr(osArgs, fmt.Sprintf("Invalid flag: %q", arg))
			os.Exit(1)

		default:
			if inputPath != "" {
				logger.PrintErrorToStderr(osArgs, "Expected exactly one input file")
				os.Exit(1)
			}
			inputPath = arg
		}
	}

	if inputPath == "" {
		fmt.Fprint(os.Stderr, helpText)
		os.Exit(1)
	}

	contents, err := os.ReadFile(inputPath)
	if err != nil {
		logger.PrintErrorToStderr(osArgs, fmt.Sprintf("Could not read from file: %s", inputPath))
		os.Exit(1)
	}

	if assetID == "" {
		base := filepath.Base(inputPath)
		assetID = strings.TrimSuffix(base, filepath.Ext(base))
	}

	log := logger.NewStderrLog(options)
	source := logger.Source{
		Index:          0,
		KeyPath:        inputPath,
		PrettyPath:     inputPath,
		IdentifierName: assetID,
		Contents:       string(contents),
	}

	tree, ok := js_parser.Parse(log, source, js_parser.Options{})
	log.Done()
	if !ok {
		os.Exit(1)
	}

	asset := graph.NewAsset(assetID, inputPath)
	if isNode {
		asset.Env = &graph.Environment{Context: graph.ContextNode}
	}

	// Fabricate one dependency per import specifier so the transform has
	// something to bind symbols to. A real build pipeline supplies these
	// from its resolver.
	for i, specifier := range collectSpecifiers(string(contents)) {
		dep := graph.NewDependency(fmt.Sprintf("dep%d", i), specifier)
		asset.AddDependency(dep)
	}

	result, err := hoist.Hoist(asset, &tree)
	if err != nil {
		logger.PrintErrorToStderr(osArgs, err.Error())
		os.Exit(1)
	}

	js := js_printer.Print(asset.AST, js_printer.Options{}).JS
	os.Stdout.Write(js)

	for _, request := range result.WrapRequests {
		logger.PrintMessageToStderr(osArgs, logger.Msg{
			Kind: logger.Warning,
			Text: fmt.Sprintf("Dependency %q must be wrapped (require is not at the top level)", request.Specifier),
		})
	}
}

// collectSpecifiers scrapes quoted specifiers from import/export/require
// syntax. It's a text-level approximation that's plenty for a demo shell.
func collectSpecifiers(contents string) []string {
	seen := map[string]bool{}
	specifiers := []string{}
	markers := []string{"from ", "import(", "require(", "require.resolve(", "import "}

	for _, marker := range markers {
		rest := contents
		for {
			index := strings.Index(rest, marker)
			if index < 0 {
				break
			}
			rest = rest[index+len(marker):]
			trimmed := strings.TrimLeft(rest, " \t")
			if len(trimmed) == 0 || (trimmed[0] != '"' && trimmed[0] != '\'') {
				continue
			}
			quote := trimmed[0]
			end := strings.IndexByte(trimmed[1:], quote)
			if end < 0 {
				continue
			}
			specifier := trimmed[1 : 1+end]
			if !seen[specifier] {
				seen[specifier] = true
				specifiers = append(specifiers, specifier)
			}
		}
	}
	return specifiers
}
