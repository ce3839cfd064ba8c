package test

import (
	"testing"

	"github.com/gopackjs/gopack/internal/logger"
)

func AssertEqual(t *testing.T, observed interface{}, expected interface{}) {
	t.Helper()
	if observed != expected {
		t.Fatalf("%v != %v", observed, expected)
	}
}

func AssertEqualWithDiff(t *testing.T, observed interface{}, expected interface{}) {
	t.Helper()
	if observed != expected {
		stringA, ok1 := observed.(string)
		stringB, ok2 := expected.(string)
		if ok1 && ok2 {
			t.Fatal("\n" + Diff(stringB, stringA, true))
		} else {
			t.Fatalf("%v != %v", observed, expected)
		}
	}
}

func SourceForTest(contents string) logger.Source {
	return logger.Source{
		Index:          0,
		KeyPath:        "<stdin>",
		PrettyPath:     "<stdin>",
		Contents:       contents,
		IdentifierName: "stdin",
	}
}
