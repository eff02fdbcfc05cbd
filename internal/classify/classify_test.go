package classify

import (
	"reflect"
	"testing"
)

func TestClassifySignatureChange(t *testing.T) {
	c := NewRegexClassifier()

	diff := `--- a/src/api.ts
+++ b/src/api.ts
@@ -1,3 +1,3 @@
-export function fetchUser(id: string) {
+export function fetchUser(id: string, opts: Options) {
   return get(id)
 }
`

	changes := c.Classify(diff, "src/api.ts")
	if len(changes) != 1 {
		t.Fatalf("expected exactly 1 change, got %d: %+v", len(changes), changes)
	}
	if changes[0].Kind != KindSignature {
		t.Errorf("expected signature, got %s", changes[0].Kind)
	}
	if changes[0].Location != "src/api.ts" {
		t.Errorf("expected location src/api.ts, got %s", changes[0].Location)
	}
}

func TestClassifyExportRemoved(t *testing.T) {
	c := NewRegexClassifier()

	// Dropping the export keyword keeps the signature rule firing too:
	// the removed line still looks like an exported declaration.
	diff := `-export const MAX_RETRIES = 5
+const MAX_RETRIES = 5
`

	changes := c.Classify(diff, "src/limits.ts")

	kinds := map[ChangeKind]bool{}
	for _, ch := range changes {
		kinds[ch.Kind] = true
	}
	if !kinds[KindRemove] {
		t.Errorf("expected a remove change, got %+v", changes)
	}
}

func TestClassifyRenameCandidate(t *testing.T) {
	c := NewRegexClassifier()

	diff := `-function calculateTotal(items) {
+function computeTotal(items) {
`

	changes := c.Classify(diff, "src/cart.js")

	foundRename := false
	for _, ch := range changes {
		if ch.Kind == KindRename {
			foundRename = true
		}
	}
	if !foundRename {
		t.Errorf("expected a rename candidate, got %+v", changes)
	}
}

func TestClassifyRenameNotFiredWhenNameSurvives(t *testing.T) {
	c := NewRegexClassifier()

	// Same declaration name on both sides: body change only
	diff := `-const retries = limit + 1
+const retries = limit + 2
`

	for _, ch := range c.Classify(diff, "src/x.ts") {
		if ch.Kind == KindRename {
			t.Errorf("rename should not fire when the name survives: %+v", ch)
		}
	}
}

func TestClassifyEmptyAndGarbageInput(t *testing.T) {
	c := NewRegexClassifier()

	for _, input := range []string{"", "   \n\t", "not a diff at all", "@@ malformed hunk"} {
		if got := c.Classify(input, "src/x.ts"); len(got) != 0 {
			t.Errorf("input %q: expected no changes, got %+v", input, got)
		}
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	c := NewRegexClassifier()

	diff := `-export function login(user) {
+export function login(user, session) {
-const parse = (raw) => raw.trim()
+const parseInput = (raw) => raw.trim()
`

	first := c.Classify(diff, "src/auth.ts")
	second := c.Classify(diff, "src/auth.ts")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("classification not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestClassifySkipsFileHeaders(t *testing.T) {
	c := NewRegexClassifier()

	// The ---/+++ header pair must never be treated as a removed/added pair
	diff := `--- a/src/api.ts
+++ b/src/api.ts
`

	if got := c.Classify(diff, "src/api.ts"); len(got) != 0 {
		t.Errorf("file headers misread as changes: %+v", got)
	}
}

func TestClassifyArrowConst(t *testing.T) {
	c := NewRegexClassifier()

	diff := `-export const handler = async (req) => {
+export const handler = async (req, res) => {
`

	changes := c.Classify(diff, "src/handler.ts")
	if len(changes) != 1 || changes[0].Kind != KindSignature {
		t.Fatalf("expected one signature change for arrow const, got %+v", changes)
	}
}

func TestTruncateLine(t *testing.T) {
	long := make([]byte, 120)
	for i := range long {
		long[i] = 'x'
	}

	got := truncateLine(string(long))
	if len(got) != 83 {
		t.Errorf("expected 80 chars + ellipsis, got len %d", len(got))
	}
	if truncateLine("short") != "short" {
		t.Errorf("short lines must pass through unchanged")
	}
}
