package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	cause := stderrors.New("exit status 127")
	err := New(SpawnFailed, "initial test run failed", cause, nil)

	msg := err.Error()
	if !strings.Contains(msg, "SPAWN_FAILED") {
		t.Errorf("message must carry the code: %q", msg)
	}
	if !strings.Contains(msg, "exit status 127") {
		t.Errorf("message must carry the cause: %q", msg)
	}

	bare := New(TargetUnknown, "no such target", nil, nil)
	if strings.Contains(bare.Error(), "<nil>") {
		t.Errorf("nil cause must not leak into the message: %q", bare.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("underlying")
	err := New(InternalError, "wrapper", cause, nil)

	if !stderrors.Is(err, cause) {
		t.Errorf("errors.Is must see through TwError")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(Timeout, "too slow", nil, nil).WithDetails(map[string]int{"timeoutMs": 5000})
	if err.Details == nil {
		t.Errorf("details not attached")
	}
}

func TestGetSuggestedFixes(t *testing.T) {
	fixes := GetSuggestedFixes(SpawnFailed)
	if len(fixes) == 0 {
		t.Fatalf("spawn failures must carry fixes")
	}
	if fixes[0].Type != RunCommand {
		t.Errorf("first spawn fix should be a command check, got %s", fixes[0].Type)
	}

	if GetSuggestedFixes(InternalError) != nil {
		t.Errorf("codes without actions must return nil")
	}
}
