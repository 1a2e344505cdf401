package domain

import (
	"strings"
	"testing"

	"github.com/bytedance/sonic"
)

func TestTodoMarshalIncludesZeroValues(t *testing.T) {
	todo := Todo{ID: 1, UserID: 0, Title: "Title", Completed: false}

	payload, err := sonic.Marshal(todo)
	if err != nil {
		t.Fatalf("marshal todo: %v", err)
	}

	if !strings.Contains(string(payload), `"completed":false`) {
		t.Fatalf("expected completed field to be present, got %s", payload)
	}
	if !strings.Contains(string(payload), `"userId":0`) {
		t.Fatalf("expected userId field to be present, got %s", payload)
	}
}

func TestTodoChangesUnmarshalPartialBody(t *testing.T) {
	var changes TodoChanges
	if err := sonic.Unmarshal([]byte(`{"completed":true}`), &changes); err != nil {
		t.Fatalf("unmarshal changes: %v", err)
	}

	if changes.Completed == nil || !*changes.Completed {
		t.Fatalf("expected completed=true, got %#v", changes.Completed)
	}
	if changes.Title != nil {
		t.Fatalf("expected absent title to stay nil, got %q", *changes.Title)
	}
	if changes.UserID != nil {
		t.Fatalf("expected absent userId to stay nil, got %d", *changes.UserID)
	}
}
