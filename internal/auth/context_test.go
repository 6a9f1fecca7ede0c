package auth

import (
	"context"
	"testing"
)

func TestWithIdentityAndFromContext(t *testing.T) {
	id := Identity{
		OperatorID: 1,
		Username:   "dispatch",
		SessionID:  3,
	}

	ctx := WithIdentity(context.Background(), id)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected Identity in context")
	}
	if got.OperatorID != 1 {
		t.Errorf("OperatorID = %d, want 1", got.OperatorID)
	}
	if got.Username != "dispatch" {
		t.Errorf("Username = %q, want %q", got.Username, "dispatch")
	}
	if got.SessionID != 3 {
		t.Errorf("SessionID = %d, want 3", got.SessionID)
	}
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	if ok {
		t.Error("expected false for missing Identity")
	}
}

func TestOperatorID(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{OperatorID: 7})
	if OperatorID(ctx) != 7 {
		t.Errorf("OperatorID = %d, want 7", OperatorID(ctx))
	}
}

func TestOperatorIDMissing(t *testing.T) {
	if OperatorID(context.Background()) != 0 {
		t.Error("expected 0 for missing context")
	}
}
