package requestctx

import (
	"context"
	"testing"
)

func TestIdentityRoundTrip(t *testing.T) {
	t.Parallel()

	identity := Identity{UserID: "u1", Email: "a@x.com", DisplayName: "Ada Lovelace"}
	ctx := WithIdentity(context.Background(), identity)

	got, ok := IdentityFromContext(ctx)
	if !ok {
		t.Fatal("expected identity in context")
	}
	if got != identity {
		t.Fatalf("expected %+v, got %+v", identity, got)
	}
}

func TestIdentityFromContextMissing(t *testing.T) {
	t.Parallel()

	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Fatal("expected no identity in empty context")
	}
}

func TestIdentityFromContextIgnoresEmptyUserID(t *testing.T) {
	t.Parallel()

	ctx := WithIdentity(context.Background(), Identity{Email: "a@x.com"})
	if _, ok := IdentityFromContext(ctx); ok {
		t.Fatal("expected identity without user id to be ignored")
	}
}

func TestWithIdentityNilContext(t *testing.T) {
	t.Parallel()

	ctx := WithIdentity(nil, Identity{UserID: "u1"})
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	if _, ok := IdentityFromContext(ctx); !ok {
		t.Fatal("expected identity in context")
	}
}
