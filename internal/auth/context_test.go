package auth

import (
	"context"
	"testing"

	"github.com/todoapi/todoapi/internal/model"
)

func TestPrincipalContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if PrincipalFromContext(ctx) != nil {
		t.Fatal("expected no principal on empty context")
	}
	if UserIDFromContext(ctx) != "" || TokenFromContext(ctx) != "" {
		t.Fatal("expected empty helpers on empty context")
	}

	p := &model.Principal{UserID: "u1", Email: "a@example.com", Token: "tok"}
	ctx = ContextWithPrincipal(ctx, p)

	if got := MustPrincipalFromContext(ctx); got != p {
		t.Errorf("principal = %+v, want %+v", got, p)
	}
	if UserIDFromContext(ctx) != "u1" {
		t.Errorf("UserIDFromContext = %q", UserIDFromContext(ctx))
	}
	if TokenFromContext(ctx) != "tok" {
		t.Errorf("TokenFromContext = %q", TokenFromContext(ctx))
	}
}

func TestMustPrincipalFromContext_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic without principal")
		}
	}()
	MustPrincipalFromContext(context.Background())
}
