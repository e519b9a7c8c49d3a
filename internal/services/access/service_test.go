package access

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/nestor-churin/AlcoMeterBot/internal/domain/enums"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/errs"
)

func TestAllowList(t *testing.T) {
	t.Parallel()

	svc := NewService([]int64{10, 0, 20, 10, -5})

	if !reflect.DeepEqual(svc.Admins(), []int64{10, 20}) {
		t.Fatalf("unexpected admins: %v", svc.Admins())
	}
	if svc.ResolveRole(context.Background(), 20) != enums.RoleAdmin {
		t.Fatal("expected admin role")
	}
	if svc.ResolveRole(context.Background(), 30) != enums.RoleUser {
		t.Fatal("expected user role")
	}
	if err := svc.RequireAdmin(30); !errors.Is(err, errs.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if err := svc.RequireAdmin(10); err != nil {
		t.Fatalf("admin rejected: %v", err)
	}
}
