package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
	"github.com/jhoicas/Aprobaciones-api/internal/infrastructure/memory"
)

const tenantID = "tenant-acme"

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func admin() entity.Caller { return entity.Caller{TenantID: tenantID, UserID: "admin", Role: entity.RoleAdmin} }
func member(id string) entity.Caller {
	return entity.Caller{TenantID: tenantID, UserID: id, Role: entity.RoleMember}
}

func boolPtr(b bool) *bool { return &b }

// seed crea dos tenants y usuarios en el store en memoria.
func seed(t *testing.T) (*memory.Store, ports.Clock) {
	t.Helper()
	store := memory.NewStore()
	err := store.Run(context.Background(), func(repos ports.Repositories) error {
		ctx := context.Background()
		for _, tn := range []string{tenantID, "tenant-globex"} {
			if err := repos.Tenants.Create(ctx, &entity.Tenant{ID: tn, Name: "Empresa " + tn, Slug: tn, Lifecycle: entity.LifecycleActive}); err != nil {
				return err
			}
		}
		users := []*entity.User{
			{ID: "admin", TenantID: tenantID, Email: "admin@acme", Name: "Admin", Role: entity.RoleAdmin},
			{ID: "ana", TenantID: tenantID, Email: "ana@acme", Name: "Ana", Role: entity.RoleMember},
			{ID: "beto", TenantID: tenantID, Email: "beto@acme", Name: "Beto", Role: entity.RoleMember},
			{ID: "caro", TenantID: tenantID, Email: "caro@acme", Name: "Caro", Role: entity.RoleManager},
			{ID: "xavi", TenantID: "tenant-globex", Email: "xavi@globex", Name: "Xavi", Role: entity.RoleAdmin},
		}
		for _, u := range users {
			u.Lifecycle = entity.LifecycleActive
			if err := repos.Users.Create(ctx, u); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return store, ports.FixedClock{T: now}
}
