package authz

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dropDatabas3/portero/internal/observability/logger"
	"github.com/dropDatabas3/portero/internal/store/core"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Seed siembra el catálogo de permisos y los role templates. Idempotente:
// lo que ya existe se saltea, nunca se pisa.
func Seed(ctx context.Context, repo core.Repository) error {
	log := logger.Named("seed")

	keys := make([]string, 0, len(Catalog))
	for k := range Catalog {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var created int
	for _, name := range keys {
		if _, err := repo.GetPermission(ctx, name); err == nil {
			continue
		} else if !errors.Is(err, core.ErrNotFound) {
			return err
		}
		resource, action := SplitKey(name)
		p := &core.Permission{
			Name:        name,
			Description: Catalog[name],
			Resource:    resource,
			Action:      action,
		}
		if err := repo.CreatePermission(ctx, p); err != nil && !errors.Is(err, core.ErrConflict) {
			return err
		}
		created++
	}
	log.Info("permission catalog seeded", zap.Int("created", created), zap.Int("total", len(keys)))

	for _, tpl := range RoleTemplates() {
		role, err := repo.GetRoleByName(ctx, tpl.Name)
		switch {
		case err == nil:
			// ya existe: no tocamos permisos, son rows mutables post-seed
			continue
		case errors.Is(err, core.ErrNotFound):
		default:
			return err
		}
		role = &core.Role{
			ID:          uuid.NewString(),
			Name:        tpl.Name,
			Description: tpl.Description,
			IsSystem:    tpl.IsSystem,
			IsActive:    true,
			CreatedAt:   time.Now().UTC(),
		}
		if err := repo.CreateRole(ctx, role); err != nil && !errors.Is(err, core.ErrConflict) {
			return err
		}
		for _, perm := range tpl.Permissions {
			if err := repo.GrantPermission(ctx, role.ID, perm); err != nil && !errors.Is(err, core.ErrConflict) {
				return err
			}
		}
		log.Info("role template seeded", zap.String("role", tpl.Name), zap.Int("perms", len(tpl.Permissions)))
	}
	return nil
}
