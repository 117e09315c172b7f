// Package memory implementa core.Repository en memoria: modo dev sin DB y
// fixture de tests. Mapas protegidos por un RWMutex; suficiente para ambos.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dropDatabas3/portero/internal/store/core"
)

type Store struct {
	mu sync.RWMutex

	users       map[string]*core.User // por id
	roles       map[string]*core.Role // por id
	permissions map[string]*core.Permission
	tenants     map[string]*core.Tenant
	branches    map[string]*core.Branch

	userRoles   map[string][]string // userID → roleIDs
	rolePerms   map[string][]string // roleID → perm names
	tenantMembs map[string]*core.TenantMembership // userID+"/"+tenantID
	branchMembs []*core.BranchMembership
}

func New() *Store {
	return &Store{
		users:       make(map[string]*core.User),
		roles:       make(map[string]*core.Role),
		permissions: make(map[string]*core.Permission),
		tenants:     make(map[string]*core.Tenant),
		branches:    make(map[string]*core.Branch),
		userRoles:   make(map[string][]string),
		rolePerms:   make(map[string][]string),
		tenantMembs: make(map[string]*core.TenantMembership),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

// ---------- users ----------

func (s *Store) GetUserByID(_ context.Context, id string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Store) GetUserByIdentifier(_ context.Context, identifier string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == identifier || u.Email == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Store) CreateUser(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.users {
		if e.Username == u.Username || e.Email == u.Email {
			return core.ErrConflict
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) UpdateLastLogin(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return core.ErrNotFound
	}
	u.LastLoginAt = &at
	return nil
}

func (s *Store) SetUserActive(_ context.Context, userID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return core.ErrNotFound
	}
	u.IsActive = active
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// ---------- rbac ----------

func (s *Store) GetUserRoles(_ context.Context, userID string) ([]core.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Role
	for _, rid := range s.userRoles[userID] {
		if r, ok := s.roles[rid]; ok {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *Store) GetRolePermissions(_ context.Context, roleID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	perms := s.rolePerms[roleID]
	out := make([]string, len(perms))
	copy(out, perms)
	return out, nil
}

func (s *Store) GetRoleByName(_ context.Context, name string) (*core.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if r.Name == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Store) CreateRole(_ context.Context, r *core.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.roles {
		if e.Name == r.Name {
			return core.ErrConflict
		}
	}
	cp := *r
	s.roles[r.ID] = &cp
	return nil
}

func (s *Store) AssignRole(_ context.Context, userID, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return core.ErrNotFound
	}
	if _, ok := s.roles[roleID]; !ok {
		return core.ErrNotFound
	}
	for _, rid := range s.userRoles[userID] {
		if rid == roleID {
			return core.ErrConflict
		}
	}
	s.userRoles[userID] = append(s.userRoles[userID], roleID)
	return nil
}

func (s *Store) GrantPermission(_ context.Context, roleID, perm string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[roleID]; !ok {
		return core.ErrNotFound
	}
	for _, p := range s.rolePerms[roleID] {
		if p == perm {
			return core.ErrConflict
		}
	}
	s.rolePerms[roleID] = append(s.rolePerms[roleID], perm)
	return nil
}

// ---------- catálogo ----------

func (s *Store) GetPermission(_ context.Context, name string) (*core.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.permissions[name]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) CreatePermission(_ context.Context, p *core.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.permissions[p.Name]; ok {
		return core.ErrConflict
	}
	cp := *p
	s.permissions[p.Name] = &cp
	return nil
}

func (s *Store) ListPermissions(_ context.Context) ([]core.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Permission, 0, len(s.permissions))
	for _, p := range s.permissions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---------- tenants / branches ----------

func (s *Store) GetTenantByID(_ context.Context, id string) (*core.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tenants[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Store) CreateTenant(_ context.Context, t *core.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.tenants {
		if e.Code == t.Code {
			return core.ErrConflict
		}
	}
	cp := *t
	s.tenants[t.ID] = &cp
	return nil
}

func (s *Store) CreateBranch(_ context.Context, b *core.Branch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[b.TenantID]; !ok {
		return core.ErrNotFound
	}
	cp := *b
	s.branches[b.ID] = &cp
	return nil
}

func (s *Store) CountTenantUsers(_ context.Context, tenantID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.tenantMembs {
		if m.TenantID == tenantID {
			if u, ok := s.users[m.UserID]; ok && u.IsActive {
				n++
			}
		}
	}
	return n, nil
}

func (s *Store) CountTenantBranches(_ context.Context, tenantID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, b := range s.branches {
		if b.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

// ---------- memberships ----------

func membKey(userID, tenantID string) string { return userID + "/" + tenantID }

func (s *Store) AddTenantMembership(_ context.Context, m *core.TenantMembership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := membKey(m.UserID, m.TenantID)
	if _, ok := s.tenantMembs[k]; ok {
		return core.ErrConflict
	}
	cp := *m
	s.tenantMembs[k] = &cp
	return nil
}

func (s *Store) GetTenantMembership(_ context.Context, userID, tenantID string) (*core.TenantMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.tenantMembs[membKey(userID, tenantID)]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *Store) ListTenantMemberships(_ context.Context, userID string) ([]core.TenantMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.TenantMembership
	for k, m := range s.tenantMembs {
		if strings.HasPrefix(k, userID+"/") {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TenantID < out[j].TenantID })
	return out, nil
}

func (s *Store) AddBranchMembership(_ context.Context, m *core.BranchMembership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.branches[m.BranchID]; !ok {
		return core.ErrNotFound
	}
	for _, e := range s.branchMembs {
		if e.UserID == m.UserID && e.BranchID == m.BranchID {
			return core.ErrConflict
		}
	}
	cp := *m
	s.branchMembs = append(s.branchMembs, &cp)
	return nil
}

func (s *Store) GetPrimaryBranch(_ context.Context, userID, tenantID string) (*core.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.branchMembs {
		if m.UserID == userID && m.TenantID == tenantID && m.IsPrimary {
			if b, ok := s.branches[m.BranchID]; ok {
				cp := *b
				return &cp, nil
			}
		}
	}
	return nil, core.ErrNotFound
}

var _ core.Repository = (*Store)(nil)
