package authz

// Catalog es el catálogo estático de permisos: key "resource:action" →
// descripción humana. Se siembra una vez al inicio (idempotente) y después
// es solo lectura; las descripciones alimentan los mensajes 403.
var Catalog = map[string]string{
	// Users
	"users:create": "Create users",
	"users:read":   "Read users",
	"users:update": "Update users",
	"users:delete": "Delete users",
	"users:manage": "Manage users",

	// Tenants
	"tenants:create": "Create tenants",
	"tenants:read":   "Read tenants",
	"tenants:update": "Update tenants",
	"tenants:delete": "Delete tenants",
	"tenants:manage": "Manage tenants",

	// Roles & permissions
	"roles:create":       "Create roles",
	"roles:read":         "Read roles",
	"roles:update":       "Update roles",
	"roles:delete":       "Delete roles",
	"permissions:manage": "Manage permissions",

	// Subscriptions
	"subscriptions:create": "Create subscriptions",
	"subscriptions:read":   "Read subscriptions",
	"subscriptions:update": "Update subscriptions",
	"subscriptions:delete": "Cancel subscriptions",
	"subscriptions:manage": "Manage subscriptions",

	// Branches
	"branches:create": "Create branches",
	"branches:read":   "Read branches",
	"branches:update": "Update branches",
	"branches:delete": "Delete branches",
	"branches:manage": "Manage branches",

	// System
	"system:admin":  "System administration",
	"system:backup": "System backups",
	"system:logs":   "View system logs",
}

// RoleTemplate es un bundle predefinido de permisos. Post-seed son Role rows
// comunes y mutables; acá no hay checks hardcodeados por nombre de rol.
type RoleTemplate struct {
	Name        string
	Description string
	IsSystem    bool
	Permissions []string
}

// RoleTemplates en orden de seed.
func RoleTemplates() []RoleTemplate {
	all := make([]string, 0, len(Catalog))
	for k := range Catalog {
		all = append(all, k)
	}
	return []RoleTemplate{
		{
			Name:        "super_admin",
			Description: "Full system administrator",
			IsSystem:    true,
			Permissions: all,
		},
		{
			Name:        "tenant_admin",
			Description: "Tenant administrator",
			IsSystem:    true,
			Permissions: []string{
				"users:create", "users:read", "users:update", "users:manage",
				"branches:create", "branches:read", "branches:update", "branches:manage",
				"tenants:read",
			},
		},
		{
			Name:        "branch_manager",
			Description: "Branch manager",
			Permissions: []string{
				"users:create", "users:read", "users:update",
				"branches:read", "branches:update",
			},
		},
		{
			Name:        "employee",
			Description: "Employee",
			Permissions: []string{"users:read", "branches:read"},
		},
		{
			Name:        "viewer",
			Description: "Read-only viewer",
			Permissions: []string{"users:read", "branches:read"},
		},
	}
}

// Describe devuelve la descripción humana de un permiso; si no está en el
// catálogo cae a la key cruda.
func Describe(key string) string {
	if d, ok := Catalog[key]; ok {
		return d
	}
	return key
}
