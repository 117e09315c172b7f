package core

import "time"

// User es el registro de identidad. Un usuario puede pertenecer a varios
// tenants y branches (memberships explícitas), pero tiene un tenant primario
// opcional que viaja en sus tokens.
type User struct {
	ID              string
	Username        string
	Email           string
	PasswordHash    string
	FirstName       string
	LastName        string
	Phone           string
	IsActive        bool
	IsVerified      bool
	IsSuperuser     bool
	LastLoginAt     *time.Time
	PrimaryTenantID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Role agrupa permisos. IsSystem marca roles sembrados que no se pueden
// borrar ni renombrar desde el CRUD.
type Role struct {
	ID          string
	Name        string
	Description string
	IsSystem    bool
	IsActive    bool
	CreatedAt   time.Time
}

// Permission es una capacidad atómica "resource:action".
// El catálogo se siembra al inicio y es inmutable en runtime.
type Permission struct {
	Name        string // ej: "users:read"
	Description string
	Resource    string
	Action      string
}

// Estados de suscripción de un tenant.
const (
	SubscriptionTrial     = "trial"
	SubscriptionActive    = "active"
	SubscriptionSuspended = "suspended"
	SubscriptionCancelled = "cancelled"
)

// Tenant es la organización cliente: unidad de suscripción y de límites.
// MaxUsers/MaxBranches nil = ilimitado (único sentinel del sistema).
type Tenant struct {
	ID                 string
	Name               string
	Code               string
	PlanType           string
	MaxUsers           *int
	MaxBranches        *int
	SubscriptionStatus string
	TrialEndsAt        *time.Time
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Branch es una sub-unidad de exactamente un tenant.
type Branch struct {
	ID        string
	TenantID  string
	Name      string
	Code      string
	IsActive  bool
	CreatedAt time.Time
}

// TenantMembership es la relación usuario↔tenant como registro de primera
// clase (no join table anónima): habilita lookup O(1) del tenant primario.
type TenantMembership struct {
	UserID    string
	TenantID  string
	IsPrimary bool
	JoinedAt  time.Time
}

type BranchMembership struct {
	UserID    string
	BranchID  string
	TenantID  string
	IsPrimary bool
	JoinedAt  time.Time
}
