// internal/domain/models/adminuser.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin account statuses: active ⇄ disabled, with a timed-suspension
// sub-state carried by SuspendedUntil. A suspended account reactivates
// lazily once the stored expiry has passed, checked on the next
// authentication attempt, not by a background timer.
const (
	AdminActive   = "active"
	AdminDisabled = "disabled"
)

// Admin roles.
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleTreasurer  = "treasurer"
	RoleSecretary  = "secretary"
)

// AdminUser is an administrator account for the portal's back office.
// Accounts are never hard-deleted; removal is status=disabled.
type AdminUser struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"-"`
	Email      string             `bson:"email" json:"email"`

	// PasswordHash is a bcrypt hash (cost ≥ 10). Never serialized.
	PasswordHash string `bson:"password_hash" json:"-"`

	Role        string      `bson:"role" json:"role"`
	Permissions Permissions `bson:"permissions" json:"permissions"`

	Status         string     `bson:"status" json:"status"`
	SuspendedUntil *time.Time `bson:"suspended_until,omitempty" json:"suspended_until,omitempty"`

	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Permissions are per-account grants on top of the role. Superadmins and
// admins hold every permission implicitly.
type Permissions struct {
	ManageTreasury bool `bson:"manage_treasury" json:"manage_treasury"`
	ManageAdmins   bool `bson:"manage_admins" json:"manage_admins"`
}

// CanManageTreasury reports whether the account may touch treasury records.
func (a *AdminUser) CanManageTreasury() bool {
	return a.Role == RoleSuperAdmin || a.Role == RoleAdmin || a.Role == RoleTreasurer || a.Permissions.ManageTreasury
}

// CanManageAdmins reports whether the account may manage other admin
// accounts.
func (a *AdminUser) CanManageAdmins() bool {
	return a.Role == RoleSuperAdmin || a.Permissions.ManageAdmins
}
