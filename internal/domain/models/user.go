package models

// Roles stored in the whitelist collection. Anything else is rejected on
// write and treated as RoleUser on read.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserAccount is one whitelisted account. The document id is the identity
// provider uid or, for accounts seeded by an admin before first login, the
// email address.
type UserAccount struct {
	ID    string `bson:"-" json:"id"`
	Email string `bson:"email" json:"email"`
	Name  string `bson:"name,omitempty" json:"name,omitempty"`
	Role  string `bson:"role,omitempty" json:"role"`
}

// EffectiveRole defaults missing or unknown roles to RoleUser.
func (u UserAccount) EffectiveRole() string {
	if u.Role == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}
