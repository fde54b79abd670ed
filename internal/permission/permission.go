// Package permission defines the closed set of capabilities a user can be
// granted. Permission rows in storage carry the string form; everything in
// the request path works with Kind.
package permission

// Kind identifies one discrete capability.
type Kind int

const (
	// Unknown is the sentinel for any string outside the catalog. It is
	// never assignable and never satisfies a permission check.
	Unknown Kind = iota
	CreateUser
	ReadUser
	UpdateUser
	DeleteUser
)

// Stable string identifiers used on the wire and in the permissions table.
const (
	nameCreateUser = "user.create"
	nameReadUser   = "user.read"
	nameUpdateUser = "user.update"
	nameDeleteUser = "user.delete"
	nameUnknown    = "unknown"
)

func (k Kind) String() string {
	switch k {
	case CreateUser:
		return nameCreateUser
	case ReadUser:
		return nameReadUser
	case UpdateUser:
		return nameUpdateUser
	case DeleteUser:
		return nameDeleteUser
	default:
		return nameUnknown
	}
}

// FromString maps a stored permission name to its Kind. Unrecognized names
// map to Unknown rather than failing: a row that drifted out of the catalog
// must stop granting access, not break identity resolution.
func FromString(s string) Kind {
	switch s {
	case nameCreateUser:
		return CreateUser
	case nameReadUser:
		return ReadUser
	case nameUpdateUser:
		return UpdateUser
	case nameDeleteUser:
		return DeleteUser
	default:
		return Unknown
	}
}

// All returns every assignable kind in catalog order. Unknown is excluded.
func All() []Kind {
	return []Kind{CreateUser, ReadUser, UpdateUser, DeleteUser}
}
