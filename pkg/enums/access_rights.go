package enums

import "fmt"

// AccessRights marks operators that bypass role and ownership checks.
type AccessRights string

const (
	AccessRightsNone      AccessRights = ""
	AccessRightsAdmin     AccessRights = "admin"
	AccessRightsModerator AccessRights = "moderator"
)

// String implements fmt.Stringer.
func (a AccessRights) String() string {
	return string(a)
}

// IsPrivileged reports whether the rights grant operator access.
func (a AccessRights) IsPrivileged() bool {
	return a == AccessRightsAdmin || a == AccessRightsModerator
}

// ParseAccessRights converts raw claim input; an empty string means no rights.
func ParseAccessRights(value string) (AccessRights, error) {
	switch AccessRights(value) {
	case AccessRightsNone, AccessRightsAdmin, AccessRightsModerator:
		return AccessRights(value), nil
	}
	return "", fmt.Errorf("invalid access rights %q", value)
}
