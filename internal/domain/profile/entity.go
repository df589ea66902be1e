package profile

import "strings"

// Role is the kind of account viewing or acting on a booking.
type Role string

const (
	RoleProvider  Role = "provider"
	RoleUser      Role = "user"
	RoleAnonymous Role = "anonymous"
)

// ParseRole maps a token role claim to a Role; anything unrecognised is anonymous.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleProvider:
		return RoleProvider
	case RoleUser:
		return RoleUser
	default:
		return RoleAnonymous
	}
}

func (r Role) String() string { return string(r) }

// Placeholder is rendered for name and phone when a profile cannot be resolved.
const Placeholder = "-"

// Profile is the counterpart information shown next to a booking.
type Profile struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	Phone      string `db:"phone"`
	AvatarPath string `db:"avatar_path"`
}

// Unresolved returns the placeholder profile for id.
func Unresolved(id int64) Profile {
	return Profile{ID: id, Name: Placeholder, Phone: Placeholder}
}

// AvatarURL joins the avatar path onto baseURL, using defaultPath when unset.
func (p Profile) AvatarURL(baseURL, defaultPath string) string {
	return AssetURL(baseURL, p.AvatarPath, defaultPath)
}

// AssetURL joins a stored asset path onto baseURL. Absolute URLs pass through.
func AssetURL(baseURL, path, defaultPath string) string {
	if path == "" {
		path = defaultPath
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// Viewer is who is looking at a listing, with their resolved display currency.
type Viewer struct {
	Role         Role
	UserID       int64
	CurrencyCode string
}
