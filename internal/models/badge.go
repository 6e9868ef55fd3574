package models

import "strings"

// Badge is an admin-assigned tag on a user.
type Badge string

const (
	BadgeVerified   Badge = "verified"
	BadgePremium    Badge = "premium"
	BadgeBusiness   Badge = "business"
	BadgeDeveloper  Badge = "developer"
	BadgeGovernment Badge = "government"
)

// Badges lists every badge in display order.
var Badges = []Badge{BadgeVerified, BadgePremium, BadgeBusiness, BadgeDeveloper, BadgeGovernment}

// ParseBadge accepts a badge name case-insensitively.
func ParseBadge(raw string) (Badge, bool) {
	name := Badge(strings.ToLower(strings.TrimSpace(raw)))
	for _, b := range Badges {
		if b == name {
			return b, true
		}
	}
	return "", false
}

// HasBadge reports whether the user currently holds b.
func (u *User) HasBadge(b Badge) bool {
	for _, existing := range u.Badges {
		if existing == string(b) {
			return true
		}
	}
	return false
}

// GrantBadge appends b and mirrors verified into the Verified flag.
// It returns false when the badge was already present.
func (u *User) GrantBadge(b Badge) bool {
	if u.HasBadge(b) {
		return false
	}
	u.Badges = append(u.Badges, string(b))
	if b == BadgeVerified {
		u.Verified = true
	}
	return true
}

// RevokeBadge removes b, keeping the order of the remaining badges.
// It returns false when the badge was not present.
func (u *User) RevokeBadge(b Badge) bool {
	if !u.HasBadge(b) {
		return false
	}
	kept := make([]string, 0, len(u.Badges)-1)
	for _, existing := range u.Badges {
		if existing != string(b) {
			kept = append(kept, existing)
		}
	}
	u.Badges = kept
	if b == BadgeVerified {
		u.Verified = false
	}
	return true
}
