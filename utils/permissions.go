package utils

import "strings"

// MatchesPermission checks a granted permission against a required one.
// Grants may use wildcards: "*" or "*:*:*" match everything, "saf:*" every
// action on saf, "*:read" the read action on every resource. Permissions
// without a colon only match exactly.
func MatchesPermission(userPerm, requiredPerm string) bool {
	if userPerm == requiredPerm {
		return true
	}
	if userPerm == "*:*:*" || userPerm == "*" {
		return true
	}

	userParts := strings.Split(userPerm, ":")
	reqParts := strings.Split(requiredPerm, ":")
	if len(userParts) < 2 || len(reqParts) < 2 {
		return false
	}

	resourceMatch := userParts[0] == "*" || userParts[0] == reqParts[0]
	actionMatch := userParts[1] == "*" || userParts[1] == reqParts[1]
	return resourceMatch && actionMatch
}

// HasAnyPermission reports whether one of granted satisfies required
func HasAnyPermission(granted []string, required string) bool {
	for _, p := range granted {
		if MatchesPermission(p, required) {
			return true
		}
	}
	return false
}
