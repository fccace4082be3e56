package search

import (
	"net/url"
	"strings"
)

// IssuesPath is the base issue list path for an organization
func IssuesPath(org string) string {
	return "/organizations/" + url.PathEscape(org) + "/issues/"
}

// SavedSearchPath is the issue list path for one saved search
func SavedSearchPath(org, id string) string {
	return IssuesPath(org) + "searches/" + url.PathEscape(id) + "/"
}

// SavedSearchIDFromPath extracts {id} from /organizations/{org}/issues/searches/{id}/
func SavedSearchIDFromPath(pathname string) string {
	parts := strings.Split(strings.Trim(pathname, "/"), "/")
	// organizations, {org}, issues, searches, {id}
	if len(parts) != 5 || parts[0] != "organizations" || parts[2] != "issues" || parts[3] != "searches" {
		return ""
	}
	id, err := url.PathUnescape(parts[4])
	if err != nil {
		return ""
	}
	return id
}
