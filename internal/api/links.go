package api

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/thesavant42/issuenav/internal/models"
)

var (
	// <URL> followed by everything up to the next entry
	linkEntryRe = regexp.MustCompile(`<([^>]*)>([^<]*)`)
	// key="value" attribute; unquoted values are not accepted
	linkAttrRe = regexp.MustCompile(`;\s*([A-Za-z]+)\s*=\s*"([^"]*)"`)
)

// ParseLinkHeader extracts the previous/next relations from a pagination Link header.
// Example:
//
//	<https://sentry.io/api/0/organizations/acme/issues/?cursor=0:0:1>; rel="previous"; results="false"; cursor="0:0:1",
//	<https://sentry.io/api/0/organizations/acme/issues/?cursor=0:25:0>; rel="next"; results="true"; cursor="0:25:0"
//
// A missing or malformed header, or a missing relation, yields Results == false for that direction.
func ParseLinkHeader(header string) models.PageLinks {
	var links models.PageLinks
	if strings.TrimSpace(header) == "" {
		return links
	}

	for _, entry := range linkEntryRe.FindAllStringSubmatch(header, -1) {
		attrs := make(map[string]string)
		for _, attr := range linkAttrRe.FindAllStringSubmatch(entry[2], -1) {
			attrs[strings.ToLower(attr[1])] = attr[2]
		}

		cursor, ok := attrs["cursor"]
		if !ok {
			continue
		}
		results, ok := attrs["results"]
		if !ok {
			continue
		}

		link := models.PageLink{
			URL:     strings.TrimSpace(entry[1]),
			Cursor:  cursor,
			Results: results == "true",
		}

		switch attrs["rel"] {
		case "previous":
			links.Previous = link
		case "next":
			links.Next = link
		}
	}

	return links
}

// FormatLinkHeader renders both relations in the format ParseLinkHeader accepts
func FormatLinkHeader(links models.PageLinks) string {
	return strings.Join([]string{
		formatLink(links.Previous, "previous"),
		formatLink(links.Next, "next"),
	}, ", ")
}

func formatLink(link models.PageLink, rel string) string {
	return fmt.Sprintf(`<%s>; rel="%s"; results="%t"; cursor="%s"`, link.URL, rel, link.Results, link.Cursor)
}
