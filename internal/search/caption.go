package search

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/thesavant42/issuenav/internal/models"
)

// PaginationCaption renders "Showing {shown} of {total} issues".
//
// groupCount is the number of rows loaded, queryCount the total hits reported by the
// service and itemsRemoved the rows removed locally since the fetch (resolved, deleted).
// page is the zero-based page index. shown never exceeds total.
func PaginationCaption(groupCount, queryCount, itemsRemoved int, links models.PageLinks, page, pageSize int) string {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := max(queryCount-itemsRemoved, 0)

	var shown int
	if page > 0 && !links.Next.Results {
		shown = total
	} else {
		shown = (page+1)*pageSize - itemsRemoved
		shown = max(shown, groupCount)
		shown = min(shown, total)
	}

	return fmt.Sprintf("Showing %s of %s issues", humanize.Comma(int64(shown)), humanize.Comma(int64(total)))
}
