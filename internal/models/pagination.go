package models

// PageLink is one relation of a pagination Link header
type PageLink struct {
	URL     string
	Cursor  string
	Results bool // the direction actually has data, not merely a cursor
}

// PageLinks holds both directions of a pagination Link header.
// The zero value means "no further pages in either direction".
type PageLinks struct {
	Previous PageLink
	Next     PageLink
}

// HasNext reports whether a next page with data exists
func (l PageLinks) HasNext() bool {
	return l.Next.Results && l.Next.Cursor != ""
}

// HasPrevious reports whether a previous page with data exists
func (l PageLinks) HasPrevious() bool {
	return l.Previous.Results && l.Previous.Cursor != ""
}
