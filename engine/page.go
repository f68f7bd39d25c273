package engine

// Page governs list pagination. The zero value means "no limit".
type Page struct {
	Offset     int
	MaxResults int
}

// NewPage creates a Page and rejects negative bounds.
func NewPage(offset, maxResults int) (Page, error) {
	if offset < 0 {
		return Page{}, invalidArgument("page offset must not be negative")
	}

	if maxResults < 0 {
		return Page{}, invalidArgument("page max results must not be negative")
	}

	return Page{Offset: offset, MaxResults: maxResults}, nil
}

// HasLimit reports whether the page restricts the number of results.
func (p Page) HasLimit() bool {
	return p.MaxResults > 0
}
