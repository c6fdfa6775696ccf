package model

// ParsedFeed is the in-memory result of parsing one XML document. It is
// consumed immediately by the stream service and never persisted as-is.
// Fallback marks a synthetic feed produced when fetch or parse failed.
type ParsedFeed struct {
	Title       string
	Description string
	Link        string
	Items       []ParsedItem
	Fallback    bool
}

// ParsedItem is one item/entry extracted from a feed document. PubDate is
// already normalized to an RFC 3339 UTC instant.
type ParsedItem struct {
	GUID        string
	Title       string
	Link        string
	Description string
	PubDate     string
	Image       string
	SourceURL   string
}
