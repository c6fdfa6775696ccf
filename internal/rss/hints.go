package rss

import (
	"regexp"
	"strings"
)

// Some Podbean feeds emit the per-episode itunes:image in a form the
// namespace-aware parser does not associate with the item. This pass pairs
// each raw itunes:image href with the guid that follows it so the parser can
// inject the recovered image before generic extraction. It is a heuristic
// for one host's XML quirk and never runs for other feeds.

var podbeanImagePairRe = regexp.MustCompile(`(?s)<itunes:image\s+href="([^"]+)"[^>]*/?>.*?<guid[^>]*>\s*([^<\s][^<]*?)\s*</guid>`)

func isPodbeanURL(feedURL string) bool {
	return strings.Contains(strings.ToLower(feedURL), "podbean.com")
}

// imageHints returns a guid-to-image map recovered from the raw XML, or nil
// when the source host is not affected.
func imageHints(feedURL string, raw []byte) map[string]string {
	if !isPodbeanURL(feedURL) {
		return nil
	}
	matches := podbeanImagePairRe.FindAllStringSubmatch(string(raw), -1)
	if len(matches) == 0 {
		return nil
	}
	hints := make(map[string]string, len(matches))
	for _, match := range matches {
		href, guid := match[1], match[2]
		if isAbsoluteURL(href) && guid != "" {
			hints[guid] = href
		}
	}
	return hints
}
