package rss

import (
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

var imgSrcRe = regexp.MustCompile(`<img[^>]+src=["']?([^"'\s>]+)`)

var audioExtensions = []string{".mp3", ".m4a", ".wav", ".ogg", ".oga", ".aac", ".flac", ".opus", ".wma"}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif"}

var imagePathHints = []string{"/image/", "/images/", "/thumbnail/", "/thumbnails/", "imgix.net", "wsrv.nl"}

// ExtractImage resolves the best artwork URL for an item. Candidates are
// probed in a fixed priority order; each probe is independent, so a field in
// an unexpected shape only disables that one probe. An empty result means
// no artwork, which downstream consumers treat as valid.
//
// hint is a provider-recovered image (see hints.go) and ranks with the
// itunes image; channelImage is the channel-level fallback and ranks last.
func ExtractImage(item *gofeed.Item, hint, channelImage string) string {
	if img := itunesImage(item, hint); img != "" {
		return img
	}
	if img := extensionImage(item.Extensions, "googleplay", "image"); img != "" {
		return img
	}
	if img := mediaContentImage(item.Extensions); img != "" {
		return img
	}
	if img := mediaThumbnailImage(item.Extensions); img != "" {
		return img
	}
	if img := enclosureImage(item.Enclosures); img != "" {
		return img
	}
	if img := inlineImage(item); img != "" {
		return img
	}
	if item.Image != nil && isAbsoluteURL(item.Image.URL) {
		return item.Image.URL
	}
	if isAbsoluteURL(channelImage) {
		return channelImage
	}
	return ""
}

func itunesImage(item *gofeed.Item, hint string) string {
	if isAbsoluteURL(hint) {
		return hint
	}
	if item.ITunesExt != nil && isAbsoluteURL(item.ITunesExt.Image) {
		return item.ITunesExt.Image
	}
	return extensionImage(item.Extensions, "itunes", "image")
}

// extensionImage probes one extension element for an image URL: direct href
// attribute, nested attribute-wrapper children, bare url/href fields, and
// finally the raw text value when it looks like an absolute URL.
func extensionImage(extensions ext.Extensions, namespace, name string) string {
	for _, e := range extensions[namespace][name] {
		if isAbsoluteURL(e.Attrs["href"]) {
			return e.Attrs["href"]
		}
		for _, children := range e.Children {
			for _, child := range children {
				if isAbsoluteURL(child.Attrs["href"]) {
					return child.Attrs["href"]
				}
			}
		}
		if isAbsoluteURL(e.Attrs["url"]) {
			return e.Attrs["url"]
		}
		if isAbsoluteURL(e.Value) {
			return e.Value
		}
	}
	return ""
}

func mediaContentImage(extensions ext.Extensions) string {
	for _, e := range extensions["media"]["content"] {
		medium := e.Attrs["medium"]
		mimeType := e.Attrs["type"]
		if medium == "image" || strings.HasPrefix(mimeType, "image/") {
			if isAbsoluteURL(e.Attrs["url"]) {
				return e.Attrs["url"]
			}
		}
	}
	return ""
}

func mediaThumbnailImage(extensions ext.Extensions) string {
	for _, e := range extensions["media"]["thumbnail"] {
		if isAbsoluteURL(e.Attrs["url"]) {
			return e.Attrs["url"]
		}
	}
	return ""
}

// enclosureImage picks an image from the enclosure list. Audio enclosures
// are the episode itself, never artwork, and are skipped outright.
func enclosureImage(enclosures []*gofeed.Enclosure) string {
	for _, enc := range enclosures {
		if enc == nil || !isAbsoluteURL(enc.URL) {
			continue
		}
		if strings.HasPrefix(enc.Type, "audio/") || hasAnySuffix(strings.ToLower(enc.URL), audioExtensions) {
			continue
		}
		if strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
		lower := strings.ToLower(enc.URL)
		if hasAnySuffix(stripQuery(lower), imageExtensions) || containsAny(lower, imagePathHints) {
			return enc.URL
		}
	}
	return ""
}

func inlineImage(item *gofeed.Item) string {
	candidates := []string{item.Content, item.Description}
	for _, e := range item.Extensions["content"]["encoded"] {
		candidates = append(candidates, e.Value)
	}
	if item.ITunesExt != nil {
		candidates = append(candidates, item.ITunesExt.Summary)
	}
	for _, html := range candidates {
		if html == "" {
			continue
		}
		match := imgSrcRe.FindStringSubmatch(html)
		if match == nil {
			continue
		}
		src := match[1]
		if strings.HasPrefix(src, "data:") {
			continue
		}
		if isAbsoluteURL(src) {
			return src
		}
	}
	return ""
}

func isAbsoluteURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

func hasAnySuffix(value string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(value, suffix) {
			return true
		}
	}
	return false
}

func containsAny(value string, fragments []string) bool {
	for _, fragment := range fragments {
		if strings.Contains(value, fragment) {
			return true
		}
	}
	return false
}

func stripQuery(value string) string {
	if idx := strings.IndexByte(value, '?'); idx >= 0 {
		return value[:idx]
	}
	return value
}
