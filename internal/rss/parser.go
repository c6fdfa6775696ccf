package rss

import (
	"bytes"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"ripple/backend/internal/logger"
	"ripple/backend/internal/model"
)

// Parse turns a raw RSS/Atom document into a ParsedFeed. It never fails:
// a document gofeed cannot recognize yields a synthetic one-item fallback
// feed describing the error, and a single malformed item is replaced by a
// placeholder so it cannot abort the batch.
func Parse(raw []byte, feedURL string) model.ParsedFeed {
	hints := imageHints(feedURL, raw)

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		logger.Warn("unsupported feed format", "module", "rss", "action", "parse", "resource", "feed", "result", "failed", "feed_url", feedURL, "error", err)
		return FallbackFeed(feedURL, err)
	}

	chImage := channelImage(parsed)

	items := make([]model.ParsedItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		converted := convertItem(item, feedURL, chImage, hints)
		if converted.GUID == "" || converted.Title == "" {
			continue
		}
		items = append(items, converted)
	}

	return model.ParsedFeed{
		Title:       strings.TrimSpace(parsed.Title),
		Description: strings.TrimSpace(parsed.Description),
		Link:        strings.TrimSpace(parsed.Link),
		Items:       items,
	}
}

// FallbackFeed builds the synthetic single-item feed served when a feed
// cannot be fetched or parsed and no stored data exists. The caller keeps
// its layout; the one entry explains the failure.
func FallbackFeed(feedURL string, cause error) model.ParsedFeed {
	description := "The feed could not be loaded."
	if cause != nil {
		description = "The feed could not be loaded: " + cause.Error()
	}
	return model.ParsedFeed{
		Title:    "Feed unavailable",
		Link:     feedURL,
		Fallback: true,
		Items: []model.ParsedItem{{
			GUID:        "fallback-" + uuid.NewString(),
			Title:       "This feed is currently unavailable",
			Link:        feedURL,
			Description: description,
			PubDate:     time.Now().UTC().Format(time.RFC3339),
			SourceURL:   feedURL,
		}},
	}
}

// convertItem extracts one item. Extraction is isolated per item: a panic
// while probing a malformed entry substitutes a placeholder instead of
// failing the whole feed.
func convertItem(item *gofeed.Item, feedURL, chImage string, hints map[string]string) (out model.ParsedItem) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("item extraction failed", "module", "rss", "action", "parse", "resource", "item", "result", "failed", "feed_url", feedURL, "panic", r)
			out = placeholderItem(feedURL, chImage)
		}
	}()

	if item == nil {
		return placeholderItem(feedURL, chImage)
	}

	guid := strings.TrimSpace(item.GUID)
	if guid == "" {
		guid = strings.TrimSpace(item.Link)
	}

	link := strings.TrimSpace(item.Link)
	if link == "" && len(item.Links) > 0 {
		link = strings.TrimSpace(item.Links[0])
	}

	description := strings.TrimSpace(item.Description)
	if description == "" {
		description = strings.TrimSpace(item.Content)
	}

	published := item.Published
	if published == "" {
		published = item.Updated
	}

	return model.ParsedItem{
		GUID:        guid,
		Title:       strings.TrimSpace(item.Title),
		Link:        link,
		Description: description,
		PubDate:     NormalizeDate(published),
		Image:       ExtractImage(item, hints[guid], chImage),
		SourceURL:   feedURL,
	}
}

func placeholderItem(feedURL, chImage string) model.ParsedItem {
	return model.ParsedItem{
		GUID:      "item-" + uuid.NewString(),
		PubDate:   time.Now().UTC().Format(time.RFC3339),
		Image:     chImage,
		SourceURL: feedURL,
	}
}

// channelImage resolves the channel-level artwork used when an item has
// none: the itunes image's href, then its attribute-wrapper form, then the
// conventional image.url element.
func channelImage(feed *gofeed.Feed) string {
	if feed.ITunesExt != nil && isAbsoluteURL(feed.ITunesExt.Image) {
		return feed.ITunesExt.Image
	}
	if img := extensionImage(feed.Extensions, "itunes", "image"); img != "" {
		return img
	}
	if feed.Image != nil && isAbsoluteURL(feed.Image.URL) {
		return feed.Image.URL
	}
	return ""
}
