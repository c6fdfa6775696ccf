package service

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"ripple/backend/internal/logger"
	"ripple/backend/internal/model"
	"ripple/backend/internal/repository"
	"ripple/backend/internal/rss"
)

// Refresh policy. The staleness window trades freshness against courtesy
// toward external feed hosts; the lock TTL bounds how long a crashed holder
// can block other processes.
const (
	stalenessWindow   = 4 * time.Hour
	lockTTL           = 60 * time.Second
	maxDescriptionLen = 200
	refreshWorkers    = 4
)

// StreamService is the feed cache coordinator. Entries never fails: it
// always returns the best list obtainable for the URL, which may be a
// synthetic error entry or empty.
type StreamService interface {
	Entries(ctx context.Context, label, feedURL string) []model.Entry
	Feeds(ctx context.Context) ([]model.Feed, error)
	RefreshStale(ctx context.Context) error
}

type streamService struct {
	feeds   repository.FeedRepository
	entries repository.EntryRepository
	locks   repository.LockRepository
	fetcher *rss.Fetcher
}

func NewStreamService(feeds repository.FeedRepository, entries repository.EntryRepository, locks repository.LockRepository, fetcher *rss.Fetcher) StreamService {
	return &streamService{
		feeds:   feeds,
		entries: entries,
		locks:   locks,
		fetcher: fetcher,
	}
}

// IsValidFeedURL reports whether the value is an absolute http(s) URL.
func IsValidFeedURL(value string) bool {
	parsed, err := url.ParseRequestURI(value)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}

func (s *streamService) Entries(ctx context.Context, label, feedURL string) []model.Entry {
	now := time.Now()

	feed, err := s.feeds.FindByURL(ctx, feedURL)
	if err != nil {
		logger.Error("feed lookup failed", "module", "service", "action", "read", "resource", "stream", "result", "failed", "feed_url", feedURL, "error", err)
		return s.fetchDirect(ctx, nil, feedURL)
	}

	refreshNeeded := false
	justCreated := false
	if feed == nil {
		created, err := s.feeds.Create(ctx, feedURL, feedTitle(label, feedURL), now.UnixMilli())
		if err != nil {
			logger.Error("feed create failed", "module", "service", "action", "create", "resource", "feed", "result", "failed", "feed_url", feedURL, "error", err)
			return s.fetchDirect(ctx, nil, feedURL)
		}
		feed = &created
		refreshNeeded = true
		justCreated = true
	} else if !feed.Fresh(now, stalenessWindow) {
		refreshNeeded = true
	}

	if refreshNeeded {
		if s.locks.Acquire(ctx, feedURL, lockTTL) {
			func() {
				defer s.locks.Release(ctx, feedURL)
				// A brand-new feed row carries last_fetched = now, so
				// the staleness double check must not apply to it.
				s.refreshUnderLock(ctx, feed.ID, feedURL, justCreated)
			}()
		}
		// Not acquired: another process is refreshing; serve stored data.
	}

	stored, err := s.entries.ListByFeed(ctx, feed.ID)
	if err != nil {
		logger.Error("entry read failed", "module", "service", "action", "read", "resource", "stream", "result", "failed", "feed_url", feedURL, "error", err)
		return s.fetchDirect(ctx, nil, feedURL)
	}
	if len(stored) == 0 {
		// Brand-new feed whose refresh failed, or whose lock was held
		// elsewhere before anything was stored.
		return s.fetchDirect(ctx, feed, feedURL)
	}
	return stored
}

func (s *streamService) Feeds(ctx context.Context) ([]model.Feed, error) {
	return s.feeds.List(ctx)
}

// RefreshStale refreshes every feed outside the staleness window, a few at
// a time. Per-feed failures are swallowed the same way request-driven
// refreshes swallow them.
func (s *streamService) RefreshStale(ctx context.Context) error {
	cutoff := time.Now().Add(-stalenessWindow).UnixMilli()
	stale, err := s.feeds.ListFetchedBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(refreshWorkers)
	for _, feed := range stale {
		feed := feed
		group.Go(func() error {
			if !s.locks.Acquire(groupCtx, feed.URL, lockTTL) {
				return nil
			}
			defer s.locks.Release(groupCtx, feed.URL)
			s.refreshUnderLock(groupCtx, feed.ID, feed.URL, false)
			return nil
		})
	}
	return group.Wait()
}

// refreshUnderLock runs the fetch+parse+upsert cycle. The caller must hold
// the refresh lock. All failures are swallowed; the caller falls through to
// serving whatever is already stored.
func (s *streamService) refreshUnderLock(ctx context.Context, feedID int64, feedURL string, skipFreshCheck bool) {
	// Double check: another holder may have refreshed this feed between
	// our staleness check and lock acquisition.
	if !skipFreshCheck {
		current, err := s.feeds.GetByID(ctx, feedID)
		if err == nil && current.Fresh(time.Now(), stalenessWindow) {
			return
		}
	}

	raw, err := s.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		logger.Warn("feed fetch failed", "module", "service", "action", "refresh", "resource", "feed", "result", "failed", "feed_url", feedURL, "error", err)
		return
	}

	parsed := rss.Parse(raw, feedURL)
	if parsed.Fallback || len(parsed.Items) == 0 {
		// Synthetic error feeds are served, never cached: caching one
		// would make a transient outage permanent.
		return
	}

	s.storeNew(ctx, feedID, parsed.Items)
}

// storeNew persists items whose guid is not yet present and bumps the
// feed's last-fetched timestamp, all in one transaction. Existing guids are
// never overwritten.
func (s *streamService) storeNew(ctx context.Context, feedID int64, items []model.ParsedItem) {
	guids := make([]string, len(items))
	for i, item := range items {
		guids[i] = item.GUID
	}
	existing, err := s.entries.ExistingGUIDs(ctx, feedID, guids)
	if err != nil {
		logger.Warn("guid lookup failed", "module", "service", "action", "refresh", "resource", "entry", "result", "failed", "feed_id", feedID, "error", err)
		return
	}

	fresh := make([]model.Entry, 0, len(items))
	for _, item := range items {
		if existing[item.GUID] {
			continue
		}
		fresh = append(fresh, toEntry(feedID, item))
	}

	if err := s.entries.InsertBatch(ctx, feedID, fresh, time.Now().UnixMilli()); err != nil {
		logger.Warn("entry upsert failed", "module", "service", "action", "refresh", "resource", "entry", "result", "failed", "feed_id", feedID, "error", err)
		return
	}
	logger.Info("feed refreshed", "module", "service", "action", "refresh", "resource", "feed", "result", "ok", "feed_id", feedID, "new_entries", len(fresh))
}

// fetchDirect is the fallback path when nothing is stored or the store is
// unreachable: one direct fetch+parse, returning the parsed items (or a
// synthetic error entry) without touching the cache contract. When a feed
// row is available the parsed items are also stored best-effort.
func (s *streamService) fetchDirect(ctx context.Context, feed *model.Feed, feedURL string) []model.Entry {
	raw, err := s.fetcher.Fetch(ctx, feedURL)
	var parsed model.ParsedFeed
	if err != nil {
		logger.Warn("direct fetch failed", "module", "service", "action", "fallback", "resource", "feed", "result", "failed", "feed_url", feedURL, "error", err)
		parsed = rss.FallbackFeed(feedURL, err)
	} else {
		parsed = rss.Parse(raw, feedURL)
	}

	var feedID int64
	if feed != nil {
		feedID = feed.ID
	}
	entries := make([]model.Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entries = append(entries, toEntry(feedID, item))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PubDate > entries[j].PubDate
	})

	if feed != nil && !parsed.Fallback && len(parsed.Items) > 0 {
		s.storeNew(ctx, feed.ID, parsed.Items)
	}
	return entries
}

func toEntry(feedID int64, item model.ParsedItem) model.Entry {
	entry := model.Entry{
		FeedID:  feedID,
		GUID:    item.GUID,
		Title:   item.Title,
		PubDate: item.PubDate,
	}
	if item.Link != "" {
		link := item.Link
		entry.Link = &link
	}
	if description := truncate(rss.StripHTML(item.Description), maxDescriptionLen); description != "" {
		entry.Description = &description
	}
	if item.Image != "" {
		image := item.Image
		entry.Image = &image
	}
	return entry
}

func feedTitle(label, feedURL string) string {
	if trimmed := strings.TrimSpace(label); trimmed != "" {
		return trimmed
	}
	return feedURL
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
