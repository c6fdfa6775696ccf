package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"ripple/backend/internal/model"
	"ripple/backend/internal/service"
)

type StreamHandler struct {
	streams service.StreamService
}

func NewStreamHandler(streams service.StreamService) *StreamHandler {
	return &StreamHandler{streams: streams}
}

func (h *StreamHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/streams/entries", h.GetEntries)
	g.GET("/feeds", h.ListFeeds)
}

type entryResponse struct {
	ID          string  `json:"id"`
	GUID        string  `json:"guid"`
	Title       string  `json:"title"`
	Link        *string `json:"link"`
	Description *string `json:"description"`
	PubDate     string  `json:"pubDate"`
	Image       *string `json:"image"`
}

type feedResponse struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	LastFetched int64  `json:"lastFetched"`
	CreatedAt   string `json:"createdAt"`
}

// GetEntries returns the cached (refreshing when stale) entries for a
// stream, newest first. The response is never an error for fetch or parse
// failures; the service degrades to the best list it can serve.
func (h *StreamHandler) GetEntries(c echo.Context) error {
	feedURL := c.QueryParam("url")
	label := c.QueryParam("label")
	if !service.IsValidFeedURL(feedURL) {
		return writeServiceError(c, service.ErrInvalid)
	}

	entries := h.streams.Entries(c.Request().Context(), label, feedURL)

	response := make([]entryResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, entryResponse{
			ID:          strconv.FormatInt(entry.ID, 10),
			GUID:        entry.GUID,
			Title:       entry.Title,
			Link:        entry.Link,
			Description: entry.Description,
			PubDate:     entry.PubDate,
			Image:       entry.Image,
		})
	}
	return c.JSON(http.StatusOK, response)
}

func (h *StreamHandler) ListFeeds(c echo.Context) error {
	feeds, err := h.streams.Feeds(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}

	response := make([]feedResponse, 0, len(feeds))
	for _, feed := range feeds {
		response = append(response, toFeedResponse(feed))
	}
	return c.JSON(http.StatusOK, response)
}

func toFeedResponse(feed model.Feed) feedResponse {
	return feedResponse{
		ID:          strconv.FormatInt(feed.ID, 10),
		URL:         feed.URL,
		Title:       feed.Title,
		LastFetched: feed.LastFetched,
		CreatedAt:   feed.CreatedAt.UTC().Format(time.RFC3339),
	}
}
