package rss

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
<channel>
<title>Example Cast</title>
<link>https://example.com</link>
<description>A test feed</description>
<image>
  <url>https://example.com/channel.png</url>
</image>
<item>
  <title>Episode 3</title>
  <link>https://example.com/3</link>
  <guid>ep-3</guid>
  <description>Third episode</description>
  <pubDate>Wed, 03 Jan 2024 10:00:00 GMT</pubDate>
  <itunes:image href="https://example.com/ep3.jpg"/>
</item>
<item>
  <title>Episode 2</title>
  <link>https://example.com/2</link>
  <guid>ep-2</guid>
  <description>Second episode</description>
  <pubDate>Tue, 02 Jan 2024 10:00:00 GMT</pubDate>
  <enclosure url="https://example.com/2.mp3" type="audio/mpeg" length="1"/>
</item>
<item>
  <title>Episode 1</title>
  <link>https://example.com/1</link>
  <description>No guid, link stands in</description>
  <pubDate>2024-01-01</pubDate>
</item>
</channel>
</rss>`

func TestParse_RSS(t *testing.T) {
	feed := Parse([]byte(sampleRSS), "https://example.com/rss")

	require.False(t, feed.Fallback)
	require.Equal(t, "Example Cast", feed.Title)
	require.Equal(t, "A test feed", feed.Description)
	require.Len(t, feed.Items, 3)

	// Source order is preserved.
	require.Equal(t, "Episode 3", feed.Items[0].Title)
	require.Equal(t, "Episode 2", feed.Items[1].Title)
	require.Equal(t, "Episode 1", feed.Items[2].Title)

	for _, item := range feed.Items {
		require.NotEmpty(t, item.GUID)
		require.NotEmpty(t, item.Title)
		_, err := time.Parse(time.RFC3339, item.PubDate)
		require.NoError(t, err)
		require.Equal(t, "https://example.com/rss", item.SourceURL)
	}

	// Own itunes image wins; the audio enclosure never becomes artwork and
	// the channel image fills in.
	require.Equal(t, "https://example.com/ep3.jpg", feed.Items[0].Image)
	require.Equal(t, "https://example.com/channel.png", feed.Items[1].Image)

	// Missing guid falls back to the link.
	require.Equal(t, "https://example.com/1", feed.Items[2].GUID)
	require.Equal(t, "2024-01-01T00:00:00Z", feed.Items[2].PubDate)
}

const sampleAtom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Notes</title>
  <link href="https://example.com/"/>
  <updated>2024-02-01T00:00:00Z</updated>
  <entry>
    <title>Note B</title>
    <id>urn:example:b</id>
    <link rel="alternate" href="https://example.com/notes/b"/>
    <link rel="enclosure" href="https://example.com/notes/b.mp3"/>
    <updated>2024-02-01T00:00:00Z</updated>
    <summary>Second note</summary>
  </entry>
  <entry>
    <title>Note A</title>
    <id>urn:example:a</id>
    <link rel="alternate" href="https://example.com/notes/a"/>
    <updated>2024-01-15T08:30:00</updated>
    <summary>First note</summary>
  </entry>
</feed>`

func TestParse_Atom(t *testing.T) {
	feed := Parse([]byte(sampleAtom), "https://example.com/atom")

	require.False(t, feed.Fallback)
	require.Equal(t, "Example Notes", feed.Title)
	require.Len(t, feed.Items, 2)

	require.Equal(t, "urn:example:b", feed.Items[0].GUID)
	require.Equal(t, "https://example.com/notes/b", feed.Items[0].Link)
	require.Equal(t, "2024-01-15T08:30:00Z", feed.Items[1].PubDate)
}

func TestParse_UnsupportedFormatFallsBack(t *testing.T) {
	feed := Parse([]byte("<html><body>not a feed</body></html>"), "https://example.com/rss")

	require.True(t, feed.Fallback)
	require.Len(t, feed.Items, 1)
	require.NotEmpty(t, feed.Items[0].GUID)
	require.NotEmpty(t, feed.Items[0].Title)
	require.Equal(t, "https://example.com/rss", feed.Items[0].Link)
}

const sampleRSSInvalidItems = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Sparse</title>
<item>
  <title>Kept</title>
  <guid>kept</guid>
</item>
<item>
  <guid>no-title</guid>
</item>
<item>
  <description>No guid, no link, no title</description>
</item>
</channel>
</rss>`

func TestParse_DropsItemsWithoutGUIDOrTitle(t *testing.T) {
	feed := Parse([]byte(sampleRSSInvalidItems), "https://example.com/rss")

	require.Len(t, feed.Items, 1)
	require.Equal(t, "kept", feed.Items[0].GUID)
}

const samplePodbean = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
<channel>
<title>Podbean Cast</title>
<itunes:image href="https://cdn.example.com/ep-one.jpg"/>
<item>
  <title>Episode One</title>
  <guid>pb-ep-1</guid>
  <link>https://example.podbean.com/e/1</link>
</item>
</channel>
</rss>`

func TestParse_PodbeanImageHint(t *testing.T) {
	// The image attribute sits outside the item, where the generic parser
	// cannot associate it; the raw-XML hint pass recovers it.
	feed := Parse([]byte(samplePodbean), "https://example.podbean.com/feed.xml")
	require.Len(t, feed.Items, 1)
	require.Equal(t, "https://cdn.example.com/ep-one.jpg", feed.Items[0].Image)
}

func TestImageHints_PairsImageWithFollowingGUID(t *testing.T) {
	hints := imageHints("https://example.podbean.com/feed.xml", []byte(samplePodbean))
	require.Equal(t, "https://cdn.example.com/ep-one.jpg", hints["pb-ep-1"])
}

func TestParse_HintPassSkipsOtherHosts(t *testing.T) {
	require.Nil(t, imageHints("https://example.com/feed.xml", []byte(samplePodbean)))
}

func TestFallbackFeed(t *testing.T) {
	feed := FallbackFeed("https://example.com/rss", nil)

	require.True(t, feed.Fallback)
	require.Len(t, feed.Items, 1)
	require.NotEmpty(t, feed.Items[0].GUID)
	require.NotEmpty(t, feed.Items[0].Title)
	_, err := time.Parse(time.RFC3339, feed.Items[0].PubDate)
	require.NoError(t, err)
}
