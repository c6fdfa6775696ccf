package rss

import (
	"testing"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/stretchr/testify/require"
)

func extensionsWith(namespace, name string, e ext.Extension) ext.Extensions {
	return ext.Extensions{namespace: {name: {e}}}
}

func TestExtractImage_ITunesHref(t *testing.T) {
	item := &gofeed.Item{
		Extensions: extensionsWith("itunes", "image", ext.Extension{
			Attrs: map[string]string{"href": "https://cdn.example.com/art.jpg"},
		}),
	}
	require.Equal(t, "https://cdn.example.com/art.jpg", ExtractImage(item, "", ""))
}

func TestExtractImage_ITunesNestedWrapper(t *testing.T) {
	item := &gofeed.Item{
		Extensions: extensionsWith("itunes", "image", ext.Extension{
			Children: map[string][]ext.Extension{
				"attrs": {{Attrs: map[string]string{"href": "https://cdn.example.com/nested.jpg"}}},
			},
		}),
	}
	require.Equal(t, "https://cdn.example.com/nested.jpg", ExtractImage(item, "", ""))
}

func TestExtractImage_ITunesRawValue(t *testing.T) {
	item := &gofeed.Item{
		Extensions: extensionsWith("itunes", "image", ext.Extension{
			Value: "https://cdn.example.com/raw.jpg",
		}),
	}
	require.Equal(t, "https://cdn.example.com/raw.jpg", ExtractImage(item, "", ""))
}

func TestExtractImage_HintBeatsEverything(t *testing.T) {
	item := &gofeed.Item{
		ITunesExt: &ext.ITunesItemExtension{Image: "https://cdn.example.com/generic.jpg"},
	}
	require.Equal(t, "https://cdn.example.com/hint.jpg", ExtractImage(item, "https://cdn.example.com/hint.jpg", ""))
}

func TestExtractImage_MediaContent(t *testing.T) {
	item := &gofeed.Item{
		Extensions: extensionsWith("media", "content", ext.Extension{
			Attrs: map[string]string{"url": "https://cdn.example.com/media.png", "medium": "image"},
		}),
	}
	require.Equal(t, "https://cdn.example.com/media.png", ExtractImage(item, "", ""))
}

func TestExtractImage_MediaContentSkipsVideo(t *testing.T) {
	item := &gofeed.Item{
		Extensions: extensionsWith("media", "content", ext.Extension{
			Attrs: map[string]string{"url": "https://cdn.example.com/clip.mp4", "medium": "video"},
		}),
	}
	require.Equal(t, "", ExtractImage(item, "", ""))
}

func TestExtractImage_MediaThumbnail(t *testing.T) {
	item := &gofeed.Item{
		Extensions: extensionsWith("media", "thumbnail", ext.Extension{
			Attrs: map[string]string{"url": "https://cdn.example.com/thumb.jpg"},
		}),
	}
	require.Equal(t, "https://cdn.example.com/thumb.jpg", ExtractImage(item, "", ""))
}

func TestExtractImage_NeverReturnsAudioEnclosure(t *testing.T) {
	items := []*gofeed.Item{
		{Enclosures: []*gofeed.Enclosure{{URL: "https://cdn.example.com/episode.mp3", Type: "audio/mpeg"}}},
		{Enclosures: []*gofeed.Enclosure{{URL: "https://cdn.example.com/episode.m4a", Type: ""}}},
		{Enclosures: []*gofeed.Enclosure{{URL: "https://cdn.example.com/episode", Type: "audio/x-m4a"}}},
	}
	for _, item := range items {
		require.Equal(t, "", ExtractImage(item, "", ""))
	}
}

func TestExtractImage_EnclosurePrefersImageType(t *testing.T) {
	item := &gofeed.Item{
		Enclosures: []*gofeed.Enclosure{
			{URL: "https://cdn.example.com/episode.mp3", Type: "audio/mpeg"},
			{URL: "https://cdn.example.com/cover", Type: "image/jpeg"},
		},
	}
	require.Equal(t, "https://cdn.example.com/cover", ExtractImage(item, "", ""))
}

func TestExtractImage_EnclosureByExtensionAndPath(t *testing.T) {
	byExt := &gofeed.Item{
		Enclosures: []*gofeed.Enclosure{{URL: "https://cdn.example.com/cover.png?v=2"}},
	}
	require.Equal(t, "https://cdn.example.com/cover.png?v=2", ExtractImage(byExt, "", ""))

	byPath := &gofeed.Item{
		Enclosures: []*gofeed.Enclosure{{URL: "https://cdn.example.com/image/12345"}},
	}
	require.Equal(t, "https://cdn.example.com/image/12345", ExtractImage(byPath, "", ""))
}

func TestExtractImage_InlineImgTag(t *testing.T) {
	item := &gofeed.Item{
		Description: `<p>Hello</p><img src="https://cdn.example.com/inline.jpg" alt="">`,
	}
	require.Equal(t, "https://cdn.example.com/inline.jpg", ExtractImage(item, "", ""))
}

func TestExtractImage_InlineRejectsDataURL(t *testing.T) {
	item := &gofeed.Item{
		Description: `<img src="data:image/png;base64,AAAA">`,
	}
	require.Equal(t, "", ExtractImage(item, "", ""))
}

func TestExtractImage_ChannelFallback(t *testing.T) {
	item := &gofeed.Item{}
	require.Equal(t, "https://cdn.example.com/channel.jpg", ExtractImage(item, "", "https://cdn.example.com/channel.jpg"))
}

func TestExtractImage_Exhausted(t *testing.T) {
	require.Equal(t, "", ExtractImage(&gofeed.Item{}, "", ""))
}
