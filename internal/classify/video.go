package classify

import (
	"regexp"

	"github.com/dmitrijs2005/motionboard/internal/models"
)

var (
	youtubeRe = regexp.MustCompile(`(?:youtube\.com/(?:watch\?v=|embed/|shorts/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)
	vimeoRe   = regexp.MustCompile(`vimeo\.com/(\d+)`)
)

// ParsedVideo is a recognized hosted video link.
type ParsedVideo struct {
	Platform     models.VideoPlatform
	ID           string
	EmbedURL     string
	ThumbnailURL string
}

// ParseVideoURL recognizes YouTube (watch, embed, shorts, youtu.be) and
// Vimeo links. ok is false for anything else.
func ParseVideoURL(url string) (ParsedVideo, bool) {
	if m := youtubeRe.FindStringSubmatch(url); m != nil {
		id := m[1]
		return ParsedVideo{
			Platform:     models.PlatformYouTube,
			ID:           id,
			EmbedURL:     "https://www.youtube.com/embed/" + id + "?autoplay=1&mute=1",
			ThumbnailURL: "https://img.youtube.com/vi/" + id + "/hqdefault.jpg",
		}, true
	}
	if m := vimeoRe.FindStringSubmatch(url); m != nil {
		id := m[1]
		return ParsedVideo{
			Platform: models.PlatformVimeo,
			ID:       id,
			EmbedURL: "https://player.vimeo.com/video/" + id + "?autoplay=1&muted=1",
		}, true
	}
	return ParsedVideo{}, false
}

// IsVideoURL reports whether ParseVideoURL recognizes url.
func IsVideoURL(url string) bool {
	_, ok := ParseVideoURL(url)
	return ok
}

// VideoEmbed builds the payload of a video-embed item for url.
func VideoEmbed(url string) (models.VideoEmbedData, bool) {
	p, ok := ParseVideoURL(url)
	if !ok {
		return models.VideoEmbedData{}, false
	}
	return models.VideoEmbedData{
		URL:          url,
		EmbedURL:     p.EmbedURL,
		Platform:     p.Platform,
		ThumbnailURL: p.ThumbnailURL,
	}, true
}
