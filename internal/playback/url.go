package playback

import (
	"net/url"
	"strings"

	"github.com/desertthunder/streamcatch/internal/models"
)

// PlaybackURL renders the stream as "url|Key=value&Key=value", the form Kodi passes on to ffmpeg.
//
// Values are query escaped, keys are written as is and in sorted order. A stream without headers yields
// the bare URL.
func PlaybackURL(s *models.Stream) string {
	keys := s.HeaderKeys()
	if len(keys) == 0 {
		return s.URL
	}

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+url.QueryEscape(s.Headers[k]))
	}
	return s.URL + "|" + strings.Join(pairs, "&")
}
