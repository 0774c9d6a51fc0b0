package playback

import (
	"github.com/desertthunder/streamcatch/internal/shared"
)

const plainEncodings = "gzip, deflate"

// CleanHeaders returns a copy of headers ready to hand to a player.
//
// With RemoveBR the Accept-Encoding header (either spelling) is narrowed to gzip and deflate. Every name in
// DropHeaders is removed; names are matched exactly, as the extension sends them.
func CleanHeaders(headers map[string]string, c shared.PlaybackConfig) map[string]string {
	cleaned := make(map[string]string, len(headers))
	for k, v := range headers {
		cleaned[k] = v
	}

	if c.RemoveBR {
		if _, ok := cleaned["Accept-Encoding"]; ok {
			cleaned["Accept-Encoding"] = plainEncodings
		} else if _, ok := cleaned["accept-encoding"]; ok {
			cleaned["accept-encoding"] = plainEncodings
		}
	}

	for _, name := range c.DropHeaders {
		delete(cleaned, name)
	}
	return cleaned
}
