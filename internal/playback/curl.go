package playback

import (
	"fmt"
	"strings"

	"github.com/desertthunder/streamcatch/internal/models"
)

// CurlCommand renders a cURL command that replays the stream request, one -H flag per header.
func CurlCommand(s *models.Stream) string {
	var b strings.Builder
	b.WriteString("curl")
	for _, k := range s.HeaderKeys() {
		fmt.Fprintf(&b, " \\\n  -H %s", shellQuote(k+": "+s.Headers[k]))
	}
	fmt.Fprintf(&b, " \\\n  %s", shellQuote(s.URL))
	return b.String()
}

// shellQuote wraps s in single quotes, escaping any single quotes inside it.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
