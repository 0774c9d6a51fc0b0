package playback

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/streamcatch/internal/models"
	"github.com/desertthunder/streamcatch/internal/shared"
)

// PayloadPrefix starts the first line of every extension payload.
const PayloadPrefix = "streamcatcher/"

const payloadFields = 4

// ParsePayload decodes a captured request body into a [models.Stream].
//
// The body must have exactly four lines and the first must start with [PayloadPrefix].
func ParsePayload(body []byte) (*models.Stream, error) {
	fields := strings.Split(string(body), "\n")
	if len(fields) != payloadFields {
		return nil, fmt.Errorf("%w: expected %d lines, got %d", shared.ErrUnexpectedPayload, payloadFields, len(fields))
	}

	version, ok := strings.CutPrefix(fields[0], PayloadPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q prefix", shared.ErrUnexpectedPayload, PayloadPrefix)
	}

	return &models.Stream{
		Version:  version,
		URL:      fields[1],
		MimeType: fields[2],
		Headers:  DecodeHeaders(fields[3]),
	}, nil
}

// DecodeHeaders parses URL encoded header params. Blank values are dropped and the last value of a repeated
// key wins. Malformed pairs are skipped.
func DecodeHeaders(params string) map[string]string {
	headers := make(map[string]string)

	values, _ := url.ParseQuery(params)
	for key, vs := range values {
		if key == "" || len(vs) == 0 {
			continue
		}
		if v := vs[len(vs)-1]; v != "" {
			headers[key] = v
		}
	}
	return headers
}

// EncodeHeaders is the inverse of [DecodeHeaders], with keys in sorted order.
func EncodeHeaders(headers map[string]string) string {
	values := make(url.Values, len(headers))
	for k, v := range headers {
		values.Set(k, v)
	}
	return values.Encode()
}

// EncodePayload renders a stream in the extension's wire format.
func EncodePayload(s *models.Stream) []byte {
	return []byte(strings.Join([]string{PayloadPrefix + s.Version, s.URL, s.MimeType, EncodeHeaders(s.Headers)}, "\n"))
}

// StreamFromCapture rebuilds the decoded stream of a saved capture.
func StreamFromCapture(c *models.Capture) (*models.Stream, error) {
	if !c.Captured() {
		return nil, fmt.Errorf("%w: capture %s has no stream: %s", shared.ErrInvalidInput, shared.ShortID(c.ID()), c.Message())
	}

	return &models.Stream{
		Version:  c.Version(),
		URL:      c.URL(),
		MimeType: c.MimeType(),
		Headers:  DecodeHeaders(c.HeaderParams()),
	}, nil
}
