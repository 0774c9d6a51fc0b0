// Package playback decodes the payload sent by the streamcatcher browser extension and prepares it for a media player.
//
// The extension posts four newline separated fields:
//
//	streamcatcher/<version>
//	<media url>
//	<mime type>
//	<url encoded request headers>
//
// [ParsePayload] decodes them into a [models.Stream]. [CleanHeaders] removes headers a player must set itself,
// and [PlaybackURL] renders the "url|Header=value&..." form understood by Kodi and ffmpeg based players.
package playback
