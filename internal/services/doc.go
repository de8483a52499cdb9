// Package services fetches the wereb catalog from its upstream directory listing.
//
// # Providers
//
// A [Provider] turns one upstream into a flat, document-ordered slice of [models.Track].
// Providers are looked up by configuration key in a registry of [ProviderFactory]
// constructors. The only built-in key is "eotc-org" ([EOTCProvider]), which scrapes an
// HTML directory listing with goquery and keeps anchors whose href ends in ".mp3".
//
// # Durations
//
// Listings carry no duration, so tracks default to 0. A [DurationProber] can fill it in:
//   - [RangeProber] : HEAD with "Range: bytes=0-0", size * 8 / 140000 seconds
//   - [DecodeProber] : downloads the file and decodes it with beep, reading ID3 tags for missing titles
//
// Probes are rate limited and never fail a fetch; failures are logged and leave the placeholder.
//
// # Error Handling
//
// Every fetch failure wraps [shared.ErrFetchTracks] plus one cause:
//   - [shared.ErrMissingConfig] : empty base URL or unknown provider key
//   - [shared.ErrTransport] : network failure or non-2xx status
//   - [shared.ErrParse] : unreadable document
package services
