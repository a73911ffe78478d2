package music

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var hexPayloadRegexp = regexp.MustCompile(`^[0-9a-fA-F]+$`)

// DecodeAudioPayload turns an inline provider audio payload into raw audio
// bytes. Providers return audio as a data URL, a bare hex string, or a bare
// base64 blob; the payload may additionally be gzip- or zlib-wrapped.
func DecodeAudioPayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("empty audio payload")
	}

	var raw []byte
	switch {
	case strings.HasPrefix(payload, "data:"):
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data url")
		}
		decoded, err := base64.StdEncoding.DecodeString(payload[idx+1:])
		if err != nil {
			return nil, fmt.Errorf("decode data url: %w", err)
		}
		raw = decoded
	case hexPayloadRegexp.MatchString(payload) && len(payload)%2 == 0:
		decoded, err := hex.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode hex payload: %w", err)
		}
		raw = decoded
	default:
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some providers omit padding.
			decoded, err = base64.RawStdEncoding.DecodeString(payload)
			if err != nil {
				return nil, fmt.Errorf("decode base64 payload: %w", err)
			}
		}
		raw = decoded
	}

	return decompressIfWrapped(raw), nil
}

// decompressIfWrapped sniffs gzip/zlib magic bytes and transparently
// decompresses. A failed decompression falls back to the bytes as-is rather
// than erroring: the magic match can be a false positive on raw audio.
func decompressIfWrapped(raw []byte) []byte {
	if len(raw) < 2 {
		return raw
	}
	switch {
	case raw[0] == 0x1f && raw[1] == 0x8b:
		r, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return raw
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return raw
		}
		return out
	case raw[0] == 0x78 && (raw[1] == 0x01 || raw[1] == 0x9c || raw[1] == 0xda):
		r, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return raw
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return raw
		}
		return out
	}
	return raw
}

var knownAudioSubtypes = map[string]struct {
	mime string
	ext  string
}{
	"mp3":  {"audio/mpeg", "mp3"},
	"mpeg": {"audio/mpeg", "mp3"},
	"wav":  {"audio/wav", "wav"},
	"wave": {"audio/wav", "wav"},
	"ogg":  {"audio/ogg", "ogg"},
	"opus": {"audio/opus", "opus"},
	"flac": {"audio/flac", "flac"},
	"aac":  {"audio/aac", "aac"},
	"m4a":  {"audio/mp4", "m4a"},
	"mp4":  {"audio/mp4", "m4a"},
	"webm": {"audio/webm", "webm"},
}

var extSanitizeRegexp = regexp.MustCompile(`[^a-z0-9]`)

// ResolveAudioFormat maps a provider-supplied audio subtype onto a MIME type
// and file extension. Unknown subtypes synthesize a best-effort MIME type and
// a sanitized extension, defaulting to mp3.
func ResolveAudioFormat(subtype string) (mimeType, ext string) {
	normalized := strings.ToLower(strings.TrimSpace(subtype))
	normalized = strings.TrimPrefix(normalized, "x-")
	if known, ok := knownAudioSubtypes[normalized]; ok {
		return known.mime, known.ext
	}
	ext = extSanitizeRegexp.ReplaceAllString(normalized, "")
	if ext == "" {
		ext = "mp3"
	}
	return "audio/" + ext, ext
}
