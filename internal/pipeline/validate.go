package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/models"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

// Validated URLs are later passed as literal process arguments, never through
// a shell; the allow-list plus the metacharacter blacklist below is the
// complete injection boundary, so every rejection happens before any job row
// or process exists.

var urlPrefixes = map[models.JobKind][]string{
	models.KindYouTube: {
		"https://www.youtube.com/watch?v=",
		"https://youtube.com/watch?v=",
		"https://music.youtube.com/watch?v=",
		"https://youtu.be/",
	},
	models.KindSpotify: {
		"https://open.spotify.com/track/",
		"https://open.spotify.com/album/",
		"https://open.spotify.com/playlist/",
		"https://open.spotify.com/artist/",
	},
}

var urlMaxLength = map[models.JobKind]int{
	models.KindYouTube: 500,
	models.KindSpotify: 300,
}

var shellMetacharacters = []string{";", "|", "`", "$", "&&", "||"}

// ValidateRemoteURL checks a submitted URL against the source kind's
// scheme/host/path allow-list, the shell-metacharacter blacklist, and the
// per-kind length limit. It returns the trimmed URL on success.
func ValidateRemoteURL(kind models.JobKind, raw string) (string, error) {
	url := strings.TrimSpace(raw)
	if url == "" {
		return "", fmt.Errorf("%w: empty url", shared.ErrInvalidURL)
	}

	prefixes, ok := urlPrefixes[kind]
	if !ok {
		return "", fmt.Errorf("%w: kind %s has no remote source", shared.ErrInvalidURL, kind)
	}

	matched := false
	for _, prefix := range prefixes {
		if strings.HasPrefix(url, prefix) {
			matched = true
			break
		}
	}
	if !matched {
		return "", fmt.Errorf("%w: not a recognized %s url", shared.ErrInvalidURL, kind)
	}

	for _, meta := range shellMetacharacters {
		if strings.Contains(url, meta) {
			return "", fmt.Errorf("%w: url contains forbidden character %q", shared.ErrInvalidURL, meta)
		}
	}

	if len(url) > urlMaxLength[kind] {
		return "", fmt.Errorf("%w: url exceeds %d characters", shared.ErrInvalidURL, urlMaxLength[kind])
	}

	return url, nil
}

// SanitizeUploadFilename strips a client-supplied filename to its last path
// component and verifies the extension against the allow-list.
//
// Directory components are discarded rather than rejected; what remains must
// be free of traversal sequences and separators.
func SanitizeUploadFilename(raw string, allowedExtensions []string) (string, error) {
	name := raw
	if idx := strings.LastIndexAny(name, "/\\"); idx >= 0 {
		name = name[idx+1:]
	}

	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidFilename, raw)
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\") {
		return "", fmt.Errorf("%w: path traversal attempt detected", shared.ErrInvalidFilename)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	allowed := false
	for _, candidate := range allowedExtensions {
		if ext == strings.ToLower(candidate) {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", fmt.Errorf("%w: .%s", shared.ErrDisallowedExtension, ext)
	}

	return name, nil
}
