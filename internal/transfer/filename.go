package transfer

import (
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

// timeNow is overridable for tests of the fallback name.
var timeNow = time.Now

// unsafeChars matches characters that are invalid in filenames on at
// least one supported platform, plus control characters.
var unsafeChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// ResolveFilename picks a safe local filename for a response. Preference
// order: Content-Disposition filename, then the last path segment of the
// final (post-redirect) URL, then a timestamped fallback. It never fails;
// an unusable name must not abort an otherwise-successful download.
func ResolveFilename(header http.Header, finalURL *url.URL) string {
	if cd := header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			name := params["filename"]
			if decoded, err := url.QueryUnescape(name); err == nil {
				name = decoded
			}
			if s := Sanitize(name); s != "" {
				return s
			}
		}
	}

	if finalURL != nil {
		if s := Sanitize(path.Base(finalURL.Path)); s != "" {
			return s
		}
	}

	return fmt.Sprintf("civget_download_%d", timeNow().Unix())
}

// Sanitize reduces a name to a safe base component: directory segments
// are stripped and invalid characters replaced with '_'. Returns "" when
// nothing usable remains. Idempotent.
func Sanitize(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return ""
	}
	return name
}
