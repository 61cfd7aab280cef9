package air

import (
	"net/url"
	"strings"
)

const (
	registryDomain = "civitai.com"
	downloadPath   = "/api/download/models/"
)

// ParseDownloadURL parses a direct CivitAI download URL of the form
// https://civitai.com/api/download/models/{versionId}[?type=&format=&size=&fp=].
func ParseDownloadURL(raw string) (*Ref, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, &InvalidURLError{Raw: raw, Cause: "unparsable URL"}
	}

	if !strings.HasPrefix(parsed.Scheme, "http") || !strings.Contains(parsed.Host, registryDomain) {
		return nil, &InvalidURLError{Raw: raw, Cause: "not a " + registryDomain + " URL"}
	}

	if !strings.HasPrefix(parsed.Path, downloadPath) {
		return nil, &InvalidURLError{Raw: raw, Cause: "not a model download path"}
	}

	versionID := strings.SplitN(strings.TrimPrefix(parsed.Path, downloadPath), "/", 2)[0]
	if !isDigits(versionID) {
		return nil, &InvalidURLError{Raw: raw, Cause: "model version id is not numeric"}
	}

	query := parsed.Query()
	return &Ref{
		Raw:         raw,
		Type:        TypeURL,
		VersionID:   versionID,
		QueryType:   firstValue(query, "type"),
		QueryFormat: firstValue(query, "format"),
		QuerySize:   firstValue(query, "size"),
		QueryFP:     firstValue(query, "fp"),
	}, nil
}

// firstValue returns the first value for key, or "" when absent.
func firstValue(q url.Values, key string) string {
	vs := q[key]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
