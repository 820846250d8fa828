package instagram

import (
	"net/url"
	"regexp"
	"strings"
)

var shortcodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// path segments that introduce a content identifier
var contentKinds = map[string]bool{
	"reel":  true,
	"reels": true,
	"p":     true,
	"tv":    true,
}

// ExtractShortcode returns the content identifier referenced by input, which
// is an instagram.com URL, a site-relative path such as /reel/<id>/ or a bare
// identifier. It never touches the network.
func ExtractShortcode(input string) (string, bool) {
	if input == "" {
		return "", false
	}
	if shortcodePattern.MatchString(input) {
		return input, true
	}
	if strings.ContainsAny(input, " \t\r\n") {
		return "", false
	}

	if strings.HasPrefix(input, "/") && !strings.HasPrefix(input, "//") {
		u, err := url.Parse(input)
		if err != nil {
			return "", false
		}
		return shortcodeFromPath(u.Path)
	}

	raw := input
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	if !isInstagramHost(u.Hostname()) {
		return "", false
	}

	return shortcodeFromPath(u.Path)
}

func shortcodeFromPath(path string) (string, bool) {
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	// /<kind>/<id> or /<username>/<kind>/<id>
	for i := 0; i < len(segments)-1 && i < 2; i++ {
		if contentKinds[strings.ToLower(segments[i])] && shortcodePattern.MatchString(segments[i+1]) {
			return segments[i+1], true
		}
	}
	return "", false
}

func isInstagramHost(host string) bool {
	host = strings.ToLower(host)
	return host == "instagram.com" || strings.HasSuffix(host, ".instagram.com")
}

// CanonicalURL is the public reel page for shortcode.
func CanonicalURL(shortcode string) string {
	return "https://www.instagram.com/reel/" + shortcode + "/"
}
