package util

import (
	"net/url"
	"regexp"
	"strings"
)

var multiSlash = regexp.MustCompile(`/+`)

// Takes a relay "host" string and returns a normalized websocket URL. Defaults
// to wss://, except for localhost. Converts http/https to ws/wss, lower-cases
// the host, drops default ports and trailing slashes, so that the same relay
// written two ways compares equal.
func WebsocketUrlForHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(host, "wss://") || strings.HasPrefix(host, "ws://"):
	case strings.HasPrefix(host, "https://"):
		host = "wss://" + strings.TrimPrefix(host, "https://")
	case strings.HasPrefix(host, "http://"):
		host = "ws://" + strings.TrimPrefix(host, "http://")
	case strings.Contains(host, "://"):
		// don't mess with unexpected methods
		return host
	case strings.HasPrefix(host, "127.0.0.") || strings.HasPrefix(host, "[::1]"):
		host = "ws://" + host
	case strings.SplitN(host, ":", 2)[0] == "localhost":
		host = "ws://" + host
	default:
		host = "wss://" + host
	}

	u, err := url.Parse(host)
	if err != nil {
		return host
	}
	u.Host = strings.ToLower(u.Host)
	if (u.Scheme == "wss" && u.Port() == "443") || (u.Scheme == "ws" && u.Port() == "80") {
		u.Host = u.Hostname()
		if strings.Contains(u.Host, ":") {
			u.Host = "[" + u.Host + "]"
		}
	}
	u.Path = strings.TrimSuffix(multiSlash.ReplaceAllString(u.Path, "/"), "/")
	u.RawPath = ""
	u.Fragment = ""
	return u.String()
}
