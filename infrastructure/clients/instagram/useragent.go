package instagram

import "hash/fnv"

var userAgents = [...]string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// UserAgentFor picks a browser user agent from a fixed pool. The choice
// depends only on the key, so concurrent resolutions never share state.
func UserAgentFor(key string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return userAgents[h.Sum32()%uint32(len(userAgents))]
}
