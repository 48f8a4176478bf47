package scraper

import (
	"fmt"
	"time"

	"proxyz/proxypool/model"
)

// defaultSourceTimeout applies when the configuration leaves the per-source
// fetch timeout unset.
const defaultSourceTimeout = 15 * time.Second

// Constructors below substitute descriptor parameters (method, anonymity
// level, paging) into each vendor's URL template at registration time.

// NewSpysSource reads the spys.me compact text lists. Only the http and
// composite socks tags exist there.
func NewSpysSource(method model.Protocol, timeout time.Duration) *Source {
	mode := "proxy"
	if method == model.ProtocolSOCKS {
		mode = "socks"
	}
	url := fmt.Sprintf("https://spys.me/%s.txt", mode)
	return NewSource("spys.me/"+string(method), url, method, timeout, SpysExtractor{})
}

// NewProxyScrapeSource queries the proxyscrape.com API. apiTimeout is the
// vendor's own latency cutoff in milliseconds, not our request timeout.
func NewProxyScrapeSource(method model.Protocol, apiTimeout int, country string, timeout time.Duration) *Source {
	url := fmt.Sprintf(
		"https://api.proxyscrape.com/?request=getproxies&proxytype=%s&timeout=%d&country=%s",
		method, apiTimeout, country)
	return NewSource("proxyscrape.com/"+string(method), url, method, timeout, PlainExtractor{})
}

// NewGeoNodeSource queries the geonode JSON API, newest-checked first.
func NewGeoNodeSource(method model.Protocol, limit, page int, timeout time.Duration) *Source {
	url := fmt.Sprintf(
		"https://proxylist.geonode.com/api/proxy-list?limit=%d&page=%d&sort_by=lastChecked&sort_type=desc&protocols=%s",
		limit, page, method)
	return NewSource("geonode.com/"+string(method), url, method, timeout, JSONListExtractor{})
}

// NewProxyListDownloadSource queries the proxy-list.download API for one
// anonymity level.
func NewProxyListDownloadSource(method model.Protocol, anon string, timeout time.Duration) *Source {
	url := fmt.Sprintf("https://www.proxy-list.download/api/v1/get?type=%s&anon=%s", method, anon)
	name := fmt.Sprintf("proxy-list.download/%s-%s", method, anon)
	return NewSource(name, url, method, timeout, PlainExtractor{})
}

// NewTableSource reads the classic free-proxy-list style HTML table.
func NewTableSource(name, url string, method model.Protocol, timeout time.Duration) *Source {
	return NewSource(name, url, method, timeout,
		TableExtractor{Selector: "table.table.table-striped.table-bordered"})
}

// NewRawListSource reads line-oriented lists that may carry protocol://
// prefixes (GitHub-hosted aggregate lists, mostly).
func NewRawListSource(name, url string, method model.Protocol, timeout time.Duration) *Source {
	return NewSource(name, url, method, timeout, RawListExtractor{Affinity: method})
}

// NewPlainSource reads bare one-token-per-line lists.
func NewPlainSource(name, url string, method model.Protocol, timeout time.Duration) *Source {
	return NewSource(name, url, method, timeout, PlainExtractor{})
}

// DefaultRegistry is the static, ordered source catalogue. Every source
// uses the given fetch timeout; zero or negative means the stock 15s.
// Order only affects reporting; correctness never depends on it. The
// returned slice is fresh on every call so callers may not mutate shared
// state.
func DefaultRegistry(sourceTimeout time.Duration) []Fetcher {
	if sourceTimeout <= 0 {
		sourceTimeout = defaultSourceTimeout
	}
	return []Fetcher{
		// Direct API sources
		NewSpysSource(model.ProtocolHTTP, sourceTimeout),
		NewSpysSource(model.ProtocolSOCKS, sourceTimeout),
		NewProxyScrapeSource(model.ProtocolHTTP, 1000, "All", sourceTimeout),
		NewProxyScrapeSource(model.ProtocolSOCKS4, 1000, "All", sourceTimeout),
		NewProxyScrapeSource(model.ProtocolSOCKS5, 1000, "All", sourceTimeout),
		NewGeoNodeSource(model.ProtocolHTTP, 500, 1, sourceTimeout),
		NewGeoNodeSource(model.ProtocolSOCKS5, 500, 1, sourceTimeout),

		// Download API, split by anonymity level
		NewProxyListDownloadSource(model.ProtocolHTTPS, "elite", sourceTimeout),
		NewProxyListDownloadSource(model.ProtocolHTTP, "elite", sourceTimeout),
		NewProxyListDownloadSource(model.ProtocolHTTP, "transparent", sourceTimeout),
		NewProxyListDownloadSource(model.ProtocolHTTP, "anonymous", sourceTimeout),

		// HTML table sites
		NewTableSource("sslproxies.org", "https://www.sslproxies.org", model.ProtocolHTTPS, sourceTimeout),
		NewTableSource("free-proxy-list.net", "https://free-proxy-list.net", model.ProtocolHTTP, sourceTimeout),
		NewTableSource("us-proxy.org", "https://www.us-proxy.org", model.ProtocolHTTP, sourceTimeout),
		NewTableSource("socks-proxy.net", "https://www.socks-proxy.net", model.ProtocolSOCKS, sourceTimeout),

		// HTML div grid
		NewDivListSource("lunaproxy.com", "https://freeproxy.lunaproxy.com/", model.ProtocolHTTP, sourceTimeout),

		// GitHub-hosted aggregate lists with protocol prefixes
		NewRawListSource("proxifly/http", "https://raw.githubusercontent.com/proxifly/free-proxy-list/main/proxies/all/data.txt", model.ProtocolHTTP, sourceTimeout),
		NewRawListSource("proxifly/socks4", "https://raw.githubusercontent.com/proxifly/free-proxy-list/main/proxies/all/data.txt", model.ProtocolSOCKS4, sourceTimeout),
		NewRawListSource("proxifly/socks5", "https://raw.githubusercontent.com/proxifly/free-proxy-list/main/proxies/all/data.txt", model.ProtocolSOCKS5, sourceTimeout),
		NewRawListSource("monosans/http", "https://raw.githubusercontent.com/monosans/proxy-list/main/proxies/all.txt", model.ProtocolHTTP, sourceTimeout),
		NewRawListSource("monosans/socks", "https://raw.githubusercontent.com/monosans/proxy-list/main/proxies/all.txt", model.ProtocolSOCKS, sourceTimeout),

		// GitHub-hosted bare lists, one protocol per file
		NewPlainSource("thespeedx/http", "https://raw.githubusercontent.com/TheSpeedX/PROXY-List/master/http.txt", model.ProtocolHTTP, sourceTimeout),
		NewPlainSource("thespeedx/socks4", "https://raw.githubusercontent.com/TheSpeedX/PROXY-List/master/socks4.txt", model.ProtocolSOCKS4, sourceTimeout),
		NewPlainSource("thespeedx/socks5", "https://raw.githubusercontent.com/TheSpeedX/PROXY-List/master/socks5.txt", model.ProtocolSOCKS5, sourceTimeout),
		NewPlainSource("hideip.me/https", "https://raw.githubusercontent.com/zloi-user/hideip.me/main/https.txt", model.ProtocolHTTPS, sourceTimeout),
		NewPlainSource("hideip.me/http", "https://raw.githubusercontent.com/zloi-user/hideip.me/main/http.txt", model.ProtocolHTTP, sourceTimeout),
		NewPlainSource("hideip.me/socks4", "https://raw.githubusercontent.com/zloi-user/hideip.me/main/socks4.txt", model.ProtocolSOCKS4, sourceTimeout),
		NewPlainSource("hideip.me/socks5", "https://raw.githubusercontent.com/zloi-user/hideip.me/main/socks5.txt", model.ProtocolSOCKS5, sourceTimeout),
		NewPlainSource("jetkai/http", "https://raw.githubusercontent.com/jetkai/proxy-list/main/online-proxies/txt/proxies-http.txt", model.ProtocolHTTP, sourceTimeout),
		NewPlainSource("jetkai/https", "https://raw.githubusercontent.com/jetkai/proxy-list/main/online-proxies/txt/proxies-https.txt", model.ProtocolHTTPS, sourceTimeout),
		NewPlainSource("jetkai/socks4", "https://raw.githubusercontent.com/jetkai/proxy-list/main/online-proxies/txt/proxies-socks4.txt", model.ProtocolSOCKS4, sourceTimeout),
		NewPlainSource("jetkai/socks5", "https://raw.githubusercontent.com/jetkai/proxy-list/main/online-proxies/txt/proxies-socks5.txt", model.ProtocolSOCKS5, sourceTimeout),
		NewPlainSource("roosterkid/https", "https://raw.githubusercontent.com/roosterkid/openproxylist/main/HTTPS_RAW.txt", model.ProtocolHTTP, sourceTimeout),
		NewPlainSource("roosterkid/socks4", "https://raw.githubusercontent.com/roosterkid/openproxylist/main/SOCKS4_RAW.txt", model.ProtocolSOCKS4, sourceTimeout),
		NewPlainSource("roosterkid/socks5", "https://raw.githubusercontent.com/roosterkid/openproxylist/main/SOCKS5_RAW.txt", model.ProtocolSOCKS5, sourceTimeout),
		NewPlainSource("mmpx12/http", "https://raw.githubusercontent.com/mmpx12/proxy-list/master/http.txt", model.ProtocolHTTP, sourceTimeout),
		NewPlainSource("mmpx12/https", "https://raw.githubusercontent.com/mmpx12/proxy-list/master/https.txt", model.ProtocolHTTPS, sourceTimeout),
		NewPlainSource("mmpx12/socks4", "https://raw.githubusercontent.com/mmpx12/proxy-list/master/socks4.txt", model.ProtocolSOCKS4, sourceTimeout),
		NewPlainSource("mmpx12/socks5", "https://raw.githubusercontent.com/mmpx12/proxy-list/master/socks5.txt", model.ProtocolSOCKS5, sourceTimeout),
		NewPlainSource("clarketm/raw", "https://raw.githubusercontent.com/clarketm/proxy-list/master/proxy-list-raw.txt", model.ProtocolHTTP, sourceTimeout),
		NewPlainSource("sunny9577/raw", "https://raw.githubusercontent.com/sunny9577/proxy-scraper/master/proxies.txt", model.ProtocolHTTP, sourceTimeout),
		NewPlainSource("almroot/list", "https://raw.githubusercontent.com/almroot/proxylist/master/list.txt", model.ProtocolHTTP, sourceTimeout),
		NewPlainSource("aslisk/https", "https://raw.githubusercontent.com/aslisk/proxyhttps/main/https.txt", model.ProtocolHTTP, sourceTimeout),
		NewPlainSource("proxy4parsing/http", "https://raw.githubusercontent.com/proxy4parsing/proxy-list/main/http.txt", model.ProtocolHTTP, sourceTimeout),

		// Plain text download endpoints
		NewPlainSource("proxyscan.io/http", "https://www.proxyscan.io/download?type=http", model.ProtocolHTTP, sourceTimeout),
		NewPlainSource("proxyscan.io/socks4", "https://www.proxyscan.io/download?type=socks4", model.ProtocolSOCKS4, sourceTimeout),
		NewPlainSource("proxyscan.io/socks5", "https://www.proxyscan.io/download?type=socks5", model.ProtocolSOCKS5, sourceTimeout),
		NewPlainSource("proxyspace.pro/http", "https://proxyspace.pro/http.txt", model.ProtocolHTTP, sourceTimeout),
		NewPlainSource("proxyspace.pro/socks4", "https://proxyspace.pro/socks4.txt", model.ProtocolSOCKS4, sourceTimeout),
		NewPlainSource("proxyspace.pro/socks5", "https://proxyspace.pro/socks5.txt", model.ProtocolSOCKS5, sourceTimeout),
	}
}
