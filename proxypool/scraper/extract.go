package scraper

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"proxyz/proxypool/model"
)

// TableExtractor reads the first two cells of every row in an HTML table
// located by a goquery selector: column one is the address, column two
// the port.
type TableExtractor struct {
	Selector string
}

func (e TableExtractor) Extract(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	doc.Find(e.Selector).Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		ip := strings.TrimSpace(cells.Eq(0).Text())
		port := strings.TrimSpace(cells.Eq(1).Text())
		if ip == "" || port == "" {
			return
		}
		sb.WriteString(ip + ":" + port + "\n")
	})
	return sb.String()
}

// JSONListExtractor handles APIs returning proxy objects either as a top
// level array or nested under a "data" array (the two schema generations
// of geonode-style endpoints). Ports arrive as strings or numbers
// depending on the generation.
type JSONListExtractor struct{}

type jsonProxyItem struct {
	IP   string          `json:"ip"`
	Host string          `json:"host"`
	Port json.RawMessage `json:"port"`
}

func (i jsonProxyItem) token() string {
	addr := i.IP
	if addr == "" {
		addr = i.Host
	}
	port := portString(i.Port)
	if addr == "" || port == "" {
		return ""
	}
	return addr + ":" + port
}

func portString(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch p := v.(type) {
	case string:
		return strings.TrimSpace(p)
	case float64:
		return strconv.Itoa(int(p))
	}
	return ""
}

func (e JSONListExtractor) Extract(body []byte) string {
	var items []jsonProxyItem
	if err := json.Unmarshal(body, &items); err != nil {
		var envelope struct {
			Data []jsonProxyItem `json:"data"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return ""
		}
		items = envelope.Data
	}

	var sb strings.Builder
	for _, item := range items {
		if t := item.token(); t != "" {
			sb.WriteString(t + "\n")
		}
	}
	return sb.String()
}

// spysSkipPrefixes mark the banner, donation and legend lines framing the
// spys.me compact format.
var spysSkipPrefixes = []string{
	"Proxy list",
	"Http proxy",
	"Socks proxy",
	"Support by",
	"Donate at",
	"BTC",
	"IP address:Port",
	"Free ",
}

// SpysExtractor handles the spys.me compact text format: the first
// whitespace-delimited field of each data line is the address:port pair,
// the rest is country and anonymity metadata.
type SpysExtractor struct{}

func (e SpysExtractor) Extract(body []byte) string {
	var sb strings.Builder
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || skippedSpysLine(line) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 || !strings.Contains(fields[0], ":") {
			continue
		}
		sb.WriteString(fields[0] + "\n")
	}
	return sb.String()
}

func skippedSpysLine(line string) bool {
	for _, prefix := range spysSkipPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// RawListExtractor handles line-oriented lists where each line is a bare
// address:port or a protocol://address:port URL. Bare lines are always
// retained; prefixed lines must match the source's protocol affinity.
type RawListExtractor struct {
	Affinity model.Protocol
}

func (e RawListExtractor) Extract(body []byte) string {
	accepted := make(map[model.Protocol]struct{})
	for _, p := range e.Affinity.Expand() {
		accepted[p] = struct{}{}
	}

	var sb strings.Builder
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if scheme, rest, ok := strings.Cut(line, "://"); ok {
			if _, match := accepted[model.Protocol(strings.ToLower(scheme))]; !match {
				continue
			}
			line = rest
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

// PlainExtractor handles one-token-per-line lists, dropping blank lines
// and '#' comments before the uniform re-scan.
type PlainExtractor struct{}

func (e PlainExtractor) Extract(body []byte) string {
	var sb strings.Builder
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}
