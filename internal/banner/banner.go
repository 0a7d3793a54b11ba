// Package banner classifies casino banner content and decides whether a
// banner source may be shown. It never renders anything.
package banner

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

type Kind string

const (
	KindNone    Kind = "none"
	KindImage   Kind = "image"
	KindScript  Kind = "script"
	KindBlocked Kind = "blocked"
)

type Banner struct {
	Kind   Kind   `json:"kind"`
	Source string `json:"source,omitempty"`
}

// Classify inspects raw banner content as entered by an admin: either a
// <script> tag from an affiliate network or a plain image URL.
func Classify(content string) Banner {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Banner{Kind: KindNone}
	}
	if !strings.HasPrefix(strings.ToLower(trimmed), "<script") {
		return Banner{Kind: KindImage, Source: trimmed}
	}
	src, ok := scriptSource(trimmed)
	if !ok {
		return Banner{Kind: KindNone}
	}
	return Banner{Kind: KindScript, Source: src}
}

// scriptSource returns the src attribute of the first <script> start tag.
// Attribute values come back entity-decoded.
func scriptSource(content string) (string, bool) {
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "script" {
				continue
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "src" {
					src := strings.TrimSpace(string(val))
					return src, src != ""
				}
			}
			return "", false
		}
	}
}

// Policy allow-lists banner hosts. An empty list allows image banners from
// any https host and blocks every script.
type Policy struct {
	AllowedHosts []string
}

func NewPolicy(hosts []string) *Policy {
	normalized := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			normalized = append(normalized, h)
		}
	}
	return &Policy{AllowedHosts: normalized}
}

// Resolve classifies content and blocks sources the policy does not allow.
func (p *Policy) Resolve(content string) Banner {
	b := Classify(content)
	if b.Kind == KindNone {
		return b
	}

	u, err := url.Parse(b.Source)
	if err != nil || u.Host == "" {
		return Banner{Kind: KindBlocked}
	}
	switch b.Kind {
	case KindScript:
		if u.Scheme != "https" || !p.allowed(u.Hostname()) {
			return Banner{Kind: KindBlocked}
		}
	case KindImage:
		if u.Scheme != "https" && u.Scheme != "http" {
			return Banner{Kind: KindBlocked}
		}
		if len(p.AllowedHosts) > 0 && !p.allowed(u.Hostname()) {
			return Banner{Kind: KindBlocked}
		}
	}
	return b
}

func (p *Policy) allowed(host string) bool {
	host = strings.ToLower(host)
	for _, h := range p.AllowedHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
