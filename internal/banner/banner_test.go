package banner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Banner
	}{
		{"empty", "   ", Banner{Kind: KindNone}},
		{"image", " https://cdn.example.com/b.jpg ", Banner{Kind: KindImage, Source: "https://cdn.example.com/b.jpg"}},
		{
			"script with entities",
			`<script type="text/javascript" src="https://ads.partner.io/b.js?a=1&amp;b=2"></script>`,
			Banner{Kind: KindScript, Source: "https://ads.partner.io/b.js?a=1&b=2"},
		},
		{"script without src", `<script>alert(1)</script>`, Banner{Kind: KindNone}},
		{
			"data-src before src",
			`<script data-src="https://cdn.other.net/lazy.js" src="https://ads.partner.com/b.js"></script>`,
			Banner{Kind: KindScript, Source: "https://ads.partner.com/b.js"},
		},
		{
			"spaces around equals",
			`<script src = "https://ads.partner.com/b.js">`,
			Banner{Kind: KindScript, Source: "https://ads.partner.com/b.js"},
		},
		{"uppercase tag", `<SCRIPT SRC=https://ads.partner.com/b.js></SCRIPT>`, Banner{Kind: KindScript, Source: "https://ads.partner.com/b.js"}},
		{"only data-src", `<script data-src="https://ads.partner.com/b.js"></script>`, Banner{Kind: KindNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.content))
		})
	}
}

func TestPolicyResolve(t *testing.T) {
	p := NewPolicy([]string{"partner.io", " "})

	script := `<script src='https://ads.partner.io/b.js'></script>`
	assert.Equal(t, KindScript, p.Resolve(script).Kind)

	foreign := `<script src="https://evil.example/b.js"></script>`
	assert.Equal(t, Banner{Kind: KindBlocked}, p.Resolve(foreign))

	plain := `<script src="http://ads.partner.io/b.js"></script>`
	assert.Equal(t, KindBlocked, p.Resolve(plain).Kind)

	assert.Equal(t, KindImage, p.Resolve("https://partner.io/banner.png").Kind)
	assert.Equal(t, KindBlocked, p.Resolve("https://other.example/banner.png").Kind)
	assert.Equal(t, KindBlocked, p.Resolve("javascript:alert(1)").Kind)
}

func TestPolicyReadsExactSrcAttribute(t *testing.T) {
	p := NewPolicy([]string{"ads.partner.com"})

	lazy := `<script data-src="https://cdn.other.net/lazy.js" src="https://ads.partner.com/b.js"></script>`
	assert.Equal(t, Banner{Kind: KindScript, Source: "https://ads.partner.com/b.js"}, p.Resolve(lazy))

	spaced := `<script src = "https://ads.partner.com/b.js">`
	assert.Equal(t, KindScript, p.Resolve(spaced).Kind)

	decoy := `<script src="https://cdn.other.net/x.js" data-src="https://ads.partner.com/b.js"></script>`
	assert.Equal(t, Banner{Kind: KindBlocked}, p.Resolve(decoy))
}

func TestEmptyPolicyBlocksScripts(t *testing.T) {
	p := NewPolicy(nil)
	assert.Equal(t, KindBlocked, p.Resolve(`<script src="https://ads.partner.io/b.js"></script>`).Kind)
	assert.Equal(t, KindImage, p.Resolve("https://cdn.example.com/b.jpg").Kind)
}
