package enrichment

import (
	"net/url"
	"strings"
)

// Channels assigned by ChannelClassifier.
const (
	ChannelDirect   = "Direct"
	ChannelInternal = "Internal"
	ChannelPaid     = "Paid"
	ChannelEmail    = "Email"
	ChannelSearch   = "Search"
	ChannelSocial   = "Social"
	ChannelAI       = "AI"
	ChannelReferral = "Referral"
)

// TrafficInput is what a hit says about where the visitor came from.
type TrafficInput struct {
	Referrer string
	// PageHost is the hostname of the page the hit was sent from.
	PageHost string
	Medium   string
	// ClickID is set when the landing URL carried gclid or dclid.
	ClickID bool
}

// ChannelClassifier groups hits into acquisition channels.
type ChannelClassifier struct {
	searchEngines []string
	socialMedia   []string
	aiPlatforms   []string
}

func NewChannelClassifier() *ChannelClassifier {
	return &ChannelClassifier{
		searchEngines: []string{
			"google.",
			"bing.com",
			"yahoo.com",
			"duckduckgo.com",
			"baidu.com",
			"yandex.",
			"ecosia.org",
		},
		socialMedia: []string{
			"facebook.com",
			"twitter.com",
			"t.co",
			"x.com",
			"instagram.com",
			"linkedin.com",
			"pinterest.com",
			"reddit.com",
			"tiktok.com",
			"youtube.com",
		},
		aiPlatforms: []string{
			"chatgpt.com",
			"claude.ai",
			"gemini.google.com",
			"perplexity.ai",
			"copilot.microsoft.com",
		},
	}
}

// Classify returns the channel for in. Campaign tagging wins over the referrer.
func (c *ChannelClassifier) Classify(in TrafficInput) string {
	medium := strings.ToLower(in.Medium)
	switch {
	case in.ClickID, medium == "cpc", medium == "ppc", medium == "paid":
		return ChannelPaid
	case medium == "email":
		return ChannelEmail
	}

	if in.Referrer == "" {
		return ChannelDirect
	}
	parsed, err := url.Parse(in.Referrer)
	if err != nil || parsed.Hostname() == "" {
		return ChannelDirect
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	if in.PageHost != "" && host == strings.TrimPrefix(strings.ToLower(in.PageHost), "www.") {
		return ChannelInternal
	}

	// AI before search: gemini.google.com would otherwise match google.
	if matchesAny(host, c.aiPlatforms) {
		return ChannelAI
	}
	if matchesAny(host, c.searchEngines) {
		return ChannelSearch
	}
	if matchesAny(host, c.socialMedia) {
		return ChannelSocial
	}
	return ChannelReferral
}

func matchesAny(host string, domains []string) bool {
	for _, d := range domains {
		if strings.HasSuffix(d, ".") {
			if strings.HasPrefix(host, d) || strings.Contains(host, "."+d) {
				return true
			}
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
