package content

import (
	"fmt"
	"regexp"
	"strings"
)

// Sanitizer rewrites raw article HTML from the club CMS into markup
// the app renderer can handle. All rules are text substitutions, not a
// structural parse: the CMS emits a narrow, known set of shapes and
// regularly produces markup no strict parser would accept. Rules run
// in a fixed order and the full pipeline is idempotent on its own
// output; both properties are pinned by tests.
//
// Two synthetic tags are emitted for the rendering layer to resolve:
// <tweet-embed id="..."> and <instagram-embed id="...">.
type Sanitizer struct {
	rules []sanitizeRule
}

type sanitizeRule struct {
	name  string
	apply func(string) string
}

var (
	scriptRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)

	tweetBlockquoteRe = regexp.MustCompile(`(?is)<blockquote[^>]*class="twitter-tweet"[^>]*>.*?</blockquote>`)
	tweetStatusRe     = regexp.MustCompile(`status/(\d+)`)
	tweetIframeRe     = regexp.MustCompile(`(?is)<iframe[^>]*src="[^"]*Tweet\.html[^"]*"[^>]*>\s*</iframe>`)
	tweetIframeIDRe   = regexp.MustCompile(`[?&](?:amp;)?id=(\d+)`)

	instagramFigureRe = regexp.MustCompile(`(?is)<figure[^>]*>\s*<blockquote[^>]*class="instagram-media"[^>]*>.*?</figure>`)
	instagramIDRe     = regexp.MustCompile(`data-instgrm-permalink="[^"]*/p/([^/"?]+)`)

	// The shop banner is assumed to always be the last block; the rule
	// deliberately consumes everything after the marker.
	shopBannerRe     = regexp.MustCompile(`(?s)<hr ?/?>\s*<figure[^>]*data-emoji="🛍️".*$`)
	partnerNoteRe    = regexp.MustCompile(`(?s)<p>\s*\*.*?</p>\s*<figure[^>]*>.*?</figure>\s*$`)
	seasonalBannerRe = regexp.MustCompile(`(?s)<hr ?/?>\s*<h2[^>]*>[^<]*🎁.*?</ul>`)

	emptyAnchorRe    = regexp.MustCompile(`(?is)<a[^>]*>(?:\s|&nbsp;)*</a>`)
	emptyParagraphRe = regexp.MustCompile(`(?is)<p[^>]*>(?:\s|&nbsp;)*</p>`)
)

func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		rules: []sanitizeRule{
			{"strip_scripts", stripScripts},
			{"tweet_blockquotes", rewriteTweetBlockquotes},
			{"tweet_iframes", rewriteTweetIframes},
			{"instagram_figures", rewriteInstagramFigures},
			{"promo_banners", stripPromoBanners},
			{"protocol_relative_urls", fixProtocolRelativeURLs},
			{"empty_elements", removeEmptyElements},
		},
	}
}

// Run applies every rule in order. It never fails; unmatched patterns
// pass through untouched and empty input yields empty output.
func (s *Sanitizer) Run(html string) string {
	for _, rule := range s.rules {
		html = rule.apply(html)
	}
	return html
}

func stripScripts(html string) string {
	return scriptRe.ReplaceAllString(html, "")
}

func rewriteTweetBlockquotes(html string) string {
	return tweetBlockquoteRe.ReplaceAllStringFunc(html, func(block string) string {
		m := tweetStatusRe.FindStringSubmatch(block)
		if m == nil {
			// No status id, nothing to embed: render nothing rather
			// than broken markup.
			return ""
		}
		return tweetEmbed(m[1])
	})
}

func rewriteTweetIframes(html string) string {
	return tweetIframeRe.ReplaceAllStringFunc(html, func(iframe string) string {
		m := tweetIframeIDRe.FindStringSubmatch(iframe)
		if m == nil {
			return ""
		}
		return tweetEmbed(m[1])
	})
}

func rewriteInstagramFigures(html string) string {
	return instagramFigureRe.ReplaceAllStringFunc(html, func(figure string) string {
		m := instagramIDRe.FindStringSubmatch(figure)
		if m == nil {
			return ""
		}
		return fmt.Sprintf(`<instagram-embed id="%s"></instagram-embed>`, m[1])
	})
}

func stripPromoBanners(html string) string {
	html = shopBannerRe.ReplaceAllString(html, "")
	html = partnerNoteRe.ReplaceAllString(html, "")
	html = seasonalBannerRe.ReplaceAllString(html, "")
	return html
}

// fixProtocolRelativeURLs forces https on src="//..." references; the
// in-app renderer has no base origin to resolve them against.
func fixProtocolRelativeURLs(html string) string {
	return strings.ReplaceAll(html, `src="//`, `src="https://`)
}

func removeEmptyElements(html string) string {
	html = emptyAnchorRe.ReplaceAllString(html, "")
	html = emptyParagraphRe.ReplaceAllString(html, "")
	return html
}

func tweetEmbed(id string) string {
	return fmt.Sprintf(`<tweet-embed id="%s"></tweet-embed>`, id)
}
