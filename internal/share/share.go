// Package share builds the artifacts a player can post after a valid trial:
// the post text, the social intent link, and the result card image.
package share

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tomz197/omw/internal/game"
)

// IntentBase is the endpoint that opens a prefilled post.
const IntentBase = "https://twitter.com/intent/tweet"

// MaxLatency bounds latencies accepted from the outside (query strings).
const MaxLatency = 60 * time.Second

// ErrNoResult is returned when an outcome carries no latency to share.
var ErrNoResult = errors.New("share: outcome has no latency")

// Brand holds the promotional copy placed on posts and cards.
type Brand struct {
	Title           string   // e.g. "I'm On My Way ($OMW)"
	Subtitle        string   // e.g. "in Solana"
	Ticker          string   // e.g. "$OMW"
	Handle          string   // e.g. "@omwsolana"
	ContractAddress string   // Shown on posts, omitted when empty
	Hashtags        []string // Without the leading '#'
}

// DefaultBrand returns the copy used by the hosted game.
func DefaultBrand() Brand {
	return Brand{
		Title:           "I'm On My Way ($OMW)",
		Subtitle:        "in Solana",
		Ticker:          "$OMW",
		Handle:          "@omwsolana",
		ContractAddress: "CCk7zxbYt3zMLybZ2Civw6r4H9ZSiLts3HNmLcdvbonk",
		Hashtags:        []string{"OnMyWay", "OMW", "Solana", "ReactionTest"},
	}
}

// Result is the pair of values the share flow needs.
type Result struct {
	Latency  time.Duration
	Category game.Category
}

// LatencyMs returns the latency in whole milliseconds.
func (r Result) LatencyMs() int64 {
	return r.Latency.Milliseconds()
}

// NewResult builds a Result from a valid outcome.
func NewResult(out game.Outcome, tiers game.Tiers) (Result, error) {
	if !out.Valid() {
		return Result{}, ErrNoResult
	}
	return Result{Latency: out.Latency, Category: tiers.Classify(out.Latency)}, nil
}

// ParseLatency parses a millisecond count as received in a query string.
func ParseLatency(ms string) (time.Duration, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(ms), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse latency %q: %w", ms, err)
	}
	d := time.Duration(n) * time.Millisecond
	if d < 0 || d > MaxLatency {
		return 0, fmt.Errorf("latency %dms out of range", n)
	}
	return d, nil
}

// PostText returns the body of the social post for r.
func PostText(r Result, gameURL string, b Brand) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Just got %dms (%s) reaction time on %s game! 🚀⚡\n\n", r.LatencyMs(), r.Category, b.Handle)
	fmt.Fprintf(&sb, "Test your reflexes for %s - don't forget to grab a bag! 💰\n\n", b.Ticker)
	if gameURL != "" {
		fmt.Fprintf(&sb, "Play now: %s\n\n", gameURL)
	}
	if b.ContractAddress != "" {
		fmt.Fprintf(&sb, "CA: %s\n\n", b.ContractAddress)
	}
	tags := make([]string, 0, len(b.Hashtags))
	for _, tag := range b.Hashtags {
		tags = append(tags, "#"+strings.TrimPrefix(tag, "#"))
	}
	sb.WriteString(strings.Join(tags, " "))
	return strings.TrimRight(sb.String(), "\n")
}

// IntentURL returns the link that opens a post composer prefilled with text.
func IntentURL(text string) string {
	return IntentBase + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// CardFilename is the download name of the result card.
func CardFilename(r Result) string {
	return fmt.Sprintf("omw-result-%dms.png", r.LatencyMs())
}

// CardURL returns the public URL of the card for r served by the web companion.
func CardURL(publicURL string, r Result) string {
	return strings.TrimRight(publicURL, "/") + "/card.png?ms=" + strconv.FormatInt(r.LatencyMs(), 10)
}
