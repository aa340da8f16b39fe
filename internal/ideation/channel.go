package ideation

import "strings"

// Channel is a social network a card can be posted to.
type Channel string

const (
	Instagram Channel = "Instagram"
	Facebook  Channel = "Facebook"
	XTwitter  Channel = "X(Twitter)"
)

var channelOrder = [...]Channel{Instagram, Facebook, XTwitter}

var channelAliases = map[string]Channel{
	"instagram":  Instagram,
	"ig":         Instagram,
	"facebook":   Facebook,
	"fb":         Facebook,
	"x(twitter)": XTwitter,
	"x":          XTwitter,
	"twitter":    XTwitter,
	"x/twitter":  XTwitter,
}

// DefaultChannels are preselected in the input form and used by the
// fallback when no channel was chosen.
var DefaultChannels = []Channel{Instagram, XTwitter}

// Channels lists the supported channels in display order.
func Channels() []Channel {
	out := make([]Channel, len(channelOrder))
	copy(out, channelOrder[:])
	return out
}

// ParseChannel resolves a channel name or common alias.
func ParseChannel(s string) (Channel, bool) {
	c, ok := channelAliases[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

// NormalizeChannels resolves names, dropping unknown entries and repeats.
func NormalizeChannels(names []string) []Channel {
	out := make([]Channel, 0, len(names))
	seen := make(map[Channel]bool, len(names))
	for _, n := range names {
		c, ok := ParseChannel(n)
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

var goals = [...]string{
	"Social Buzz Making(재미/기믹)",
	"Engagement 생성(CTA)",
	"브랜드 인지도/선호도 상승",
	"제품 인지도/구매의향 상승",
	"제품 프로모션",
}

// Goals lists the marketing goals every batch targets.
func Goals() []string {
	out := make([]string, len(goals))
	copy(out, goals[:])
	return out
}

func channelNames(cs []Channel) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}
