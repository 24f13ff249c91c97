package detector

import (
	"strings"

	"github.com/bgagnon/translien/internal"
)

// A Policy selects which extracted blocks feed language detection for a
// given source domain. Generic paragraph extraction fails on pages whose
// primary content lives in non-paragraph markup, so domains can register a
// narrower selector.
type Policy struct {
	Name   string
	Select func(blocks []internal.Block) []internal.Block
}

var defaultPolicy = Policy{
	Name: "paragraphs",
	Select: func(blocks []internal.Block) []internal.Block {
		var out []internal.Block
		for _, b := range blocks {
			if b.Tag == "p" {
				out = append(out, b)
			}
		}
		return out
	},
}

// domainPolicies is keyed by normalized registrable domain. Extend by
// adding entries; every unlisted domain falls back to defaultPolicy.
var domainPolicies = map[string]Policy{
	"twitter.com": {
		Name: "short-posts",
		Select: func(blocks []internal.Block) []internal.Block {
			var out []internal.Block
			for _, b := range blocks {
				if b.Tag == "p" && strings.Contains(b.Class, "tweet-text") {
					out = append(out, b)
				}
			}
			return out
		},
	},
}

// policyFor returns the block-selection policy for domain, falling back to
// the generic paragraph selector.
func policyFor(domain string) Policy {
	if p, ok := domainPolicies[domain]; ok {
		return p
	}
	return defaultPolicy
}
