package identity

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/feedsift/feedsift/internal/domain"
	"github.com/feedsift/feedsift/internal/logger"
)

// Kind names the strategy that produced an identity value.
type Kind string

const (
	KindGUID      Kind = "guid"
	KindLink      Kind = "link"
	KindComposite Kind = "composite"
)

// Identity is the stable identifier derived for one feed entry. The same
// entry yields the same Identity on every run.
type Identity struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

// trackingParams are query parameters stripped during link normalization.
// The set is fixed; unlisted parameters are always preserved.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_content":  true,
	"utm_term":     true,
	"at_medium":    true,
	"at_campaign":  true,
	"at_custom1":   true,
	"at_custom2":   true,
	"at_custom3":   true,
	"fbclid":       true,
	"gclid":        true,
	"msclkid":      true,
	"mc_cid":       true,
	"mc_eid":       true,
	"ref":          true,
	"source":       true,
	"campaign":     true,
}

const (
	maxTitleRunes   = 100
	datePrefixRunes = 10
	untitledSlug    = "untitled"
)

// Resolver derives identities for entries. Derivation is deterministic;
// the logger only ever sees normalization failures.
type Resolver struct {
	log logger.Logger
}

// NewResolver returns a Resolver. A nil logger is replaced with a no-op one.
func NewResolver(log logger.Logger) *Resolver {
	return &Resolver{log: logger.Ensure(log)}
}

// NormalizeLink canonicalizes a URL for identity comparison: known tracking
// parameters are removed, the fragment is dropped, and the remaining query
// is re-encoded sorted by key. Scheme, host, and path are preserved.
//
// An empty input stays empty. An input that cannot be parsed is returned
// unchanged; the failure is logged and never propagated.
func (r *Resolver) NormalizeLink(raw string) string {
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		r.log.WarnObj("link normalization failed", "link_error", map[string]any{
			"link":  raw,
			"error": err.Error(),
		})
		return raw
	}

	q := u.Query()
	for name := range q {
		if trackingParams[name] {
			q.Del(name)
		}
	}
	u.RawQuery = q.Encode()
	u.Fragment = ""

	return u.String()
}

// Resolve derives the identity for an entry. Priority order, first hit wins:
//
//  1. a non-empty GUID, used verbatim;
//  2. a non-empty link whose normalized form is non-empty;
//  3. a composite of the title slug and the first ten characters of the
//     raw published string, joined by "|". Entries without a title use
//     "untitled" as the slug; entries without a published date keep an
//     empty prefix.
//
// Composite identities collide for same-titled items published the same
// day; that is accepted.
func (r *Resolver) Resolve(e domain.Entry) Identity {
	if e.GUID != "" {
		return Identity{Kind: KindGUID, Value: e.GUID}
	}

	if e.Link != "" {
		if normalized := r.NormalizeLink(e.Link); normalized != "" {
			return Identity{Kind: KindLink, Value: normalized}
		}
	}

	title := e.Title
	if title == "" {
		title = untitledSlug
	}
	slug := truncateRunes(strings.TrimSpace(strings.ToLower(title)), maxTitleRunes)
	datePrefix := truncateRunes(e.Published, datePrefixRunes)

	return Identity{Kind: KindComposite, Value: slug + "|" + datePrefix}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
