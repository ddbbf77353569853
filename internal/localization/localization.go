// Package localization picks the UI culture for a request.
//
// The culture comes from the culture cookie when it names a supported
// culture, then from the Accept-Language header, then from the configured
// default.
package localization

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// CookieName holds the culture chosen in the culture picker.
const CookieName = "studio_culture"

// Culture is a supported UI culture.
type Culture struct {
	// Tag is the BCP 47 tag (e.g. "en-US").
	Tag string `json:"tag"`
	// Name is the culture's name in its own language (e.g. "Deutsch").
	Name string `json:"name"`
}

// Negotiator matches requested cultures against the supported set.
type Negotiator struct {
	supported []language.Tag
	fallback  language.Tag
	matcher   language.Matcher
}

// NewNegotiator builds a negotiator. defaultCulture must be one of
// supported; it is moved to the front so the matcher falls back to it.
func NewNegotiator(supported []string, defaultCulture string) (*Negotiator, error) {
	if len(supported) == 0 {
		return nil, fmt.Errorf("at least one supported culture is required")
	}

	fallback, err := language.Parse(defaultCulture)
	if err != nil {
		return nil, fmt.Errorf("invalid default culture %q: %w", defaultCulture, err)
	}

	tags := []language.Tag{fallback}
	found := false
	for _, s := range supported {
		tag, err := language.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid culture %q: %w", s, err)
		}
		if tag == fallback {
			found = true
			continue
		}
		tags = append(tags, tag)
	}
	if !found {
		return nil, fmt.Errorf("default culture %q is not in the supported cultures", defaultCulture)
	}

	return &Negotiator{
		supported: tags,
		fallback:  fallback,
		matcher:   language.NewMatcher(tags),
	}, nil
}

// Default returns the default culture tag.
func (n *Negotiator) Default() string {
	return n.fallback.String()
}

// Cultures lists the supported cultures, default first.
func (n *Negotiator) Cultures() []Culture {
	out := make([]Culture, len(n.supported))
	for i, tag := range n.supported {
		name := display.Self.Name(tag)
		if name == "" {
			name = tag.String()
		}
		out[i] = Culture{Tag: tag.String(), Name: name}
	}
	return out
}

// IsSupported reports whether culture exactly names a supported culture.
func (n *Negotiator) IsSupported(culture string) bool {
	tag, err := language.Parse(culture)
	if err != nil {
		return false
	}
	for _, s := range n.supported {
		if s == tag {
			return true
		}
	}
	return false
}

// Negotiate resolves the culture from a cookie value and an
// Accept-Language header.
func (n *Negotiator) Negotiate(cookie, acceptLanguage string) string {
	if cookie != "" && n.IsSupported(cookie) {
		tag, _ := language.Parse(cookie)
		return tag.String()
	}

	if acceptLanguage != "" {
		requested, _, err := language.ParseAcceptLanguage(acceptLanguage)
		if err == nil && len(requested) > 0 {
			_, index, confidence := n.matcher.Match(requested...)
			if confidence != language.No {
				return n.supported[index].String()
			}
		}
	}

	return n.fallback.String()
}

// FromRequest negotiates the culture for r.
func (n *Negotiator) FromRequest(r *http.Request) string {
	var cookie string
	if c, err := r.Cookie(CookieName); err == nil {
		cookie = c.Value
	}
	return n.Negotiate(cookie, r.Header.Get("Accept-Language"))
}

// Cookie returns the cookie that stores culture for a year.
func Cookie(culture string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    culture,
		Path:     "/",
		Expires:  time.Now().AddDate(1, 0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

type cultureKey struct{}

// WithCulture returns a context carrying the request culture.
func WithCulture(ctx context.Context, culture string) context.Context {
	return context.WithValue(ctx, cultureKey{}, culture)
}

// FromContext returns the request culture, or "" when unset.
func FromContext(ctx context.Context) string {
	culture, _ := ctx.Value(cultureKey{}).(string)
	return culture
}
