package localization

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNegotiator(t *testing.T) *Negotiator {
	t.Helper()
	n, err := NewNegotiator([]string{"en-US", "de-DE", "fr-FR"}, "en-US")
	require.NoError(t, err)
	return n
}

func TestNewNegotiator_Errors(t *testing.T) {
	_, err := NewNegotiator(nil, "en-US")
	assert.Error(t, err)

	_, err = NewNegotiator([]string{"en-US"}, "de-DE")
	assert.Error(t, err)

	_, err = NewNegotiator([]string{"not a tag!"}, "en-US")
	assert.Error(t, err)
}

func TestNegotiate(t *testing.T) {
	n := newTestNegotiator(t)

	tests := []struct {
		name   string
		cookie string
		accept string
		want   string
	}{
		{"default", "", "", "en-US"},
		{"cookie wins", "de-DE", "fr-FR", "de-DE"},
		{"unsupported cookie ignored", "ja-JP", "fr-FR", "fr-FR"},
		{"accept-language match", "", "fr-FR,fr;q=0.9,en;q=0.5", "fr-FR"},
		{"accept-language base match", "", "de", "de-DE"},
		{"accept-language no match", "", "ja-JP", "en-US"},
		{"malformed accept-language", "", ";;;", "en-US"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Negotiate(tt.cookie, tt.accept))
		})
	}
}

func TestFromRequest(t *testing.T) {
	n := newTestNegotiator(t)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Accept-Language", "de-DE")
	assert.Equal(t, "de-DE", n.FromRequest(r))

	r.AddCookie(Cookie("fr-FR", false))
	assert.Equal(t, "fr-FR", n.FromRequest(r))
}

func TestCultures(t *testing.T) {
	n := newTestNegotiator(t)
	cultures := n.Cultures()
	require.Len(t, cultures, 3)
	assert.Equal(t, "en-US", cultures[0].Tag)
	assert.NotEmpty(t, cultures[1].Name)
	assert.Equal(t, "en-US", n.Default())
}

func TestContext(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
	assert.Equal(t, "de-DE", FromContext(WithCulture(context.Background(), "de-DE")))
}
