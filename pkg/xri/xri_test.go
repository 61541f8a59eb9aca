package xri

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/sirosfoundation/go-yadis/pkg/transport"
	"github.com/sirosfoundation/go-yadis/pkg/xrds"
)

func newTestResolver(t *testing.T, fetcher transport.Fetcher, opts ...Option) *Resolver {
	t.Helper()
	r, err := NewResolver(fetcher, opts...)
	require.NoError(t, err)
	return r
}

func TestNewResolverProxy(t *testing.T) {
	r := newTestResolver(t, nil)
	assert.Equal(t, "http://xri.net/", r.Proxy())

	r = newTestResolver(t, nil, WithProxy("https://proxy.example.com/"))
	assert.Equal(t, "https://proxy.example.com/", r.Proxy())

	_, err := NewResolver(nil, WithProxy("not a proxy"))
	assert.ErrorIs(t, err, ErrInvalidProxy)
}

func TestIsXRI(t *testing.T) {
	for _, id := range []string{"=self", "$dns*x", "!1000", "@example", "+tag", "xri://=self", "XRI://@corp"} {
		assert.True(t, IsXRI(id), id)
	}
	for _, id := range []string{"", "http://example.com", "example.com", "#frag", "xri:/broken"} {
		assert.False(t, IsXRI(id), id)
	}
}

func TestResolve(t *testing.T) {
	r := newTestResolver(t, nil)

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"http URI unchanged", "http://padraic.astrumfutura.com", "http://padraic.astrumfutura.com", nil},
		{"https URI unchanged", "https://example.com/id?x=1", "https://example.com/id?x=1", nil},
		{"bare i-name", "=self*shupp", "http://xri.net/=self*shupp", nil},
		{"community", "@example*user", "http://xri.net/@example*user", nil},
		{"xri scheme", "xri://=self", "http://xri.net/=self", nil},
		{"xri scheme any case", "XRI://@corp", "http://xri.net/@corp", nil},
		{"ip prefix", "xri://$ip*10.0.0.1", "http://xri.net/10.0.0.1", nil},
		{"dns prefix", "xri://$dns*example.com", "http://xri.net/example.com", nil},
		{"dns prefix any case", "xri://$DNS*example.com", "http://xri.net/example.com", nil},
		{"plain word", "example", "", ErrInvalidIdentifier},
		{"empty", "", "", ErrInvalidIdentifier},
		{"relative path", "/openid", "", ErrInvalidIdentifier},
		{"xri with whitespace", "=self shupp", "", ErrTranslationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveNoNetworkForURIs(t *testing.T) {
	fetcher := transport.FetcherFunc(func(ctx context.Context, req *transport.Request) (*transport.Exchange, error) {
		t.Fatalf("unexpected fetch of %s", req.URL)
		return nil, nil
	})
	r := newTestResolver(t, fetcher)

	_, err := r.Resolve("=self")
	require.NoError(t, err)
	_, err = r.Resolve("http://example.com/")
	require.NoError(t, err)
}

func TestToURIRejectsNonXRI(t *testing.T) {
	r := newTestResolver(t, nil)
	_, err := r.ToURI("http://example.com/")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestResolveURIPassThroughProperty(t *testing.T) {
	r := newTestResolver(t, nil)

	rapid.Check(t, func(t *rapid.T) {
		scheme := rapid.SampledFrom([]string{"http", "https"}).Draw(t, "scheme")
		host := rapid.StringMatching(`[a-z][a-z0-9-]{0,15}\.(com|org|net)`).Draw(t, "host")
		path := rapid.StringMatching(`(/[a-zA-Z0-9._~-]{0,10}){0,3}`).Draw(t, "path")
		id := scheme + "://" + host + path

		got, err := r.Resolve(id)
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", id, err)
		}
		if got != id {
			t.Fatalf("Resolve(%q) = %q, want unchanged", id, got)
		}
	})
}

func TestToURIPrefixStrippingProperty(t *testing.T) {
	r := newTestResolver(t, nil, WithProxy("https://proxy.example.org/"))

	rapid.Check(t, func(t *rapid.T) {
		prefix := rapid.SampledFrom([]string{"xri://$ip*", "xri://$dns*", "xri://"}).Draw(t, "prefix")
		rest := rapid.StringMatching(`[=@][a-z0-9.*]{1,20}`).Draw(t, "rest")

		got, err := r.ToURI(prefix + rest)
		if err != nil {
			t.Fatalf("ToURI() error = %v", err)
		}
		if got != "https://proxy.example.org/"+rest {
			t.Fatalf("ToURI(%q) = %q, want prefix of length %d stripped", prefix+rest, got, len(prefix))
		}
	})
}

const canonicalXRDS = `<?xml version="1.0" encoding="UTF-8"?>
<xrds:XRDS xmlns:xrds="xri://$xrds" xmlns="xri://$xrd*($v*2.0)">
  <XRD>
    <Query>*self</Query>
    <CanonicalID>=!91F2.8153.F600.AE24</CanonicalID>
    <CanonicalID>=!91F2.8153.F600.AE24!1234</CanonicalID>
    <Service priority="10">
      <Type>http://specs.openid.net/auth/2.0/signon</Type>
      <URI>https://linksafe.ezibroker.net/server/</URI>
    </Service>
  </XRD>
</xrds:XRDS>`

func TestCanonicalID(t *testing.T) {
	var gotPath, gotAccept, gotR, gotT string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		gotR = r.URL.Query().Get("_xrd_r")
		gotT = r.URL.Query().Get("_xrd_t")
		w.Header().Set("Content-Type", "application/xrds+xml; charset=UTF-8")
		w.Write([]byte(canonicalXRDS))
	}))
	defer server.Close()

	client, err := transport.NewClient(nil)
	require.NoError(t, err)
	r := newTestResolver(t, client, WithProxy(server.URL+"/"))

	id, ok, err := r.CanonicalID(context.Background(), "=self*shupp", "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "=!91F2.8153.F600.AE24!1234", id)
	assert.Equal(t, "/=self*shupp", gotPath)
	assert.Equal(t, "application/xrds+xml", gotAccept)
	assert.Equal(t, "application/xrds+xml;sep=false", gotR)
	assert.Empty(t, gotT)

	_, _, err = r.CanonicalID(context.Background(), "xri://=self*shupp", "http://specs.openid.net/auth/2.0/signon")
	require.NoError(t, err)
	assert.Equal(t, "application/xrds+xml", gotR)
	assert.Equal(t, "http://specs.openid.net/auth/2.0/signon", gotT)
}

func exchangeFetcher(ex *transport.Exchange) transport.Fetcher {
	return transport.FetcherFunc(func(ctx context.Context, req *transport.Request) (*transport.Exchange, error) {
		ex.URL = req.URL
		return ex, nil
	})
}

func TestCanonicalIDAbsent(t *testing.T) {
	body := `<xrds:XRDS xmlns:xrds="xri://$xrds" xmlns="xri://$xrd*($v*2.0)"><XRD/></xrds:XRDS>`
	r := newTestResolver(t, exchangeFetcher(&transport.Exchange{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {xrds.MediaType}},
		Body:       []byte(body),
	}))

	id, ok, err := r.CanonicalID(context.Background(), "=nobody", "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestCanonicalIDErrors(t *testing.T) {
	tests := []struct {
		name    string
		ex      *transport.Exchange
		wantErr error
	}{
		{
			name: "not xrds",
			ex: &transport.Exchange{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": {"text/html"}},
				Body:       []byte("<html></html>"),
			},
			wantErr: ErrNotXRDSResponse,
		},
		{
			name: "malformed",
			ex: &transport.Exchange{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": {xrds.MediaType}},
				Body:       []byte("<xrds:XRDS"),
			},
			wantErr: xrds.ErrMalformedDocument,
		},
		{
			name: "server error",
			ex: &transport.Exchange{
				StatusCode: http.StatusNotFound,
				Body:       []byte("no such i-name"),
			},
			wantErr: transport.ErrTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(t, exchangeFetcher(tt.ex))
			_, ok, err := r.CanonicalID(context.Background(), "=self", "")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, ok)
		})
	}

	t.Run("not an xri", func(t *testing.T) {
		r := newTestResolver(t, exchangeFetcher(&transport.Exchange{}))
		_, _, err := r.CanonicalID(context.Background(), "http://example.com/", "")
		assert.ErrorIs(t, err, ErrInvalidIdentifier)
	})

	t.Run("fetch failure", func(t *testing.T) {
		boom := errors.New("boom")
		r := newTestResolver(t, transport.FetcherFunc(func(ctx context.Context, req *transport.Request) (*transport.Exchange, error) {
			return nil, &transport.Error{URL: req.URL, Err: boom}
		}))
		_, _, err := r.CanonicalID(context.Background(), "=self", "")
		assert.ErrorIs(t, err, transport.ErrTransport)
		assert.ErrorIs(t, err, boom)
		assert.True(t, strings.Contains(err.Error(), "xri.net"))
	})
}
