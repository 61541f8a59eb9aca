package discovery

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/sirosfoundation/go-yadis/internal/uri"
	"github.com/sirosfoundation/go-yadis/pkg/transport"
	"github.com/sirosfoundation/go-yadis/pkg/xrds"
)

// Header and meta http-equiv names pointing at the XRDS document
const (
	HeaderXRDSLocation  = "X-XRDS-Location"
	HeaderYadisLocation = "X-Yadis-Location"
)

// htmlContentTypes are the media types searched for a meta hint, HTML first
var htmlContentTypes = []string{
	"text/html",
	"application/xhtml+xml",
	"application/xml",
	"text/xml",
}

// Kind is the follow-up action a response calls for
type Kind int

const (
	// KindUnrecognized means the response neither is nor points to an XRDS document
	KindUnrecognized Kind = iota
	// KindLocationHeader means an X-XRDS-Location header names the document
	KindLocationHeader
	// KindMetaHint means an HTML meta http-equiv element names the document
	KindMetaHint
	// KindTerminalDocument means the body is the XRDS document
	KindTerminalDocument
)

func (k Kind) String() string {
	switch k {
	case KindLocationHeader:
		return "location-header"
	case KindMetaHint:
		return "meta-hint"
	case KindTerminalDocument:
		return "xrds-document"
	default:
		return "unrecognized"
	}
}

// Classification is the result of classifying one response
type Classification struct {
	Kind Kind
	// Location is the discovered URI for KindLocationHeader and KindMetaHint
	Location string
}

// Classify decides what a response means for discovery. The checks run in
// the order required by the Yadis protocol and the first match wins:
//
//  1. an X-XRDS-Location (or X-Yadis-Location) header
//  2. a meta http-equiv hint in an HTML document
//  3. an application/xrds+xml content type
//
// A header or hint whose value is not a valid URI fails with
// ErrInvalidDiscoveredURI instead of falling through.
func Classify(ex *transport.Exchange) (Classification, error) {
	if location, ok := locationHeader(ex); ok {
		if !uri.Valid(location) {
			return Classification{}, fmt.Errorf("%w: location header %q from %s", ErrInvalidDiscoveredURI, location, ex.URL)
		}
		return Classification{Kind: KindLocationHeader, Location: location}, nil
	}

	if location, ok := metaHint(ex); ok {
		if !uri.Valid(location) {
			return Classification{}, fmt.Errorf("%w: meta http-equiv content %q from %s", ErrInvalidDiscoveredURI, location, ex.URL)
		}
		return Classification{Kind: KindMetaHint, Location: location}, nil
	}

	if isXRDSContentType(ex) {
		return Classification{Kind: KindTerminalDocument}, nil
	}

	return Classification{Kind: KindUnrecognized}, nil
}

func locationHeader(ex *transport.Exchange) (string, bool) {
	for _, name := range []string{HeaderXRDSLocation, HeaderYadisLocation} {
		if v := strings.TrimSpace(ex.HeaderValue(name)); v != "" {
			return v, true
		}
	}
	return "", false
}

func isXRDSContentType(ex *transport.Exchange) bool {
	return strings.Contains(strings.ToLower(ex.ContentType()), xrds.MediaType)
}

// metaHint returns the content of the last matching meta element in the
// first head element. ok is false when the response is not HTML or carries
// no matching meta element.
func metaHint(ex *transport.Exchange) (location string, ok bool) {
	if !slices.Contains(htmlContentTypes, ex.MediaType()) {
		return "", false
	}

	doc, err := html.Parse(bytes.NewReader(ex.Body))
	if err != nil {
		return "", false
	}
	head := findElement(doc, atom.Head)
	if head == nil {
		return "", false
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Meta {
			equiv := attr(n, "http-equiv")
			if strings.EqualFold(equiv, HeaderXRDSLocation) || strings.EqualFold(equiv, HeaderYadisLocation) {
				location, ok = strings.TrimSpace(attr(n, "content")), true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(head)
	return location, ok
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
