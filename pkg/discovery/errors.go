package discovery

import (
	"errors"

	"github.com/sirosfoundation/go-yadis/pkg/transport"
	"github.com/sirosfoundation/go-yadis/pkg/xrds"
	"github.com/sirosfoundation/go-yadis/pkg/xri"
)

// Discovery errors. Every discovery failure matches exactly one
// of these with errors.Is.
var (
	// ErrInvalidIdentifier is returned for input that is neither a URI nor an XRI
	ErrInvalidIdentifier = xri.ErrInvalidIdentifier
	// ErrXRITranslationFailed is returned when an XRI translates to an invalid URI
	ErrXRITranslationFailed = xri.ErrTranslationFailed
	// ErrTransport is returned when an exchange failed or returned a non-2xx status
	ErrTransport = transport.ErrTransport
	// ErrInvalidDiscoveredURI is returned when a location header or meta hint is not a valid URI
	ErrInvalidDiscoveredURI = errors.New("invalid URI found during discovery")
	// ErrNoValidDocument is returned when the responses did not lead to an XRDS document
	ErrNoValidDocument = errors.New("could not locate a valid XRDS document")
	// ErrMalformedDocument is returned when the XRDS document cannot be parsed
	ErrMalformedDocument = xrds.ErrMalformedDocument
	// ErrNotXRDSResponse is returned when a canonical ID lookup is not answered with XRDS
	ErrNotXRDSResponse = xri.ErrNotXRDSResponse
	// ErrTooManyRedirects is returned when a lenient redirect chain exceeds the configured bound
	ErrTooManyRedirects = errors.New("too many discovery redirects")
)
