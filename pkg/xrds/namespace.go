package xrds

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/sirosfoundation/go-yadis/internal/uri"
)

// Namespace constants for XRDS documents
const (
	// NsXRDS is the namespace of the XRDS wrapper element
	NsXRDS = "xri://$xrds"
	// NsXRD is the XRD 2.0 namespace of XRD, Service, Type, URI and CanonicalID
	NsXRD = "xri://$xrd*($v*2.0)"

	// PrefixXRDS is the reserved prefix bound to NsXRDS
	PrefixXRDS = "xrds"
	// PrefixXRD is the reserved prefix bound to NsXRD
	PrefixXRD = "xrd"
)

// Registry errors
var (
	// ErrReservedNamespace is returned when redefining the xrds or xrd prefix
	ErrReservedNamespace = errors.New("the xrds and xrd namespaces may not be redefined")
	// ErrNamespaceExists is returned when a prefix is already bound
	ErrNamespaceExists = errors.New("namespace prefix already bound")
	// ErrInvalidNamespace is returned for an empty prefix or an invalid namespace URI
	ErrInvalidNamespace = errors.New("invalid namespace")
)

// Registry holds the namespace prefix bindings used to interpret an XRDS
// document. The xrds and xrd bindings are always present and fixed.
//
// A Registry is normally configured once and then shared read-only between
// discovery calls; the internal lock only keeps concurrent misuse from
// corrupting it.
type Registry struct {
	mu         sync.RWMutex
	namespaces map[string]string
}

// NewRegistry creates a registry holding the two reserved bindings.
func NewRegistry() *Registry {
	return &Registry{
		namespaces: map[string]string{
			PrefixXRDS: NsXRDS,
			PrefixXRD:  NsXRD,
		},
	}
}

// Add binds prefix to namespaceURI. Bindings are never overwritten: the
// reserved prefixes fail with ErrReservedNamespace and any other prefix that
// is already bound fails with ErrNamespaceExists.
func (r *Registry) Add(prefix, namespaceURI string) error {
	if prefix == PrefixXRDS || prefix == PrefixXRD {
		return fmt.Errorf("%w: %s", ErrReservedNamespace, prefix)
	}
	if prefix == "" || namespaceURI == "" {
		return fmt.Errorf("%w: prefix and URI must be non-empty", ErrInvalidNamespace)
	}
	if !uri.ValidNamespace(namespaceURI) {
		return fmt.Errorf("%w: %q is not an absolute URI", ErrInvalidNamespace, namespaceURI)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.namespaces[prefix]; ok {
		return fmt.Errorf("%w: %s=%s", ErrNamespaceExists, prefix, existing)
	}
	r.namespaces[prefix] = namespaceURI
	return nil
}

// AddAll binds every entry of namespaces, in prefix order, stopping at the
// first failure.
func (r *Registry) AddAll(namespaces map[string]string) error {
	for _, prefix := range slices.Sorted(maps.Keys(namespaces)) {
		if err := r.Add(prefix, namespaces[prefix]); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the namespace URI bound to prefix.
func (r *Registry) Lookup(prefix string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ns, ok := r.namespaces[prefix]
	return ns, ok
}

// Namespaces returns a copy of all bindings.
func (r *Registry) Namespaces() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.namespaces)
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	return &Registry{namespaces: r.Namespaces()}
}
