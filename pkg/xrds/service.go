package xrds

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"strings"
)

// URI is one URI element of a service, with its optional priority.
type URI struct {
	Value       string
	priority    int
	hasPriority bool
}

// Priority returns the URI priority and whether one was set.
func (u URI) Priority() (int, bool) {
	return u.priority, u.hasPriority
}

func (u URI) String() string {
	return u.Value
}

// Extension is a child element of a Service other than Type and URI, for
// example an openid:Delegate or xrd:LocalID element.
type Extension struct {
	Space string // namespace URI
	Local string
	Value string
}

// Service is one Service element of an XRDS document. It is built once at
// parse time and is read-only afterwards.
type Service struct {
	types       []string
	uris        []URI
	extensions  []Extension
	priority    int
	hasPriority bool
	index       int
	namespaces  *Registry
}

// Types returns the service types in document order.
func (s *Service) Types() []string {
	return slices.Clone(s.types)
}

// HasType reports whether the service advertises serviceType.
func (s *Service) HasType(serviceType string) bool {
	return slices.Contains(s.types, serviceType)
}

// URIs returns the service URIs in document order.
func (s *Service) URIs() []URI {
	return slices.Clone(s.uris)
}

// SortedURIs returns the service URIs ordered by ascending URI priority.
// URIs without a priority follow all prioritized ones, in document order.
func (s *Service) SortedURIs() []URI {
	sorted := slices.Clone(s.uris)
	slices.SortStableFunc(sorted, func(a, b URI) int {
		return comparePriority(a.priority, a.hasPriority, b.priority, b.hasPriority)
	})
	return sorted
}

// Priority returns the service priority and whether one was set. Lower
// values are preferred.
func (s *Service) Priority() (int, bool) {
	return s.priority, s.hasPriority
}

// Extensions returns the non-Type, non-URI child elements in document order.
func (s *Service) Extensions() []Extension {
	return slices.Clone(s.extensions)
}

// Values returns the text of the child elements named by qname, a
// "prefix:Local" name whose prefix is resolved through the document's
// namespace registry. An unprefixed name matches the xrd namespace.
func (s *Service) Values(qname string) ([]string, error) {
	prefix, local, found := strings.Cut(qname, ":")
	if !found {
		prefix, local = PrefixXRD, qname
	}
	space, ok := s.namespaces.Lookup(prefix)
	if !ok {
		return nil, fmt.Errorf("%w: unbound prefix %q", ErrInvalidNamespace, prefix)
	}

	var values []string
	switch {
	case space == NsXRD && local == "Type":
		values = s.Types()
	case space == NsXRD && local == "URI":
		for _, u := range s.uris {
			values = append(values, u.Value)
		}
	default:
		for _, ext := range s.extensions {
			if ext.Space == space && ext.Local == local {
				values = append(values, ext.Value)
			}
		}
	}
	return values, nil
}

// ServiceList is the priority-ordered set of services of a document.
// Iterating it does not consume it.
type ServiceList struct {
	services []*Service
}

func newServiceList(services []*Service) *ServiceList {
	sorted := slices.Clone(services)
	slices.SortStableFunc(sorted, func(a, b *Service) int {
		if c := comparePriority(a.priority, a.hasPriority, b.priority, b.hasPriority); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})
	return &ServiceList{services: sorted}
}

// Len returns the number of services.
func (l *ServiceList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.services)
}

// At returns the i'th service in priority order.
func (l *ServiceList) At(i int) *Service {
	return l.services[i]
}

// Services returns the services in priority order.
func (l *ServiceList) Services() []*Service {
	if l == nil {
		return nil
	}
	return slices.Clone(l.services)
}

// All iterates the services in priority order.
func (l *ServiceList) All() iter.Seq2[int, *Service] {
	return func(yield func(int, *Service) bool) {
		if l == nil {
			return
		}
		for i, s := range l.services {
			if !yield(i, s) {
				return
			}
		}
	}
}

// ByType returns the services advertising at least one of types, keeping
// priority order.
func (l *ServiceList) ByType(types ...string) *ServiceList {
	filtered := &ServiceList{}
	for _, s := range l.Services() {
		if slices.ContainsFunc(types, s.HasType) {
			filtered.services = append(filtered.services, s)
		}
	}
	return filtered
}

// comparePriority orders explicit priorities ascending, ahead of absent ones.
func comparePriority(a int, hasA bool, b int, hasB bool) int {
	switch {
	case hasA && hasB:
		return cmp.Compare(a, b)
	case hasA:
		return -1
	case hasB:
		return 1
	}
	return 0
}
