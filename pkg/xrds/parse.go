package xrds

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// MediaType is the content type of an XRDS document
const MediaType = "application/xrds+xml"

// ErrMalformedDocument is returned when a body is not a well-formed XRDS document
var ErrMalformedDocument = errors.New("malformed XRDS document")

// Document is a parsed XRDS document together with the namespace registry
// used to interpret it.
type Document struct {
	namespaces  *Registry
	services    *ServiceList
	canonicalID string
	hasCanonID  bool
}

// Services returns the priority-ordered services of the final XRD.
func (d *Document) Services() *ServiceList {
	return d.services
}

// CanonicalID returns the last CanonicalID element of the document. The
// boolean is false when the document carries none, which is a valid outcome.
func (d *Document) CanonicalID() (string, bool) {
	return d.canonicalID, d.hasCanonID
}

// Registry returns the namespace registry the document was parsed with.
func (d *Document) Registry() *Registry {
	return d.namespaces
}

// Parse parses an XRDS document. The tree is walked once: every Service of
// the last XRD element is materialized into a Service value, and the last
// CanonicalID anywhere in the document is recorded.
//
// A nil registry is replaced by NewRegistry(). The registry is cloned so
// that later additions do not affect the document.
func Parse(data []byte, namespaces *Registry) (*Document, error) {
	if namespaces == nil {
		namespaces = NewRegistry()
	}
	namespaces = namespaces.Clone()

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedDocument)
	}

	var xrd *etree.Element
	switch {
	case isElement(root, NsXRDS, "XRDS"):
		for _, child := range root.ChildElements() {
			if isElement(child, NsXRD, "XRD") {
				xrd = child
			}
		}
	case isElement(root, NsXRD, "XRD"):
		xrd = root
	default:
		return nil, fmt.Errorf("%w: unexpected root element {%s}%s", ErrMalformedDocument, root.NamespaceURI(), root.Tag)
	}

	result := &Document{namespaces: namespaces}

	var services []*Service
	if xrd != nil {
		for _, child := range xrd.ChildElements() {
			if isElement(child, NsXRD, "Service") {
				services = append(services, parseService(child, len(services), namespaces))
			}
		}
	}
	result.services = newServiceList(services)

	walk(root, func(e *etree.Element) {
		if isElement(e, NsXRD, "CanonicalID") {
			result.canonicalID = strings.TrimSpace(e.Text())
			result.hasCanonID = true
		}
	})

	return result, nil
}

func parseService(e *etree.Element, index int, namespaces *Registry) *Service {
	s := &Service{index: index, namespaces: namespaces}
	s.priority, s.hasPriority = parsePriority(e)

	for _, child := range e.ChildElements() {
		value := strings.TrimSpace(child.Text())
		switch {
		case isElement(child, NsXRD, "Type"):
			s.types = append(s.types, value)
		case isElement(child, NsXRD, "URI"):
			u := URI{Value: value}
			u.priority, u.hasPriority = parsePriority(child)
			s.uris = append(s.uris, u)
		default:
			s.extensions = append(s.extensions, Extension{
				Space: child.NamespaceURI(),
				Local: child.Tag,
				Value: value,
			})
		}
	}
	return s
}

// parsePriority reads the priority attribute. Missing, non-numeric and
// negative values all mean "no priority".
func parsePriority(e *etree.Element) (int, bool) {
	raw := e.SelectAttrValue("priority", "")
	if raw == "" {
		return 0, false
	}
	p, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || p < 0 {
		return 0, false
	}
	return p, true
}

func isElement(e *etree.Element, space, local string) bool {
	return e.Tag == local && e.NamespaceURI() == space
}

func walk(e *etree.Element, fn func(*etree.Element)) {
	fn(e)
	for _, child := range e.ChildElements() {
		walk(child, fn)
	}
}
