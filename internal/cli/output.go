package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sirosfoundation/go-yadis/pkg/discovery"
	"github.com/sirosfoundation/go-yadis/pkg/xrds"
)

// Output formats
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type uriView struct {
	URI      string `json:"uri" yaml:"uri"`
	Priority *int   `json:"priority,omitempty" yaml:"priority,omitempty"`
}

type serviceView struct {
	Priority   *int              `json:"priority,omitempty" yaml:"priority,omitempty"`
	Types      []string          `json:"types" yaml:"types"`
	URIs       []uriView         `json:"uris" yaml:"uris"`
	Extensions map[string]string `json:"extensions,omitempty" yaml:"extensions,omitempty"`
}

type resultView struct {
	Identifier  string        `json:"identifier" yaml:"identifier"`
	URI         string        `json:"uri" yaml:"uri"`
	DocumentURI string        `json:"documentUri" yaml:"documentUri"`
	CanonicalID string        `json:"canonicalId,omitempty" yaml:"canonicalId,omitempty"`
	Services    []serviceView `json:"services" yaml:"services"`
}

func newResultView(result *discovery.Result, services *xrds.ServiceList) resultView {
	view := resultView{
		Identifier:  result.Identifier,
		URI:         result.URI,
		DocumentURI: result.DocumentURI,
		Services:    []serviceView{},
	}
	if id, ok := result.Document.CanonicalID(); ok {
		view.CanonicalID = id
	}
	for _, svc := range services.All() {
		sv := serviceView{
			Priority: optionalInt(svc.Priority()),
			Types:    svc.Types(),
			URIs:     []uriView{},
		}
		for _, u := range svc.SortedURIs() {
			sv.URIs = append(sv.URIs, uriView{URI: u.Value, Priority: optionalInt(u.Priority())})
		}
		for _, ext := range svc.Extensions() {
			if sv.Extensions == nil {
				sv.Extensions = make(map[string]string)
			}
			sv.Extensions[ext.Space+" "+ext.Local] = ext.Value
		}
		view.Services = append(view.Services, sv)
	}
	return view
}

func optionalInt(v int, ok bool) *int {
	if !ok {
		return nil
	}
	return &v
}

func writeResult(w io.Writer, format string, view resultView) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	case formatText:
		return writeText(w, view)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func writeText(w io.Writer, view resultView) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Identifier:   %s\n", view.Identifier)
	fmt.Fprintf(&b, "URI:          %s\n", view.URI)
	fmt.Fprintf(&b, "Document:     %s\n", view.DocumentURI)
	if view.CanonicalID != "" {
		fmt.Fprintf(&b, "Canonical ID: %s\n", view.CanonicalID)
	}
	fmt.Fprintf(&b, "Services:     %d\n", len(view.Services))
	for i, svc := range view.Services {
		priority := "-"
		if svc.Priority != nil {
			priority = fmt.Sprint(*svc.Priority)
		}
		fmt.Fprintf(&b, "\n[%d] priority %s\n", i, priority)
		for _, t := range svc.Types {
			fmt.Fprintf(&b, "    type %s\n", t)
		}
		for _, u := range svc.URIs {
			fmt.Fprintf(&b, "    uri  %s\n", u.URI)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
