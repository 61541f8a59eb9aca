// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package goyadis implements Yadis 1.0 service discovery with XRI support.

# Overview

go-yadis locates the XRDS document that describes the services of an
identifier (a URL, or an XRI such as =example) and returns the services in
priority order. It is the discovery layer used by OpenID and similar
protocols.

# Specifications Implemented

  - Yadis Specification 1.0: http://yadis.org/papers/yadis-v1.0.pdf
  - Extensible Resource Descriptor Sequence (XRDS), XRI Resolution 2.0:
    http://docs.oasis-open.org/xri/2.0/specs/xri-resolution-V2.0.html

# Package Structure

	github.com/sirosfoundation/go-yadis/pkg/discovery - Discovery sessions, response classification
	github.com/sirosfoundation/go-yadis/pkg/xrds      - XRDS parsing, services, namespace registry
	github.com/sirosfoundation/go-yadis/pkg/xri       - XRI detection, proxy translation, canonical IDs
	github.com/sirosfoundation/go-yadis/pkg/transport - HTTP(S) GET transport
	github.com/sirosfoundation/go-yadis/cmd/yadis     - Command line tool

# Quick Start

	client, _ := transport.NewClient(nil)
	d, _ := discovery.NewDiscoverer(client)

	result, err := d.Discover(ctx, "https://example.com/alice")
	if err != nil {
	    log.Fatal(err)
	}
	for _, svc := range result.Services.ByType("http://specs.openid.net/auth/2.0/signon").All() {
	    fmt.Println(svc.URIs())
	}

# License

BSD-2-Clause License
*/
package goyadis
