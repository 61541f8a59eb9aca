// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package xrds models XRDS service descriptor documents.

An XRDS document wraps one or more XRD elements; the last XRD describes the
services offered for the identifier that was resolved:

	<xrds:XRDS xmlns:xrds="xri://$xrds" xmlns="xri://$xrd*($v*2.0)">
	  <XRD>
	    <Service priority="0">
	      <Type>http://specs.openid.net/auth/2.0/server</Type>
	      <URI priority="10">https://openid.example.com/server</URI>
	    </Service>
	  </XRD>
	</xrds:XRDS>

# Namespaces

Element names are matched by namespace URI, never by the prefix used in the
document. A [Registry] binds the prefixes used for lookups; xrds and xrd are
always bound and cannot be redefined. Extension elements are read through the
registry:

	ns := xrds.NewRegistry()
	_ = ns.Add("openid", "http://openid.net/xmlns/1.0")
	doc, err := xrds.Parse(body, ns)
	for _, svc := range doc.Services().All() {
	    delegates, _ := svc.Values("openid:Delegate")
	}

# Priorities

Services are listed by ascending priority. Services without a priority sort
after all prioritized services; ties keep document order.
*/
package xrds
