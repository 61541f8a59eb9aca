/*
Package xri translates XRI identifiers into dereferenceable URIs.

An XRI is recognized by the xri:// scheme or by a leading global context
symbol (=, $, !, @ or +). It is made dereferenceable by appending it,
without its scheme prefix, to an XRI proxy resolver such as http://xri.net/:

	=self*shupp         -> http://xri.net/=self*shupp
	xri://@example      -> http://xri.net/@example
	xri://$dns*host.tld -> http://xri.net/host.tld
	xri://$ip*10.0.0.1  -> http://xri.net/10.0.0.1

# Canonical IDs

An i-name may be reassigned; its CanonicalID is the persistent identifier
behind it. [Resolver.CanonicalID] asks the proxy for the XRDS document of
the XRI and returns the last CanonicalID it contains. Providers are not
required to publish one, so a missing CanonicalID is reported with a false
boolean rather than an error.
*/
package xri
