/*
Package discovery implements Yadis 1.0 service discovery.

Given an identifier (a URL, or an XRI such as =example), discovery locates
and retrieves the identifier's XRDS document and returns its services in
priority order.

# Discovery Process

The discovery process works as follows:

 1. Identifier Resolution: a URL is used as is; an XRI is translated into a
    URL on an XRI proxy resolver (see package xri).

 2. Initial Request: the URL is fetched with GET and
    "Accept: application/xrds+xml", which lets compliant servers answer with
    the document directly.

 3. Response Classification: each response is classified by [Classify], in
    this order:
    - an X-XRDS-Location (or legacy X-Yadis-Location) header names the
      document's URL;
    - an HTML document carries <meta http-equiv="X-XRDS-Location"
      content="..."> in its head, the last such element wins;
    - an application/xrds+xml content type means the body is the document.

 4. Redirect: the URL from a header or meta hint is fetched next. Under the
    default [RedirectStrict] policy that response must be the document
    itself; [RedirectLenient] follows chains up to a fixed bound.

 5. Parsing: the document is parsed into an xrds.ServiceList.

# Usage

	client, _ := transport.NewClient(nil)
	d, err := discovery.NewDiscoverer(client)
	if err != nil {
	    log.Fatal(err)
	}

	session, err := d.NewSession("https://example.com/alice")
	if err != nil {
	    log.Fatal(err)
	}
	doc, err := session.Discover(ctx)
	if err != nil {
	    // the first response is retained for HTML-based fallbacks
	    body, _ := session.UserResponse()
	    ...
	}
	for _, svc := range doc.Services().All() {
	    fmt.Println(svc.Types(), svc.URIs())
	}

# Errors

Failures are reported as one of the Err* values of this package, matched
with errors.Is. Nothing is retried.

# References

  - Yadis Specification 1.0: http://yadis.org/papers/yadis-v1.0.pdf
  - XRI Resolution 2.0: http://docs.oasis-open.org/xri/2.0/specs/xri-resolution-V2.0.html
*/
package discovery
