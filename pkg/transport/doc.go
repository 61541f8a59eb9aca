// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package transport implements the HTTP transport used by Yadis discovery.

Discovery only needs a request/response abstraction: a [Fetcher] issues one
GET request and returns the complete [Exchange] (status, headers and body).
[Client] is the net/http implementation; tests and callers with special
needs can supply their own Fetcher, for example with [FetcherFunc].

# TLS Configuration

The client defaults to TLS 1.2 through TLS 1.3:

	config := transport.DefaultHTTPSConfig()
	// MinTLSVersion: TLS 1.2
	// MaxTLSVersion: TLS 1.3

For TLS 1.2, the following cipher suites are recommended:
  - TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384
  - TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256
  - TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384
  - TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256

HTTP/2 can be enabled with HTTPSConfig.HTTP2.

# Client Usage

	client, err := transport.NewClient(&transport.HTTPSConfig{
	    Timeout:      10 * time.Second,
	    MaxBodyBytes: 512 << 10,
	})

	req := transport.NewRequest("https://example.com/")
	req.Header.Set("Accept", "application/xrds+xml")
	ex, err := client.Fetch(ctx, req)

# Errors

A Fetch error and a non-2xx status are both reported as *[Error], which
matches [ErrTransport] with errors.Is. Use [CheckStatus] to turn a non-2xx
exchange into an error.
*/
package transport
