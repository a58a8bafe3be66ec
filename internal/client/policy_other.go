//go:build !(js && wasm)

package client

import "net/http"

// setFetchOptions is a no-op outside the browser: net/http already follows
// redirects and sends no cookies unless a jar is configured.
func setFetchOptions(*http.Request) {}
