//go:build js && wasm

package client

import "net/http"

// setFetchOptions passes the request policy to the browser fetch call.
func setFetchOptions(req *http.Request) {
	req.Header.Set("js.fetch:mode", "cors")
	req.Header.Set("js.fetch:credentials", "same-origin")
	req.Header.Set("js.fetch:redirect", "follow")
}
