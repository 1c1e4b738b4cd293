// Package spec embeds the OpenAPI description of the ThreadDate API.
// Serving it from the binary means the description and the running code are
// always in sync.
package spec

import _ "embed"

// OpenAPI contains the raw bytes of openapi.yaml, embedded at compile time.
//
//go:embed openapi.yaml
var OpenAPI []byte
