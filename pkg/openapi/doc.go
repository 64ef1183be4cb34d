// Package openapi loads and validates the OpenAPI contract of the matterform
// HTTP API with kin-openapi. The contract is embedded in the binary, checked
// at startup, served as JSON, and used by tests to validate live responses.
package openapi
