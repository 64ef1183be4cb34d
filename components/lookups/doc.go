// Package lookups provides the canned Create Matter lookup data (regions, name
// options per region, detail tables), a mock lookup.Service that answers from
// it after an artificial delay, and a small net/http handler that serves the
// same data as JSON for remote clients.
//
// The handler responds to GET and HEAD requests on three routes relative to
// its mount path:
//
//	/regions
//	/regions/{region}/names
//	/names/{name}/details
//
// The default data is loaded from the embedded data/lookups.yaml.
package lookups
