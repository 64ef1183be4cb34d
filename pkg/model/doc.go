// Package model defines the records that flow through the Create Matter form:
// the flat FormValues record, the lookup results that hydrate it (regions,
// name options, detail tables), and the field identifiers shared by the
// validation schema, the form state container, and the renderers. All form
// fields are plain strings; lookup records are read-only snapshots that get
// replaced wholesale whenever the upstream field that owns them changes.
package model
