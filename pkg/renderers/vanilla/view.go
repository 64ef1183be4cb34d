package vanilla

import (
	"sort"
	"strings"

	"github.com/goliatone/go-matterform/pkg/matter"
	"github.com/goliatone/go-matterform/pkg/model"
	"github.com/goliatone/go-matterform/pkg/render"
)

var fieldLabels = map[model.Field]string{
	model.FieldRegion:         "Instance region",
	model.FieldName:           "Name",
	model.FieldDetails:        "Details",
	model.FieldCountry:        "Country",
	model.FieldSelectedPerson: "Person",
	model.FieldTitle:          "Title",
	model.FieldComment:        "Comment",
}

// buildPage flattens a snapshot into the template context. Keys are
// snake_case so templates stay independent of the Go field names.
func buildPage(title string, view matter.Snapshot, options render.RenderOptions) map[string]any {
	mapping := render.MapErrorPayload(options.Errors)
	messages := render.FieldMessages(view.Errors, mapping)
	formErrors := render.MergeFormErrors(options.FormErrors, mapping.Form...)

	hidden := make([]map[string]any, 0, len(options.Hidden))
	for _, field := range render.SortedHiddenFields(options.Hidden...) {
		hidden = append(hidden, map[string]any{"name": field.Name, "value": field.Value})
	}

	regions := make([]map[string]any, 0, len(view.Regions))
	for _, region := range view.Regions {
		regions = append(regions, map[string]any{
			"id":       region.ID,
			"label":    region.DisplayLabel(),
			"selected": region.ID == view.Values.Region,
		})
	}

	names := make([]map[string]any, 0, len(view.NameOptions))
	for _, option := range view.NameOptions {
		names = append(names, map[string]any{
			"name":     option.Name,
			"selected": option.Name == view.Values.Name,
		})
	}

	people := make([]map[string]any, 0, len(view.Table))
	rows := make([]map[string]any, 0, len(view.Table))
	for _, entry := range view.Table {
		display := entry.DisplayName()
		people = append(people, map[string]any{
			"value":    display,
			"selected": display == view.Values.SelectedPerson,
		})
		rows = append(rows, map[string]any{
			"id":       entry.ID,
			"name":     entry.Name,
			"lastname": entry.Lastname,
			"value":    entry.Value,
		})
	}

	field := func(f model.Field) map[string]any {
		return map[string]any{
			"name":     string(f),
			"label":    fieldLabels[f],
			"value":    view.Values.Get(f),
			"messages": messages[f],
			"invalid":  len(messages[f]) > 0,
		}
	}

	data := map[string]any{
		"title":        title,
		"action":       strings.TrimRight(options.Action, "/"),
		"hidden":       hidden,
		"stylesheet":   defaultStylesheet(),
		"css_vars":     cssVars(options),
		"form_errors":  formErrors,
		"submitted":    view.Submitted,
		"submit_error": view.SubmitError,
		"pending":      view.Pending,
		"dirty":        view.Dirty,
		"region": merge(field(model.FieldRegion), map[string]any{
			"options": regions,
			"status":  string(view.RegionsLookup.Status),
			"error":   view.RegionsLookup.Err,
		}),
		"name": merge(field(model.FieldName), map[string]any{
			"picker_open":     view.NamePickerOpen,
			"picker_disabled": view.Values.Region == "",
			"options":         names,
			"status":          string(view.NamesLookup.Status),
			"error":           view.NamesLookup.Err,
		}),
		"details": merge(field(model.FieldDetails), map[string]any{
			"status": string(view.DetailsLookup.Status),
			"error":  view.DetailsLookup.Err,
		}),
		"country": field(model.FieldCountry),
		"person": merge(field(model.FieldSelectedPerson), map[string]any{
			"options": people,
		}),
		"table":         rows,
		"title_field":   field(model.FieldTitle),
		"comment_field": field(model.FieldComment),
		"terms_open":    view.TermsOpen,
		"terms_text":    sanitizeTerms(options.TermsText),
	}
	if options.Theme != nil {
		data["theme"] = options.Theme.Theme
		data["variant"] = options.Theme.Variant
		if options.Theme.AssetURL != nil {
			if href := options.Theme.AssetURL(StylesheetName); href != StylesheetName {
				data["stylesheet_href"] = href
			}
		}
	}
	return data
}

func cssVars(options render.RenderOptions) []map[string]any {
	if options.Theme == nil || len(options.Theme.CSSVars) == 0 {
		return nil
	}
	keys := make([]string, 0, len(options.Theme.CSSVars))
	for key := range options.Theme.CSSVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]map[string]any, 0, len(keys))
	for _, key := range keys {
		out = append(out, map[string]any{"name": key, "value": options.Theme.CSSVars[key]})
	}
	return out
}

func merge(base, extra map[string]any) map[string]any {
	for key, value := range extra {
		base[key] = value
	}
	return base
}
