package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/goliatone/go-matterform/pkg/matter"
	"github.com/goliatone/go-matterform/pkg/model"
	"github.com/goliatone/go-matterform/pkg/render"
)

// Form is the part of matter.Controller a terminal session drives.
type Form interface {
	ChangeRegion(ctx context.Context, region string) error
	OpenNamePicker() error
	CloseNamePicker()
	SelectName(ctx context.Context, name string) error
	SetField(ctx context.Context, field model.Field, value string) error
	Blur(field model.Field) error
	Create(ctx context.Context) error
	AcceptTerms(ctx context.Context) error
	RejectTerms()
	Wait(ctx context.Context) error
	Snapshot() matter.Snapshot
}

var _ Form = (*matter.Controller)(nil)

// Renderer walks a user through the Create Matter flow with terminal
// prompts (Run) and prints plain-text summaries of a snapshot (Render).
type Renderer struct {
	driver       PromptDriver
	out          io.Writer
	outputFormat OutputFormat
	termsText    string
	theme        Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	if _, ok := ParseOutputFormat(string(r.outputFormat)); !ok {
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the format of Render output.
func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// OutputContentType reports the serialization format used by Run.
func (r *Renderer) OutputContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prints a summary of the snapshot without prompting.
func (r *Renderer) Render(_ context.Context, view matter.Snapshot, options render.RenderOptions) ([]byte, error) {
	var b strings.Builder

	b.WriteString("Create Matter\n")
	if view.Submitted {
		b.WriteString(r.theme.InfoPrefix + "Matter created successfully.\n")
	}
	if view.SubmitError != "" {
		b.WriteString(r.theme.ErrorPrefix + view.SubmitError + "\n")
	}

	mapping := render.MapErrorPayload(options.Errors)
	messages := render.FieldMessages(view.Errors, mapping)
	for _, field := range model.Fields {
		value := view.Values.Get(field)
		if field == model.FieldRegion && value != "" {
			if label := view.RegionLabel(); label != value {
				value = fmt.Sprintf("%s (%s)", label, value)
			}
		}
		fmt.Fprintf(&b, "%-15s %s\n", fieldLabel(field)+":", value)
		for _, message := range messages[field] {
			fmt.Fprintf(&b, "  %s%s\n", r.theme.ErrorPrefix, message)
		}
	}
	for _, message := range render.MergeFormErrors(options.FormErrors, mapping.Form...) {
		b.WriteString(r.theme.ErrorPrefix + message + "\n")
	}

	if len(view.Table) > 0 {
		b.WriteString("\n")
		b.WriteString(formatTable(view.Table))
	}
	if view.TermsOpen && strings.TrimSpace(options.TermsText) != "" {
		b.WriteString("\nTerms and conditions\n")
		b.WriteString(strings.TrimSpace(options.TermsText) + "\n")
	}
	return []byte(b.String()), nil
}

type stage int

const (
	stageRegion stage = iota
	stageName
	stageEntry
	stageTerms
	stageDone
)

// Run drives form to a successful submission and returns the submitted
// values serialized in the configured output format.
func (r *Renderer) Run(ctx context.Context, form Form) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if form == nil {
		return nil, errors.New("tui: form is nil")
	}
	if err := form.Wait(ctx); err != nil {
		return nil, err
	}

	current := stageRegion
	for {
		var (
			next stage
			err  error
		)
		switch current {
		case stageRegion:
			next, err = r.promptRegion(ctx, form)
		case stageName:
			next, err = r.promptName(ctx, form)
		case stageEntry:
			next, err = r.promptEntry(ctx, form)
		case stageTerms:
			values := form.Snapshot().Values
			next, err = r.promptTerms(ctx, form)
			if err == nil && next == stageDone {
				return r.serialize(values)
			}
		}
		if err != nil {
			return nil, err
		}
		current = next
	}
}

func (r *Renderer) promptRegion(ctx context.Context, form Form) (stage, error) {
	snap := form.Snapshot()
	if snap.RegionsLookup.Status == matter.StatusFailed {
		return 0, fmt.Errorf("%w: %s", ErrNoRegions, snap.RegionsLookup.Err)
	}
	if len(snap.Regions) == 0 {
		return 0, ErrNoRegions
	}

	labels := make([]string, len(snap.Regions))
	defaultIndex := 0
	for i, region := range snap.Regions {
		labels[i] = region.DisplayLabel()
		if region.ID == snap.Values.Region {
			defaultIndex = i
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      fieldLabel(model.FieldRegion),
		Options:      labels,
		DefaultIndex: defaultIndex,
	})
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= len(snap.Regions) {
		return 0, fmt.Errorf("tui: invalid region selection %d", idx)
	}

	region := snap.Regions[idx].ID
	if region == snap.Values.Region && snap.NamesLookup.Status == matter.StatusReady {
		return stageName, nil
	}
	if err := form.ChangeRegion(ctx, region); err != nil {
		return 0, err
	}
	if err := form.Wait(ctx); err != nil {
		return 0, err
	}

	if names := form.Snapshot().NamesLookup; names.Status == matter.StatusFailed {
		return r.retry(ctx, "Names could not be loaded: "+names.Err, stageRegion)
	}
	return stageName, nil
}

func (r *Renderer) promptName(ctx context.Context, form Form) (stage, error) {
	snap := form.Snapshot()
	if len(snap.NameOptions) == 0 {
		if err := r.info(ctx, "No names available for "+snap.RegionLabel()+"."); err != nil {
			return 0, err
		}
		return stageRegion, nil
	}

	if err := form.OpenNamePicker(); err != nil {
		return 0, err
	}

	options := make([]string, 0, len(snap.NameOptions)+1)
	defaultIndex := 0
	for i, option := range snap.NameOptions {
		options = append(options, option.Name)
		if option.Name == snap.Values.Name {
			defaultIndex = i
		}
	}
	options = append(options, "Choose another region")

	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      "Select a name",
		Options:      options,
		DefaultIndex: defaultIndex,
	})
	if err != nil {
		form.CloseNamePicker()
		return 0, err
	}
	if idx < 0 || idx >= len(snap.NameOptions) {
		form.CloseNamePicker()
		return stageRegion, nil
	}

	name := snap.NameOptions[idx].Name
	if name == snap.Values.Name && snap.DetailsLookup.Status == matter.StatusReady {
		form.CloseNamePicker()
	} else {
		if err := form.SelectName(ctx, name); err != nil {
			return 0, err
		}
		if err := form.Wait(ctx); err != nil {
			return 0, err
		}
	}

	snap = form.Snapshot()
	if snap.DetailsLookup.Status == matter.StatusFailed {
		return r.retry(ctx, "Details could not be loaded: "+snap.DetailsLookup.Err, stageName)
	}

	summary := fmt.Sprintf("%s: %s\n%s: %s", fieldLabel(model.FieldDetails), snap.Values.Details,
		fieldLabel(model.FieldCountry), snap.Values.Country)
	if len(snap.Table) > 0 {
		summary += "\n" + strings.TrimRight(formatTable(snap.Table), "\n")
	}
	if err := r.info(ctx, summary); err != nil {
		return 0, err
	}
	return stageEntry, nil
}

func (r *Renderer) promptEntry(ctx context.Context, form Form) (stage, error) {
	snap := form.Snapshot()
	people := snap.PersonChoices()
	if len(people) == 0 {
		if err := r.info(ctx, "No people listed for "+snap.Values.Name+"."); err != nil {
			return 0, err
		}
		return stageName, nil
	}

	defaultIndex := indexOf(people, snap.Values.SelectedPerson)
	if defaultIndex < 0 {
		defaultIndex = 0
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      fieldLabel(model.FieldSelectedPerson),
		Options:      people,
		DefaultIndex: defaultIndex,
	})
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= len(people) {
		return 0, fmt.Errorf("tui: invalid person selection %d", idx)
	}
	if err := form.SetField(ctx, model.FieldSelectedPerson, people[idx]); err != nil {
		return 0, err
	}

	if err := r.promptText(ctx, form, model.FieldTitle, false); err != nil {
		return 0, err
	}
	if err := r.promptText(ctx, form, model.FieldComment, true); err != nil {
		return 0, err
	}
	return stageTerms, nil
}

// promptText asks for field until the controller reports no error for it.
func (r *Renderer) promptText(ctx context.Context, form Form, field model.Field, multiline bool) error {
	for {
		current := form.Snapshot().Values.Get(field)

		var (
			value string
			err   error
		)
		if multiline {
			value, err = r.driver.TextArea(ctx, TextAreaConfig{Message: fieldLabel(field), Default: current})
		} else {
			value, err = r.driver.Input(ctx, InputConfig{Message: fieldLabel(field), Default: current})
		}
		if err != nil {
			return err
		}
		if err := form.SetField(ctx, field, value); err != nil {
			return err
		}
		if err := form.Blur(field); err != nil {
			return err
		}

		message := form.Snapshot().Error(field)
		if message == "" {
			return nil
		}
		if err := r.warn(ctx, message); err != nil {
			return err
		}
	}
}

func (r *Renderer) promptTerms(ctx context.Context, form Form) (stage, error) {
	if err := form.Create(ctx); err != nil {
		return 0, err
	}

	snap := form.Snapshot()
	if !snap.TermsOpen {
		if len(snap.Errors) > 0 {
			for _, message := range snap.Errors.Sorted() {
				if err := r.warn(ctx, message); err != nil {
					return 0, err
				}
			}
			for _, field := range []model.Field{model.FieldRegion, model.FieldName, model.FieldDetails, model.FieldCountry} {
				if snap.Errors.Has(field) {
					return stageRegion, nil
				}
			}
			return stageEntry, nil
		}
		if err := r.info(ctx, "Nothing changed, there is nothing to submit."); err != nil {
			return 0, err
		}
		return stageEntry, nil
	}

	if text := strings.TrimSpace(r.termsText); text != "" {
		if err := r.info(ctx, "Terms and conditions\n"+text); err != nil {
			return 0, err
		}
	}
	accepted, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Accept the terms and conditions?"})
	if err != nil {
		form.RejectTerms()
		return 0, err
	}
	if !accepted {
		form.RejectTerms()
		again, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Edit the form again?", Default: true})
		if err != nil {
			return 0, err
		}
		if !again {
			return 0, ErrTermsRejected
		}
		return stageEntry, nil
	}

	if err := form.AcceptTerms(ctx); err != nil {
		return r.retry(ctx, err.Error(), stageTerms)
	}
	if !form.Snapshot().Submitted {
		return stageEntry, nil
	}
	if err := r.info(ctx, "Matter created successfully."); err != nil {
		return 0, err
	}
	return stageDone, nil
}

// retry reports message and asks whether to go back to next. Declining
// aborts the session.
func (r *Renderer) retry(ctx context.Context, message string, next stage) (stage, error) {
	if err := r.warn(ctx, message); err != nil {
		return 0, err
	}
	again, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Try again?", Default: true})
	if err != nil {
		return 0, err
	}
	if !again {
		return 0, ErrAborted
	}
	return next, nil
}

func (r *Renderer) info(ctx context.Context, message string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+message)
}

func (r *Renderer) warn(ctx context.Context, message string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+message)
}

func (r *Renderer) serialize(values model.FormValues) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		form := url.Values{}
		for _, field := range model.Fields {
			form.Set(string(field), values.Get(field))
		}
		return []byte(form.Encode()), nil
	case OutputFormatPrettyText:
		var b strings.Builder
		for _, field := range model.Fields {
			fmt.Fprintf(&b, "%s: %s\n", fieldLabel(field), values.Get(field))
		}
		return []byte(b.String()), nil
	default:
		payload, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("tui: encode values: %w", err)
		}
		return payload, nil
	}
}

func fieldLabel(field model.Field) string {
	switch field {
	case model.FieldRegion:
		return "Instance region"
	case model.FieldSelectedPerson:
		return "Person"
	default:
		name := string(field)
		return strings.ToUpper(name[:1]) + name[1:]
	}
}

func formatTable(rows []model.TableEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-4s %-12s %-12s %s\n", "ID", "Name", "Last name", "Value")
	for _, row := range rows {
		fmt.Fprintf(&b, "%-4d %-12s %-12s %s\n", row.ID, row.Name, row.Lastname, row.Value)
	}
	return b.String()
}
