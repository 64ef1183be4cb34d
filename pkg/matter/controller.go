package matter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-matterform/pkg/formstate"
	"github.com/goliatone/go-matterform/pkg/lookup"
	"github.com/goliatone/go-matterform/pkg/model"
	"github.com/goliatone/go-matterform/pkg/validation"
)

// baseline is the state Reset and a successful submission return to.
type baseline struct {
	values       model.FormValues
	nameOptions  []model.NameOption
	table        []model.TableEntry
	namesState   LookupState
	detailsState LookupState
}

// Controller owns one Create Matter form.
type Controller struct {
	svc       lookup.Service
	prefill   lookup.Prefill
	submitter Submitter
	schema    *validation.Schema
	logger    *zap.Logger

	base context.Context
	stop context.CancelFunc

	mu     sync.Mutex
	closed bool

	form        *formstate.Container
	initial     baseline
	regions     []model.Region
	nameOptions []model.NameOption
	table       []model.TableEntry

	regionsState LookupState
	namesState   LookupState
	detailsState LookupState

	// Generation counters; a lookup result applies only while its
	// generation is still current.
	namesGen      uint64
	detailsGen    uint64
	cancelNames   context.CancelFunc
	cancelDetails context.CancelFunc

	pending int
	settled chan struct{}

	namePicker    Modal
	terms         Modal
	termsAccepted bool
	submitted     bool
	submitErr     string
}

// New builds a controller backed by svc.
func New(svc lookup.Service, options ...Option) (*Controller, error) {
	if svc == nil {
		return nil, errors.New("matter: lookup service is required")
	}
	c := &Controller{
		svc:          svc,
		logger:       zap.NewNop(),
		regionsState: idle(),
		namesState:   idle(),
		detailsState: idle(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.schema == nil {
		c.schema = validation.DefaultSchema()
	}
	if c.submitter == nil {
		c.submitter = LogSubmitter(c.logger)
	}
	c.form = formstate.New(c.schema, model.FormValues{})
	c.initial = baseline{namesState: idle(), detailsState: idle()}
	c.base, c.stop = context.WithCancel(context.Background())
	return c, nil
}

// Load fetches the region list and, when a prefill source is configured,
// hydrates the form and runs the region and name cascades for the prefilled
// values. The hydrated state becomes the form's initial state, so a freshly
// loaded form is not dirty.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.regionsState = loading()
	c.mu.Unlock()

	regions, err := c.svc.Regions(ctx)

	c.mu.Lock()
	if err != nil {
		c.regionsState = failed(err)
		c.mu.Unlock()
		c.logger.Warn("matter: regions lookup failed", zap.Error(err))
		return fmt.Errorf("matter: load regions: %w", err)
	}
	c.regions = regions
	c.regionsState = ready()
	if c.prefill == nil {
		c.captureLocked()
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	partial, err := c.prefill.InitialValues(ctx)
	if err != nil {
		c.logger.Warn("matter: prefill failed", zap.Error(err))
		return fmt.Errorf("matter: prefill: %w", err)
	}
	values := partial.Merge(model.FormValues{})

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.invalidateLocked()
	c.form.Reinitialize(values)
	c.nameOptions, c.table = nil, nil
	c.namesState, c.detailsState = idle(), idle()
	if strings.TrimSpace(values.Region) != "" {
		c.startNameOptionsLocked(ctx, values.Region)
	}
	if strings.TrimSpace(values.Name) != "" {
		c.startDetailsLocked(ctx, values.Name)
	}
	c.mu.Unlock()

	if err := c.Wait(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Reinitialize(c.form.Values())
	c.captureLocked()
	c.logger.Debug("matter: form hydrated", zap.String("region", values.Region), zap.String("name", values.Name))
	return nil
}

// ChangeRegion selects region. It clears name, details, country,
// selectedPerson and the details table, invalidates any in-flight lookup, and
// then issues exactly one name-options fetch. A blank region only clears.
func (c *Controller) ChangeRegion(ctx context.Context, region string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	c.submitted = false
	_ = c.form.Set(model.FieldRegion, region)
	c.form.Clear(model.FieldName, model.FieldDetails, model.FieldCountry, model.FieldSelectedPerson)
	c.table = nil
	c.nameOptions = nil
	c.namePicker.Close()
	c.invalidateLocked()
	c.namesState, c.detailsState = idle(), idle()

	if strings.TrimSpace(region) == "" {
		return nil
	}
	c.startNameOptionsLocked(ctx, region)
	return nil
}

// OpenNamePicker shows the name picker. It fails while no region is chosen.
func (c *Controller) OpenNamePicker() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if strings.TrimSpace(c.form.Value(model.FieldRegion)) == "" {
		return ErrRegionRequired
	}
	c.namePicker.Open()
	return nil
}

// CloseNamePicker dismisses the name picker without selecting. It is a no-op
// once the controller is closed.
func (c *Controller) CloseNamePicker() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.namePicker.Close()
}

// SelectName sets name, closes the picker, clears selectedPerson and the
// previous details, and issues exactly one details fetch. The name must be
// one of the current name options.
func (c *Controller) SelectName(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if strings.TrimSpace(c.form.Value(model.FieldRegion)) == "" {
		return ErrRegionRequired
	}
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if !c.hasNameLocked(name) {
		return fmt.Errorf("%w: %q", ErrUnknownName, name)
	}

	c.submitted = false
	_ = c.form.Set(model.FieldName, name)
	c.namePicker.Close()
	c.form.Clear(model.FieldDetails, model.FieldCountry, model.FieldSelectedPerson)
	c.table = nil
	c.startDetailsLocked(ctx, name)
	return nil
}

// SetField writes a user-editable field. Region and name are routed through
// ChangeRegion and SelectName; details and country are read-only; the
// selected person must match a row of the details table (blank clears it).
func (c *Controller) SetField(ctx context.Context, field model.Field, value string) error {
	parsed, ok := model.ParseField(string(field))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	switch parsed {
	case model.FieldRegion:
		return c.ChangeRegion(ctx, value)
	case model.FieldName:
		return c.SelectName(ctx, value)
	case model.FieldDetails, model.FieldCountry:
		return fmt.Errorf("%w: %s", ErrReadOnlyField, parsed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if parsed == model.FieldSelectedPerson && value != "" && !c.hasPersonLocked(value) {
		return fmt.Errorf("%w: %q", ErrUnknownPerson, value)
	}
	c.submitted = false
	return c.form.Set(parsed, value)
}

// Blur marks field as touched so its validation error becomes visible.
func (c *Controller) Blur(field model.Field) error {
	parsed, ok := model.ParseField(string(field))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.form.Touch(parsed)
	return nil
}

// Create is the create button. A valid and dirty form opens the terms modal
// with terms-accepted reset; anything else goes straight to Submit so the
// validation messages surface.
func (c *Controller) Create(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.form.IsValid() && c.form.Dirty() {
		c.termsAccepted = false
		c.terms.Open()
		return nil
	}
	return c.submitLocked(ctx)
}

// RejectTerms closes the terms modal with no other effect. It is a no-op once
// the controller is closed.
func (c *Controller) RejectTerms() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.terms.Close()
}

// AcceptTerms records acceptance, closes the terms modal and runs Submit
// exactly once. It fails with ErrTermsNotOpen unless Create opened the modal.
func (c *Controller) AcceptTerms(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if !c.terms.IsOpen() {
		return ErrTermsNotOpen
	}
	c.termsAccepted = true
	c.terms.Close()
	return c.submitLocked(ctx)
}

// Submit is the form's submit routine. It touches every field and stops when
// the form is invalid. Without accepted terms it does nothing else. Otherwise
// the values go to the Submitter; on success the success banner is set and
// the form returns to its initial state.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.submitLocked(ctx)
}

func (c *Controller) submitLocked(ctx context.Context) error {
	c.form.TouchAll()
	if !c.form.IsValid() {
		return nil
	}
	if !c.termsAccepted {
		return nil
	}

	values := c.form.Values()
	if err := c.submitter.Submit(ctx, values); err != nil {
		c.termsAccepted = false
		c.submitErr = err.Error()
		c.logger.Error("matter: submit failed", zap.Error(err))
		return fmt.Errorf("matter: submit: %w", err)
	}

	c.resetLocked()
	c.submitted = true
	return nil
}

// Reset discards edits, touched flags, modals, flags and lookup results, and
// returns to the initial (possibly hydrated) state. In-flight lookups are
// invalidated. It is a no-op once the controller is closed.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.resetLocked()
}

func (c *Controller) resetLocked() {
	c.invalidateLocked()
	c.form.Reinitialize(c.initial.values)
	c.nameOptions = cloneSlice(c.initial.nameOptions)
	c.table = cloneSlice(c.initial.table)
	c.namesState = c.initial.namesState
	c.detailsState = c.initial.detailsState
	c.namePicker.Close()
	c.terms.Close()
	c.termsAccepted = false
	c.submitted = false
	c.submitErr = ""
}

// Wait blocks until every in-flight lookup has settled or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		if c.pending == 0 {
			c.mu.Unlock()
			return nil
		}
		settled := c.settled
		c.mu.Unlock()

		select {
		case <-settled:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close cancels in-flight lookups and waits for them to return. Further
// operations fail with ErrClosed.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.invalidateLocked()
	c.stop()
	c.mu.Unlock()
	return c.Wait(context.Background())
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := c.form.Validate()
	return Snapshot{
		Values:         c.form.Values(),
		Errors:         result.Errors().Filter(c.form.Touched),
		Valid:          result.Valid,
		Dirty:          c.form.Dirty(),
		Touched:        c.form.TouchedFields(),
		Regions:        cloneSlice(c.regions),
		NameOptions:    cloneSlice(c.nameOptions),
		Table:          cloneSlice(c.table),
		RegionsLookup:  c.regionsState,
		NamesLookup:    c.namesState,
		DetailsLookup:  c.detailsState,
		NamePickerOpen: c.namePicker.IsOpen(),
		TermsOpen:      c.terms.IsOpen(),
		TermsAccepted:  c.termsAccepted,
		Submitted:      c.submitted,
		SubmitError:    c.submitErr,
		Pending:        c.pending > 0,
	}
}

func (c *Controller) startNameOptionsLocked(ctx context.Context, region string) {
	c.namesGen++
	if c.cancelNames != nil {
		c.cancelNames()
	}
	gen := c.namesGen
	fetchCtx, cancel := c.fetchContext(ctx)
	c.cancelNames = cancel
	c.namesState = loading()
	c.beginLocked()

	go func() {
		defer cancel()
		options, err := c.svc.NameOptions(fetchCtx, region)

		c.mu.Lock()
		defer c.mu.Unlock()
		defer c.doneLocked()
		if c.closed || gen != c.namesGen {
			c.logger.Debug("matter: discarding stale name options", zap.String("region", region))
			return
		}
		if err != nil {
			c.namesState = failed(err)
			c.logger.Warn("matter: name options lookup failed", zap.String("region", region), zap.Error(err))
			return
		}
		c.nameOptions = cloneSlice(options)
		c.namesState = ready()
	}()
}

func (c *Controller) startDetailsLocked(ctx context.Context, name string) {
	c.detailsGen++
	if c.cancelDetails != nil {
		c.cancelDetails()
	}
	gen := c.detailsGen
	fetchCtx, cancel := c.fetchContext(ctx)
	c.cancelDetails = cancel
	c.detailsState = loading()
	c.beginLocked()

	go func() {
		defer cancel()
		details, err := c.svc.Details(fetchCtx, name)

		c.mu.Lock()
		defer c.mu.Unlock()
		defer c.doneLocked()
		if c.closed || gen != c.detailsGen {
			c.logger.Debug("matter: discarding stale details", zap.String("name", name))
			return
		}
		if err != nil {
			c.detailsState = failed(err)
			c.logger.Warn("matter: details lookup failed", zap.String("name", name), zap.Error(err))
			return
		}
		_ = c.form.Set(model.FieldDetails, details.Details)
		_ = c.form.Set(model.FieldCountry, details.Country)
		c.table = cloneSlice(details.Table)
		c.detailsState = ready()
	}()
}

// invalidateLocked bumps both generations and cancels in-flight lookups.
func (c *Controller) invalidateLocked() {
	c.namesGen++
	c.detailsGen++
	if c.cancelNames != nil {
		c.cancelNames()
		c.cancelNames = nil
	}
	if c.cancelDetails != nil {
		c.cancelDetails()
		c.cancelDetails = nil
	}
}

// fetchContext derives a lookup context bounded by both ctx and the
// controller lifetime.
func (c *Controller) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.base, cancel)
	return fetchCtx, func() {
		stop()
		cancel()
	}
}

func (c *Controller) beginLocked() {
	if c.pending == 0 {
		c.settled = make(chan struct{})
	}
	c.pending++
}

func (c *Controller) doneLocked() {
	c.pending--
	if c.pending == 0 {
		close(c.settled)
	}
}

func (c *Controller) captureLocked() {
	c.initial = baseline{
		values:       c.form.Values(),
		nameOptions:  cloneSlice(c.nameOptions),
		table:        cloneSlice(c.table),
		namesState:   c.namesState,
		detailsState: c.detailsState,
	}
}

func (c *Controller) hasNameLocked(name string) bool {
	for _, option := range c.nameOptions {
		if option.Name == name {
			return true
		}
	}
	return false
}

func (c *Controller) hasPersonLocked(value string) bool {
	for _, entry := range c.table {
		if entry.DisplayName() == value {
			return true
		}
	}
	return false
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append(make([]T, 0, len(in)), in...)
}
