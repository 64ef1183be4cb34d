// Package testsupport holds fixtures shared by package tests: a scriptable
// lookup service, a recording submitter, and canned controller snapshots.
package testsupport

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-matterform/pkg/lookup"
	"github.com/goliatone/go-matterform/pkg/matter"
	"github.com/goliatone/go-matterform/pkg/model"
)

// Call is one recorded lookup.
type Call struct {
	Op  string
	Key string
}

// StubService answers lookups from fixed data. Individual keys can be held
// until released or made to fail.
type StubService struct {
	mu     sync.Mutex
	calls  []Call
	gates  map[string]chan struct{}
	errs   map[string]error
	onCall func(op, key string)
}

var _ lookup.Service = (*StubService)(nil)

// NewStubService returns a stub with EU (Jane, John) and NA (Alice, Bob).
func NewStubService() *StubService {
	return &StubService{
		gates: make(map[string]chan struct{}),
		errs:  make(map[string]error),
	}
}

// Hold makes lookups for key block until the returned func is called or the
// lookup context ends. The "" key is the regions lookup.
func (s *StubService) Hold(key string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.gates[key] = ch
	s.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// Fail makes lookups for key return err.
func (s *StubService) Fail(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[key] = err
}

// OnCall registers a hook run at the start of every lookup.
func (s *StubService) OnCall(fn func(op, key string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCall = fn
}

// Calls returns the keys looked up for op, in call order.
func (s *StubService) Calls(op string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.calls {
		if c.Op == op {
			out = append(out, c.Key)
		}
	}
	return out
}

func (s *StubService) Regions(ctx context.Context) ([]model.Region, error) {
	if err := s.record(ctx, lookup.OpRegions, ""); err != nil {
		return nil, err
	}
	return []model.Region{{ID: "EU", Label: "Europe"}, {ID: "NA", Label: "North America"}}, nil
}

func (s *StubService) NameOptions(ctx context.Context, region string) ([]model.NameOption, error) {
	if err := s.record(ctx, lookup.OpNameOptions, region); err != nil {
		return nil, err
	}
	switch region {
	case "EU":
		return []model.NameOption{{Name: "Jane"}, {Name: "John"}}, nil
	case "NA":
		return []model.NameOption{{Name: "Alice"}, {Name: "Bob"}}, nil
	}
	return []model.NameOption{}, nil
}

// Details answers "Details for <name>" and "Country of <name>" with two
// person rows, "<name> Senior" and "<name> Junior".
func (s *StubService) Details(ctx context.Context, name string) (model.Details, error) {
	if err := s.record(ctx, lookup.OpDetails, name); err != nil {
		return model.Details{}, err
	}
	return model.Details{
		Details: "Details for " + name,
		Country: "Country of " + name,
		Table: []model.TableEntry{
			{ID: 1, Name: name + " Senior", Lastname: "Doe"},
			{ID: 2, Name: name + " Junior", Lastname: "Doe"},
		},
	}, nil
}

func (s *StubService) record(ctx context.Context, op, key string) error {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Op: op, Key: key})
	gate := s.gates[key]
	err := s.errs[key]
	hook := s.onCall
	s.mu.Unlock()

	if hook != nil {
		hook(op, key)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// RecordingSubmitter stores every submission and can be told to fail.
type RecordingSubmitter struct {
	mu     sync.Mutex
	values []model.FormValues
	err    error
}

// SetError makes subsequent submissions fail with err.
func (s *RecordingSubmitter) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *RecordingSubmitter) Submit(_ context.Context, values model.FormValues) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.values = append(s.values, values)
	return nil
}

// Submissions returns a copy of the recorded values.
func (s *RecordingSubmitter) Submissions() []model.FormValues {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.FormValues(nil), s.values...)
}

// Count returns the number of successful submissions.
func (s *RecordingSubmitter) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

// WaitSettled waits (up to two seconds) for ctrl's lookups to settle.
func WaitSettled(t testing.TB, ctrl *matter.Controller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ctrl.Wait(ctx); err != nil {
		t.Fatalf("wait for lookups: %v", err)
	}
}

// FillValid drives ctrl into a valid, dirty state through the EU/Jane
// cascade of a StubService.
func FillValid(t testing.TB, ctrl *matter.Controller) {
	t.Helper()
	ctx := context.Background()
	if err := ctrl.ChangeRegion(ctx, "EU"); err != nil {
		t.Fatalf("change region: %v", err)
	}
	WaitSettled(t, ctrl)
	if err := ctrl.SelectName(ctx, "Jane"); err != nil {
		t.Fatalf("select name: %v", err)
	}
	WaitSettled(t, ctrl)
	if err := ctrl.SetField(ctx, model.FieldSelectedPerson, "Jane Senior"); err != nil {
		t.Fatalf("set person: %v", err)
	}
	if err := ctrl.SetField(ctx, model.FieldTitle, "Quarterly review"); err != nil {
		t.Fatalf("set title: %v", err)
	}
}

// NewController builds a controller that is closed when the test ends.
func NewController(t testing.TB, svc lookup.Service, opts ...matter.Option) *matter.Controller {
	t.Helper()
	ctrl, err := matter.New(svc, opts...)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	t.Cleanup(func() { _ = ctrl.Close() })
	return ctrl
}

// FilledSnapshot is a settled snapshot of a valid, dirty form.
func FilledSnapshot() matter.Snapshot {
	return matter.Snapshot{
		Values: model.FormValues{
			Region:         "EU",
			Name:           "Jane",
			Details:        "Details for Jane",
			Country:        "India",
			SelectedPerson: "Row1",
			Title:          "Quarterly review",
		},
		Valid:         true,
		Dirty:         true,
		Regions:       []model.Region{{ID: "EU", Label: "Europe"}, {ID: "NA", Label: "North America"}},
		NameOptions:   []model.NameOption{{Name: "Jane"}, {Name: "John"}},
		Table:         []model.TableEntry{{ID: 1, Value: "Row1"}, {ID: 2, Value: "Row2"}},
		RegionsLookup: matter.LookupState{Status: matter.StatusReady},
		NamesLookup:   matter.LookupState{Status: matter.StatusReady},
		DetailsLookup: matter.LookupState{Status: matter.StatusReady},
	}
}
