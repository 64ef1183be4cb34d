package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-matterform/pkg/model"
)

type countingService struct {
	regions atomic.Int32
	names   atomic.Int32
	details atomic.Int32
	gate    chan struct{}
	fail    error
}

func (s *countingService) wait(ctx context.Context) error {
	if s.gate == nil {
		return nil
	}
	select {
	case <-s.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *countingService) Regions(ctx context.Context) ([]model.Region, error) {
	s.regions.Add(1)
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if s.fail != nil {
		return nil, s.fail
	}
	return []model.Region{{ID: "EU"}, {ID: "NA"}}, nil
}

func (s *countingService) NameOptions(ctx context.Context, region string) ([]model.NameOption, error) {
	s.names.Add(1)
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if s.fail != nil {
		return nil, s.fail
	}
	return []model.NameOption{{Name: region + "-1"}}, nil
}

func (s *countingService) Details(ctx context.Context, name string) (model.Details, error) {
	s.details.Add(1)
	if err := s.wait(ctx); err != nil {
		return model.Details{}, err
	}
	if s.fail != nil {
		return model.Details{}, s.fail
	}
	return model.Details{Details: "Details for " + name, Country: "India", Table: []model.TableEntry{{ID: 1, Value: "Row1"}}}, nil
}

func TestCached_MemoisesSuccessfulLookups(t *testing.T) {
	next := &countingService{}
	cached := NewCached(next)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := cached.Regions(ctx); err != nil {
			t.Fatalf("regions: %v", err)
		}
		if _, err := cached.NameOptions(ctx, "EU"); err != nil {
			t.Fatalf("names: %v", err)
		}
		if _, err := cached.Details(ctx, "Jane"); err != nil {
			t.Fatalf("details: %v", err)
		}
	}
	if next.regions.Load() != 1 || next.names.Load() != 1 || next.details.Load() != 1 {
		t.Fatalf("expected one upstream call each, got regions=%d names=%d details=%d",
			next.regions.Load(), next.names.Load(), next.details.Load())
	}

	got, _ := cached.Details(ctx, "Jane")
	got.Table[0].Value = "mutated"
	again, _ := cached.Details(ctx, "Jane")
	if again.Table[0].Value != "Row1" {
		t.Fatalf("cached details leaked a shared slice")
	}

	cached.Purge()
	if _, err := cached.Regions(ctx); err != nil {
		t.Fatalf("regions after purge: %v", err)
	}
	if next.regions.Load() != 2 {
		t.Fatalf("expected purge to force a refetch")
	}
}

func TestCached_CollapsesConcurrentCalls(t *testing.T) {
	next := &countingService{gate: make(chan struct{})}
	cached := NewCached(next)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = cached.NameOptions(context.Background(), "EU")
		}()
	}
	deadline := time.Now().Add(time.Second)
	for next.names.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	close(next.gate)
	wg.Wait()

	if got := next.names.Load(); got != 1 {
		t.Fatalf("expected a single upstream call, got %d", got)
	}
}

func TestCached_CancelledCallerDoesNotFailOthers(t *testing.T) {
	next := &countingService{gate: make(chan struct{})}
	cached := NewCached(next)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := cached.NameOptions(ctxA, "EU")
		errA <- err
	}()
	deadline := time.Now().Add(time.Second)
	for next.names.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	type result struct {
		opts []model.NameOption
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		opts, err := cached.NameOptions(context.Background(), "EU")
		resB <- result{opts, err}
	}()

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected the cancelled caller to get context.Canceled, got %v", err)
	}

	close(next.gate)
	got := <-resB
	if got.err != nil {
		t.Fatalf("expected the other caller to succeed, got %v", got.err)
	}
	if diff := cmp.Diff([]model.NameOption{{Name: "EU-1"}}, got.opts); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if n := next.names.Load(); n != 1 {
		t.Fatalf("expected a single upstream call, got %d", n)
	}
}

func TestCached_DoesNotCacheFailures(t *testing.T) {
	next := &countingService{fail: errors.New("boom")}
	cached := NewCached(next)
	for i := 0; i < 2; i++ {
		if _, err := cached.Regions(context.Background()); err == nil {
			t.Fatalf("expected error")
		}
	}
	if next.regions.Load() != 2 {
		t.Fatalf("failures must not be cached, got %d calls", next.regions.Load())
	}
}

func TestInstrumented_ReportsOutcomes(t *testing.T) {
	type call struct {
		Op  string
		Err bool
	}
	var calls []call
	svc := NewInstrumented(&countingService{}, func(op string, _ time.Duration, err error) {
		calls = append(calls, call{Op: op, Err: err != nil})
	})
	ctx := context.Background()
	_, _ = svc.Regions(ctx)
	_, _ = svc.NameOptions(ctx, "EU")
	_, _ = svc.Details(ctx, "Jane")

	want := []call{{Op: OpRegions}, {Op: OpNameOptions}, {Op: OpDetails}}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestTraced_PassesThrough(t *testing.T) {
	svc := NewTraced(&countingService{}, nil)
	details, err := svc.Details(context.Background(), "Jane")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if details.Details != "Details for Jane" {
		t.Fatalf("unexpected details %#v", details)
	}
}

func TestClient_DecodesEnvelopes(t *testing.T) {
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, data any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}
	mux.HandleFunc("/api/regions", func(w http.ResponseWriter, r *http.Request) {
		write(w, []model.Region{{ID: "EU", Label: "Europe"}})
	})
	mux.HandleFunc("/api/regions/EU/names", func(w http.ResponseWriter, r *http.Request) {
		write(w, []model.NameOption{{Name: "Jane"}, {Name: "John"}})
	})
	mux.HandleFunc("/api/names/Jane/details", func(w http.ResponseWriter, r *http.Request) {
		write(w, model.Details{Details: "Details for Jane", Country: "India", Table: []model.TableEntry{{ID: 1, Value: "Row1"}}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := NewClient(srv.URL+"/api/", WithTimeout(time.Second))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := context.Background()

	regions, err := client.Regions(ctx)
	if err != nil {
		t.Fatalf("regions: %v", err)
	}
	if diff := cmp.Diff([]model.Region{{ID: "EU", Label: "Europe"}}, regions); diff != "" {
		t.Fatalf("regions mismatch (-want +got):\n%s", diff)
	}

	names, err := client.NameOptions(ctx, "EU")
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if diff := cmp.Diff([]model.NameOption{{Name: "Jane"}, {Name: "John"}}, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	details, err := client.Details(ctx, "Jane")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if details.Country != "India" || len(details.Table) != 1 {
		t.Fatalf("unexpected details %#v", details)
	}

	if _, err := client.NameOptions(ctx, "XX"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := client.Details(ctx, " "); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}

func TestStaticPrefill(t *testing.T) {
	p := StaticPrefill(model.Partial{Region: model.String("EU")})
	got, err := p.InitialValues(context.Background())
	if err != nil || got.Region == nil || *got.Region != "EU" {
		t.Fatalf("unexpected prefill %#v, %v", got, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.InitialValues(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
