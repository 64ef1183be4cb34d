package tui

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-matterform/pkg/lookup"
	"github.com/goliatone/go-matterform/pkg/matter"
	"github.com/goliatone/go-matterform/pkg/model"
	"github.com/goliatone/go-matterform/pkg/render"
	"github.com/goliatone/go-matterform/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	selects      []SelectConfig
	inputPos     int
	selectPos    int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selects = append(s.selects, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) hasInfo(prefix string) bool {
	for _, msg := range s.infoMessages {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}

func loadedController(t *testing.T, svc *testsupport.StubService, opts ...matter.Option) *matter.Controller {
	t.Helper()
	ctrl := testsupport.NewController(t, svc, opts...)
	if err := ctrl.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return ctrl
}

func TestRun_HappyPath(t *testing.T) {
	sub := &testsupport.RecordingSubmitter{}
	ctrl := loadedController(t, testsupport.NewStubService(), matter.WithSubmitter(sub))

	driver := &stubDriver{
		selectIdx: []int{0, 0, 1},
		inputs:    []string{"Bad", "Quarterly review"},
		textAreas: []string{"first matter"},
		confirm:   []bool{true},
	}
	r, err := New(WithPromptDriver(driver), WithTheme(Theme{ErrorPrefix: "! "}), WithTermsText("Be nice"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := r.Run(context.Background(), ctrl)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := model.FormValues{
		Region:         "EU",
		Name:           "Jane",
		Details:        "Details for Jane",
		Country:        "Country of Jane",
		SelectedPerson: "Jane Junior",
		Title:          "Quarterly review",
		Comment:        "first matter",
	}
	var got model.FormValues
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]model.FormValues{want}, sub.Submissions()); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}

	if !driver.hasInfo("! ") {
		t.Fatalf("expected a validation message for the short title, got %v", driver.infoMessages)
	}
	if !driver.hasInfo("Terms and conditions\nBe nice") {
		t.Fatalf("expected terms text to be shown, got %v", driver.infoMessages)
	}
	if got := driver.selects[1].Options; got[len(got)-1] != "Choose another region" {
		t.Fatalf("expected name picker to offer going back, got %v", got)
	}

	snap := ctrl.Snapshot()
	if !snap.Submitted || snap.Values.Region != "" {
		t.Fatalf("expected submitted and reset form, got %+v", snap)
	}
}

func TestRun_BackToRegion(t *testing.T) {
	svc := testsupport.NewStubService()
	ctrl := loadedController(t, svc, matter.WithSubmitter(&testsupport.RecordingSubmitter{}))

	driver := &stubDriver{
		selectIdx: []int{0, 2, 1, 0, 0},
		inputs:    []string{"Quarterly review"},
		textAreas: []string{""},
		confirm:   []bool{true},
	}
	r, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := r.Run(context.Background(), ctrl)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	text := string(out)
	for _, fragment := range []string{"Instance region: NA\n", "Name: Alice\n", "Person: Alice Senior\n"} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, text)
		}
	}
	if diff := cmp.Diff([]string{"EU", "NA"}, svc.Calls(lookup.OpNameOptions)); diff != "" {
		t.Fatalf("name lookups mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_RejectTerms(t *testing.T) {
	sub := &testsupport.RecordingSubmitter{}
	ctrl := loadedController(t, testsupport.NewStubService(), matter.WithSubmitter(sub))

	driver := &stubDriver{
		selectIdx: []int{1, 1, 0},
		inputs:    []string{"Quarterly review"},
		textAreas: []string{""},
		confirm:   []bool{false, false},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	_, err = r.Run(context.Background(), ctrl)
	if !errors.Is(err, ErrTermsRejected) {
		t.Fatalf("expected ErrTermsRejected, got %v", err)
	}
	if sub.Count() != 0 {
		t.Fatalf("expected no submission, got %d", sub.Count())
	}
	snap := ctrl.Snapshot()
	if snap.TermsOpen || snap.Values.Name != "Bob" {
		t.Fatalf("expected closed terms and kept values, got %+v", snap)
	}
}

func TestRun_RetriesFailedSubmission(t *testing.T) {
	var attempts atomic.Int32
	submitter := matter.SubmitterFunc(func(context.Context, model.FormValues) error {
		if attempts.Add(1) == 1 {
			return errors.New("store unavailable")
		}
		return nil
	})
	ctrl := loadedController(t, testsupport.NewStubService(), matter.WithSubmitter(submitter))

	driver := &stubDriver{
		selectIdx: []int{0, 1, 0},
		inputs:    []string{"Quarterly review"},
		textAreas: []string{""},
		confirm:   []bool{true, true, true},
	}
	r, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatFormURLEncoded))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := r.Run(context.Background(), ctrl)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if attempts.Load() != 2 {
		t.Fatalf("expected two submit attempts, got %d", attempts.Load())
	}
	form, err := url.ParseQuery(string(out))
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if form.Get("name") != "John" || form.Get("selectedPerson") != "John Senior" {
		t.Fatalf("unexpected output %v", form)
	}
	if r.OutputContentType() != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", r.OutputContentType())
	}
}

func TestRun_NoRegions(t *testing.T) {
	svc := testsupport.NewStubService()
	svc.Fail("", errors.New("upstream down"))
	ctrl := testsupport.NewController(t, svc)
	if err := ctrl.Load(context.Background()); err == nil {
		t.Fatalf("expected load error")
	}

	r, err := New(WithPromptDriver(&stubDriver{}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	_, err = r.Run(context.Background(), ctrl)
	if !errors.Is(err, ErrNoRegions) || !strings.Contains(err.Error(), "upstream down") {
		t.Fatalf("expected ErrNoRegions with cause, got %v", err)
	}
}

func TestRun_AbortPropagates(t *testing.T) {
	ctrl := loadedController(t, testsupport.NewStubService())
	driver := &stubDriver{selectIdx: []int{0}}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	if _, err := r.Run(context.Background(), ctrl); err == nil {
		t.Fatalf("expected error when prompts run out")
	}
	if ctrl.Snapshot().NamePickerOpen {
		t.Fatalf("expected picker closed after aborted selection")
	}
}

func TestRender_Summary(t *testing.T) {
	r, err := New(WithPromptDriver(&stubDriver{}), WithTheme(Theme{ErrorPrefix: "! "}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	view := testsupport.FilledSnapshot()
	view.TermsOpen = true

	out, err := r.Render(context.Background(), view, render.RenderOptions{
		TermsText: "Be nice",
		Errors:    map[string][]string{"comment": {"Comment rejected"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(out)
	for _, fragment := range []string{
		"Instance region: Europe (EU)",
		"Person:         Row1",
		"  ! Comment rejected",
		"Row2",
		"Terms and conditions\nBe nice",
	} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, text)
		}
	}
}

func TestParseOutputFormat(t *testing.T) {
	cases := map[string]OutputFormat{
		"":       OutputFormatJSON,
		"JSON":   OutputFormatJSON,
		"form":   OutputFormatFormURLEncoded,
		"pretty": OutputFormatPrettyText,
	}
	for raw, want := range cases {
		got, ok := ParseOutputFormat(raw)
		if !ok || got != want {
			t.Fatalf("ParseOutputFormat(%q) = %q, %v", raw, got, ok)
		}
	}
	if _, ok := ParseOutputFormat("yaml"); ok {
		t.Fatalf("expected yaml to be rejected")
	}
	if _, err := New(WithOutputFormat("yaml")); err == nil {
		t.Fatalf("expected error for unknown output format")
	}
}
