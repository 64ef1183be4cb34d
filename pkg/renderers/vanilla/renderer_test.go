package vanilla_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-matterform/pkg/matter"
	"github.com/goliatone/go-matterform/pkg/model"
	"github.com/goliatone/go-matterform/pkg/render"
	"github.com/goliatone/go-matterform/pkg/renderers/vanilla"
	"github.com/goliatone/go-matterform/pkg/testsupport"
	"github.com/goliatone/go-matterform/pkg/validation"
)

func renderPage(t *testing.T, view matter.Snapshot, options render.RenderOptions) string {
	t.Helper()

	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	output, err := renderer.Render(context.Background(), view, options)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(output)
}

func assertContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(html, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, html)
		}
	}
}

func assertNotContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(html, fragment) {
			t.Fatalf("expected output not to contain %q\n%s", fragment, html)
		}
	}
}

func TestRenderer_Metadata(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if renderer.Name() != "vanilla" {
		t.Fatalf("unexpected name %q", renderer.Name())
	}
	if renderer.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", renderer.ContentType())
	}
}

func TestRenderer_FilledForm(t *testing.T) {
	html := renderPage(t, testsupport.FilledSnapshot(), render.RenderOptions{
		Action: "/matter/",
		Hidden: []render.HiddenField{render.CSRFToken("_csrf", "tok-123")},
	})

	assertContains(t, html,
		"<title>Create Matter</title>",
		`<option value="EU" selected>Europe</option>`,
		`<option value="NA">North America</option>`,
		`<output class="mf-value" data-field="name">Jane</output>`,
		`value="Details for Jane" readonly`,
		`value="India" readonly`,
		`<option value="Row1" selected>Row1</option>`,
		`<option value="Row2">Row2</option>`,
		`<td>1</td>`,
		`value="Quarterly review"`,
		`action="/matter/region"`,
		`action="/matter/create"`,
		`action="/matter/reset"`,
		`<input type="hidden" name="_csrf" value="tok-123">`,
	)
	assertNotContains(t, html, `id="mf-name-picker"`, `id="mf-terms"`, `class="mf-banner mf-banner--success"`)
}

func TestRenderer_VisibleAndServerErrors(t *testing.T) {
	view := matter.Snapshot{
		Errors: validation.ErrorMap{model.FieldTitle: "Title is required"},
	}
	html := renderPage(t, view, render.RenderOptions{
		Action: "/matter",
		Errors: map[string][]string{
			"/body/comment": {"Comment rejected by server"},
			"global":        {"Try again later"},
		},
		FormErrors: []string{"Session expired"},
	})

	assertContains(t, html,
		`<p class="mf-error" data-field="title">Title is required</p>`,
		`<p class="mf-error" data-field="comment">Comment rejected by server</p>`,
		"<li>Session expired</li>",
		"<li>Try again later</li>",
		`name="title" value="" aria-invalid="true"`,
	)
}

func TestRenderer_NamePicker(t *testing.T) {
	view := testsupport.FilledSnapshot()
	view.NamePickerOpen = true

	html := renderPage(t, view, render.RenderOptions{Action: "/matter"})
	assertContains(t, html,
		`id="mf-name-picker"`,
		`<button type="submit" name="name" value="Jane" aria-current="true">Jane</button>`,
		`<button type="submit" name="name" value="John">John</button>`,
		`action="/matter/picker/close"`,
	)

	empty := renderPage(t, matter.Snapshot{}, render.RenderOptions{Action: "/matter"})
	assertContains(t, empty, `<button type="submit" disabled>Choose name</button>`)
}

func TestRenderer_LookupStates(t *testing.T) {
	view := matter.Snapshot{
		Values:        model.FormValues{Region: "EU", Name: "Jane"},
		RegionsLookup: matter.LookupState{Status: matter.StatusFailed, Err: "upstream down"},
		DetailsLookup: matter.LookupState{Status: matter.StatusLoading},
		Pending:       true,
	}
	html := renderPage(t, view, render.RenderOptions{})
	assertContains(t, html,
		"Regions could not be loaded: upstream down",
		"Loading details…",
		`class="mf-pending"`,
	)
}

func TestRenderer_TermsModalSanitised(t *testing.T) {
	view := testsupport.FilledSnapshot()
	view.TermsOpen = true

	html := renderPage(t, view, render.RenderOptions{
		Action:    "/matter",
		TermsText: `<p>Read <strong>carefully</strong></p><script>alert(1)</script><img src=x onerror=alert(2)>`,
	})
	assertContains(t, html,
		`id="mf-terms"`,
		"<p>Read <strong>carefully</strong></p>",
		`action="/matter/accept"`,
		`action="/matter/reject"`,
	)
	assertNotContains(t, html, "<script>", "onerror")
}

func TestRenderer_SuccessAndSubmitError(t *testing.T) {
	html := renderPage(t, matter.Snapshot{Submitted: true}, render.RenderOptions{})
	assertContains(t, html, "Matter created successfully.")

	failed := renderPage(t, matter.Snapshot{SubmitError: "store unavailable"}, render.RenderOptions{})
	assertContains(t, failed, `<div class="mf-banner mf-banner--error" role="alert">store unavailable</div>`)
}

func TestRenderer_EscapesValues(t *testing.T) {
	view := matter.Snapshot{Values: model.FormValues{Title: `<b>bold</b>`, Comment: `"quoted"`}}
	html := renderPage(t, view, render.RenderOptions{})
	assertContains(t, html, "&lt;b&gt;bold&lt;/b&gt;")
	assertNotContains(t, html, "<b>bold</b>")
}

func TestRenderer_ThemeVariables(t *testing.T) {
	selector := render.NewStaticSelector("default", "light", render.DefaultManifest())
	selection, err := selector.Select("default", "dark")
	if err != nil {
		t.Fatalf("select theme: %v", err)
	}

	html := renderPage(t, matter.Snapshot{}, render.RenderOptions{
		Theme: render.ThemeConfig(selection, render.DefaultPartials()),
	})
	assertContains(t, html,
		`data-theme="default"`,
		`data-variant="dark"`,
		"--color-surface: #0d1117;",
		"--color-brand: #1f6feb;",
	)
}

func TestRenderer_CustomTemplates(t *testing.T) {
	files := fstest.MapFS{
		"page.html":  {Data: []byte(`<h1>{{ title }}</h1><p>{{ region.value }}</p>{{ terms_modal|safe }}`)},
		"terms.html": {Data: []byte(`<aside>{{ terms_text|safe }}</aside>`)},
	}
	renderer, err := vanilla.New(vanilla.WithTemplatesFS(files), vanilla.WithTitle("New matter"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	view := testsupport.FilledSnapshot()
	view.TermsOpen = true
	output, err := renderer.Render(context.Background(), view, render.RenderOptions{TermsText: "Be nice"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := "<h1>New matter</h1><p>EU</p><aside>Be nice</aside>"
	if string(output) != want {
		t.Fatalf("unexpected output %q", output)
	}
}
