package lookups

import (
	"embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-matterform/pkg/model"
)

//go:embed data/lookups.yaml
var dataFS embed.FS

const defaultDataPath = "data/lookups.yaml"

var (
	defaultOnce    sync.Once
	defaultDataset *Dataset
	defaultErr     error
)

// RegionEntry is a region plus the names offered for it.
type RegionEntry struct {
	ID    string   `yaml:"id"`
	Label string   `yaml:"label"`
	Names []string `yaml:"names"`
}

// DetailsTemplate describes the details returned for any name.
type DetailsTemplate struct {
	Template string             `yaml:"template"`
	Country  string             `yaml:"country"`
	Table    []model.TableEntry `yaml:"table"`
}

// Dataset is the canned data backing the mock service and the handler.
type Dataset struct {
	Regions []RegionEntry   `yaml:"regions"`
	Details DetailsTemplate `yaml:"details"`
	Prefill model.Partial   `yaml:"prefill"`
}

// DefaultDataset returns a copy of the embedded dataset.
func DefaultDataset() (*Dataset, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open(defaultDataPath)
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()

		ds, err := LoadDataset(f)
		if err != nil {
			defaultErr = err
			return
		}
		defaultDataset = ds
	})

	if defaultErr != nil {
		return nil, defaultErr
	}
	return defaultDataset.Clone(), nil
}

// LoadDataset decodes a YAML dataset. Region ids must be unique and non-empty.
func LoadDataset(r io.Reader) (*Dataset, error) {
	if r == nil {
		return nil, fmt.Errorf("lookups: missing reader")
	}
	var ds Dataset
	if err := yaml.NewDecoder(r).Decode(&ds); err != nil {
		return nil, fmt.Errorf("lookups: decode dataset: %w", err)
	}

	seen := make(map[string]struct{}, len(ds.Regions))
	for i, region := range ds.Regions {
		id := strings.TrimSpace(region.ID)
		if id == "" {
			return nil, fmt.Errorf("lookups: region %d has no id", i)
		}
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("lookups: duplicate region %q", id)
		}
		seen[id] = struct{}{}
		ds.Regions[i].ID = id
	}
	return &ds, nil
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	out := &Dataset{
		Regions: make([]RegionEntry, len(d.Regions)),
		Details: DetailsTemplate{
			Template: d.Details.Template,
			Country:  d.Details.Country,
			Table:    append([]model.TableEntry(nil), d.Details.Table...),
		},
		Prefill: d.Prefill,
	}
	for i, region := range d.Regions {
		out.Regions[i] = RegionEntry{
			ID:    region.ID,
			Label: region.Label,
			Names: append([]string(nil), region.Names...),
		}
	}
	return out
}

// RegionList returns the regions in declaration order.
func (d *Dataset) RegionList() []model.Region {
	out := make([]model.Region, 0, len(d.Regions))
	for _, region := range d.Regions {
		out = append(out, model.Region{ID: region.ID, Label: region.Label})
	}
	return out
}

// NameOptions returns the names for region. Unknown regions yield an empty
// list and false.
func (d *Dataset) NameOptions(region string) ([]model.NameOption, bool) {
	for _, entry := range d.Regions {
		if entry.ID != region {
			continue
		}
		out := make([]model.NameOption, 0, len(entry.Names))
		for _, name := range entry.Names {
			out = append(out, model.NameOption{Name: name})
		}
		return out, true
	}
	return []model.NameOption{}, false
}

// DetailsFor renders the details template for name.
func (d *Dataset) DetailsFor(name string) model.Details {
	text := d.Details.Template
	if text == "" {
		text = "Details for {name}"
	}
	return model.Details{
		Table:   append([]model.TableEntry(nil), d.Details.Table...),
		Details: strings.ReplaceAll(text, "{name}", name),
		Country: d.Details.Country,
	}
}
