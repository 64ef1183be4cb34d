package matter

import (
	"github.com/goliatone/go-matterform/pkg/model"
	"github.com/goliatone/go-matterform/pkg/validation"
)

// Snapshot is a point-in-time copy of a controller's state, suitable for
// rendering. Errors only holds the messages of touched fields.
type Snapshot struct {
	Values  model.FormValues    `json:"values"`
	Errors  validation.ErrorMap `json:"errors"`
	Valid   bool                `json:"valid"`
	Dirty   bool                `json:"dirty"`
	Touched []model.Field       `json:"touched,omitempty"`

	Regions     []model.Region     `json:"regions"`
	NameOptions []model.NameOption `json:"nameOptions"`
	Table       []model.TableEntry `json:"tablevalues"`

	RegionsLookup LookupState `json:"regionsLookup"`
	NamesLookup   LookupState `json:"namesLookup"`
	DetailsLookup LookupState `json:"detailsLookup"`

	NamePickerOpen bool   `json:"namePickerOpen"`
	TermsOpen      bool   `json:"termsOpen"`
	TermsAccepted  bool   `json:"termsAccepted"`
	Submitted      bool   `json:"submitted"`
	SubmitError    string `json:"submitError,omitempty"`
	Pending        bool   `json:"pending"`
}

// Error returns the visible error of field, if any.
func (s Snapshot) Error(field model.Field) string {
	return s.Errors[field]
}

// PersonChoices lists the selectable values for selectedPerson.
func (s Snapshot) PersonChoices() []string {
	out := make([]string, 0, len(s.Table))
	for _, entry := range s.Table {
		out = append(out, entry.DisplayName())
	}
	return out
}

// RegionLabel returns the label of the selected region.
func (s Snapshot) RegionLabel() string {
	for _, region := range s.Regions {
		if region.ID == s.Values.Region {
			return region.DisplayLabel()
		}
	}
	return s.Values.Region
}
