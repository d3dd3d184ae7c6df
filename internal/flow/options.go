package flow

// Option is one selectable catalog entry. ID is the wire-stable
// identifier stored in session fields; Label and Description are
// display-only.
type Option struct {
	ID          string
	Label       string
	Description string
}

// Catalog is the machine's injected configuration: the recognized
// option sets for each enumerated step. Selection ids are validated
// against the catalog on every list choice, never trusted as free
// text.
type Catalog struct {
	WorkTypes []Option
	Shifts    []Option
	Hours     []Option
}

// DefaultCatalog returns the built-in option sets.
func DefaultCatalog() Catalog {
	return Catalog{
		WorkTypes: []Option{
			{ID: "work_field", Label: "Field work", Description: "Planting, weeding, harvesting"},
			{ID: "work_greenhouse", Label: "Greenhouse", Description: "Greenhouse care and upkeep"},
			{ID: "work_warehouse", Label: "Warehouse", Description: "Sorting, packing, loading"},
			{ID: "work_workshop", Label: "Workshop", Description: "Repairs and machinery service"},
		},
		Shifts: []Option{
			{ID: "shift_1", Label: "08:00 - 16:00", Description: "Day shift"},
			{ID: "shift_2", Label: "16:00 - 00:00", Description: "Evening shift"},
			{ID: "shift_3", Label: "00:00 - 08:00", Description: "Night shift"},
		},
		Hours: []Option{
			{ID: "hours_4", Label: "4 hours"},
			{ID: "hours_6", Label: "6 hours"},
			{ID: "hours_8", Label: "8 hours"},
			{ID: "hours_12", Label: "12 hours"},
		},
	}
}

func findOption(opts []Option, id string) (Option, bool) {
	for _, o := range opts {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// labelFor resolves an option id to its display label, falling back to
// the id itself for values no longer present in the catalog.
func labelFor(opts []Option, id string) string {
	if o, ok := findOption(opts, id); ok {
		return o.Label
	}
	return id
}
