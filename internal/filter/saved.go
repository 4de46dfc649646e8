package filter

import (
	"encoding/json"
	"maps"

	"github.com/chepyr/team-tracker/internal/session"
)

// View is what a task list needs to render its filter panel.
type View struct {
	Params      Params
	Filter      Filter
	ActiveCount int
	ShowFilter  bool
	// SavedActive reports a saved default filter that applies when the
	// request has no filter parameters of its own.
	SavedActive bool
	SavedParams Params
	UsingSaved  bool
}

// Prepare applies the saved-default rules to the request parameters:
// reset_default drops the saved filter, save_as_default stores the current
// filter parameters, and a request without filter parameters falls back to
// the saved filter while it is enabled.
func Prepare(p Params, store session.Store) View {
	if Truthy(p[ParamResetDefault]) {
		clearSaved(store)
	}

	current := p.FilterOnly()
	if Truthy(p[ParamSaveAsDefault]) {
		save(store, current)
	}

	saved := loadSaved(store)
	enabled, _ := store.Get(session.KeySavedFilterEnabled)
	v := View{
		Params:      current,
		ShowFilter:  Truthy(p[ParamShowFilter]),
		SavedActive: enabled == "true" && len(saved) > 0,
		SavedParams: saved,
	}
	if len(current) == 0 && v.SavedActive {
		v.Params = maps.Clone(saved)
		v.UsingSaved = true
	}
	v.Filter = Parse(v.Params)
	v.ActiveCount = ActiveCount(v.Params)
	return v
}

func save(store session.Store, p Params) {
	if len(p) == 0 {
		clearSaved(store)
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	store.Set(session.KeySavedFilter, string(data))
	store.Set(session.KeySavedFilterEnabled, "true")
}

// loadSaved drops a saved filter that cannot be decoded.
func loadSaved(store session.Store) Params {
	raw, ok := store.Get(session.KeySavedFilter)
	if !ok || raw == "" {
		return nil
	}
	var p Params
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		clearSaved(store)
		return nil
	}
	return p.FilterOnly()
}

func clearSaved(store session.Store) {
	store.Clear(session.KeySavedFilter)
	store.Clear(session.KeySavedFilterEnabled)
}
