// Package filter turns task list request parameters into typed filters and
// store criteria, counts active filters and keeps a saved default filter in
// the session.
package filter

import (
	"net/url"
	"strings"
)

const (
	ParamStatus        = "status"
	ParamExecutor      = "executor"
	ParamLabels        = "labels"
	ParamSelfTasks     = "self_tasks"
	ParamCreatedAfter  = "created_after"
	ParamCreatedBefore = "created_before"

	// Presentational parameters. They never count as filters.
	ParamShowFilter    = "show_filter"
	ParamSaveAsDefault = "save_as_default"
	ParamResetDefault  = "reset_default"

	excludeSuffix = "_exclude"
)

// ExcludeParam returns the companion flag that inverts param.
func ExcludeParam(param string) string {
	return param + excludeSuffix
}

// invertible are the parameters that carry an exclude companion.
var invertible = []string{ParamStatus, ParamExecutor, ParamLabels, ParamSelfTasks}

// filterKeys lists every parameter that takes part in filtering.
var filterKeys = []string{
	ParamStatus, ExcludeParam(ParamStatus),
	ParamExecutor, ExcludeParam(ParamExecutor),
	ParamLabels, ExcludeParam(ParamLabels),
	ParamSelfTasks, ExcludeParam(ParamSelfTasks),
	ParamCreatedAfter, ParamCreatedBefore,
}

// Params is the flat request mapping the engine works on.
type Params map[string]string

// FromValues keeps the first value of each key.
func FromValues(values url.Values) Params {
	p := make(Params, len(values))
	for k, v := range values {
		if len(v) > 0 {
			p[k] = v[0]
		}
	}
	return p
}

// FilterOnly returns the filter parameters that hold a usable value,
// trimmed. Values Parse would ignore are dropped.
func (p Params) FilterOnly() Params {
	out := Params{}
	for _, k := range filterKeys {
		if p.valid(k) {
			out[k] = strings.TrimSpace(p[k])
		}
	}
	return out
}

var truthy = map[string]bool{"on": true, "true": true, "1": true, "checked": true}

// Truthy reports whether v is one of the accepted "on" tokens. Matching is
// case-sensitive; anything else, including "", "off", "false" and "0", is off.
func Truthy(v string) bool {
	return truthy[v]
}

// ActiveCount is the number of filter parameters that actually constrain
// the list. Unparseable values count as absent, and an exclude flag counts
// only when it is on and the parameter it inverts is usable.
func ActiveCount(p Params) int {
	n := 0
	for _, k := range filterKeys {
		if p.valid(k) {
			n++
		}
	}
	return n
}

// valid reports whether key holds a value Parse would act on.
func (p Params) valid(key string) bool {
	v := strings.TrimSpace(p[key])
	switch key {
	case ParamStatus, ParamExecutor, ParamLabels:
		_, ok := parseID(v)
		return ok
	case ParamCreatedAfter, ParamCreatedBefore:
		return parseDate(v) != nil
	case ParamSelfTasks:
		return Truthy(v)
	}
	for _, base := range invertible {
		if key == ExcludeParam(base) {
			return Truthy(v) && p.valid(base)
		}
	}
	return false
}
