package filter

import (
	"strconv"
	"strings"
	"time"

	"github.com/chepyr/team-tracker/internal/db"
	"github.com/chepyr/team-tracker/internal/models"
)

const DateLayout = "2006-01-02"

type Mode int

const (
	Include Mode = iota
	Exclude
)

func (m Mode) String() string {
	if m == Exclude {
		return "exclude"
	}
	return "include"
}

// FieldFilter is one validated equality filter on a task field.
type FieldFilter struct {
	Field db.Field
	Value int64
	Mode  Mode
}

// Filter is the typed form of the request parameters. Fields whose value did
// not validate are absent.
type Filter struct {
	Fields        []FieldFilter
	SelfTasks     *Mode
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

var fieldParams = []struct {
	param string
	field db.Field
}{
	{ParamStatus, db.FieldStatus},
	{ParamExecutor, db.FieldExecutor},
	{ParamLabels, db.FieldLabel},
}

func Parse(p Params) Filter {
	var f Filter
	for _, fp := range fieldParams {
		id, ok := parseID(p[fp.param])
		if !ok {
			continue
		}
		f.Fields = append(f.Fields, FieldFilter{Field: fp.field, Value: id, Mode: modeOf(p, fp.param)})
	}
	if Truthy(strings.TrimSpace(p[ParamSelfTasks])) {
		m := modeOf(p, ParamSelfTasks)
		f.SelfTasks = &m
	}
	f.CreatedAfter = parseDate(p[ParamCreatedAfter])
	f.CreatedBefore = parseDate(p[ParamCreatedBefore])
	return f
}

func modeOf(p Params, param string) Mode {
	if Truthy(strings.TrimSpace(p[ExcludeParam(param)])) {
		return Exclude
	}
	return Include
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseDate(raw string) *time.Time {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return nil
	}
	return &d
}

// Criteria scopes the filter to the workspace. Both date bounds are
// inclusive whole days.
func (f Filter) Criteria(ws models.WorkspaceContext, actorID int64) db.TaskCriteria {
	c := db.TaskCriteria{Scope: db.ScopeOf(ws, actorID)}
	for _, ff := range f.Fields {
		c.Conditions = append(c.Conditions, db.Condition{Field: ff.Field, Value: ff.Value, Exclude: ff.Mode == Exclude})
	}
	if f.SelfTasks != nil {
		c.Conditions = append(c.Conditions, db.Condition{Field: db.FieldAuthor, Value: actorID, Exclude: *f.SelfTasks == Exclude})
	}
	if f.CreatedAfter != nil {
		from := *f.CreatedAfter
		c.CreatedFrom = &from
	}
	if f.CreatedBefore != nil {
		until := f.CreatedBefore.AddDate(0, 0, 1)
		c.CreatedUntil = &until
	}
	return c
}
