package projects

import (
	"cmp"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/JaimeStill/pitchcraft/pkg/pagination"
	"github.com/JaimeStill/pitchcraft/pkg/query"
)

var projection = query.
	NewProjectionMap("public", "projects", "p").
	Project("id", "id").
	Project("title", "title").
	Project("description", "description").
	Project("project_type", "project_type").
	Project("target_audience", "target_audience").
	Project("status", "status").
	Project("created_at", "created_at").
	Project("updated_at", "updated_at").
	SortBy("title", "lower({col})").
	SortBy("status", statusRankExpr())

// statusRankExpr orders status by stage rank, matching compareField.
func statusRankExpr() string {
	var sb strings.Builder
	sb.WriteString("CASE {col}")
	for _, st := range Statuses() {
		fmt.Fprintf(&sb, " WHEN '%s' THEN %d", st, st.Rank())
	}
	sb.WriteString(" ELSE -1 END")
	return sb.String()
}

var defaultSort = query.SortField{Field: "created_at"}

// Filters contains optional filtering criteria for project listings.
// Statuses matches any of the listed stages; ProjectType is exact.
type Filters struct {
	Statuses    []Status     `json:"statuses,omitempty"`
	ProjectType *ProjectType `json:"project_type,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	statuses := make([]any, len(f.Statuses))
	for i, s := range f.Statuses {
		statuses[i] = string(s)
	}

	var pt *string
	if f.ProjectType != nil {
		v := string(*f.ProjectType)
		pt = &v
	}

	return b.
		WhereIn("status", statuses).
		WhereEquals("project_type", pt)
}

// Match reports whether p satisfies the filters.
func (f Filters) Match(p Project) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, p.Status) {
		return false
	}
	if f.ProjectType != nil && p.ProjectType != *f.ProjectType {
		return false
	}
	return true
}

// FiltersFromQuery extracts filter values from URL query parameters.
// status accepts a comma-separated list.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		for part := range strings.SplitSeq(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				f.Statuses = append(f.Statuses, Status(part))
			}
		}
	}

	if pt := values.Get("project_type"); pt != "" {
		v := ProjectType(pt)
		f.ProjectType = &v
	}

	return f
}

// selectPage applies search, filters, sorting, and pagination to projects
// held in creation order. It backs the stores that cannot push the query down.
func selectPage(items []Project, page pagination.PageRequest, filters Filters) pagination.PageResult[Project] {
	matched := make([]Project, 0, len(items))
	for _, p := range items {
		if !filters.Match(p) || !matchesSearch(p, page.Search) {
			continue
		}
		matched = append(matched, p)
	}

	sortFields := page.Sort.Allowed(projection.Has)
	if len(sortFields) > 0 {
		slices.SortStableFunc(matched, func(a, b Project) int {
			for _, f := range sortFields {
				c := compareField(a, b, f.Field)
				if f.Descending {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}

	return pagination.Slice(matched, page)
}

func matchesSearch(p Project, search *string) bool {
	if search == nil || strings.TrimSpace(*search) == "" {
		return true
	}
	term := strings.ToLower(strings.TrimSpace(*search))
	return strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}

func compareField(a, b Project, field string) int {
	switch field {
	case "title":
		return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case "description":
		return cmp.Compare(a.Description, b.Description)
	case "project_type":
		return cmp.Compare(a.ProjectType, b.ProjectType)
	case "target_audience":
		return cmp.Compare(a.TargetAudience, b.TargetAudience)
	case "status":
		return cmp.Compare(a.Status.Rank(), b.Status.Rank())
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "id":
		return cmp.Compare(a.ID.String(), b.ID.String())
	}
	return 0
}
