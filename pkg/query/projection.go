// Package query builds parameterized SQL over a projected table.
package query

import "strings"

// ProjectionMap binds the property names a client may reference to the
// alias-qualified columns of one table. Filtering and sorting accept only
// mapped names.
type ProjectionMap struct {
	from    string
	alias   string
	index   map[string]int
	columns []string
	sorts   map[string]string
}

// NewProjectionMap starts a projection over schema.table under alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		from:  schema + "." + table + " " + alias,
		alias: alias,
		index: map[string]int{},
		sorts: map[string]string{},
	}
}

// Project maps property to column. Re-projecting a property replaces its
// column in place so the select order is stable.
func (p *ProjectionMap) Project(column, property string) *ProjectionMap {
	qualified := p.alias + "." + column
	if i, ok := p.index[property]; ok {
		p.columns[i] = qualified
		return p
	}
	p.index[property] = len(p.columns)
	p.columns = append(p.columns, qualified)
	return p
}

// From is the FROM clause target, "schema.table alias".
func (p *ProjectionMap) From() string { return p.from }

// Has reports whether property is mapped.
func (p *ProjectionMap) Has(property string) bool {
	_, ok := p.index[property]
	return ok
}

// Column resolves property to its qualified column. Unmapped names pass
// through unchanged.
func (p *ProjectionMap) Column(property string) string {
	if i, ok := p.index[property]; ok {
		return p.columns[i]
	}
	return property
}

// SortBy orders property by expr instead of its column. expr may reference
// the column through the {col} placeholder.
func (p *ProjectionMap) SortBy(property, expr string) *ProjectionMap {
	p.sorts[property] = expr
	return p
}

// SortColumn resolves the ORDER BY term for property.
func (p *ProjectionMap) SortColumn(property string) string {
	col := p.Column(property)
	if expr, ok := p.sorts[property]; ok {
		return strings.ReplaceAll(expr, "{col}", col)
	}
	return col
}

// Columns is the select list in projection order.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columns, ", ")
}
