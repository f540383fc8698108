package docstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Aleph-Alpha/docstore/v1/document"
	"github.com/Aleph-Alpha/docstore/v1/filters"
	"github.com/Aleph-Alpha/docstore/v1/postgres"
)

// QuerySet is a lazily evaluated query over the store's model. Every
// builder method returns a new QuerySet; nothing runs until Documents,
// Count or First is called. Errors from building are reported on
// evaluation.
type QuerySet struct {
	store     *Store
	operation string
	where     []clause.Expression
	score     *clause.Expr
	order     []clause.OrderByColumn
	limit     int
	meta      map[string]interface{}
	err       error
}

func newQuerySet(s *Store, operation string) *QuerySet {
	return &QuerySet{store: s, operation: operation}
}

func (q *QuerySet) clone() *QuerySet {
	c := *q
	c.where = append([]clause.Expression(nil), q.where...)
	c.order = append([]clause.OrderByColumn(nil), q.order...)
	if q.meta != nil {
		c.meta = make(map[string]interface{}, len(q.meta))
		for k, v := range q.meta {
			c.meta[k] = v
		}
	}
	return &c
}

// Where narrows the query by f. It may be called repeatedly; conditions
// are combined with AND.
func (q *QuerySet) Where(f filters.Filter) *QuerySet {
	c := q.clone()
	if c.err != nil || f == nil {
		return c
	}
	expr, err := TranslateFilter(c.store.mapping, f)
	if err != nil {
		c.err = err
		return c
	}
	c.where = append(c.where, expr)
	return c
}

// Limit caps the number of rows. Zero or less removes the cap.
func (q *QuerySet) Limit(n int) *QuerySet {
	c := q.clone()
	c.limit = n
	return c
}

// Order sorts by a document attribute, a model column or "score". Orders
// accumulate; the ranking order of retrieval querysets comes first.
func (q *QuerySet) Order(field string, desc bool) *QuerySet {
	c := q.clone()
	if c.err != nil {
		return c
	}
	var column clause.Column
	switch {
	case field == scoreAlias && c.score != nil:
		column = clause.Column{Name: scoreAlias}
	default:
		t, err := c.store.mapping.resolveField(field)
		if err != nil {
			c.err = err
			return c
		}
		if t.json && len(t.path) > 0 {
			c.err = fmt.Errorf("%w: cannot order by json path %q", filters.ErrInvalidFilter, field)
			return c
		}
		column = t.column
	}
	c.order = append(c.order, clause.OrderByColumn{Column: column, Desc: desc})
	return c
}

// Err returns the first error recorded while building the query.
func (q *QuerySet) Err() error {
	return q.err
}

// withScore ranks by score ahead of any other order. A previous score and
// its order entries are dropped.
func (q *QuerySet) withScore(score clause.Expr, desc bool) *QuerySet {
	c := q.clone()
	c.score = &score
	order := make([]clause.OrderByColumn, 0, len(c.order)+1)
	order = append(order, clause.OrderByColumn{Column: clause.Column{Name: scoreAlias}, Desc: desc})
	for _, o := range c.order {
		if o.Column.Name == scoreAlias {
			continue
		}
		order = append(order, o)
	}
	c.order = order
	return c
}

func (q *QuerySet) withMeta(key string, value interface{}) *QuerySet {
	c := q.clone()
	if c.meta == nil {
		c.meta = map[string]interface{}{}
	}
	c.meta[key] = value
	return c
}

func (q *QuerySet) selectExpr() clause.Expr {
	m := q.store.mapping
	fields := m.present()

	sql := ""
	vars := make([]interface{}, 0, len(fields)+2)
	for i, field := range fields {
		if i > 0 {
			sql += ", "
		}
		sql += "?"
		column, _ := m.Column(field)
		vars = append(vars, clause.Column{Name: column, Alias: field})
	}
	if q.score != nil {
		sql += ", (?) AS ?"
		vars = append(vars, *q.score, clause.Column{Name: scoreAlias})
	}
	return clause.Expr{SQL: sql, Vars: vars}
}

// build applies the query to tx. withOrder controls ordering and the
// limit, which Count applies through a subquery.
func (q *QuerySet) build(tx *gorm.DB, withOrder bool) *gorm.DB {
	tx = tx.Table(q.store.mapping.Table())
	if len(q.where) > 0 {
		tx = tx.Clauses(clause.Where{Exprs: q.where})
	}
	if withOrder {
		order := append([]clause.OrderByColumn(nil), q.order...)
		idColumn, _ := q.store.mapping.Column(FieldID)
		order = append(order, clause.OrderByColumn{Column: clause.Column{Name: idColumn}})
		tx = tx.Clauses(clause.OrderBy{Columns: order})
		if q.limit > 0 {
			tx = tx.Limit(q.limit)
		}
	}
	return tx
}

func (q *QuerySet) find(tx *gorm.DB) *gorm.DB {
	var records []record
	return q.build(tx, true).Clauses(clause.Select{Expression: q.selectExpr()}).Find(&records)
}

// SQL renders the query without running it. Intended for debugging and
// explain output.
func (q *QuerySet) SQL() (string, error) {
	if q.err != nil {
		return "", q.err
	}
	db := q.store.conn.DB()
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return q.find(tx)
	}), nil
}

// Documents runs the query and converts every row.
func (q *QuerySet) Documents(ctx context.Context) ([]document.Document, error) {
	if q.err != nil {
		return nil, q.err
	}

	var docs []document.Document
	err := q.store.instrument(ctx, q.operation, q.meta, func(ctx context.Context) (int64, error) {
		var records []record
		tx := q.build(q.store.conn.DB().WithContext(ctx), true).
			Clauses(clause.Select{Expression: q.selectExpr()})
		if err := tx.Find(&records).Error; err != nil {
			return 0, fmt.Errorf("failed to query documents: %w", postgres.TranslateError(err))
		}

		docs = make([]document.Document, 0, len(records))
		for _, r := range records {
			doc, err := q.store.mapping.ToDocument(r)
			if err != nil {
				return 0, err
			}
			docs = append(docs, doc)
		}
		return int64(len(docs)), nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// First returns the first document or ErrDocumentNotFound.
func (q *QuerySet) First(ctx context.Context) (document.Document, error) {
	docs, err := q.Limit(1).Documents(ctx)
	if err != nil {
		return document.Document{}, err
	}
	if len(docs) == 0 {
		return document.Document{}, ErrDocumentNotFound
	}
	return docs[0], nil
}

// Count returns the number of rows the query would return, honouring the
// limit.
func (q *QuerySet) Count(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}

	var count int64
	err := q.store.instrument(ctx, "count_documents", q.meta, func(ctx context.Context) (int64, error) {
		db := q.store.conn.DB().WithContext(ctx)
		var tx *gorm.DB
		if q.limit > 0 {
			sub := q.build(db.Session(&gorm.Session{NewDB: true}), true).
				Clauses(clause.Select{Expression: q.selectExpr()})
			tx = db.Table("(?) AS counted", sub)
		} else {
			tx = q.build(db, false)
		}
		if err := tx.Count(&count).Error; err != nil {
			return 0, fmt.Errorf("failed to count documents: %w", postgres.TranslateError(err))
		}
		return count, nil
	})
	return count, err
}
