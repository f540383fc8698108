package docstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Aleph-Alpha/docstore/v1/document"
	"github.com/Aleph-Alpha/docstore/v1/filters"
	"github.com/Aleph-Alpha/docstore/v1/postgres"
)

// insertBatchSize bounds the rows per INSERT statement; postgres caps a
// statement at 65535 bind parameters.
const insertBatchSize = 500

// Conn hands out the *gorm.DB the store runs on. *postgres.Postgres
// satisfies it, so a reconnect is picked up by the next operation.
type Conn interface {
	DB() *gorm.DB
}

type gormConn struct {
	db *gorm.DB
}

func (c gormConn) DB() *gorm.DB {
	return c.db
}

// GormConn wraps a fixed *gorm.DB, e.g. a transaction.
func GormConn(db *gorm.DB) Conn {
	return gormConn{db: db}
}

// Store persists documents in the table of a gorm model and answers
// filter, embedding and keyword queries over it.
//
// A Store holds no per-call state and may be shared between goroutines.
type Store struct {
	conn      Conn
	modelType reflect.Type
	modelName string
	mapping   *Mapping
	opts      options
}

// New builds a store over model, which must be a gorm model (or pointer
// to one) with columns for at least the id and meta attributes.
//
// Options are applied in this order: those registered with RegisterModel,
// those returned by the model's DocumentStoreOptions, then opts.
func New(conn Conn, model any, opts ...Option) (*Store, error) {
	if conn == nil || conn.DB() == nil {
		return nil, errors.New("docstore: a database connection is required")
	}
	if model == nil {
		return nil, errors.New("docstore: a model is required")
	}

	modelType := reflect.TypeOf(model)
	for modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	o := defaultOptions()
	name, registered := lookupModelType(modelType)
	if registered != nil {
		for _, opt := range registered.opts {
			opt(&o)
		}
	}
	if mo, ok := reflect.New(modelType).Interface().(ModelOptions); ok {
		for _, opt := range mo.DocumentStoreOptions() {
			opt(&o)
		}
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.vectorFunction != "" && !o.vectorFunction.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVectorFunction, string(o.vectorFunction))
	}

	stmt := &gorm.Statement{DB: conn.DB()}
	if err := stmt.Parse(reflect.New(modelType).Interface()); err != nil {
		return nil, fmt.Errorf("failed to parse document model %s: %w", modelType, err)
	}

	mapping, err := NewMapping(stmt.Schema, o.fieldMap, o.logger)
	if err != nil {
		return nil, err
	}

	return &Store{
		conn:      conn,
		modelType: modelType,
		modelName: name,
		mapping:   mapping,
		opts:      o,
	}, nil
}

// Mapping exposes the resolved field mapping.
func (s *Store) Mapping() *Mapping {
	return s.mapping
}

// Language is the text search configuration used by keyword retrieval.
func (s *Store) Language() string {
	return s.opts.language
}

// VectorFunction is the store's default ranking function; empty if none.
func (s *Store) VectorFunction() VectorFunction {
	return s.opts.vectorFunction
}

// NewModel returns a pointer to a zero value of the store's model, for
// use with Migrate.
func (s *Store) NewModel() any {
	return reflect.New(s.modelType).Interface()
}

// WriteDocuments stores docs in a single transaction and returns how many
// were written. Documents without an ID get one derived from their
// content. Under PolicyFail any ID that already exists, in the table or
// earlier in docs, aborts the whole batch with ErrDuplicateDocument.
// PolicySkip keeps the stored version; PolicyOverwrite replaces it, and
// the last of several documents sharing an ID wins.
func (s *Store) WriteDocuments(ctx context.Context, docs []document.Document, policy document.DuplicatePolicy) (int, error) {
	policy = policy.Effective()
	switch policy {
	case document.PolicyFail, document.PolicySkip, document.PolicyOverwrite:
	default:
		return 0, fmt.Errorf("unknown duplicate policy %q", string(policy))
	}
	if len(docs) == 0 {
		return 0, nil
	}

	written := 0
	meta := map[string]interface{}{"policy": string(policy), "batch": len(docs)}
	err := s.instrument(ctx, "write_documents", meta, func(ctx context.Context) (int64, error) {
		rows, ids, err := s.prepareRows(docs, policy)
		if err != nil {
			return 0, err
		}

		err = s.conn.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			existing, err := s.existingIDs(tx, ids)
			if err != nil {
				return err
			}

			idColumn, _ := s.mapping.Column(FieldID)
			insert := make([]map[string]any, 0, len(rows))
			var replace []string
			for i, row := range rows {
				if !existing[ids[i]] {
					insert = append(insert, row)
					continue
				}
				switch policy {
				case document.PolicyFail:
					return fmt.Errorf("%w: duplicate document found for id %s", ErrDuplicateDocument, ids[i])
				case document.PolicySkip:
					continue
				case document.PolicyOverwrite:
					replace = append(replace, ids[i])
					insert = append(insert, row)
				}
			}

			if len(replace) > 0 {
				del := tx.Table(s.mapping.Table()).
					Where(clause.IN{Column: clause.Column{Name: idColumn}, Values: toInterfaces(replace)}).
					Delete(nil)
				if del.Error != nil {
					return fmt.Errorf("failed to delete overwritten documents: %w", postgres.TranslateError(del.Error))
				}
			}

			if err := s.insertRows(tx, insert); err != nil {
				return err
			}
			written = len(insert)
			return nil
		})
		return int64(written), err
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// prepareRows converts docs to rows. Duplicate IDs within docs fail the
// batch under PolicyFail, keep the first under PolicySkip and the last
// under PolicyOverwrite.
func (s *Store) prepareRows(docs []document.Document, policy document.DuplicatePolicy) ([]map[string]any, []string, error) {
	rows := make([]map[string]any, 0, len(docs))
	ids := make([]string, 0, len(docs))
	index := make(map[string]int, len(docs))

	for _, doc := range docs {
		doc = document.EnsureID(doc)
		row, err := s.mapping.FromDocument(doc)
		if err != nil {
			return nil, nil, err
		}

		if i, seen := index[doc.ID]; seen {
			switch policy {
			case document.PolicyFail:
				return nil, nil, fmt.Errorf("%w: duplicate document found for id %s", ErrDuplicateDocument, doc.ID)
			case document.PolicySkip:
				continue
			case document.PolicyOverwrite:
				rows[i] = row
				continue
			}
		}

		index[doc.ID] = len(rows)
		rows = append(rows, row)
		ids = append(ids, doc.ID)
	}
	return rows, ids, nil
}

func (s *Store) existingIDs(tx *gorm.DB, ids []string) (map[string]bool, error) {
	idColumn, _ := s.mapping.Column(FieldID)
	existing := make(map[string]bool, len(ids))

	for start := 0; start < len(ids); start += insertBatchSize {
		end := min(start+insertBatchSize, len(ids))
		var found []string
		err := tx.Table(s.mapping.Table()).
			Where(clause.IN{Column: clause.Column{Name: idColumn}, Values: toInterfaces(ids[start:end])}).
			Pluck(idColumn, &found).Error
		if err != nil {
			return nil, fmt.Errorf("failed to look up existing documents: %w", postgres.TranslateError(err))
		}
		for _, id := range found {
			existing[id] = true
		}
	}
	return existing, nil
}

// insertRows inserts rows with one column list shared by every row, so
// absent attributes are written as NULL.
func (s *Store) insertRows(tx *gorm.DB, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}

	var columns []clause.Column
	var names []string
	for _, field := range s.mapping.present() {
		name, _ := s.mapping.Column(field)
		for _, row := range rows {
			if _, ok := row[name]; ok {
				columns = append(columns, clause.Column{Name: name})
				names = append(names, name)
				break
			}
		}
	}

	for start := 0; start < len(rows); start += insertBatchSize {
		end := min(start+insertBatchSize, len(rows))
		values := make([][]interface{}, 0, end-start)
		for _, row := range rows[start:end] {
			v := make([]interface{}, len(names))
			for i, name := range names {
				v[i] = row[name]
			}
			values = append(values, v)
		}

		err := tx.Exec("INSERT INTO ? ?",
			clause.Table{Name: s.mapping.Table()},
			clause.Values{Columns: columns, Values: values},
		).Error
		if err != nil {
			return fmt.Errorf("failed to insert documents: %w", postgres.TranslateError(err))
		}
	}
	return nil
}

// DeleteDocuments removes the documents with the given IDs. Unknown IDs
// are ignored; an empty list is a no-op.
func (s *Store) DeleteDocuments(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	meta := map[string]interface{}{"batch": len(ids)}
	return s.instrument(ctx, "delete_documents", meta, func(ctx context.Context) (int64, error) {
		idColumn, _ := s.mapping.Column(FieldID)
		res := s.conn.DB().WithContext(ctx).Table(s.mapping.Table()).
			Where(clause.IN{Column: clause.Column{Name: idColumn}, Values: toInterfaces(ids)}).
			Delete(nil)
		if res.Error != nil {
			return 0, fmt.Errorf("failed to delete documents: %w", postgres.TranslateError(res.Error))
		}
		return res.RowsAffected, nil
	})
}

// CountDocuments returns the number of stored documents.
func (s *Store) CountDocuments(ctx context.Context) (int64, error) {
	return s.Query().Count(ctx)
}

// CountDocumentsFiltered returns the number of documents matching f. A
// nil filter counts everything.
func (s *Store) CountDocumentsFiltered(ctx context.Context, f filters.Filter) (int64, error) {
	qs, err := s.FilterQuery(f)
	if err != nil {
		return 0, err
	}
	return qs.Count(ctx)
}

// Query returns an unfiltered QuerySet over the model.
func (s *Store) Query() *QuerySet {
	return newQuerySet(s, "filter_documents")
}

// FilterQuery returns a QuerySet restricted by f. Translation errors are
// returned immediately.
func (s *Store) FilterQuery(f filters.Filter) (*QuerySet, error) {
	qs := s.Query().Where(f)
	if err := qs.Err(); err != nil {
		return nil, err
	}
	return qs, nil
}

// FilterDocuments returns every document matching f, ordered by ID.
func (s *Store) FilterDocuments(ctx context.Context, f filters.Filter) ([]document.Document, error) {
	qs, err := s.FilterQuery(f)
	if err != nil {
		return nil, err
	}
	return qs.Documents(ctx)
}

func toInterfaces(ids []string) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
