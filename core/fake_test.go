package core_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/leandroluk/querykit/core"
)

// fakeDriver keeps records in memory and understands the operators the
// core package itself emits (EQ, IN, NIL, AND).
type fakeDriver struct {
	mu      sync.Mutex
	tables  map[string][]core.Record
	queries []*core.Descriptor
	err     error

	begun, committed, rolledBack int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{tables: map[string][]core.Record{}}
}

func (d *fakeDriver) FindMany(ctx context.Context, schema *core.SchemaCore, query *core.Descriptor) ([]core.Record, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queries = append(d.queries, query)
	if d.err != nil {
		return nil, d.err
	}
	out := []core.Record{}
	for _, record := range d.tables[schema.Collection] {
		if query == nil || matches(query.Where, record) {
			copied := core.Record{}
			for k, v := range record {
				copied[k] = v
			}
			out = append(out, copied)
		}
	}
	return out, nil
}

func (d *fakeDriver) Insert(ctx context.Context, schema *core.SchemaCore, records ...core.Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.tables[schema.Collection] = append(d.tables[schema.Collection], records...)
	return nil
}

func (d *fakeDriver) Connect(context.Context) error { return nil }
func (d *fakeDriver) Ping(context.Context) error    { return nil }
func (d *fakeDriver) Close(context.Context) error   { return nil }

func (d *fakeDriver) Transaction(context.Context) (core.Transaction, error) {
	d.begun++
	return &fakeTx{driver: d}, nil
}

type fakeTx struct{ driver *fakeDriver }

func (tx *fakeTx) Commit(context.Context) error {
	tx.driver.committed++
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	tx.driver.rolledBack++
	return nil
}

func matches(condition *core.Condition, record core.Record) bool {
	if condition.IsEmpty() {
		return true
	}
	switch condition.Operator {
	case core.OpAnd:
		for _, child := range condition.Children {
			if !matches(child, record) {
				return false
			}
		}
		return true
	case core.OpOr:
		for _, child := range condition.Children {
			if matches(child, record) {
				return true
			}
		}
		return false
	case core.OpEq:
		return fmt.Sprint(record[condition.FieldName]) == fmt.Sprint(condition.Value)
	case core.OpNil:
		return record[condition.FieldName] == nil
	case core.OpIn:
		for _, v := range condition.Value.([]any) {
			if fmt.Sprint(record[condition.FieldName]) == fmt.Sprint(v) {
				return true
			}
		}
		return false
	}
	return false
}
