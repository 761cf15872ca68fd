// Package record defines the ordered field set produced for each task.
//
// A Record is one row's contribution before it enters a column store:
// an insertion-ordered sequence of uniquely named values. Unlike a plain
// map, iteration order is deterministic, which keeps column creation
// order stable across runs.
package record

import (
	"github.com/tabrun/tabrun/pkg/pool"
)

// Field is a single named value within a record.
type Field struct {
	Name  string
	Value interface{}
}

// Record is an insertion-ordered set of named values. Field names are
// unique within one record; setting an existing name replaces its value
// in place without changing its position.
type Record struct {
	fields []Field
	index  map[string]int
}

// New creates an empty record.
func New() *Record {
	return &Record{
		fields: make([]Field, 0, 8),
		index:  make(map[string]int, 8),
	}
}

// Set stores a value under the given name. Existing names are replaced
// in place, preserving insertion order.
func (r *Record) Set(name string, value interface{}) *Record {
	if i, ok := r.index[name]; ok {
		r.fields[i].Value = value
		return r
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, Field{Name: name, Value: value})
	return r
}

// Get returns the value stored under name, and whether it exists.
func (r *Record) Get(name string) (interface{}, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.fields[i].Value, true
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// Fields returns the fields in insertion order. The returned slice is
// owned by the record and must not be mutated.
func (r *Record) Fields() []Field {
	return r.fields
}

// Release returns the record to the shared pool. The record must not be
// used after Release.
func (r *Record) Release() {
	recordPool.Put(r)
}

// recordPool recycles records across task processing calls.
var recordPool = pool.New(
	func() *Record { return New() },
	func(r *Record) {
		r.fields = r.fields[:0]
		for k := range r.index {
			delete(r.index, k)
		}
	},
)

// Get retrieves a cleared record from the shared pool.
func Get() *Record {
	return recordPool.Get()
}
