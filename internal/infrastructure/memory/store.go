// Package memory implementa los puertos del libro de stock sobre go-memdb.
// Las transacciones de escritura de memdb se serializan y Abort descarta todo lo staged,
// lo que da la misma semántica todo-o-nada que el backend PostgreSQL. Se usa con
// STORAGE_DRIVER=memory (desarrollo, demos) y en los tests de los casos de uso.
package memory

import (
	"fmt"
	"sync/atomic"

	"github.com/hashicorp/go-memdb"
)

const (
	tableItems        = "stock_items"
	tableBatches      = "stock_batches"
	tableTransactions = "stock_transactions"
	tablePending      = "pending_deductions"
)

// Store base de datos en memoria compartida por repositorios y TxRunner.
type Store struct {
	db  *memdb.MemDB
	seq atomic.Int64 // orden de inserción de asientos del libro
}

// NewStore crea la base en memoria con su esquema.
func NewStore() (*Store, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("memdb: crear esquema: %w", err)
	}
	return &Store{db: db}, nil
}

func schema() *memdb.DBSchema {
	id := &memdb.IndexSchema{Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "ID"}}
	byItem := &memdb.IndexSchema{Name: "item", Indexer: &memdb.StringFieldIndex{Field: "ItemID"}}
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableItems: {
				Name: tableItems,
				Indexes: map[string]*memdb.IndexSchema{
					"id":   id,
					"code": {Name: "code", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "ItemCode"}},
				},
			},
			tableBatches: {
				Name:    tableBatches,
				Indexes: map[string]*memdb.IndexSchema{"id": id, "item": byItem},
			},
			tableTransactions: {
				Name: tableTransactions,
				Indexes: map[string]*memdb.IndexSchema{
					"id":       id,
					"item":     byItem,
					"movement": {Name: "movement", Indexer: &memdb.StringFieldIndex{Field: "MovementID"}},
				},
			},
			tablePending: {
				Name: tablePending,
				Indexes: map[string]*memdb.IndexSchema{
					"id":     id,
					"status": {Name: "status", Indexer: &memdb.StringFieldIndex{Field: "Status"}},
				},
			},
		},
	}
}

// querier ejecuta sobre la txn del TxRunner si existe, o abre una propia (equivalente a pool vs tx).
type querier struct {
	store *Store
	txn   *memdb.Txn
}

func (q querier) read(fn func(txn *memdb.Txn) error) error {
	if q.txn != nil {
		return fn(q.txn)
	}
	txn := q.store.db.Txn(false)
	defer txn.Abort()
	return fn(txn)
}

func (q querier) write(fn func(txn *memdb.Txn) error) error {
	if q.txn != nil {
		return fn(q.txn)
	}
	txn := q.store.db.Txn(true)
	if err := fn(txn); err != nil {
		txn.Abort()
		return err
	}
	txn.Commit()
	return nil
}

// exists reporta si hay un registro con ese valor de índice; un error del índice no cuenta como ausencia.
func exists(txn *memdb.Txn, table, index string, args ...interface{}) (bool, error) {
	obj, err := txn.First(table, index, args...)
	if err != nil {
		return false, fmt.Errorf("memdb: first %s.%s: %w", table, index, err)
	}
	return obj != nil, nil
}

func collect[T any](txn *memdb.Txn, table, index string, args ...interface{}) ([]T, error) {
	it, err := txn.Get(table, index, args...)
	if err != nil {
		return nil, fmt.Errorf("memdb: get %s.%s: %w", table, index, err)
	}
	var out []T
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, obj.(T))
	}
	return out, nil
}
