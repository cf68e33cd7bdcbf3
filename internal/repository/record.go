// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import (
	"context"

	"wipecert/internal/model"
)

// RecordRepository defines persistence for certificate records using SQL
// queries only; no business logic here. The store is append-only: records are
// created exactly once and never updated, and a record becomes visible to
// FindByID only after its insert commits.
type RecordRepository interface {
	// Create inserts a new record row. Returns the stored record (may include
	// values set by the DB).
	Create(ctx context.Context, rec *model.Record) (*model.Record, error)

	// FindByID returns a record by its ID.
	FindByID(ctx context.Context, id string) (*model.Record, error)

	// List returns a paginated list of records and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Record], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
