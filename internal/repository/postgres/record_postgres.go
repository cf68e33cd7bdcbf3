package postgres

import (
	"context"
	"database/sql"

	"wipecert/internal/model"
	"wipecert/internal/repository"
)

// RecordPostgres is a PostgreSQL implementation of repository.RecordRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type RecordPostgres struct {
	db *sql.DB
}

// NewRecordPostgres creates a new RecordPostgres repository.
func NewRecordPostgres(db *sql.DB) *RecordPostgres {
	return &RecordPostgres{db: db}
}

var _ repository.RecordRepository = (*RecordPostgres)(nil)

const recordColumns = `id, original_name, storage_path, certificate_path, token_path,
		mime_type, size, upload_time, snippet, signature, created_at`

// Create inserts a new record row and returns the stored record.
func (r *RecordPostgres) Create(ctx context.Context, rec *model.Record) (*model.Record, error) {
	const q = `
		INSERT INTO records (id, original_name, storage_path, certificate_path, token_path,
			mime_type, size, upload_time, snippet, signature, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + recordColumns
	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.OriginalName,
		rec.StoragePath,
		rec.CertificatePath,
		rec.TokenPath,
		rec.MimeType,
		rec.Size,
		rec.UploadTime,
		rec.Snippet,
		rec.Signature,
		rec.CreatedAt,
	)
	return scanRecord(row)
}

// FindByID fetches a single record by its ID.
func (r *RecordPostgres) FindByID(ctx context.Context, id string) (*model.Record, error) {
	const q = `
		SELECT ` + recordColumns + `
		FROM records
		WHERE id = $1
	`
	return scanRecord(r.db.QueryRowContext(ctx, q, id))
}

// List returns records using LIMIT/OFFSET pagination and a total count.
func (r *RecordPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Record], error) {
	const qCount = `SELECT COUNT(*) FROM records`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + recordColumns + `
		FROM records
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Record, 0)
	for rows.Next() {
		var rec model.Record
		if err := scanRecordInto(rows, &rec); err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Record]{
		Items: items,
		Total: total,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.Record, error) {
	var rec model.Record
	if err := scanRecordInto(row, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func scanRecordInto(row rowScanner, rec *model.Record) error {
	return row.Scan(
		&rec.ID,
		&rec.OriginalName,
		&rec.StoragePath,
		&rec.CertificatePath,
		&rec.TokenPath,
		&rec.MimeType,
		&rec.Size,
		&rec.UploadTime,
		&rec.Snippet,
		&rec.Signature,
		&rec.CreatedAt,
	)
}
