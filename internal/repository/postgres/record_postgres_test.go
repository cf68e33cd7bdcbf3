package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"wipecert/internal/model"
	"wipecert/internal/repository"
)

var recordCols = []string{
	"id", "original_name", "storage_path", "certificate_path", "token_path",
	"mime_type", "size", "upload_time", "snippet", "signature", "created_at",
}

func testRecord() *model.Record {
	return &model.Record{
		ID:              "test-uuid",
		OriginalName:    "wipe-report.pdf",
		StoragePath:     "reports/test-uuid.pdf",
		CertificatePath: "certificates/test-uuid-certificate.pdf",
		TokenPath:       "tokens/test-uuid.png",
		MimeType:        "application/pdf",
		Size:            20480,
		UploadTime:      "2024-05-01T10:00:00Z",
		Snippet:         "Wipe Record Device Wipe Method Status",
		Signature:       "c2lnbmF0dXJl",
		CreatedAt:       time.Now().UTC(),
	}
}

func recordRow(rec *model.Record) *sqlmock.Rows {
	return sqlmock.NewRows(recordCols).
		AddRow(rec.ID, rec.OriginalName, rec.StoragePath, rec.CertificatePath, rec.TokenPath,
			rec.MimeType, rec.Size, rec.UploadTime, rec.Snippet, rec.Signature, rec.CreatedAt)
}

func TestRecordPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRecordPostgres(db)
	ctx := context.Background()
	rec := testRecord()

	mock.ExpectQuery("INSERT INTO records").
		WithArgs(rec.ID, rec.OriginalName, rec.StoragePath, rec.CertificatePath, rec.TokenPath,
			rec.MimeType, rec.Size, rec.UploadTime, rec.Snippet, rec.Signature, rec.CreatedAt).
		WillReturnRows(recordRow(rec))

	result, err := repo.Create(ctx, rec)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, rec.ID, result.ID)
	assert.Equal(t, rec.Signature, result.Signature)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRecordPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rec := testRecord()
		mock.ExpectQuery("SELECT (.+) FROM records WHERE id = ?").
			WithArgs(rec.ID).
			WillReturnRows(recordRow(rec))

		got, err := repo.FindByID(ctx, rec.ID)

		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.Equal(t, rec.UploadTime, got.UploadTime)
		assert.Equal(t, rec.Signature, got.Signature)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM records WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.FindByID(ctx, "missing")

		assert.Error(t, err)
		assert.True(t, errors.Is(err, sql.ErrNoRows))
		assert.Nil(t, got)
	})
}

func TestRecordPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRecordPostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM records").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		mock.ExpectQuery("SELECT (.+) FROM records ORDER BY").
			WithArgs(10, 0).
			WillReturnRows(recordRow(testRecord()))

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
	})

	t.Run("empty", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM records").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		mock.ExpectQuery("SELECT (.+) FROM records ORDER BY").
			WithArgs(10, 0).
			WillReturnRows(sqlmock.NewRows(recordCols))

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

		assert.NoError(t, err)
		assert.Equal(t, 0, res.Total)
		assert.Empty(t, res.Items)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM records").
			WillReturnError(errors.New("db error"))

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

		assert.Error(t, err)
		assert.Nil(t, res)
	})
}
