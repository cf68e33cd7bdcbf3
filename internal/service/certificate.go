package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"wipecert/internal/admission"
	"wipecert/internal/cert"
	"wipecert/internal/extract"
	"wipecert/internal/model"
	"wipecert/internal/repository"
	"wipecert/internal/signing"
	"wipecert/internal/storage"
)

// Closed set of failure kinds for the issuance and verification pipeline.
// Every error leaving this package wraps exactly one of these, so callers
// match with errors.Is instead of inspecting error shapes.
var (
	ErrIDRequired      = errors.New("id is required")
	ErrReaderNil       = errors.New("reader is nil")
	ErrRejected        = errors.New("report not recognized as a wipe report")
	ErrKeyUnavailable  = errors.New("signing key unavailable")
	ErrArtifactFailure = errors.New("artifact generation failed")
	ErrStoreFailure    = errors.New("record store failure")
	ErrNotFound        = errors.New("record not found")
)

// snippetLimit bounds the extracted-text excerpt kept on the record.
const snippetLimit = 800

// Signer is the subset of the signing context the service depends on.
type Signer interface {
	Sign(payload []byte) (string, error)
	Verify(payload []byte, signatureB64 string) bool
	PublicKeyPEM() string
}

// IssueResult is returned to the uploader after a certificate is issued.
type IssueResult struct {
	Record         *model.Record `json:"record"`
	VerifyURL      string        `json:"verify_url"`
	CertificateURL string        `json:"certificate_url"`
	QRURL          string        `json:"qr_url"`
}

// VerificationResult is the structured trust result for one record. Found
// distinguishes "no such certificate" from "tampering detected"; rendering it
// for humans is the caller's job.
type VerificationResult struct {
	Found        bool          `json:"found"`
	Valid        bool          `json:"valid"`
	Record       *model.Record `json:"record,omitempty"`
	Signature    string        `json:"signature,omitempty"`
	PublicKeyPEM string        `json:"public_key_pem,omitempty"`
}

// RecordListResult is the service-level DTO for paginated records.
type RecordListResult struct {
	Items []model.Record `json:"data"`
	Total int            `json:"total"`
}

// CertificateService defines the use cases for issuing and verifying wipe
// certificates.
type CertificateService interface {
	// Issue runs the full pipeline for one submission: admission check,
	// record construction, signing, artifact generation, persistence. It is
	// all-or-nothing: any failure leaves no record and no artifacts behind.
	Issue(ctx context.Context, r io.Reader, originalName, contentType string) (*IssueResult, error)

	// Verify recomputes the canonical payload from the stored record and
	// checks the stored signature against the public key. Read-only and
	// idempotent; calling it any number of times yields the same result.
	Verify(ctx context.Context, id string) (*VerificationResult, error)

	// Get returns a single record by its ID.
	Get(ctx context.Context, id string) (*model.Record, error)

	// List returns records using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*RecordListResult, error)

	// Certificate streams the stored certificate PDF for a record.
	Certificate(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error)

	// Token streams the stored QR verification token for a record.
	Token(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error)

	// DownloadURL returns a presigned URL for the original uploaded report.
	DownloadURL(ctx context.Context, id string, expiry time.Duration) (string, error)
}

// certificateService is the concrete implementation of CertificateService.
type certificateService struct {
	store     storage.Storage
	repo      repository.RecordRepository
	signer    Signer
	extractor extract.TextExtractor
	baseURL   string
}

// NewCertificateService constructs a CertificateService. baseURL is the
// externally reachable root used to build verification and download URLs.
func NewCertificateService(store storage.Storage, repo repository.RecordRepository, signer Signer, extractor extract.TextExtractor, baseURL string) CertificateService {
	return &certificateService{
		store:     store,
		repo:      repo,
		signer:    signer,
		extractor: extractor,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

func (s *certificateService) Issue(ctx context.Context, r io.Reader, originalName, contentType string) (*IssueResult, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	// The delimiter of the canonical payload must never appear inside a
	// field, or verification could not rebuild the payload unambiguously.
	if strings.Contains(originalName, signing.PayloadDelimiter) {
		return nil, fmt.Errorf("%w: filename contains reserved character %q", ErrRejected, signing.PayloadDelimiter)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	text, err := s.extractor.Text(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: text extraction: %v", ErrRejected, err)
	}
	res := admission.Check(text)
	if !res.Admitted {
		return nil, fmt.Errorf("%w: %d of %d markers found", ErrRejected, res.Matched, len(admission.Markers))
	}

	id := uuid.New().String()
	uploadTime := time.Now().UTC().Format(time.RFC3339)

	signature, err := s.signer.Sign(signing.Payload(id, originalName, uploadTime))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}

	rec := &model.Record{
		ID:              id,
		OriginalName:    originalName,
		StoragePath:     path.Join("reports", id+filepath.Ext(originalName)),
		CertificatePath: path.Join("certificates", id+"-certificate.pdf"),
		TokenPath:       path.Join("tokens", id+".png"),
		MimeType:        contentType,
		Size:            int64(len(data)),
		UploadTime:      uploadTime,
		Snippet:         truncate(text, snippetLimit),
		Signature:       signature,
		CreatedAt:       time.Now().UTC(),
	}

	verifyURL := s.baseURL + "/verify/" + id

	certPDF, err := cert.RenderCertificate(rec, s.signer.PublicKeyPEM())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactFailure, err)
	}
	tokenPNG, err := cert.EncodeToken(verifyURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactFailure, err)
	}

	// Upload the report and both artifacts, rolling back every object already
	// uploaded if any later step fails. The record row goes in last, so a
	// persisted record always has its certificate and token in place.
	var uploaded []string
	rollback := func() {
		for _, key := range uploaded {
			_ = s.store.Delete(ctx, key)
		}
	}
	for _, obj := range []struct {
		key         string
		data        []byte
		contentType string
	}{
		{rec.StoragePath, data, contentType},
		{rec.CertificatePath, certPDF, "application/pdf"},
		{rec.TokenPath, tokenPNG, "image/png"},
	} {
		_, err := s.store.Put(ctx, obj.key, bytes.NewReader(obj.data), storage.PutObjectOptions{
			Size:        int64(len(obj.data)),
			ContentType: obj.contentType,
			Metadata:    map[string]string{"record-id": id},
		})
		if err != nil {
			rollback()
			return nil, fmt.Errorf("%w: upload %s: %v", ErrStoreFailure, obj.key, err)
		}
		uploaded = append(uploaded, obj.key)
	}

	if _, err := s.repo.Create(ctx, rec); err != nil {
		rollback()
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	return &IssueResult{
		Record:         rec,
		VerifyURL:      verifyURL,
		CertificateURL: s.baseURL + "/reports/" + id + "/certificate",
		QRURL:          s.baseURL + "/reports/" + id + "/qr",
	}, nil
}

func (s *certificateService) Verify(ctx context.Context, id string) (*VerificationResult, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	payload := signing.Payload(rec.ID, rec.OriginalName, rec.UploadTime)
	return &VerificationResult{
		Found:        true,
		Valid:        s.signer.Verify(payload, rec.Signature),
		Record:       rec,
		Signature:    rec.Signature,
		PublicKeyPEM: s.signer.PublicKeyPEM(),
	}, nil
}

// Get returns a record by ID.
func (s *certificateService) Get(ctx context.Context, id string) (*model.Record, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List returns paginated records without exposing repository types.
func (s *certificateService) List(ctx context.Context, limit, offset int) (*RecordListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &RecordListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *certificateService) Certificate(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	return s.artifact(ctx, id, func(rec *model.Record) string { return rec.CertificatePath })
}

func (s *certificateService) Token(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	return s.artifact(ctx, id, func(rec *model.Record) string { return rec.TokenPath })
}

func (s *certificateService) artifact(ctx context.Context, id string, key func(*model.Record) string) (io.ReadCloser, storage.ObjectInfo, error) {
	if id == "" {
		return nil, storage.ObjectInfo{}, ErrIDRequired
	}
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ObjectInfo{}, ErrNotFound
		}
		return nil, storage.ObjectInfo{}, err
	}
	return s.store.Get(ctx, key(rec))
}

// DownloadURL presigns a GET for the original report object.
func (s *certificateService) DownloadURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	if id == "" {
		return "", ErrIDRequired
	}
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return s.store.PresignGet(ctx, rec.StoragePath, expiry)
}

// truncate bounds s to at most limit runes without splitting a multi-byte
// character.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
