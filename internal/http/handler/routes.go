package handler

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"wipecert/internal/http/middleware"
	"wipecert/internal/service"
	"wipecert/internal/storage"
)

// downloadExpiry bounds how long a presigned report download URL stays valid.
const downloadExpiry = 15 * time.Minute

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic; the issuance pipeline
// lives entirely in the service.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.CertificateService, apiKey string) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	app.Post("/validate-key", ValidateKey(apiKey))

	// Issuance is gated by the shared secret; verification and downloads are
	// public so a certificate holder can check a QR scan without credentials.
	app.Post("/reports", middleware.APIKey(apiKey), UploadReport(svc))
	app.Get("/reports", ListReports(svc))
	app.Get("/reports/:id", GetReport(svc))
	app.Get("/reports/:id/download", DownloadReport(svc))
	app.Get("/reports/:id/certificate", DownloadCertificate(svc))
	app.Get("/reports/:id/qr", DownloadToken(svc))

	app.Get("/verify/:id", VerifyCertificate(svc))
}

// HealthCheck reports readiness: it checks DB connectivity only.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ValidateKey lets the frontend check the shared secret before attempting an
// upload. The key is accepted from the x-api-key header only, and compared in
// constant time like the upload gate itself.
func ValidateKey(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got := c.Get(middleware.APIKeyHeader)
		if apiKey == "" || subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"valid": false})
		}
		return c.JSON(fiber.Map{"valid": true})
	}
}

// UploadReport accepts a multipart wipe report (field name: report) and runs
// the full issuance pipeline.
func UploadReport(svc service.CertificateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("report")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "report file is required")
		}

		ct := fh.Header.Get("Content-Type")
		if ct != "application/pdf" {
			return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_MEDIA_TYPE", "only PDF reports are accepted")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		res, err := svc.Issue(c.UserContext(), f, fh.Filename, ct)
		if err != nil {
			return writeIssueError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// writeIssueError maps the service's closed error kinds onto HTTP responses.
func writeIssueError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrRejected):
		return writeError(c, fiber.StatusBadRequest, "REPORT_REJECTED", "report not recognized as a valid wipe report")
	case errors.Is(err, service.ErrKeyUnavailable):
		return writeError(c, fiber.StatusInternalServerError, "KEY_UNAVAILABLE", "signing key unavailable")
	case errors.Is(err, service.ErrArtifactFailure):
		return writeError(c, fiber.StatusInternalServerError, "ARTIFACT_FAILURE", "certificate generation failed")
	case errors.Is(err, service.ErrStoreFailure):
		return writeError(c, fiber.StatusInternalServerError, "STORE_FAILURE", "record could not be stored")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ListReports returns certified records with limit & offset.
func ListReports(svc service.CertificateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetReport returns the stored record metadata by ID.
func GetReport(svc service.CertificateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, herr := recordID(c)
		if herr != nil {
			return herr
		}
		rec, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeLookupError(c, err)
		}
		return c.JSON(rec)
	}
}

// VerifyCertificate recomputes the signature check for a record and returns
// the structured trust result. Not-found gets its own error code, distinct
// from an invalid signature, which is a 200 with valid=false.
func VerifyCertificate(svc service.CertificateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, herr := recordID(c)
		if herr != nil {
			return herr
		}
		res, err := svc.Verify(c.UserContext(), id)
		if err != nil {
			return writeLookupError(c, err)
		}
		return c.JSON(res)
	}
}

// DownloadReport redirects to a presigned URL for the original report.
func DownloadReport(svc service.CertificateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, herr := recordID(c)
		if herr != nil {
			return herr
		}
		url, err := svc.DownloadURL(c.UserContext(), id, downloadExpiry)
		if err != nil {
			return writeLookupError(c, err)
		}
		return c.Redirect(url, fiber.StatusFound)
	}
}

// DownloadCertificate streams the certificate PDF for a record.
func DownloadCertificate(svc service.CertificateService) fiber.Handler {
	return streamArtifact(svc.Certificate)
}

// DownloadToken streams the QR verification token image for a record.
func DownloadToken(svc service.CertificateService) fiber.Handler {
	return streamArtifact(svc.Token)
}

func streamArtifact(fetch func(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, herr := recordID(c)
		if herr != nil {
			return herr
		}
		rc, info, err := fetch(c.UserContext(), id)
		if err != nil {
			return writeLookupError(c, err)
		}
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		return c.SendStream(rc, int(info.Size))
	}
}

// recordID validates the :id path segment; it writes the error response
// itself when the id is malformed.
func recordID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}
	return id, nil
}

func writeLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "no certificate for that id")
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
