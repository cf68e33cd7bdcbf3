// Package cert renders the issuance artifacts: the signed certificate PDF
// and the scannable QR verification token. Both render into memory; callers
// persist the finished bytes, so a failed render leaves nothing behind.
package cert

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"wipecert/internal/model"
)

// Issuer is the name printed on every certificate.
const Issuer = "Wipe-Certs System"

const statement = "This certificate attests that the uploaded wipe report indicates a " +
	"completed data wipe. The signature below cryptographically signs the " +
	"certificate metadata for verification."

// RenderCertificate produces the certificate PDF for a record: identifying
// metadata, the attestation statement and the base64 signature on the first
// page, and the PEM public key on a second page so a reader with no network
// access can verify the signature offline.
func RenderCertificate(rec *model.Record, publicKeyPEM string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(18, 18, 18)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 20)
	doc.SetTextColor(11, 60, 74)
	doc.CellFormat(0, 12, "Data Wipe Certificate", "", 1, "C", false, 0, "")
	doc.Ln(6)

	doc.SetFont("Helvetica", "", 12)
	doc.SetTextColor(34, 34, 34)
	doc.CellFormat(0, 7, fmt.Sprintf("Certificate ID: %s", rec.ID), "", 1, "L", false, 0, "")
	doc.Ln(2)
	doc.CellFormat(0, 7, fmt.Sprintf("Original filename: %s", rec.OriginalName), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 7, fmt.Sprintf("Upload time: %s", rec.UploadTime), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 7, fmt.Sprintf("File size: %d bytes", rec.Size), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 7, fmt.Sprintf("Signed by: %s", Issuer), "", 1, "L", false, 0, "")
	doc.Ln(6)

	doc.SetFont("Helvetica", "U", 13)
	doc.CellFormat(0, 8, "Statement:", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.MultiCell(0, 6, statement, "", "L", false)
	doc.Ln(6)

	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 7, "Signature (base64):", "", 1, "L", false, 0, "")
	doc.SetFont("Courier", "", 9)
	doc.SetTextColor(0, 0, 0)
	// MultiCell breaks the unbroken base64 run across lines.
	doc.MultiCell(0, 5, rec.Signature, "", "L", false)

	doc.AddPage()
	doc.SetFont("Helvetica", "U", 12)
	doc.SetTextColor(34, 34, 34)
	doc.CellFormat(0, 8, "Verification details", "", 1, "L", false, 0, "")
	doc.Ln(2)
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, "Public key (PEM):", "", 1, "L", false, 0, "")
	doc.SetFont("Courier", "", 8)
	doc.MultiCell(0, 4, publicKeyPEM, "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate pdf: %w", err)
	}
	return buf.Bytes(), nil
}
