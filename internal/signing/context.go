package signing

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	privateKeyFile = "private.pem"
	publicKeyFile  = "public.pem"

	keyBits = 2048
)

// PayloadDelimiter separates the fields of the canonical payload. Record ids
// are UUIDs and upload times RFC 3339 strings, neither of which can contain
// it; original filenames that do are rejected before a record is built.
const PayloadDelimiter = "|"

// Payload builds the exact byte sequence a certificate signature is computed
// over. Verification rebuilds it from stored fields, so the concatenation
// order and delimiter must never change.
func Payload(id, originalName, uploadTime string) []byte {
	return []byte(id + PayloadDelimiter + originalName + PayloadDelimiter + uploadTime)
}

// Context holds the process-wide signing key pair. It is constructed once at
// startup and passed to whoever signs or verifies; nothing reaches the keys
// through package-level state. Read-only after construction, safe for
// concurrent use.
type Context struct {
	priv   *rsa.PrivateKey
	pub    *rsa.PublicKey
	pubPEM string
}

// LoadOrGenerate reads the PEM key pair from dir, generating and persisting a
// fresh RSA-2048 pair if either half is missing. The private key is written
// with 0600 permissions.
func LoadOrGenerate(dir string) (*Context, error) {
	privPath := filepath.Join(dir, privateKeyFile)
	pubPath := filepath.Join(dir, publicKeyFile)

	_, privErr := os.Stat(privPath)
	_, pubErr := os.Stat(pubPath)
	if privErr == nil && pubErr == nil {
		return load(privPath)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}
	priv, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return nil, fmt.Errorf("generate key pair: %w", err)
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("marshal private key: %w", err)
	}
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})
	if err := os.WriteFile(privPath, privPEM, 0o600); err != nil {
		return nil, fmt.Errorf("write private key: %w", err)
	}
	pubPEM, err := marshalPublicPEM(&priv.PublicKey)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(pubPath, []byte(pubPEM), 0o644); err != nil {
		return nil, fmt.Errorf("write public key: %w", err)
	}

	return &Context{priv: priv, pub: &priv.PublicKey, pubPEM: pubPEM}, nil
}

// NewFromKey wraps an existing private key. Used by tests and by callers that
// manage key material themselves.
func NewFromKey(priv *rsa.PrivateKey) (*Context, error) {
	if priv == nil {
		return nil, errors.New("private key is nil")
	}
	pubPEM, err := marshalPublicPEM(&priv.PublicKey)
	if err != nil {
		return nil, err
	}
	return &Context{priv: priv, pub: &priv.PublicKey, pubPEM: pubPEM}, nil
}

func load(privPath string) (*Context, error) {
	raw, err := os.ReadFile(privPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", privPath)
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	priv, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("unexpected private key type %T", parsed)
	}
	return NewFromKey(priv)
}

func marshalPublicPEM(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("marshal public key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

// Sign computes the RSA PKCS#1 v1.5 signature of payload over its SHA-256
// digest and returns it base64-encoded. Failure means the private key is
// absent or unusable; there is no recovery path at request time.
func (c *Context) Sign(payload []byte) (string, error) {
	if c == nil || c.priv == nil {
		return "", errors.New("private key unavailable")
	}
	digest := sha256.Sum256(payload)
	sig, err := rsa.SignPKCS1v15(rand.Reader, c.priv, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("sign payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify reports whether signatureB64 is a valid signature of payload under
// the context's public key. A malformed signature counts as invalid rather
// than as an error: the trust result is a plain boolean, and the check is a
// pure function of its inputs.
func (c *Context) Verify(payload []byte, signatureB64 string) bool {
	if c == nil || c.pub == nil {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(payload)
	return rsa.VerifyPKCS1v15(c.pub, crypto.SHA256, digest[:], sig) == nil
}

// PublicKeyPEM returns the PKIX PEM encoding of the public half, as embedded
// in certificates for offline verification.
func (c *Context) PublicKeyPEM() string {
	return c.pubPEM
}
