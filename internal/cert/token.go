package cert

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// TokenSize is the pixel width and height of the verification token image,
// chosen for reliable optical scanning.
const TokenSize = 300

// EncodeToken renders the QR verification token: a PNG encoding the given
// verification URL. It knows nothing about records or signatures; the URL is
// its whole input.
func EncodeToken(verifyURL string) ([]byte, error) {
	png, err := qrcode.Encode(verifyURL, qrcode.Medium, TokenSize)
	if err != nil {
		return nil, fmt.Errorf("encode verification token: %w", err)
	}
	return png, nil
}
