package service

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const qrImageSize = 256

// QRService renders profile QR codes as PNG images. The encoded payload is
// the user's public profile URL, so any camera app resolves straight to the
// profile page.
type QRService struct {
	domain string
}

func NewQRService(domain string) *QRService {
	return &QRService{domain: domain}
}

// Render encodes the profile URL for username into a PNG. Output is
// deterministic for a given username.
func (s *QRService) Render(username string) ([]byte, error) {
	url := fmt.Sprintf("https://%s/%s", s.domain, username)

	png, err := qrcode.Encode(url, qrcode.Low, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr for %q: %w", username, err)
	}
	return png, nil
}
