package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"

	"github.com/skip2/go-qrcode"
)

const defaultQRSize = 256

// QRService renders ticket QR codes for printing on raffle stubs
type QRService struct {
	size int
}

func NewQRService() *QRService {
	return &QRService{size: defaultQRSize}
}

// TicketImage returns a base64 encoded PNG whose payload identifies the
// ticket and the account holding it
func (s *QRService) TicketImage(ticketNumber, accountNumber string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"ticketNumber":  ticketNumber,
		"accountNumber": accountNumber,
	})
	if err != nil {
		return "", err
	}

	qr, err := qrcode.New(string(payload), qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to build qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(s.size)); err != nil {
		return "", fmt.Errorf("failed to encode qr image: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
