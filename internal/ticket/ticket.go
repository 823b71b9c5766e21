// Package ticket generates the identifiers and QR payloads that prove a
// registration: ticket ids, team invite codes and scannable QR images.
package ticket

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const ticketPrefix = "TKT-"

// GenerateTicketID returns "TKT-" followed by 16 uppercase hex characters.
// The format is load-bearing: existing tickets in the wild carry it.
func GenerateTicketID() (string, error) {
	code, err := randomHex(8)
	if err != nil {
		return "", err
	}

	return ticketPrefix + code, nil
}

// GenerateInviteCode returns 12 uppercase hex characters.
func GenerateInviteCode() (string, error) {
	return randomHex(6)
}

func randomHex(n int) (string, error) {
	byt := make([]byte, n)
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}

	return strings.ToUpper(hex.EncodeToString(byt)), nil
}

// QRPayload is the JSON object embedded in a ticket's QR code.
type QRPayload struct {
	TicketID        string `json:"ticketId"`
	EventID         uint   `json:"eventId"`
	ParticipantID   uint   `json:"participantId"`
	EventName       string `json:"eventName"`
	ParticipantName string `json:"participantName"`
}

// EncodeQR renders the payload as a PNG data URL, the same shape the web
// client already displays.
func EncodeQR(payload QRPayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("json.Marshal -> %w", err)
	}

	png, err := qrcode.Encode(string(data), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("qrcode.Encode -> %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
