package mercadopago

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"ravehub/internal/status"
)

// VerifySignature checks the x-signature header MercadoPago sends with
// webhook deliveries. The header carries a timestamp and an HMAC-SHA256
// over the manifest "id:{data.id};request-id:{x-request-id};ts:{ts};"
// keyed with the webhook secret.
func (c *Client) VerifySignature(signatureHeader, requestID, dataID string) error {
	if c.webhookKey == "" {
		// Verification disabled; accept everything. Intended for local
		// development only.
		return nil
	}

	ts, v1 := parseSignatureHeader(signatureHeader)
	if ts == "" || v1 == "" {
		return status.ErrInvalidSignature
	}

	manifest := buildManifest(dataID, requestID, ts)
	expected := hmacSHA256Hex([]byte(manifest), []byte(c.webhookKey))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(v1))) {
		return status.ErrInvalidSignature
	}
	return nil
}

func parseSignatureHeader(header string) (ts, v1 string) {
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "v1":
			v1 = value
		}
	}
	return ts, v1
}

func buildManifest(dataID, requestID, ts string) string {
	var b strings.Builder
	if dataID != "" {
		fmt.Fprintf(&b, "id:%s;", strings.ToLower(dataID))
	}
	if requestID != "" {
		fmt.Fprintf(&b, "request-id:%s;", requestID)
	}
	fmt.Fprintf(&b, "ts:%s;", ts)
	return b.String()
}

func hmacSHA256Hex(message, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}
