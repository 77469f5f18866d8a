// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const SignatureHeader = "X-Webhook-Signature"

var ErrInvalidSignature = errors.New("invalid webhook signature")

// SignatureVerifier checks headers of the form t=<unix seconds>,v1=<hex hmac>,
// where the hmac-sha256 covers "<t>.<body>"
type SignatureVerifier struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

func (v *SignatureVerifier) Verify(header string, body []byte) error {
	if header == "" {
		return fmt.Errorf("%w: missing %s header", ErrInvalidSignature, SignatureHeader)
	}

	var timestamp string
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		k, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}

		switch k {
		case "t":
			timestamp = val
		case "v1":
			signatures = append(signatures, val)
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return fmt.Errorf("%w: malformed header", ErrInvalidSignature)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: malformed timestamp", ErrInvalidSignature)
	}

	age := v.now().Sub(time.Unix(ts, 0))
	if age < 0 {
		age = -age
	}

	if age > v.maxAge {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	expected := v.sign(timestamp, body)

	for _, sig := range signatures {
		got, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}

		if hmac.Equal(got, expected) {
			return nil
		}
	}

	return fmt.Errorf("%w: signature mismatch", ErrInvalidSignature)
}

func (v *SignatureVerifier) sign(timestamp string, body []byte) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)

	return mac.Sum(nil)
}

// Header builds a valid header for the body at the given instant, it backs
// the webhook send command
func (v *SignatureVerifier) Header(body []byte, at time.Time) string {
	timestamp := strconv.FormatInt(at.Unix(), 10)

	return "t=" + timestamp + ",v1=" + hex.EncodeToString(v.sign(timestamp, body))
}

func NewSignatureVerifier(secret string, maxAge time.Duration) *SignatureVerifier {
	v := new(SignatureVerifier)
	v.secret = []byte(secret)
	v.maxAge = maxAge
	v.now = time.Now

	return v
}
