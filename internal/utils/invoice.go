package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateReference returns a client reference such as
// POS-till01-20261015-093000-123-0042. It is sent with a submission so the
// backend can recognise a repeated attempt of the same checkout.
func GenerateReference(terminalID string, now time.Time) string {
	now = now.UTC()

	datePart := now.Format("20060102-150405")
	millis := now.Nanosecond() / int(time.Millisecond)

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf("POS-%s-%s-%03d-%04d", terminalID, datePart, millis, n.Int64())
}
