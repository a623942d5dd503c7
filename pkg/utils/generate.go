package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

// GenerateInvoiceNumber returns INV-YYYYMMDD-HHMMSS-NNNN.
// The random suffix keeps collisions negligible for invoices issued in the same second.
func GenerateInvoiceNumber(now time.Time) string {
	datePart := now.Format("20060102")
	timePart := now.Format("150405")
	randomPart := fmt.Sprintf("%04d", rand.Intn(10000))

	return fmt.Sprintf("INV-%s-%s-%s", datePart, timePart, randomPart)
}
