package model

import (
	"time"
)

// PaymentQRID is the key of the single payment QR row.
const PaymentQRID = "default"

// PaymentQR is the shelter's payment QR code that donors scan before uploading proof.
type PaymentQR struct {
	ID               string    `db:"id"`
	ImagePath        string    `db:"image_path"`
	ImageContentType string    `db:"image_content_type"`
	UpdatedAt        time.Time `db:"updated_at"`
}
