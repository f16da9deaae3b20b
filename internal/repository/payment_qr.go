package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/pawws/pawws/internal/model"
)

type PaymentQRRepository interface {
	Get(ctx context.Context) (*model.PaymentQR, error)
	Save(ctx context.Context, qr *model.PaymentQR) error
}

type paymentQRRepository struct {
	db Querier
}

func NewPaymentQRRepository(db *sqlx.DB) PaymentQRRepository {
	return &paymentQRRepository{db: db}
}

func (r *paymentQRRepository) Get(ctx context.Context) (*model.PaymentQR, error) {
	qr := &model.PaymentQR{}
	query := `SELECT * FROM payment_qr WHERE id = $1`

	err := r.db.GetContext(ctx, qr, query, model.PaymentQRID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentQRNotFound
	}
	if err != nil {
		return nil, err
	}

	return qr, nil
}

// Save inserts the QR row or replaces the existing one.
func (r *paymentQRRepository) Save(ctx context.Context, qr *model.PaymentQR) error {
	qr.ID = model.PaymentQRID
	query := `INSERT INTO payment_qr (id, image_path, image_content_type, updated_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (id) DO UPDATE
	          SET image_path = excluded.image_path,
	              image_content_type = excluded.image_content_type,
	              updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query, qr.ID, qr.ImagePath, qr.ImageContentType, qr.UpdatedAt)
	return err
}
