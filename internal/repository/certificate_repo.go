package repository

import (
	"context"

	"trainingdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CertificateRepository interface {
	Create(ctx context.Context, cert *model.Certificate) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Certificate, error)
	List(ctx context.Context, certifiedID *uuid.UUID, page, limit int) ([]model.Certificate, int64, error)
}

type certificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

func (r *certificateRepository) Create(ctx context.Context, cert *model.Certificate) error {
	return GetDB(ctx, r.db).Omit("Certified", "Training").Create(cert).Error
}

func (r *certificateRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Certificate, error) {
	var cert model.Certificate
	if err := GetDB(ctx, r.db).
		Preload("Certified").
		Preload("Training").
		First(&cert, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *certificateRepository) List(ctx context.Context, certifiedID *uuid.UUID, page, limit int) ([]model.Certificate, int64, error) {
	var certs []model.Certificate
	query := GetDB(ctx, r.db).Model(&model.Certificate{})
	if certifiedID != nil {
		query = query.Where("certified_id = ?", *certifiedID)
	}
	total, err := paginate(query, &certs, "given_date desc", page, limit, "Certified", "Training")
	if err != nil {
		return nil, 0, err
	}
	return certs, total, nil
}
