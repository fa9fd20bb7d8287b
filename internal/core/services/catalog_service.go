package services

import (
	"context"
	"fmt"

	"libris/internal/adapters/persistence/repositories"
	"libris/internal/core/domain"
	"libris/internal/pkg/logger"

	"gorm.io/gorm"
)

// CatalogRepoFactory binds a catalog repository to a role connection
type CatalogRepoFactory func(db *gorm.DB) repositories.CatalogRepository

// MaterialInput holds the arguments of a new catalog entry
type MaterialInput struct {
	Title           string
	Subtitle        *string
	Type            domain.MaterialType
	ISBN            *string
	PublicationYear int
	PublisherID     *int64
	Language        string
	Pages           *int
	Description     *string
	TotalCopies     int
}

// MaterialUpdate changes descriptive fields of a material. Nil fields are
// left untouched.
type MaterialUpdate struct {
	Title       *string
	Description *string
	Language    *string
}

// CopyInput holds the arguments of a new physical copy
type CopyInput struct {
	Barcode          string
	BranchID         int64
	AcquisitionPrice float64
}

// CatalogService maintains materials and their copies
type CatalogService struct {
	broker  repositories.ConnectionBroker
	newRepo CatalogRepoFactory
	log     logger.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(broker repositories.ConnectionBroker, newRepo CatalogRepoFactory, log logger.Logger) *CatalogService {
	return &CatalogService{broker: broker, newRepo: newRepo, log: log}
}

// AddMaterial creates a catalog entry and returns its id
func (s *CatalogService) AddMaterial(ctx context.Context, auth *domain.AuthenticatedContext, in MaterialInput) (int64, error) {
	if !in.Type.Valid() {
		return 0, fmt.Errorf("%w: unknown material type %q", domain.ErrInvalidInput, in.Type)
	}

	var materialID int64
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		out, err := s.newRepo(db).AddMaterial(ctx, repositories.AddMaterialParams{
			Title:           in.Title,
			Subtitle:        in.Subtitle,
			MaterialType:    string(in.Type),
			ISBN:            in.ISBN,
			PublicationYear: in.PublicationYear,
			PublisherID:     in.PublisherID,
			Language:        in.Language,
			Pages:           in.Pages,
			Description:     in.Description,
			TotalCopies:     in.TotalCopies,
		})
		if err != nil {
			return err
		}
		if out.MaterialID == nil {
			return domain.ErrIncompleteResult
		}
		materialID = *out.MaterialID
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("Material added",
		logger.Int64("material_id", materialID),
		logger.String("material_type", string(in.Type)),
	)
	return materialID, nil
}

// AddCopy registers a physical copy of a material at a branch
func (s *CatalogService) AddCopy(ctx context.Context, auth *domain.AuthenticatedContext, materialID int64, in CopyInput) (int64, error) {
	var copyID int64
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		out, err := s.newRepo(db).AddCopy(ctx, repositories.AddCopyParams{
			MaterialID:       materialID,
			Barcode:          in.Barcode,
			BranchID:         in.BranchID,
			AcquisitionPrice: in.AcquisitionPrice,
		})
		if err != nil {
			return err
		}
		if out.CopyID == nil {
			return domain.ErrIncompleteResult
		}
		copyID = *out.CopyID
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("Copy added",
		logger.Int64("material_id", materialID),
		logger.Int64("copy_id", copyID),
		logger.Int64("branch_id", in.BranchID),
	)
	return copyID, nil
}

// UpdateMaterial changes a material's descriptive fields
func (s *CatalogService) UpdateMaterial(ctx context.Context, auth *domain.AuthenticatedContext, materialID int64, in MaterialUpdate) error {
	if in.Title == nil && in.Description == nil && in.Language == nil {
		return fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}

	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		return s.newRepo(db).UpdateMaterial(ctx, repositories.UpdateMaterialParams{
			MaterialID:  materialID,
			Title:       in.Title,
			Description: in.Description,
			Language:    in.Language,
		})
	})
	if err != nil {
		return err
	}

	s.log.Info("Material updated", logger.Int64("material_id", materialID))
	return nil
}

// DeleteMaterial withdraws a material from the catalog
func (s *CatalogService) DeleteMaterial(ctx context.Context, auth *domain.AuthenticatedContext, materialID, staffID int64) error {
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		return s.newRepo(db).DeleteMaterial(ctx, materialID, staffID)
	})
	if err != nil {
		return err
	}

	s.log.Info("Material deleted",
		logger.Int64("material_id", materialID),
		logger.Int64("staff_id", staffID),
	)
	return nil
}

// GetMaterial reads a catalog entry
func (s *CatalogService) GetMaterial(ctx context.Context, auth *domain.AuthenticatedContext, materialID int64) (*domain.Material, error) {
	var material *domain.Material
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		row, err := s.newRepo(db).GetMaterial(ctx, materialID)
		if err != nil {
			return notFound(err, domain.ErrMaterialNotFound)
		}
		material = row.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return material, nil
}
