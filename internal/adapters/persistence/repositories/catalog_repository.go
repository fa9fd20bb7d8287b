package repositories

import (
	"context"

	"libris/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// catalogRepository implements CatalogRepository interface
type catalogRepository struct {
	db    *gorm.DB
	procs *Procedures
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB, procs *Procedures) CatalogRepository {
	return &catalogRepository{db: db, procs: procs}
}

// AddMaterial runs sp_add_material
func (r *catalogRepository) AddMaterial(ctx context.Context, p AddMaterialParams) (*models.AddMaterialOut, error) {
	var out models.AddMaterialOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_add_material",
		Args: []interface{}{
			p.Title, p.Subtitle, p.MaterialType, p.ISBN, p.PublicationYear,
			p.PublisherID, p.Language, p.Pages, p.Description, p.TotalCopies,
		},
		Outs: []Out{{Name: "material_id", Kind: OutInt}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AddCopy runs sp_add_copy
func (r *catalogRepository) AddCopy(ctx context.Context, p AddCopyParams) (*models.AddCopyOut, error) {
	var out models.AddCopyOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_add_copy",
		Args:      []interface{}{p.MaterialID, p.Barcode, p.BranchID, p.AcquisitionPrice},
		Outs:      []Out{{Name: "copy_id", Kind: OutInt}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMaterial runs sp_update_material
func (r *catalogRepository) UpdateMaterial(ctx context.Context, p UpdateMaterialParams) error {
	return r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_update_material",
		Args:      []interface{}{p.MaterialID, p.Title, p.Description, p.Language},
	}, nil)
}

// DeleteMaterial runs sp_delete_material
func (r *catalogRepository) DeleteMaterial(ctx context.Context, materialID, staffID int64) error {
	return r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_delete_material",
		Args:      []interface{}{materialID, staffID},
	}, nil)
}

// GetMaterial reads a material by id
func (r *catalogRepository) GetMaterial(ctx context.Context, materialID int64) (*models.Material, error) {
	var m models.Material
	if err := r.db.WithContext(ctx).Where("material_id = ?", materialID).Take(&m).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &m, nil
}
