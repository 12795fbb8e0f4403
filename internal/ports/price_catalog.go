package ports

import (
	"context"

	"github.com/Gunvolt24/shop_admin/internal/domain"
)

// PriceCatalog — справочник цен на ткани и подкладки.
type PriceCatalog interface {
	Fabrics(ctx context.Context) ([]domain.Fabric, error)
	Linings(ctx context.Context) ([]domain.Lining, error)
}
