package usecase

import (
	"context"
	"fmt"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/internal/ports"
)

var _ ports.PriceService = (*PricingService)(nil)

// PricingService — прайс-листы тканей и подкладок (сквозное чтение справочника).
type PricingService struct {
	catalog ports.PriceCatalog
	log     ports.Logger
}

// NewPricingService — DI-конструктор.
func NewPricingService(catalog ports.PriceCatalog, log ports.Logger) *PricingService {
	return &PricingService{catalog: catalog, log: log}
}

// FabricPrices — ткани по code ASC, у каждой последняя действующая цена.
func (s *PricingService) FabricPrices(ctx context.Context) ([]domain.Fabric, error) {
	fabrics, err := s.catalog.Fabrics(ctx)
	if err != nil {
		s.log.Errorf(ctx, "catalog.Fabrics failed err=%v", err)
		return []domain.Fabric{}, fmt.Errorf("load fabric prices: %w", err)
	}
	if fabrics == nil {
		fabrics = []domain.Fabric{}
	}
	return fabrics, nil
}

// LiningPrices — подкладки по type ASC, у каждой последняя действующая цена.
func (s *PricingService) LiningPrices(ctx context.Context) ([]domain.Lining, error) {
	linings, err := s.catalog.Linings(ctx)
	if err != nil {
		s.log.Errorf(ctx, "catalog.Linings failed err=%v", err)
		return []domain.Lining{}, fmt.Errorf("load lining prices: %w", err)
	}
	if linings == nil {
		linings = []domain.Lining{}
	}
	return linings, nil
}
