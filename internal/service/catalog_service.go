package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/betinha/rental-core/internal/calendar"
	"github.com/betinha/rental-core/internal/model"
	"github.com/betinha/rental-core/internal/repository"
)

// CatalogService manages categories and the product/service catalog.
// Price changes never touch event snapshots.
type CatalogService struct {
	store repository.Store
}

func NewCatalogService(store repository.Store) *CatalogService {
	return &CatalogService{store: store}
}

// CategoryFields is used for create (Name required) and update.
type CategoryFields struct {
	Name *string
}

// CatalogItemFields is used for create and update; nil means "not given".
// Amounts are decimal strings.
type CatalogItemFields struct {
	CategoryID    *string
	Name          *string
	Description   *string
	Type          *string
	PriceClient   *string
	InternalCost  *string
	StockQuantity *int
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryFields) (*model.Category, error) {
	c := &model.Category{Active: true}
	if in.Name == nil {
		return nil, validationError("name", "name is required")
	}
	f := newFieldSet()
	f.text("name", "name", in.Name, true, &c.Name)
	if f.err != nil {
		return nil, f.err
	}
	if err := createReference(ctx, s.store.Categories(), "category", c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, in CategoryFields) (*model.Category, error) {
	return updateReference(ctx, s.store.Categories(), "category", "categoryId", id, func(c *model.Category, f *fieldSet) {
		f.text("name", "name", in.Name, true, &c.Name)
	})
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	return getReference(ctx, s.store.Categories(), "category", "categoryId", id)
}

func (s *CatalogService) ListCategories(ctx context.Context, p ListParams) (calendar.Page[model.Category], error) {
	return listReference(ctx, s.store.Categories(), "categories", p)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	return deleteReference(ctx, s.store.Categories(), "category", "categoryId", id)
}

func (s *CatalogService) CreateItem(ctx context.Context, in CatalogItemFields) (*model.CatalogItem, error) {
	for field, v := range map[string]*string{"name": in.Name, "type": in.Type, "priceClient": in.PriceClient, "internalCost": in.InternalCost} {
		if v == nil {
			return nil, validationError(field, "%s is required", field)
		}
	}

	item := &model.CatalogItem{Active: true}
	f := newFieldSet()
	s.applyItem(ctx, item, in, f)
	if f.err != nil {
		return nil, f.err
	}
	if err := createReference(ctx, s.store.CatalogItems(), "catalog item", item); err != nil {
		return nil, err
	}
	return s.GetItem(ctx, item.ID.String())
}

func (s *CatalogService) UpdateItem(ctx context.Context, id string, in CatalogItemFields) (*model.CatalogItem, error) {
	return updateReference(ctx, s.store.CatalogItems(), "catalog item", "catalogItemId", id, func(item *model.CatalogItem, f *fieldSet) {
		s.applyItem(ctx, item, in, f)
	})
}

func (s *CatalogService) applyItem(ctx context.Context, item *model.CatalogItem, in CatalogItemFields, f *fieldSet) {
	if in.CategoryID != nil {
		id, err := parseOptionalID("categoryId", *in.CategoryID)
		if err != nil {
			f.err = err
			return
		}
		if id != nil {
			if _, err := s.store.Categories().GetByID(ctx, *id, false); err != nil {
				f.err = repoError(err, "category", "load category")
				return
			}
		}
		item.CategoryID = id
		f.updates["category_id"] = id
	}
	f.text("name", "name", in.Name, true, &item.Name)
	f.text("description", "description", in.Description, false, &item.Description)
	if in.Type != nil {
		t := model.CatalogItemType(normalizeEnum(*in.Type))
		if !t.Valid() {
			f.fail("type", "type must be %s or %s", model.CatalogItemProduct, model.CatalogItemService)
			return
		}
		item.Type = t
		f.updates["type"] = t
	}
	f.amount("price_client", "priceClient", in.PriceClient, &item.PriceClient)
	f.amount("internal_cost", "internalCost", in.InternalCost, &item.InternalCost)
	f.count("stock_quantity", "stockQuantity", in.StockQuantity, &item.StockQuantity)
}

func (s *CatalogService) GetItem(ctx context.Context, id string) (*model.CatalogItem, error) {
	return getReference(ctx, s.store.CatalogItems(), "catalog item", "catalogItemId", id)
}

func (s *CatalogService) ListItems(ctx context.Context, p ListParams) (calendar.Page[model.CatalogItem], error) {
	return listReference(ctx, s.store.CatalogItems(), "catalog items", p)
}

func (s *CatalogService) DeleteItem(ctx context.Context, id string) error {
	return deleteReference(ctx, s.store.CatalogItems(), "catalog item", "catalogItemId", id)
}

// Margin of a catalog item at current prices, for the catalog screen.
func ItemMargin(item *model.CatalogItem) decimal.Decimal {
	return item.PriceClient.Sub(item.InternalCost)
}
