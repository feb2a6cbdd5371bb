package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// 商品の公開一覧・詳細と管理者操作
type ProductUsecase struct {
	tx       repo.TransactionManager
	skuCache repo.BoolCache
	clock    Clock
}

func NewProductUsecase(tx repo.TransactionManager, skuCache repo.BoolCache, clock Clock) *ProductUsecase {
	return &ProductUsecase{tx: tx, skuCache: skuCache, clock: clock}
}

const skuCacheTTL = 5 * time.Minute

type ProductOutput struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	Stock       int64               `json:"stock"`
	SKU         string              `json:"sku"`
	Category    string              `json:"category"`
	Status      model.ProductStatus `json:"status"`
}

type ProductListOutput struct {
	Products []ProductOutput `json:"products"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	Limit    int             `json:"limit"`
}

type SaveProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	SKU         string
	Category    string
}

func toProductOutput(p model.Product) ProductOutput {
	return ProductOutput{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		SKU:         p.SKU,
		Category:    p.Category,
		Status:      p.Status,
	}
}

// 公開一覧。INACTIVEは出さない
func (u *ProductUsecase) List(ctx context.Context, q repo.ProductListQuery) (ProductListOutput, error) {
	if q.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if q.Limit < 1 || q.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var out ProductListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		products, total, err := r.Products().ListPublic(ctx, q)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs := make([]ProductOutput, 0, len(products))
		for _, p := range products {
			outs = append(outs, toProductOutput(p))
		}
		out = ProductListOutput{Products: outs, Total: total, Page: q.Page, Limit: q.Limit}
		return nil
	})

	if err != nil {
		return ProductListOutput{}, err
	}
	return out, nil
}

func (u *ProductUsecase) GetByID(ctx context.Context, id int64) (ProductOutput, error) {
	if id <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out ProductOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, id)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = toProductOutput(p)
		return nil
	})

	if err != nil {
		return ProductOutput{}, err
	}
	return out, nil
}

// 管理者：商品作成。SKUの一意チェックはread-throughキャッシュ越し
func (u *ProductUsecase) Create(ctx context.Context, actorUserID int64, in SaveProductInput) (ProductOutput, error) {
	if actorUserID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	name := strings.TrimSpace(in.Name)
	sku := strings.TrimSpace(in.SKU)
	if name == "" {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if sku == "" {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "sku is required")
	}
	if in.Price.IsNegative() {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "price must not be negative")
	}
	if in.Stock < 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "stock must not be negative")
	}

	var out ProductOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		exists, err := u.skuCache.GetOrLoad(ctx, "sku:"+sku, skuCacheTTL, func(ctx context.Context) (bool, error) {
			return r.Products().ExistsBySKU(ctx, sku)
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if exists {
			return NewHTTPError(http.StatusConflict, "sku already exists")
		}

		status := model.ProductStatusActive
		if in.Stock == 0 {
			status = model.ProductStatusOutOfStock
		}

		p, err := r.Products().Create(ctx, model.Product{
			Name:        name,
			Description: in.Description,
			Price:       in.Price,
			Stock:       in.Stock,
			SKU:         sku,
			Category:    in.Category,
			Status:      status,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//新しいSKUが入ったのでキャッシュを無効化
		_ = u.skuCache.Invalidate(ctx, "sku:"+sku)

		out = toProductOutput(p)
		return nil
	})

	if err != nil {
		return ProductOutput{}, err
	}
	return out, nil
}

func (u *ProductUsecase) Update(ctx context.Context, actorUserID int64, id int64, in SaveProductInput) (ProductOutput, error) {
	if actorUserID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if id <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Price.IsNegative() {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "price must not be negative")
	}

	var out ProductOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, id)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if v := strings.TrimSpace(in.Name); v != "" {
			p.Name = v
		}
		if in.Description != "" {
			p.Description = in.Description
		}
		if !in.Price.IsZero() {
			p.Price = in.Price
		}
		if v := strings.TrimSpace(in.Category); v != "" {
			p.Category = v
		}

		if err := r.Products().Update(ctx, p); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toProductOutput(p)
		return nil
	})

	if err != nil {
		return ProductOutput{}, err
	}
	return out, nil
}

func (u *ProductUsecase) Delete(ctx context.Context, actorUserID int64, id int64) error {
	if actorUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Products().SoftDelete(ctx, id)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

// 管理者：在庫を直接設定する。監査ログを必ず残す
func (u *ProductUsecase) SetStock(ctx context.Context, actorUserID int64, productID int64, newStock int64, reason string) error {
	if actorUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if newStock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must not be negative")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "product not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   fmt.Sprintf(`{"stock":%d}`, p.Stock),
			AfterJSON:    fmt.Sprintf(`{"stock":%d,"reason":%q}`, newStock, reason),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
}
