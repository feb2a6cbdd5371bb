package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫の現在値を設定。0ならOUT_OF_STOCK、正ならACTIVEに合わせる
func (r *InventoryGormRepository) SetStock(ctx context.Context, productID int64, newStock int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Update("stock", newStock)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return r.syncStatus(ctx, productID)
}

// 在庫が足りるときだけ減らす（1文の条件付きUPDATE）
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	//在庫0に落ちたらOUT_OF_STOCKへ
	if err := r.syncStatus(ctx, productID); err != nil {
		return false, err
	}
	return true, nil
}

// 在庫戻し（キャンセル）
func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", qty))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}

	//OUT_OF_STOCKで在庫が正に戻ればACTIVEへ
	return r.syncStatus(ctx, productID)
}

func (r *InventoryGormRepository) GetStock(ctx context.Context, productID int64) (int64, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Select("id", "stock").Where("id = ?", productID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, repo.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}

// 在庫量からstatusを導出する。INACTIVEは管理者が明示的に落とした状態なので触らない
func (r *InventoryGormRepository) syncStatus(ctx context.Context, productID int64) error {
	if err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock <= 0 AND status = ?", productID, model.ProductStatusActive).
		Update("status", model.ProductStatusOutOfStock).Error; err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock > 0 AND status = ?", productID, model.ProductStatusOutOfStock).
		Update("status", model.ProductStatusActive).Error
}
