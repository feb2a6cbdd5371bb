package repository

import "context"

// 在庫台帳。条件付き減算が唯一の整合性メカニズム
type InventoryRepository interface {
	// 在庫の現在値を設定
	SetStock(ctx context.Context, productID int64, newStock int64) error

	// 在庫が足りるときだけ減算（1文の条件付きUPDATE。read-then-writeにしない）
	// 減算後に在庫0ならOUT_OF_STOCKへ落とす
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセル）。OUT_OF_STOCKで在庫が正に戻ればACTIVEへ
	IncreaseStock(ctx context.Context, productID int64, qty int64) error

	// 現在の在庫数を読む（不足エラーのメッセージ用）
	GetStock(ctx context.Context, productID int64) (int64, error)
}
