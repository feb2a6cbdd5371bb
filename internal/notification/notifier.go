package notification

import "context"

// 通知テンプレートのキー
const (
	TemplateOrderConfirmation = "order-confirmation"
	TemplateOrderStatusUpdate = "order-status-update"
)

// 1通分の通知
type Message struct {
	RecipientEmail string
	TemplateKey    string
	Variables      map[string]string
}

// 通知の送信を約束する。送信失敗は呼び出し側の成否に影響しない
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}
