package notification

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// 実際に1通送る側の約束（SMTPなど）
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// 非同期・ベストエフォートの通知ディスパッチャ
// commit後にNotifyを呼び、送信はworkerが行う。失敗はWarnログだけ残す
type AsyncDispatcher struct {
	sender  Sender
	logger  *zap.Logger
	queue   chan Message
	done    chan struct{}
	timeout time.Duration
}

func NewAsyncDispatcher(sender Sender, logger *zap.Logger, queueSize int) *AsyncDispatcher {
	if queueSize <= 0 {
		queueSize = 100
	}

	d := &AsyncDispatcher{
		sender:  sender,
		logger:  logger,
		queue:   make(chan Message, queueSize),
		done:    make(chan struct{}),
		timeout: 10 * time.Second,
	}

	go d.run()
	return d
}

// Notifyはキューに積むだけで即返る。トランザクションは保持しない
// キューが詰まっていても呼び出し元はブロックしない（落として記録）
func (d *AsyncDispatcher) Notify(_ context.Context, msg Message) {
	select {
	case d.queue <- msg:
	default:
		d.logger.Warn("notification queue full, dropping",
			zap.String("template", msg.TemplateKey),
			zap.String("recipient", msg.RecipientEmail),
		)
	}
}

func (d *AsyncDispatcher) run() {
	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.sender.Send(ctx, msg); err != nil {
			//通知失敗は注文処理の成否に影響させない
			d.logger.Warn("notification send failed",
				zap.String("template", msg.TemplateKey),
				zap.String("recipient", msg.RecipientEmail),
				zap.Error(err),
			)
		}
		cancel()
	}
	close(d.done)
}

// Closeはキューを閉じて残りを送り切るまで待つ
func (d *AsyncDispatcher) Close() {
	close(d.queue)
	<-d.done
}
