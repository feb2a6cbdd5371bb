package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"sort"
	"strings"
)

// SMTPで送るSender
// テンプレートエンジンは持たない。キーと変数をそのまま本文に並べる簡易形式
type SMTPSender struct {
	addr string // host:port
	from string
}

func NewSMTPSender(addr string, from string) *SMTPSender {
	return &SMTPSender{addr: addr, from: from}
}

func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	subject := subjectFor(msg)
	body := renderBody(msg)

	data := strings.Join([]string{
		"From: " + s.from,
		"To: " + msg.RecipientEmail,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	return smtp.SendMail(s.addr, nil, s.from, []string{msg.RecipientEmail}, []byte(data))
}

func subjectFor(msg Message) string {
	orderNumber := msg.Variables["orderNumber"]
	switch msg.TemplateKey {
	case TemplateOrderConfirmation:
		return "Order Confirmation - " + orderNumber
	case TemplateOrderStatusUpdate:
		return "Order Status Update - " + orderNumber
	default:
		return msg.TemplateKey
	}
}

func renderBody(msg Message) string {
	keys := make([]string, 0, len(msg.Variables))
	for k := range msg.Variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\r\n", k, msg.Variables[k])
	}
	return b.String()
}
