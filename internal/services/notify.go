package services

import (
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/mailer"
	pubnub "github.com/pubnub/go"

	"club-commerce/models"
)

// Notifier fans a resolved checkout out to the buyer: a receipt email
// through the app mailer and a realtime push on the buyer's channel.
// Both are best effort; a failed notification never fails the checkout.
type Notifier struct {
	app core.App
	pn  *pubnub.PubNub
}

func NewNotifier(app core.App, pn *pubnub.PubNub) *Notifier {
	return &Notifier{app: app, pn: pn}
}

// PushCheckoutStatus publishes the terminal checkout state to the
// buyer's channel so the frontend can stop polling.
func (n *Notifier) PushCheckoutStatus(identity, reference string, st models.PaymentStatus) {
	if n.pn == nil {
		return
	}

	channel := "checkout." + identity
	_, pnStatus, err := n.pn.Publish().
		Channel(channel).
		Message(map[string]any{
			"type":      "checkout_update",
			"reference": reference,
			"status":    string(st),
		}).
		Execute()
	if err != nil {
		slog.Error("notify: pubnub publish failed", "channel", channel, "error", err)
		return
	}
	if pnStatus.Error != nil {
		slog.Error("notify: pubnub publish rejected", "channel", channel, "status", pnStatus.StatusCode)
	}
}

// SendPurchaseEmail emails a single entry code on its own. The
// consolidated invoice already carries every code, so this is for
// resends of one purchase.
func (n *Notifier) SendPurchaseEmail(txn *models.PaymentTransaction, p *models.Purchase) error {
	return n.SendInvoiceEmail(txn, []*models.Purchase{p})
}

// SendInvoiceEmail emails the buyer the consolidated invoice: every
// purchase of the checkout with its embedded QR link.
func (n *Notifier) SendInvoiceEmail(txn *models.PaymentTransaction, purchases []*models.Purchase) error {
	if txn.Email == "" {
		return nil
	}

	message := &mailer.Message{
		From: mail.Address{
			Name:    n.app.Settings().Meta.SenderName,
			Address: n.app.Settings().Meta.SenderAddress,
		},
		To:      []mail.Address{{Address: txn.Email}},
		Subject: fmt.Sprintf("Your order %s is confirmed", txn.Reference),
		HTML:    invoiceHTML(txn, purchases),
	}

	if err := n.app.NewMailClient().Send(message); err != nil {
		return fmt.Errorf("notify: send invoice for %s: %w", txn.Reference, err)
	}
	return nil
}

func invoiceHTML(txn *models.PaymentTransaction, purchases []*models.Purchase) string {
	var b strings.Builder

	b.WriteString("<h2>Order confirmed</h2>")
	fmt.Fprintf(&b, "<p>Reference: <strong>%s</strong></p>", txn.Reference)
	fmt.Fprintf(&b, "<p>Total paid: <strong>%s</strong></p>", txn.TotalPaid.StringFixed(2))

	b.WriteString("<ul>")
	for _, p := range purchases {
		fmt.Fprintf(&b, "<li>%s - %s", p.Type, p.PriceAtCheckout.StringFixed(2))
		if p.QRPayload != "" {
			fmt.Fprintf(&b, `<br/><img alt="entry code" src="https://api.qrserver.com/v1/create-qr-code/?size=220x220&data=%s"/>`, p.QRPayload)
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")

	b.WriteString("<p>Show each code at the door. Codes are single use.</p>")
	return b.String()
}
