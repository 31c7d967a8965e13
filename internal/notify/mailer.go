package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/ariefcatur/go-storefront-orders.git/internal/orders"
)

// Mailer kirim email lewat SMTP polos. Implementasi orders.Notifier yang
// dipakai di worker; di API yang dipakai EventNotifier.
type Mailer struct {
	Addr     string // host:port
	From     string
	OpsEmail string
	Auth     smtp.Auth // nil kalau relay internal
}

func (m *Mailer) OrderPlaced(ctx context.Context, o *orders.Order, u *orders.User, toOps bool) error {
	if toOps {
		subject := fmt.Sprintf("New Order #%s", o.ID)
		body := fmt.Sprintf("<h2>New Order Received</h2><p><b>Order ID:</b> %s</p><p><b>User:</b> %s (%s)</p><p><b>Order Total:</b> %s</p>%s",
			o.ID, u.Email, u.Username, money(o.TotalCents), itemList(o))
		return m.send(m.OpsEmail, subject, body)
	}
	subject := fmt.Sprintf("Order Confirmation - Order #%s", o.ID)
	body := fmt.Sprintf("<h2>Thank you for your order!</h2><p>Your payment was successful and your order has been placed.</p><p><b>Order ID:</b> %s</p><p><b>Status:</b> %s</p><p><b>Total:</b> %s</p>%s",
		o.ID, o.Status, money(o.TotalCents), itemList(o))
	return m.send(u.Email, subject, body)
}

func (m *Mailer) StatusChanged(ctx context.Context, o *orders.Order, u *orders.User) error {
	subject := fmt.Sprintf("Order Update - Order #%s", o.ID)
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Your Order Status Has Been Updated</h2>")
	fmt.Fprintf(&b, "<p><b>Order ID:</b> %s</p>", o.ID)
	fmt.Fprintf(&b, "<p><b>New Status:</b> %s</p>", o.Status)
	if o.TrackingNumber != "" {
		fmt.Fprintf(&b, "<p><b>Tracking Number:</b> %s</p>", o.TrackingNumber)
	}
	return m.send(u.Email, subject, b.String())
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n",
		m.From, to, subject, htmlBody)
	return smtp.SendMail(m.Addr, m.Auth, m.From, []string{to}, []byte(msg))
}

func itemList(o *orders.Order) string {
	if len(o.Items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<h3>Order Items:</h3><ul>")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "<li>%d x product %d (%s)</li>", it.Qty, it.ProductID, money(it.PriceCents))
	}
	b.WriteString("</ul>")
	return b.String()
}

func money(cents int) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
