package notify

import (
	"fmt"
	"html"
	"strings"

	"brewshop/internal/models"
	"brewshop/internal/pricing"
)

const signature = "BrewShop Team"

// OrderConfirmation is sent to the shipping e-mail once an order is placed.
func OrderConfirmation(order *models.Order, shipping *models.Shipping, items []models.CartItem, freeCases int) Message {
	msg := newMessage(KindOrderConfirmation, ChannelEmail, shipping.Email)
	msg.Subject = fmt.Sprintf("Order Confirmation - Order #%d", order.ID)

	var text, rows strings.Builder
	fmt.Fprintf(&text, "Dear %s,\n\nThank you for your order #%d.\n\n", shipping.FullName(), order.ID)
	for _, item := range items {
		line := pricing.LineTotal(item.Product.Price, item.Quantity)
		fmt.Fprintf(&text, "%d x %s  %s\n", item.Quantity, item.Product.Name, line.StringFixed(2))
		fmt.Fprintf(&rows, "<tr><td>%d</td><td>%s</td><td>%s</td></tr>",
			item.Quantity, html.EscapeString(item.Product.Name), line.StringFixed(2))
	}
	if freeCases > 0 {
		fmt.Fprintf(&text, "\nFree cases included: %d\n", freeCases)
	}
	fmt.Fprintf(&text, "\nDelivery: %s\nTotal: %s\n\nShipping to:\n%s\n%s, %s %s\n%s\n\n%s",
		order.DeliveryCharge.StringFixed(2), order.TotalPrice.StringFixed(2),
		shipping.Address, shipping.City, shipping.State, shipping.PostalCode, shipping.Country,
		signature)
	msg.Text = text.String()

	msg.HTML = fmt.Sprintf(
		"<p>Dear %s,</p><p>Thank you for your order <strong>#%d</strong>.</p>"+
			"<table>%s</table><p>Free cases included: %d</p>"+
			"<p>Delivery: %s<br>Total: <strong>%s</strong></p><p>%s</p>",
		html.EscapeString(shipping.FullName()), order.ID, rows.String(), freeCases,
		order.DeliveryCharge.StringFixed(2), order.TotalPrice.StringFixed(2), signature)
	return msg
}

// OrderStatusUpdate produces the e-mail and, when a phone is on file, the
// WhatsApp notice for a tracking entry.
func OrderStatusUpdate(order *models.Order, shipping *models.Shipping, status string) []Message {
	body := fmt.Sprintf("Hello %s, your order #%d is now: %s.", shipping.FirstName, order.ID, status)

	email := newMessage(KindOrderStatus, ChannelEmail, shipping.Email)
	email.Subject = fmt.Sprintf("Order #%d Status Update", order.ID)
	email.Text = body + "\n\n" + signature
	email.HTML = fmt.Sprintf("<p>%s</p><p>%s</p>", html.EscapeString(body), signature)

	msgs := []Message{email}
	if shipping.Phone != "" {
		wa := newMessage(KindOrderStatus, ChannelWhatsApp, shipping.Phone)
		wa.Text = body
		msgs = append(msgs, wa)
	}
	return msgs
}

func PaymentReceived(order *models.Order, shipping *models.Shipping, payment *models.Payment) Message {
	msg := newMessage(KindPayment, ChannelEmail, shipping.Email)

	var outcome string
	switch payment.PaymentStatus {
	case models.PaymentCompleted:
		outcome = "Successful"
	case models.PaymentFailed:
		outcome = "Failed"
	default:
		outcome = "Received"
	}
	msg.Subject = fmt.Sprintf("Payment for Order #%d %s", order.ID, outcome)
	msg.Text = fmt.Sprintf(
		"Dear %s,\n\nWe recorded a %s payment of %s via %s for order #%d.\nTransaction: %s\nStatus: %s\n\n%s",
		shipping.FullName(), strings.ToLower(outcome), payment.Amount.StringFixed(2),
		payment.PaymentMethod, order.ID, payment.TransactionID, payment.PaymentStatus, signature)
	return msg
}

func AccountVerified(user *models.User) Message {
	msg := newMessage(KindAccountVerified, ChannelEmail, user.Email)
	msg.Subject = "Your account has been verified"
	msg.Text = fmt.Sprintf("Hello %s,\n\nYour account is verified and you can now sign in.\n\n%s",
		user.DisplayName(), signature)
	return msg
}

func PasswordRecovery(user *models.User, token string) Message {
	msg := newMessage(KindPasswordRecovery, ChannelEmail, user.Email)
	msg.Subject = "Password recovery"
	msg.Text = fmt.Sprintf(
		"Hello %s,\n\nUse this code to set a new password: %s\nIf you did not ask for it, ignore this e-mail.\n\n%s",
		user.DisplayName(), token, signature)
	return msg
}
