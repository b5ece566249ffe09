package notification

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/allisson/storefront/internal/events"
)

const welcomeSubject = "Welcome to Our Platform!"

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #333; text-align: center;">Welcome {{.Name}}!</h1>
  <p style="font-size: 16px; line-height: 1.6; color: #666;">
    Thank you for registering with our platform. We're excited to have you on board!
  </p>
  <p style="font-size: 16px; line-height: 1.6; color: #666;">
    You can now start exploring our products and services. If you have any questions,
    please don't hesitate to contact our support team.
  </p>
  <p style="font-size: 14px; color: #999; text-align: center; margin-top: 30px;">
    Best regards,<br>
    The Storefront Team
  </p>
</div>
`))

func welcomeMessage(event events.UserRegistered) (Message, error) {
	var body bytes.Buffer
	if err := welcomeTemplate.Execute(&body, event); err != nil {
		return Message{}, fmt.Errorf("failed to render welcome mail: %w", err)
	}
	return Message{To: event.Email, Subject: welcomeSubject, HTML: body.String()}, nil
}

// cartNotice returns the subject and text of the notice for a cart change.
func cartNotice(event events.CartUpdated) (subject, text string) {
	switch event.Action {
	case events.CartActionAdd:
		return "Item Added to Cart",
			fmt.Sprintf("A new item has been added to your cart. Product ID: %s", event.ProductID)
	case events.CartActionRemove:
		return "Item Removed from Cart",
			fmt.Sprintf("An item has been removed from your cart. Product ID: %s", event.ProductID)
	default:
		return "Cart Updated",
			fmt.Sprintf("Your cart has been updated. Product ID: %s, Quantity: %d", event.ProductID, event.Quantity)
	}
}
