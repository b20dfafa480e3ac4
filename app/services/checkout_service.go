// Package services holds business workflows that span repositories and
// external collaborators.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bazaarhq/bazaar/app/models"
	"github.com/bazaarhq/bazaar/app/repositories"
)

// gstRate is applied on top of the cart total in the summary email.
const gstRate = 0.18

var (
	// ErrProductNotFound marks a missing catalog entry.
	ErrProductNotFound = errors.New("services: product not found")
	// ErrUserNotFound marks a missing account.
	ErrUserNotFound = errors.New("services: user not found")
	// ErrOrderNotFound marks a missing order on a user.
	ErrOrderNotFound = errors.New("services: order not found")
)

// Mailer is the slice of the mail package the service needs; tests swap in
// a recorder.
type Mailer interface {
	SendHTML(to, subject, html string) error
	SendText(to, subject, text string) error
}

// CheckoutService sends cart/order notifications and maintains the orders
// sequence on user documents.
type CheckoutService struct {
	users         repositories.UserRepository
	products      repositories.ProductRepository
	mailer        Mailer
	businessEmail string
}

// NewCheckoutService wires the checkout workflows.
func NewCheckoutService(users repositories.UserRepository, products repositories.ProductRepository, mailer Mailer, businessEmail string) *CheckoutService {
	return &CheckoutService{
		users:         users,
		products:      products,
		mailer:        mailer,
		businessEmail: businessEmail,
	}
}

// SendCartSummary emails the customer an HTML table of their cart with
// line totals, the grand total, and 18% GST.
func (s *CheckoutService) SendCartSummary(email string, cart []models.CartItem) error {
	var rows strings.Builder
	var total float64

	for _, item := range cart {
		lineTotal := item.Price * float64(item.Quantity)
		total += lineTotal
		fmt.Fprintf(&rows, `
      <tr>
        <td>%s</td>
        <td>%s</td>
        <td>%.2f</td>
        <td>%d</td>
        <td>%.2f</td>
      </tr>`, item.Title, item.ProductID, item.Price, item.Quantity, lineTotal)
	}

	body := fmt.Sprintf(`
        <h3>Your Cart Summary</h3>
        <table border="1" cellpadding="5">
          <thead>
            <tr>
              <th>Title</th>
              <th>Product ID</th>
              <th>Price</th>
              <th>Quantity</th>
              <th>Total</th>
            </tr>
          </thead>
          <tbody>%s
            <tr>
              <td colspan="4"><strong>Total Price</strong></td>
              <td><strong>%.2f</strong></td>
            </tr>
            <tr>
              <td colspan="4"><strong>GST (18%%)</strong></td>
              <td><strong>%.2f</strong></td>
            </tr>
          </tbody>
        </table>`, rows.String(), total, total*gstRate)

	return s.mailer.SendHTML(email, "Your Cart Summary", body)
}

// OrderNotice carries the checkout form for the business notification.
type OrderNotice struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	ZipCode   string `json:"zipCode" validate:"required"`
	Country   string `json:"country" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
}

// SendOrderNotice emails a plain-text order notification to the business
// address.
func (s *CheckoutService) SendOrderNotice(ctx context.Context, notice OrderNotice) error {
	product, err := s.products.FindByID(ctx, notice.ProductID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}

	body := fmt.Sprintf(`
        New order received for %s.

        Customer Details:
        Name: %s
        Email: %s
        Address: %s, %s, %s, %s

        Product Details:
        Title: %s
        Price: %.2f
      `, product.Title, notice.Name, notice.Email, notice.Address, notice.City,
		notice.ZipCode, notice.Country, product.Title, product.Price)

	return s.mailer.SendText(s.businessEmail, "New Order Received", body)
}

// PlaceOrder appends a Processing order for the given product to the
// user's orders sequence.
func (s *CheckoutService) PlaceOrder(ctx context.Context, email, productID string) error {
	product, err := s.products.FindByID(ctx, productID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}

	// Embedded documents get no _id from the driver; mint one so orders
	// can be addressed individually later.
	order := models.Order{
		ID:        primitive.NewObjectID(),
		Title:     product.Title,
		Price:     product.Price,
		OrderDate: time.Now(),
		Status:    models.StatusProcessing,
	}

	err = s.users.PushOrder(ctx, email, order)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// Orders returns the user's orders sequence.
func (s *CheckoutService) Orders(ctx context.Context, email string) ([]models.Order, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user.Orders, nil
}

// RemoveOrder deletes exactly the order with the given id, preserving the
// rest of the sequence.
func (s *CheckoutService) RemoveOrder(ctx context.Context, email, orderID string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	idx := -1
	for i, order := range user.Orders {
		if order.ID.Hex() == orderID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrOrderNotFound
	}

	orders := append(user.Orders[:idx:idx], user.Orders[idx+1:]...)
	return s.users.SetOrders(ctx, email, orders)
}
