package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bazaarhq/bazaar/app/models"
	"github.com/bazaarhq/bazaar/app/repositories"
	"github.com/bazaarhq/bazaar/app/services"
	"github.com/bazaarhq/bazaar/pkg/query"
)

// recorderMailer captures sent mail instead of hitting SMTP.
type recorderMailer struct {
	to      string
	subject string
	body    string
	html    bool
}

func (m *recorderMailer) SendHTML(to, subject, html string) error {
	m.to, m.subject, m.body, m.html = to, subject, html, true
	return nil
}

func (m *recorderMailer) SendText(to, subject, text string) error {
	m.to, m.subject, m.body, m.html = to, subject, text, false
	return nil
}

type stubUserRepo struct {
	user *models.User
}

func (s *stubUserRepo) Create(context.Context, *models.User) error { return nil }
func (s *stubUserRepo) FindByID(context.Context, string) (*models.User, error) {
	return nil, repositories.ErrNotFound
}
func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user != nil && s.user.Email == email {
		return s.user, nil
	}
	return nil, repositories.ErrNotFound
}
func (s *stubUserRepo) RoleOf(context.Context, string) (int, error) { return 0, nil }
func (s *stubUserRepo) SetCart(context.Context, string, []models.CartItem) error {
	return nil
}
func (s *stubUserRepo) SetCartByEmail(context.Context, string, []models.CartItem) error {
	return nil
}
func (s *stubUserRepo) PushOrder(_ context.Context, email string, order models.Order) error {
	if s.user == nil || s.user.Email != email {
		return repositories.ErrNotFound
	}
	s.user.Orders = append(s.user.Orders, order)
	return nil
}
func (s *stubUserRepo) SetOrders(_ context.Context, email string, orders []models.Order) error {
	if s.user == nil || s.user.Email != email {
		return repositories.ErrNotFound
	}
	s.user.Orders = orders
	return nil
}

type stubProductRepo struct {
	product *models.Product
}

func (s *stubProductRepo) Create(context.Context, *models.Product) error { return nil }
func (s *stubProductRepo) List(context.Context, query.Descriptor) ([]models.Product, error) {
	return nil, nil
}
func (s *stubProductRepo) FindByID(_ context.Context, id string) (*models.Product, error) {
	if s.product != nil && s.product.ID.Hex() == id {
		return s.product, nil
	}
	return nil, repositories.ErrNotFound
}
func (s *stubProductRepo) FindByProductID(context.Context, string) (*models.Product, error) {
	return nil, repositories.ErrNotFound
}
func (s *stubProductRepo) Update(context.Context, string, repositories.ProductUpdate) error {
	return nil
}
func (s *stubProductRepo) Delete(context.Context, string) error { return nil }
func (s *stubProductRepo) SetComments(context.Context, string, []models.Comment) error {
	return nil
}

func TestSendCartSummaryTotalsAndGST(t *testing.T) {
	mailer := &recorderMailer{}
	svc := services.NewCheckoutService(&stubUserRepo{}, &stubProductRepo{}, mailer, "orders@biz.test")

	cart := []models.CartItem{
		{ProductID: "P1", Title: "keyboard", Price: 25, Quantity: 2},
		{ProductID: "P2", Title: "mouse", Price: 50, Quantity: 1},
	}
	require.NoError(t, svc.SendCartSummary("ann@example.com", cart))

	assert.Equal(t, "ann@example.com", mailer.to)
	assert.Equal(t, "Your Cart Summary", mailer.subject)
	assert.True(t, mailer.html)
	// 2×25 + 1×50 = 100.00, GST 18% = 18.00
	assert.Contains(t, mailer.body, "100.00")
	assert.Contains(t, mailer.body, "18.00")
	assert.Contains(t, mailer.body, "keyboard")
}

func TestSendOrderNoticeGoesToBusinessAddress(t *testing.T) {
	product := &models.Product{ID: primitive.NewObjectID(), Title: "desk lamp", Price: 35}
	mailer := &recorderMailer{}
	svc := services.NewCheckoutService(&stubUserRepo{}, &stubProductRepo{product: product}, mailer, "orders@biz.test")

	err := svc.SendOrderNotice(context.Background(), services.OrderNotice{
		Name:      "Ann",
		Email:     "ann@example.com",
		Address:   "1 Main St",
		City:      "Pune",
		ZipCode:   "411001",
		Country:   "IN",
		ProductID: product.ID.Hex(),
	})
	require.NoError(t, err)

	assert.Equal(t, "orders@biz.test", mailer.to)
	assert.False(t, mailer.html)
	assert.Contains(t, mailer.body, "desk lamp")
	assert.Contains(t, mailer.body, "Pune")
}

func TestSendOrderNoticeUnknownProduct(t *testing.T) {
	svc := services.NewCheckoutService(&stubUserRepo{}, &stubProductRepo{}, &recorderMailer{}, "orders@biz.test")

	err := svc.SendOrderNotice(context.Background(), services.OrderNotice{
		ProductID: primitive.NewObjectID().Hex(),
	})
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}

func TestPlaceOrderAppendsProcessingOrder(t *testing.T) {
	product := &models.Product{ID: primitive.NewObjectID(), Title: "desk lamp", Price: 35}
	user := &models.User{Email: "ann@example.com"}
	svc := services.NewCheckoutService(&stubUserRepo{user: user}, &stubProductRepo{product: product}, &recorderMailer{}, "")

	require.NoError(t, svc.PlaceOrder(context.Background(), "ann@example.com", product.ID.Hex()))

	require.Len(t, user.Orders, 1)
	order := user.Orders[0]
	assert.Equal(t, "desk lamp", order.Title)
	assert.Equal(t, 35.0, order.Price)
	assert.Equal(t, models.StatusProcessing, order.Status)
	assert.False(t, order.ID.IsZero())
	assert.False(t, order.OrderDate.IsZero())
}

func TestPlaceOrderUnknownUser(t *testing.T) {
	product := &models.Product{ID: primitive.NewObjectID()}
	svc := services.NewCheckoutService(&stubUserRepo{}, &stubProductRepo{product: product}, &recorderMailer{}, "")

	err := svc.PlaceOrder(context.Background(), "ghost@example.com", product.ID.Hex())
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestRemoveOrder(t *testing.T) {
	keep := models.Order{ID: primitive.NewObjectID(), Title: "keep"}
	drop := models.Order{ID: primitive.NewObjectID(), Title: "drop"}
	user := &models.User{Email: "ann@example.com", Orders: []models.Order{keep, drop}}
	svc := services.NewCheckoutService(&stubUserRepo{user: user}, &stubProductRepo{}, &recorderMailer{}, "")

	t.Run("unknown order", func(t *testing.T) {
		err := svc.RemoveOrder(context.Background(), "ann@example.com", primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, services.ErrOrderNotFound)
		assert.Len(t, user.Orders, 2)
	})

	t.Run("removes exactly one", func(t *testing.T) {
		require.NoError(t, svc.RemoveOrder(context.Background(), "ann@example.com", drop.ID.Hex()))
		require.Len(t, user.Orders, 1)
		assert.Equal(t, "keep", user.Orders[0].Title)
	})
}
