package controllers_test

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bazaarhq/bazaar/app/models"
	"github.com/bazaarhq/bazaar/app/repositories"
	"github.com/bazaarhq/bazaar/pkg/query"
)

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users []*models.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	if user.Cart == nil {
		user.Cart = []models.CartItem{}
	}
	if user.Orders == nil {
		user.Orders = []models.Order{}
	}
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID.Hex() == id {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) RoleOf(ctx context.Context, id string) (int, error) {
	u, err := f.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return u.Role, nil
}

func (f *fakeUserRepo) SetCart(ctx context.Context, id string, cart []models.CartItem) error {
	u, err := f.FindByID(ctx, id)
	if err != nil {
		return err
	}
	u.Cart = cart
	return nil
}

func (f *fakeUserRepo) SetCartByEmail(ctx context.Context, email string, cart []models.CartItem) error {
	u, err := f.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	u.Cart = cart
	return nil
}

func (f *fakeUserRepo) PushOrder(ctx context.Context, email string, order models.Order) error {
	u, err := f.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	u.Orders = append(u.Orders, order)
	return nil
}

func (f *fakeUserRepo) SetOrders(ctx context.Context, email string, orders []models.Order) error {
	u, err := f.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	u.Orders = orders
	return nil
}

// fakeProductRepo is an in-memory ProductRepository.
type fakeProductRepo struct {
	products []*models.Product
}

func (f *fakeProductRepo) Create(_ context.Context, product *models.Product) error {
	for _, p := range f.products {
		if p.ProductID == product.ProductID {
			return repositories.ErrDuplicate
		}
	}
	product.ID = primitive.NewObjectID()
	if product.Comments == nil {
		product.Comments = []models.Comment{}
	}
	f.products = append(f.products, product)
	return nil
}

func (f *fakeProductRepo) List(_ context.Context, d query.Descriptor) ([]models.Product, error) {
	if err := d.Err(); err != nil {
		return nil, err
	}
	out := []models.Product{}
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProductRepo) FindByID(_ context.Context, id string) (*models.Product, error) {
	for _, p := range f.products {
		if p.ID.Hex() == id {
			return p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeProductRepo) FindByProductID(_ context.Context, code string) (*models.Product, error) {
	for _, p := range f.products {
		if p.ProductID == code {
			return p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeProductRepo) Update(ctx context.Context, id string, upd repositories.ProductUpdate) error {
	p, err := f.FindByID(ctx, id)
	if err != nil {
		return err
	}
	p.Title = upd.Title
	p.Price = upd.Price
	p.Description = upd.Description
	p.Content = upd.Content
	p.Category = upd.Category
	p.Images = upd.Images
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id string) error {
	for i, p := range f.products {
		if p.ID.Hex() == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeProductRepo) SetComments(ctx context.Context, id string, comments []models.Comment) error {
	p, err := f.FindByID(ctx, id)
	if err != nil {
		return err
	}
	p.Comments = comments
	return nil
}

var _ repositories.UserRepository = (*fakeUserRepo)(nil)
var _ repositories.ProductRepository = (*fakeProductRepo)(nil)
