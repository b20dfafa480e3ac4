package controllers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazaarhq/bazaar/app/controllers"
	"github.com/bazaarhq/bazaar/app/models"
	"github.com/bazaarhq/bazaar/pkg/middleware"
)

func seedCartUser(t *testing.T, users *fakeUserRepo) *models.User {
	t.Helper()
	user := &models.User{
		Email: "ann@example.com",
		Cart: []models.CartItem{
			{ProductID: "P1", Title: "keyboard", Price: 50, Quantity: 1},
			{ProductID: "P2", Title: "mouse", Price: 25, Quantity: 2},
			{ProductID: "P3", Title: "mat", Price: 10, Quantity: 1},
		},
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

// authedRequest runs handler behind the real auth middleware with a token
// for the given user ID.
func authedRequest(t *testing.T, handler http.HandlerFunc, req *http.Request, userID string) *httptest.ResponseRecorder {
	t.Helper()
	issuer := testIssuer()
	access, err := issuer.AccessToken(userID)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+access)

	rec := httptest.NewRecorder()
	middleware.RequireAuth(issuer)(handler).ServeHTTP(rec, req)
	return rec
}

func TestAddCartReplacesWholeCart(t *testing.T) {
	users := &fakeUserRepo{}
	user := seedCartUser(t, users)
	c := controllers.NewCartController(users)

	req := httptest.NewRequest(http.MethodPatch, "/user/addcart",
		strings.NewReader(`{"cart":[{"product_id":"P9","title":"lamp","price":15,"quantity":1}]}`))
	rec := authedRequest(t, c.AddCart, req, user.ID.Hex())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Added to cart", decodeBody(t, rec)["msg"])

	require.Len(t, user.Cart, 1)
	assert.Equal(t, "P9", user.Cart[0].ProductID)
}

func TestAddCartRejectsNegativeQuantity(t *testing.T) {
	users := &fakeUserRepo{}
	user := seedCartUser(t, users)
	c := controllers.NewCartController(users)

	req := httptest.NewRequest(http.MethodPatch, "/user/addcart",
		strings.NewReader(`{"cart":[{"product_id":"P9","title":"lamp","price":15,"quantity":-1}]}`))
	rec := authedRequest(t, c.AddCart, req, user.ID.Hex())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, user.Cart, 3) // unchanged
}

func TestDeleteCartItemByIndex(t *testing.T) {
	users := &fakeUserRepo{}
	user := seedCartUser(t, users)
	c := controllers.NewCartController(users)

	req := httptest.NewRequest(http.MethodPost, "/user/cart/delete",
		strings.NewReader(`{"email":"ann@example.com","index":1}`))
	rec := httptest.NewRecorder()
	c.DeleteItem(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// P2 removed, order of the rest preserved.
	require.Len(t, user.Cart, 2)
	assert.Equal(t, "P1", user.Cart[0].ProductID)
	assert.Equal(t, "P3", user.Cart[1].ProductID)
}

func TestDeleteCartItemOutOfRange(t *testing.T) {
	users := &fakeUserRepo{}
	user := seedCartUser(t, users)
	c := controllers.NewCartController(users)

	for _, body := range []string{
		`{"email":"ann@example.com","index":3}`,
		`{"email":"ann@example.com","index":-1}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/user/cart/delete", strings.NewReader(body))
		rec := httptest.NewRecorder()
		c.DeleteItem(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	}
	assert.Len(t, user.Cart, 3) // no mutation on failure
}

func TestCommentCartItem(t *testing.T) {
	users := &fakeUserRepo{}
	user := seedCartUser(t, users)
	c := controllers.NewCartController(users)

	req := httptest.NewRequest(http.MethodPost, "/user/cart/comment",
		strings.NewReader(`{"email":"ann@example.com","product_id":"P2","comment":"gift wrap please"}`))
	rec := httptest.NewRecorder()
	c.CommentItem(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gift wrap please", user.Cart[1].Comment)
}

func TestCommentCartItemNotInCart(t *testing.T) {
	users := &fakeUserRepo{}
	seedCartUser(t, users)
	c := controllers.NewCartController(users)

	req := httptest.NewRequest(http.MethodPost, "/user/cart/comment",
		strings.NewReader(`{"email":"ann@example.com","product_id":"P404","comment":"hello"}`))
	rec := httptest.NewRecorder()
	c.CommentItem(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Product not found in cart.", decodeBody(t, rec)["msg"])
}

func TestCartRequiresAuth(t *testing.T) {
	c := controllers.NewCartController(&fakeUserRepo{})

	req := httptest.NewRequest(http.MethodGet, "/user/cart", nil)
	rec := httptest.NewRecorder()
	middleware.RequireAuth(testIssuer())(http.HandlerFunc(c.Cart)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid Authentication", decodeBody(t, rec)["msg"])
}
