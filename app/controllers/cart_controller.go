package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bazaarhq/bazaar/app/models"
	"github.com/bazaarhq/bazaar/app/repositories"
	"github.com/bazaarhq/bazaar/pkg/bind"
	"github.com/bazaarhq/bazaar/pkg/middleware"
	"github.com/bazaarhq/bazaar/pkg/response"
)

// CartController mutates the cart embedded on the user document. The cart
// is always replaced wholesale, never patched item by item.
type CartController struct {
	users repositories.UserRepository
}

// NewCartController wires the cart endpoints.
func NewCartController(users repositories.UserRepository) *CartController {
	return &CartController{users: users}
}

type addCartRequest struct {
	Cart []models.CartItem `json:"cart"`
}

// AddCart replaces the authenticated user's cart.
func (c *CartController) AddCart(w http.ResponseWriter, r *http.Request) {
	var req addCartRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	// The validator does not descend into slice elements.
	for i, item := range req.Cart {
		if item.Quantity < 0 {
			response.BadRequest(w, fmt.Sprintf("Cart item %d has a negative quantity.", i))
			return
		}
	}

	if req.Cart == nil {
		req.Cart = []models.CartItem{}
	}

	err := c.users.SetCart(r.Context(), middleware.UserID(r.Context()), req.Cart)
	if errors.Is(err, repositories.ErrNotFound) {
		response.BadRequest(w, "User does not exist.")
		return
	}
	if err != nil {
		response.ServerError(w, err)
		return
	}
	response.Msg(w, http.StatusOK, "Added to cart")
}

// Cart returns the authenticated user's cart.
func (c *CartController) Cart(w http.ResponseWriter, r *http.Request) {
	user, err := c.users.FindByID(r.Context(), middleware.UserID(r.Context()))
	if errors.Is(err, repositories.ErrNotFound) {
		response.BadRequest(w, "User does not exist.")
		return
	}
	if err != nil {
		response.ServerError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"cart": user.Cart})
}

type deleteCartItemRequest struct {
	Email string `json:"email" validate:"required,email"`
	Index int    `json:"index"`
}

// DeleteItem removes the cart item at the given position, preserving the
// order of the rest. An out-of-range index mutates nothing.
func (c *CartController) DeleteItem(w http.ResponseWriter, r *http.Request) {
	var req deleteCartItemRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.users.FindByEmail(r.Context(), req.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		response.BadRequest(w, "User does not exist.")
		return
	}
	if err != nil {
		response.ServerError(w, err)
		return
	}

	if req.Index < 0 || req.Index >= len(user.Cart) {
		response.NotFound(w, "Cart item not found")
		return
	}

	cart := append(user.Cart[:req.Index:req.Index], user.Cart[req.Index+1:]...)
	if err := c.users.SetCartByEmail(r.Context(), req.Email, cart); err != nil {
		response.ServerError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"msg":  "Item removed from cart",
		"cart": cart,
	})
}

type cartCommentRequest struct {
	Email     string `json:"email" validate:"required,email"`
	ProductID string `json:"product_id" validate:"required"`
	Comment   string `json:"comment" validate:"required"`
}

// CommentItem sets the comment on the cart item matching product_id.
func (c *CartController) CommentItem(w http.ResponseWriter, r *http.Request) {
	var req cartCommentRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.users.FindByEmail(r.Context(), req.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		response.BadRequest(w, "User does not exist.")
		return
	}
	if err != nil {
		response.ServerError(w, err)
		return
	}

	if len(user.Cart) == 0 {
		response.BadRequest(w, "Cart is empty.")
		return
	}

	found := false
	for i := range user.Cart {
		if user.Cart[i].ProductID == req.ProductID {
			user.Cart[i].Comment = req.Comment
			found = true
			break
		}
	}
	if !found {
		response.BadRequest(w, "Product not found in cart.")
		return
	}

	if err := c.users.SetCartByEmail(r.Context(), req.Email, user.Cart); err != nil {
		response.ServerError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"msg":  "Comment added to cart item",
		"cart": user.Cart,
	})
}
