package controllers

import (
	"errors"
	"net/http"

	"github.com/bazaarhq/bazaar/app/models"
	"github.com/bazaarhq/bazaar/app/services"
	"github.com/bazaarhq/bazaar/pkg/bind"
	"github.com/bazaarhq/bazaar/pkg/logger"
	"github.com/bazaarhq/bazaar/pkg/response"
)

// OrderController exposes the notification and order endpoints backed by
// the checkout service.
type OrderController struct {
	checkout *services.CheckoutService
}

// NewOrderController wires the order endpoints.
func NewOrderController(checkout *services.CheckoutService) *OrderController {
	return &OrderController{checkout: checkout}
}

type sendCartRequest struct {
	Email string            `json:"email" validate:"required,email"`
	Cart  []models.CartItem `json:"cart" validate:"required"`
}

// SendCart emails the customer a summary of their cart.
func (c *OrderController) SendCart(w http.ResponseWriter, r *http.Request) {
	var req sendCartRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.checkout.SendCartSummary(req.Email, req.Cart); err != nil {
		response.ServerError(w, err)
		return
	}

	logger.WithCtx(r.Context()).Info("cart summary sent", "email", req.Email)
	response.Msg(w, http.StatusOK, "Cart summary sent successfully")
}

// SendEmail emails an order notice to the business address.
func (c *OrderController) SendEmail(w http.ResponseWriter, r *http.Request) {
	var notice services.OrderNotice
	if errs, err := bind.JSON(r, &notice); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	err := c.checkout.SendOrderNotice(r.Context(), notice)
	if errors.Is(err, services.ErrProductNotFound) {
		response.NotFound(w, "Product not found")
		return
	}
	if err != nil {
		response.ServerError(w, err)
		return
	}
	response.Msg(w, http.StatusOK, "Order email sent successfully")
}

type sendDatabaseRequest struct {
	Email     string `json:"email" validate:"required,email"`
	ProductID string `json:"product_id" validate:"required"`
}

// SendDatabase records a Processing order on the user's document.
func (c *OrderController) SendDatabase(w http.ResponseWriter, r *http.Request) {
	var req sendDatabaseRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	err := c.checkout.PlaceOrder(r.Context(), req.Email, req.ProductID)
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		response.NotFound(w, "Product not found")
		return
	case errors.Is(err, services.ErrUserNotFound):
		response.NotFound(w, "User not found")
		return
	case err != nil:
		response.ServerError(w, err)
		return
	}

	logger.WithCtx(r.Context()).Info("order recorded", "email", req.Email, "product_id", req.ProductID)
	response.Msg(w, http.StatusOK, "Order saved to database")
}

type ordersRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Orders returns the user's orders sequence.
func (c *OrderController) Orders(w http.ResponseWriter, r *http.Request) {
	var req ordersRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	orders, err := c.checkout.Orders(r.Context(), req.Email)
	if errors.Is(err, services.ErrUserNotFound) {
		response.NotFound(w, "User not found")
		return
	}
	if err != nil {
		response.ServerError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

type deleteOrderRequest struct {
	Email   string `json:"email" validate:"required,email"`
	OrderID string `json:"orderId" validate:"required"`
}

// DeleteOrder removes exactly one order from the user's sequence.
func (c *OrderController) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	var req deleteOrderRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	err := c.checkout.RemoveOrder(r.Context(), req.Email, req.OrderID)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		response.NotFound(w, "User not found")
		return
	case errors.Is(err, services.ErrOrderNotFound):
		response.NotFound(w, "Order not found")
		return
	case err != nil:
		response.ServerError(w, err)
		return
	}
	response.Msg(w, http.StatusOK, "Order deleted successfully")
}
