// Package routes mounts every HTTP endpoint onto the router.
package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/bazaarhq/bazaar/app/controllers"
	"github.com/bazaarhq/bazaar/pkg/auth"
	"github.com/bazaarhq/bazaar/pkg/metrics"
	"github.com/bazaarhq/bazaar/pkg/middleware"
	"github.com/bazaarhq/bazaar/pkg/reqid"
	"github.com/bazaarhq/bazaar/pkg/response"
	"github.com/bazaarhq/bazaar/pkg/router"
)

// Controllers bundles the handler sets the route table needs.
type Controllers struct {
	Auth    *controllers.AuthController
	Cart    *controllers.CartController
	Product *controllers.ProductController
	Upload  *controllers.UploadController
	Order   *controllers.OrderController
}

// Register mounts all endpoints and global middleware. roleOf resolves the
// stored role for the admin gate; the route:list command passes a stub.
func Register(r *router.Router, c Controllers, issuer *auth.TokenIssuer, roleOf func(context.Context, string) (int, error)) {
	r.Use(
		reqid.Middleware(),
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.NewRateLimiter(300, time.Minute).Middleware,
		metrics.Middleware(),
	)

	authed := middleware.RequireAuth(issuer)
	admin := middleware.RequireAdmin(roleOf)

	r.Get("/", "home", func(w http.ResponseWriter, req *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{
			"app":    "bazaar",
			"status": "ok",
		})
	})
	r.Get("/metrics", "metrics", metrics.Handler())

	// Accounts and cart state.
	user := r.Group("/user")
	user.Post("/register", "user.register", c.Auth.Register)
	user.Post("/login", "user.login", c.Auth.Login)
	user.Get("/logout", "user.logout", c.Auth.Logout)
	user.Get("/refresh_token", "user.refresh", c.Auth.RefreshToken)
	user.Get("/infor", "user.infor", c.Auth.Infor, authed)
	user.Patch("/addcart", "user.addcart", c.Cart.AddCart, authed)
	user.Get("/cart", "user.cart", c.Cart.Cart, authed)
	user.Post("/cart/delete", "user.cart.delete", c.Cart.DeleteItem)
	user.Post("/cart/comment", "user.cart.comment", c.Cart.CommentItem)
	user.Post("/details", "user.details", c.Auth.Details)

	// Catalog and assets.
	api := r.Group("/api")
	api.Get("/products", "products.list", c.Product.List)
	api.Post("/products", "products.create", c.Product.Create, authed, admin)
	api.Put("/products/{id}", "products.update", c.Product.Update, authed, admin)
	api.Delete("/products/{id}", "products.delete", c.Product.Delete, authed, admin)
	api.Get("/products/{id}/comments", "products.comments", c.Product.Comments)
	api.Post("/products/{id}/comments", "products.comments.add", c.Product.AddComment)
	api.Delete("/products/{id}/comments/{commentId}", "products.comments.delete", c.Product.DeleteComment)
	api.Post("/upload", "assets.upload", c.Upload.Upload, authed, admin)
	api.Post("/destroy", "assets.destroy", c.Upload.Destroy, authed, admin)

	// Orders and notifications.
	orders := r.Group("/users")
	orders.Post("/send-cart", "orders.sendcart", c.Order.SendCart)
	orders.Post("/send-email", "orders.sendemail", c.Order.SendEmail)
	orders.Post("/send-database", "orders.record", c.Order.SendDatabase)
	orders.Get("/orders", "orders.list", c.Order.Orders)
	orders.Delete("/orders", "orders.delete", c.Order.DeleteOrder)
}
