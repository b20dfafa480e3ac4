package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bazaarhq/bazaar/app/models"
	"github.com/bazaarhq/bazaar/app/repositories"
	"github.com/bazaarhq/bazaar/pkg/bind"
	"github.com/bazaarhq/bazaar/pkg/query"
	"github.com/bazaarhq/bazaar/pkg/response"
)

// ProductController serves the catalog and its comments.
type ProductController struct {
	products repositories.ProductRepository
}

// NewProductController wires the catalog endpoints.
func NewProductController(products repositories.ProductRepository) *ProductController {
	return &ProductController{products: products}
}

// List runs the filter/sort/pagination pipeline from the query string.
func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	d := query.New().
		Filtering(r.URL.Query()).
		Sorting(r.URL.Query()).
		Pagination(r.URL.Query())

	products, err := c.products.List(r.Context(), d)
	if err != nil {
		response.ServerError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"result":   len(products),
		"products": products,
	})
}

type productRequest struct {
	ProductID   string       `json:"product_id" validate:"required"`
	Title       string       `json:"title" validate:"required"`
	Price       float64      `json:"price" validate:"required"`
	Description string       `json:"description" validate:"required"`
	Content     string       `json:"content" validate:"required"`
	Category    string       `json:"category" validate:"required"`
	Images      models.Image `json:"images"`
}

// Create inserts a catalog entry. Titles are lowercased on the way in so
// listing filters match case-insensitively.
func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if req.Images.URL == "" || req.Images.PublicID == "" {
		response.BadRequest(w, "No Image Upload")
		return
	}

	product := &models.Product{
		ProductID:   req.ProductID,
		Title:       strings.ToLower(req.Title),
		Price:       req.Price,
		Description: req.Description,
		Content:     req.Content,
		Category:    req.Category,
		Images:      req.Images,
	}
	if err := c.products.Create(r.Context(), product); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			response.BadRequest(w, "This product already exists.")
			return
		}
		response.ServerError(w, err)
		return
	}
	response.Msg(w, http.StatusOK, "Product created successfully!")
}

type productUpdateRequest struct {
	Title       string       `json:"title" validate:"required"`
	Price       float64      `json:"price" validate:"required"`
	Description string       `json:"description" validate:"required"`
	Content     string       `json:"content" validate:"required"`
	Category    string       `json:"category" validate:"required"`
	Images      models.Image `json:"images"`
}

// Update rewrites the mutable fields of a catalog entry.
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	var req productUpdateRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if req.Images.URL == "" || req.Images.PublicID == "" {
		response.BadRequest(w, "No Image Upload")
		return
	}

	err := c.products.Update(r.Context(), chi.URLParam(r, "id"), repositories.ProductUpdate{
		Title:       strings.ToLower(req.Title),
		Price:       req.Price,
		Description: req.Description,
		Content:     req.Content,
		Category:    req.Category,
		Images:      req.Images,
	})
	if errors.Is(err, repositories.ErrNotFound) {
		response.NotFound(w, "Product not found")
		return
	}
	if err != nil {
		response.ServerError(w, err)
		return
	}
	response.Msg(w, http.StatusOK, "Product updated successfully!")
}

// Delete removes a catalog entry.
func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	err := c.products.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repositories.ErrNotFound) {
		response.NotFound(w, "Product not found")
		return
	}
	if err != nil {
		response.ServerError(w, err)
		return
	}
	response.Msg(w, http.StatusOK, "Deleted a Product")
}

// Comments returns the comment sequence of a product.
func (c *ProductController) Comments(w http.ResponseWriter, r *http.Request) {
	product, err := c.products.FindByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repositories.ErrNotFound) {
		response.NotFound(w, "Product not found")
		return
	}
	if err != nil {
		response.ServerError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"comments": product.Comments})
}

type commentRequest struct {
	Username string `json:"username" validate:"required"`
	Comment  string `json:"comment" validate:"required"`
}

// AddComment appends a comment and echoes the full updated sequence.
func (c *ProductController) AddComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	id := chi.URLParam(r, "id")
	product, err := c.products.FindByID(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		response.NotFound(w, "Product not found")
		return
	}
	if err != nil {
		response.ServerError(w, err)
		return
	}

	comments := append(product.Comments, models.Comment{
		ID:       primitive.NewObjectID(),
		Username: req.Username,
		Comment:  req.Comment,
	})
	if err := c.products.SetComments(r.Context(), id, comments); err != nil {
		response.ServerError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"msg":      "Comment added",
		"comments": comments,
	})
}

// DeleteComment removes exactly one comment and echoes the remainder.
func (c *ProductController) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	commentID := chi.URLParam(r, "commentId")

	product, err := c.products.FindByID(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		response.NotFound(w, "Product not found")
		return
	}
	if err != nil {
		response.ServerError(w, err)
		return
	}

	idx := -1
	for i, comment := range product.Comments {
		if comment.ID.Hex() == commentID {
			idx = i
			break
		}
	}
	if idx == -1 {
		response.NotFound(w, "Comment not found")
		return
	}

	comments := append(product.Comments[:idx:idx], product.Comments[idx+1:]...)
	if err := c.products.SetComments(r.Context(), id, comments); err != nil {
		response.ServerError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"msg":      "Comment deleted",
		"comments": comments,
	})
}
