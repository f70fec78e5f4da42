package api

import (
	"net/http"
	"strconv"

	"github.com/example/storefront/pkg/models"
	"github.com/gin-gonic/gin"
)

type createProductRequest struct {
	Type        string            `json:"type"`
	Price       models.FlexString `json:"price"`
	Description string            `json:"description"`
	Size        string            `json:"size"`
	Qty         models.Quantity   `json:"qty"`
	Images      []string          `json:"images"`
}

func (s *Server) listProducts(c *gin.Context) {
	products, err := s.products.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": products,
	})
}

func (s *Server) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if req.Type == "" || req.Price == "" {
		badRequest(c, "type and price are required")
		return
	}
	if !models.ValidCategory(req.Type) {
		badRequest(c, "unknown product category: "+req.Type)
		return
	}

	product, err := s.products.Insert(c.Request.Context(), &models.NewProduct{
		Category:    req.Type,
		Price:       string(req.Price),
		Description: req.Description,
		Size:        req.Size,
		Qty:         strconv.Itoa(int(req.Qty)),
		Images:      req.Images,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"product": product,
	})
}

func (s *Server) updateProduct(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	id, _ := body["id"].(string)
	if id == "" {
		id, _ = body["_id"].(string)
	}
	if id == "" {
		badRequest(c, "product id is required")
		return
	}

	if err := s.products.Update(c.Request.Context(), id, body); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) deleteProduct(c *gin.Context) {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.ID == "" {
		badRequest(c, "product id is required")
		return
	}

	if err := s.products.Delete(c.Request.Context(), req.ID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
