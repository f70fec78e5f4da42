package api

import (
	"net/http"

	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/models"
	"github.com/gin-gonic/gin"
)

func (s *Server) createOrder(c *gin.Context) {
	var req checkout.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	confirmation, err := s.checkout.PlaceOrder(c.Request.Context(), &req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	response := gin.H{
		"success":     true,
		"orderId":     confirmation.OrderID,
		"orderNumber": confirmation.OrderNumber,
		"totalPrice":  confirmation.TotalPrice,
	}
	if len(confirmation.UnfulfilledItems) > 0 {
		response["unfulfilledItems"] = confirmation.UnfulfilledItems
	}
	c.JSON(http.StatusOK, response)
}

func (s *Server) listOrders(c *gin.Context) {
	orders, err := s.orders.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orders":  orders,
		"count":   len(orders),
	})
}

func (s *Server) updateOrder(c *gin.Context) {
	var req struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.ID == "" || req.Status == "" {
		badRequest(c, "order id and status are required")
		return
	}

	status := models.OrderStatus(req.Status)
	if !status.Valid() {
		badRequest(c, "unknown order status: "+req.Status)
		return
	}

	if err := s.orders.UpdateStatus(c.Request.Context(), req.ID, status); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) deleteOrder(c *gin.Context) {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.ID == "" {
		badRequest(c, "order id is required")
		return
	}

	if err := s.orders.Delete(c.Request.Context(), req.ID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) checkAvailability(c *gin.Context) {
	var req struct {
		Items []checkout.CartLine `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	results, err := s.checkout.CheckAvailability(c.Request.Context(), req.Items)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"items":   results,
	})
}
