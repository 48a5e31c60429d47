package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	obslog "github.com/printhaus/portal/internal/observability/logger"
	orderdomain "github.com/printhaus/portal/internal/order/domain"
	statusdomain "github.com/printhaus/portal/internal/orderstatus/domain"
	"go.uber.org/zap"
)

func (s *Server) ListOrders(c *gin.Context) {
	profile, err := s.currentProfile(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.ordersvc.List(c.Request.Context(), profile.ID, orderdomain.ListOrdersRequest{
		Search:    strings.TrimSpace(c.Query("q")),
		Status:    strings.TrimSpace(c.Query("status")),
		PageToken: c.Query("page_token"),
		PageSize:  queryInt(c, "page_size"),
	})
	if err != nil {
		// Backend failures degrade to an empty page; the customer view
		// never surfaces them as a fatal error.
		if degradable(err) {
			obslog.FromContext(c.Request.Context()).Warn("order list degraded to empty", zap.Error(err))
			c.JSON(http.StatusOK, orderdomain.ListOrdersResponse{Orders: []orderdomain.OrderView{}})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreateOrder(c *gin.Context) {
	profile, err := s.currentProfile(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req orderdomain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	view, err := s.ordersvc.Create(c.Request.Context(), profile.ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (s *Server) GetOrderByID(c *gin.Context) {
	profile, err := s.currentProfile(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	view, err := s.ordersvc.Get(c.Request.Context(), profile.ID, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (s *Server) UpdateOrder(c *gin.Context) {
	profile, err := s.currentProfile(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req orderdomain.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	view, err := s.ordersvc.Update(c.Request.Context(), profile.ID, c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (s *Server) DeleteOrder(c *gin.Context) {
	profile, err := s.currentProfile(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.ordersvc.SoftDelete(c.Request.Context(), profile.ID, c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) GetOrderStatus(c *gin.Context) {
	profile, err := s.currentProfile(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	view, err := s.ordersvc.Get(c.Request.Context(), profile.ID, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	current := s.statussvc.Latest(c.Request.Context(), view.Order.ID)

	c.JSON(http.StatusOK, gin.H{
		"order_id":   view.Order.ID.String(),
		"display_id": view.DisplayID,
		"status":     view.Status,
		"status_ok":  view.StatusOK,
		"progress":   view.Progress,
		"stages":     current.Stages(),
	})
}

func (s *Server) GetOrderStatusHistory(c *gin.Context) {
	profile, err := s.currentProfile(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	view, err := s.ordersvc.Get(c.Request.Context(), profile.ID, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	history := s.statussvc.History(c.Request.Context(), view.Order.ID)

	c.JSON(http.StatusOK, gin.H{
		"order_id": view.Order.ID.String(),
		"history":  history,
	})
}

type AppendStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) AppendOrderStatus(c *gin.Context) {
	profile, err := s.currentProfile(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req AppendStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	status, err := statusdomain.ParseStatus(req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Ownership check: the order must be live and belong to the caller.
	view, err := s.ordersvc.Get(c.Request.Context(), profile.ID, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	event, err := s.statussvc.Append(c.Request.Context(), view.Order.ID, status, profile.Email)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func queryInt(c *gin.Context, key string) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
