package server

import (
	"net/http"
	"strings"

	plandomain "github.com/facturehq/facture/internal/plan/domain"
	"github.com/gin-gonic/gin"
)

type createPlanRequest struct {
	Name          string `json:"name"`
	Price         int64  `json:"price"`
	BillingPeriod string `json:"billing_period"`
}

func (s *Server) CreatePlan(c *gin.Context) {
	var req createPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.planSvc.Create(c.Request.Context(), plandomain.CreatePlanRequest{
		Name:          strings.TrimSpace(req.Name),
		Price:         req.Price,
		BillingPeriod: strings.TrimSpace(req.BillingPeriod),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPlans(c *gin.Context) {
	resp, err := s.planSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Plans})
}

func (s *Server) GetPlan(c *gin.Context) {
	resp, err := s.planSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
