package server

import (
	"net/http"
	"strings"

	catalogdomain "github.com/facturehq/facture/internal/catalog/domain"
	"github.com/gin-gonic/gin"
)

type createItemRequest struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
}

func (s *Server) CreateItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.catalogSvc.Create(c.Request.Context(), catalogdomain.CreateItemRequest{
		Name:      strings.TrimSpace(req.Name),
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListItems(c *gin.Context) {
	resp, err := s.catalogSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Items})
}

func (s *Server) GetItem(c *gin.Context) {
	resp, err := s.catalogSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
