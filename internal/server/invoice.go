package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/facturehq/facture/internal/invoice/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		Status      string `form:"status"`
		CustomerID  string `form:"customer_id"`
		CreatedFrom string `form:"created_from"`
		CreatedTo   string `form:"created_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	req := invoicedomain.ListInvoiceRequest{}
	if v := strings.TrimSpace(query.Status); v != "" {
		status := invoicedomain.InvoiceStatus(v)
		req.Status = &status
	}
	if v := strings.TrimSpace(query.CustomerID); v != "" {
		customerID, err := snowflake.ParseString(v)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.CustomerID = &customerID
	}

	createdFrom, err := parseOptionalTime(query.CreatedFrom)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.CreatedFrom = createdFrom

	createdTo, err := parseOptionalTime(query.CreatedTo)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.CreatedTo = createdTo

	resp, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Invoices})
}

func (s *Server) GetInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ResendInvoice re-runs delivery for one invoice, for the operator case
// where the notification was dropped after the poll budget ran out.
// Delivery preconditions still apply: without a document this is a
// logged no-op.
func (s *Server) ResendInvoice(c *gin.Context) {
	invoice, err := s.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.dispatcher.Deliver(c.Request.Context(), invoice); err != nil {
		AbortWithError(c, err)
		return
	}

	refreshed, err := s.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": refreshed})
}

func parseOptionalTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
