package api

import (
	"github.com/viktsys/tradestore/models"
)

const (
	msgTradeCreated = "Trade created successfully"
	msgTradeFound   = "Trade found"
	msgTradeUpdated = "Trade updated successfully"
	msgTradeDeleted = "Trade deleted successfully"

	errTradeNotFound    = "Trade not found"
	errMissingFields    = "Missing required fields"
	errNoJSON           = "No JSON data provided"
	errInvalidJSON      = "Invalid JSON format"
	errBodyTooLarge     = "Request body too large"
	errInternal         = "Internal server error"
	errEndpointNotFound = "Endpoint not found"
	errMethodNotAllowed = "Method not allowed"

	detailValidJSON        = "Request body must contain valid JSON"
	detailInternal         = "An unexpected error occurred while processing the request"
	detailBodyTooLarge     = "Request body must not exceed 1 MiB"
	detailEndpointNotFound = "The requested endpoint does not exist"
	detailMethodNotAllowed = "The request method is not allowed for this endpoint"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error          string   `json:"error"`
	Message        string   `json:"message,omitempty"`
	MissingFields  []string `json:"missing_fields,omitempty"`
	RequiredFields []string `json:"required_fields,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// TradeResponse answers create, get and update. TradeID is empty on get.
type TradeResponse struct {
	Message   string       `json:"message"`
	TradeID   string       `json:"trade_id,omitempty"`
	TradeData models.Trade `json:"trade_data"`
}

type TradeListResponse struct {
	Message string         `json:"message"`
	Count   int            `json:"count"`
	Trades  []models.Trade `json:"trades"`
}

type DeleteResponse struct {
	Message string `json:"message"`
	TradeID string `json:"trade_id"`
}
