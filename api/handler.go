package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/viktsys/tradestore/events"
	"github.com/viktsys/tradestore/models"
	"github.com/viktsys/tradestore/storage"
	"github.com/viktsys/tradestore/validation"
)

// maxBodyBytes caps create and update bodies.
const maxBodyBytes = 1 << 20

var (
	errNoBody       = errors.New("empty request body")
	errQuotedAmount = errors.New("quantity and price must be JSON numbers")
)

type Handler struct {
	store     storage.Store
	publisher events.Publisher
	log       logrus.FieldLogger
}

func NewHandler(store storage.Store, publisher events.Publisher, log logrus.FieldLogger) *Handler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Handler{store: store, publisher: publisher, log: log}
}

// Health never touches the store.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Message:   "Transaction Management API is running",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *Handler) CreateTrade(c *gin.Context) {
	payload, ok := h.bindPayload(c)
	if !ok {
		return
	}

	trade, err := h.store.Create(c.Request.Context(), payload.Fields())
	if err != nil {
		h.storageFailure(c, "create", "", err)
		return
	}

	h.publish(c.Request.Context(), events.TradeCreated, trade.TradeID, &trade)

	c.JSON(http.StatusCreated, TradeResponse{
		Message:   msgTradeCreated,
		TradeID:   trade.TradeID,
		TradeData: trade,
	})
}

func (h *Handler) ListTrades(c *gin.Context) {
	trades, err := h.store.List(c.Request.Context())
	if err != nil {
		h.storageFailure(c, "list", "", err)
		return
	}

	c.JSON(http.StatusOK, TradeListResponse{
		Message: fmt.Sprintf("Retrieved %d trades", len(trades)),
		Count:   len(trades),
		Trades:  trades,
	})
}

func (h *Handler) GetTrade(c *gin.Context) {
	id := c.Param("trade_id")

	trade, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		h.storageFailure(c, "get", id, err)
		return
	}

	c.JSON(http.StatusOK, TradeResponse{
		Message:   msgTradeFound,
		TradeData: trade,
	})
}

// UpdateTrade answers 404 for an unknown id before looking at the body.
func (h *Handler) UpdateTrade(c *gin.Context) {
	id := c.Param("trade_id")
	ctx := c.Request.Context()

	if _, err := h.store.Get(ctx, id); err != nil {
		h.storageFailure(c, "update", id, err)
		return
	}

	payload, ok := h.bindPayload(c)
	if !ok {
		return
	}

	trade, err := h.store.Update(ctx, id, payload.Fields())
	if err != nil {
		h.storageFailure(c, "update", id, err)
		return
	}

	h.publish(ctx, events.TradeUpdated, trade.TradeID, &trade)

	c.JSON(http.StatusOK, TradeResponse{
		Message:   msgTradeUpdated,
		TradeID:   trade.TradeID,
		TradeData: trade,
	})
}

func (h *Handler) DeleteTrade(c *gin.Context) {
	id := c.Param("trade_id")

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.storageFailure(c, "delete", id, err)
		return
	}

	h.publish(c.Request.Context(), events.TradeDeleted, id, nil)

	c.JSON(http.StatusOK, DeleteResponse{
		Message: msgTradeDeleted,
		TradeID: id,
	})
}

// bindPayload decodes and validates the request body, writing the error
// response itself when the body is unusable.
func (h *Handler) bindPayload(c *gin.Context) (*models.TradePayload, bool) {
	var body io.Reader
	if c.Request.Body != nil {
		body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	}

	payload, err := decodePayload(body)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, errNoBody):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: errNoJSON, Message: detailValidJSON})
		return nil, false
	case errors.As(err, &tooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: errBodyTooLarge, Message: detailBodyTooLarge})
		return nil, false
	case err != nil:
		h.log.WithError(err).Debug("rejecting malformed trade payload")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: errInvalidJSON, Message: detailValidJSON})
		return nil, false
	}

	if err := validation.Validate(payload); err != nil {
		var missing *validation.MissingFieldsError
		if errors.As(err, &missing) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:          errMissingFields,
				MissingFields:  missing.Fields,
				RequiredFields: validation.RequiredFields,
			})
			return nil, false
		}
		var outOfRange *validation.AmountRangeError
		if errors.As(err, &outOfRange) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: errInvalidJSON, Message: outOfRange.Error()})
			return nil, false
		}
		h.log.WithError(err).Error("trade payload validation failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: errInternal, Message: detailInternal})
		return nil, false
	}

	return payload, true
}

// amountTokens holds quantity and price as sent, before decimal parses them.
type amountTokens struct {
	Quantity json.RawMessage `json:"quantity"`
	Price    json.RawMessage `json:"price"`
}

// decodePayload returns errNoBody for an empty or null body. Anything that is
// not a JSON object with correctly typed values is a decode error, including
// numbers sent as strings, which decimal would otherwise accept.
func decodePayload(body io.Reader) (*models.TradePayload, error) {
	if body == nil {
		return nil, errNoBody
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, errNoBody
	}

	var payload models.TradePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	var amounts amountTokens
	if err := json.Unmarshal(raw, &amounts); err != nil {
		return nil, err
	}
	if quoted(amounts.Quantity) || quoted(amounts.Price) {
		return nil, errQuotedAmount
	}
	return &payload, nil
}

func quoted(token json.RawMessage) bool {
	return len(token) > 0 && token[0] == '"'
}

func (h *Handler) storageFailure(c *gin.Context, op, id string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   errTradeNotFound,
			Message: fmt.Sprintf("No trade found with ID: %s", id),
		})
		return
	}

	fields := logrus.Fields{"op": op}
	if id != "" {
		fields["trade_id"] = id
	}
	var serr *storage.StorageError
	if errors.As(err, &serr) {
		fields["op"] = serr.Op
	}
	h.log.WithFields(fields).WithError(err).Error("storage operation failed")

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: errInternal, Message: detailInternal})
}

func (h *Handler) publish(ctx context.Context, typ events.Type, id string, trade *models.Trade) {
	event := events.Event{
		Type:       typ,
		TradeID:    id,
		Trade:      trade,
		OccurredAt: storage.Now(),
	}
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{
			"event":    typ,
			"trade_id": id,
		}).Warn("failed to publish trade event")
	}
}
