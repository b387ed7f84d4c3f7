package handler

//go:generate mockgen -destination=mock_bidding_service.go -package=handler bidding-marketplace/services/bidding/handler BiddingServiceInterface

import (
	"context"
	"errors"
	"net/http"

	model "bidding-marketplace/internal/models"
	"bidding-marketplace/services/bidding/helpers"
	"bidding-marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, bidderID, collectionID string, price decimal.Decimal) (model.Bid, error)
	GetBid(ctx context.Context, id string) (model.Bid, error)
	GetBidsForCollection(ctx context.Context, collectionID string) ([]model.Bid, error)
	UpdateBid(ctx context.Context, bidID, callerID string, price decimal.Decimal) (model.Bid, error)
	CancelBid(ctx context.Context, bidID, callerID string) error
	AcceptBid(ctx context.Context, collectionID, bidID, callerID string) (model.Bid, int64, error)
	RejectBid(ctx context.Context, collectionID, bidID, callerID string) (model.Bid, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// PlaceBidHandler handles POST /bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "PlaceBidHandler")
	if !ok {
		return
	}

	var req helpers.CreateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), caller.ID, req.CollectionID, *req.Price)
	if err != nil {
		helpers.HandleServiceError(c, "PlaceBidHandler", "failed to place bid", err, map[string]any{
			"collection_id": req.CollectionID,
			"user_id":       caller.ID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"bid_id":        bid.ID,
		"collection_id": bid.CollectionID,
		"user_id":       caller.ID,
		"price":         bid.Price.String(),
	})
}

// GetBidsByCollectionHandler handles GET /bids?collectionId=
func (h *BiddingHandler) GetBidsByCollectionHandler(c *gin.Context) {
	collectionID := c.Query("collectionId")
	if collectionID == "" {
		collectionID = c.Query("collection_id")
	}
	if collectionID == "" {
		err := errors.New("collectionId query parameter is required")
		utils.JSONError(c, http.StatusBadRequest, err, "invalid request payload")
		utils.Warn("GetBidsByCollectionHandler: missing collectionId", nil)
		return
	}

	bids, err := h.service.GetBidsForCollection(c.Request.Context(), collectionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetBidsByCollectionHandler", "error retrieving bids", err, map[string]any{
			"collection_id": collectionID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByCollectionHandler", "bids retrieved successfully", map[string]any{
		"collection_id": collectionID,
		"count":         len(bids),
	})
}

// GetBidHandler handles GET /bids/:id
func (h *BiddingHandler) GetBidHandler(c *gin.Context) {
	bidID := c.Param("id")
	bid, err := h.service.GetBid(c.Request.Context(), bidID)
	if err != nil {
		helpers.HandleServiceError(c, "GetBidHandler", "error retrieving bid", err, map[string]any{"bid_id": bidID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "bid retrieved successfully")
	helpers.LogSuccess("GetBidHandler", "bid retrieved successfully", map[string]any{"bid_id": bidID})
}

// UpdateBidHandler handles PATCH /bids/:id
func (h *BiddingHandler) UpdateBidHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "UpdateBidHandler")
	if !ok {
		return
	}

	var req helpers.UpdateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateBidHandler", err)
		return
	}

	bidID := c.Param("id")
	bid, err := h.service.UpdateBid(c.Request.Context(), bidID, caller.ID, *req.Price)
	if err != nil {
		helpers.HandleServiceError(c, "UpdateBidHandler", "failed to update bid", err, map[string]any{
			"bid_id":  bidID,
			"user_id": caller.ID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "bid updated successfully")
	helpers.LogSuccess("UpdateBidHandler", "bid updated successfully", map[string]any{
		"bid_id":  bid.ID,
		"user_id": caller.ID,
		"price":   bid.Price.String(),
	})
}

// CancelBidHandler handles DELETE /bids/:id
func (h *BiddingHandler) CancelBidHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "CancelBidHandler")
	if !ok {
		return
	}

	bidID := c.Param("id")
	if err := h.service.CancelBid(c.Request.Context(), bidID, caller.ID); err != nil {
		helpers.HandleServiceError(c, "CancelBidHandler", "failed to cancel bid", err, map[string]any{
			"bid_id":  bidID,
			"user_id": caller.ID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"id": bidID}, "bid cancelled successfully")
	helpers.LogSuccess("CancelBidHandler", "bid cancelled successfully", map[string]any{
		"bid_id":  bidID,
		"user_id": caller.ID,
	})
}

// AcceptBidHandler handles POST /bids/accept/:collectionId/:bidId
func (h *BiddingHandler) AcceptBidHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "AcceptBidHandler")
	if !ok {
		return
	}

	collectionID, bidID := c.Param("collectionId"), c.Param("bidId")
	bid, rejected, err := h.service.AcceptBid(c.Request.Context(), collectionID, bidID, caller.ID)
	if err != nil {
		helpers.HandleServiceError(c, "AcceptBidHandler", "failed to accept bid", err, map[string]any{
			"collection_id": collectionID,
			"bid_id":        bidID,
			"user_id":       caller.ID,
		})
		return
	}

	resp := helpers.AcceptBidResponse{Bid: helpers.NewBidResponse(bid), RejectedBids: rejected}
	utils.JSONResponse(c, http.StatusOK, resp, "Bid accepted successfully. Other pending bids have been rejected.")
	helpers.LogSuccess("AcceptBidHandler", "bid accepted", map[string]any{
		"collection_id": collectionID,
		"bid_id":        bidID,
		"rejected_bids": rejected,
	})
}

// RejectBidHandler handles POST /bids/reject/:collectionId/:bidId
func (h *BiddingHandler) RejectBidHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "RejectBidHandler")
	if !ok {
		return
	}

	collectionID, bidID := c.Param("collectionId"), c.Param("bidId")
	bid, err := h.service.RejectBid(c.Request.Context(), collectionID, bidID, caller.ID)
	if err != nil {
		helpers.HandleServiceError(c, "RejectBidHandler", "failed to reject bid", err, map[string]any{
			"collection_id": collectionID,
			"bid_id":        bidID,
			"user_id":       caller.ID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "bid rejected successfully")
	helpers.LogSuccess("RejectBidHandler", "bid rejected", map[string]any{
		"collection_id": collectionID,
		"bid_id":        bidID,
	})
}
