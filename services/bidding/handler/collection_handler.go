package handler

//go:generate mockgen -destination=mock_collection_service.go -package=handler bidding-marketplace/services/bidding/handler CollectionServiceInterface

import (
	"context"
	"net/http"

	model "bidding-marketplace/internal/models"
	"bidding-marketplace/services/bidding/helpers"
	"bidding-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type CollectionServiceInterface interface {
	Create(ctx context.Context, ownerID string, data model.Collection) (model.Collection, error)
	Get(ctx context.Context, id string) (model.Collection, error)
	List(ctx context.Context) ([]model.Collection, error)
	Update(ctx context.Context, id, callerID string, patch model.CollectionPatch) (model.Collection, error)
	Delete(ctx context.Context, id, callerID string) (int64, error)
}

type CollectionHandler struct {
	service CollectionServiceInterface
}

func NewCollectionHandler(service CollectionServiceInterface) *CollectionHandler {
	return &CollectionHandler{service: service}
}

// CreateCollectionHandler handles POST /collections
func (h *CollectionHandler) CreateCollectionHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "CreateCollectionHandler")
	if !ok {
		return
	}

	var req helpers.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateCollectionHandler", err)
		return
	}

	data := model.Collection{
		Name:        req.Name,
		Description: req.Description,
		Stocks:      *req.Stocks,
		Price:       *req.Price,
	}
	collection, err := h.service.Create(c.Request.Context(), caller.ID, data)
	if err != nil {
		helpers.HandleServiceError(c, "CreateCollectionHandler", "failed to create collection", err, map[string]any{
			"user_id": caller.ID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewCollectionResponse(collection), "collection created successfully")
	helpers.LogSuccess("CreateCollectionHandler", "collection created successfully", map[string]any{
		"collection_id": collection.ID,
		"user_id":       caller.ID,
	})
}

// ListCollectionsHandler handles GET /collections
func (h *CollectionHandler) ListCollectionsHandler(c *gin.Context) {
	collections, err := h.service.List(c.Request.Context())
	if err != nil {
		helpers.HandleServiceError(c, "ListCollectionsHandler", "error retrieving collections", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewCollectionResponses(collections), "collections retrieved successfully")
	helpers.LogSuccess("ListCollectionsHandler", "collections retrieved successfully", map[string]any{
		"count": len(collections),
	})
}

// GetCollectionHandler handles GET /collections/:id
func (h *CollectionHandler) GetCollectionHandler(c *gin.Context) {
	collectionID := c.Param("id")
	collection, err := h.service.Get(c.Request.Context(), collectionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetCollectionHandler", "error retrieving collection", err, map[string]any{
			"collection_id": collectionID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewCollectionResponse(collection), "collection retrieved successfully")
	helpers.LogSuccess("GetCollectionHandler", "collection retrieved successfully", map[string]any{
		"collection_id": collectionID,
		"bids_count":    len(collection.Bids),
	})
}

// UpdateCollectionHandler handles PATCH /collections/:id
func (h *CollectionHandler) UpdateCollectionHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "UpdateCollectionHandler")
	if !ok {
		return
	}

	var req helpers.UpdateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateCollectionHandler", err)
		return
	}

	collectionID := c.Param("id")
	patch := model.CollectionPatch{
		Name:        req.Name,
		Description: req.Description,
		Stocks:      req.Stocks,
		Price:       req.Price,
	}
	collection, err := h.service.Update(c.Request.Context(), collectionID, caller.ID, patch)
	if err != nil {
		helpers.HandleServiceError(c, "UpdateCollectionHandler", "failed to update collection", err, map[string]any{
			"collection_id": collectionID,
			"user_id":       caller.ID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewCollectionResponse(collection), "collection updated successfully")
	helpers.LogSuccess("UpdateCollectionHandler", "collection updated successfully", map[string]any{
		"collection_id": collectionID,
		"user_id":       caller.ID,
	})
}

// DeleteCollectionHandler handles DELETE /collections/:id
func (h *CollectionHandler) DeleteCollectionHandler(c *gin.Context) {
	caller, ok := helpers.RequireCaller(c, "DeleteCollectionHandler")
	if !ok {
		return
	}

	collectionID := c.Param("id")
	deleted, err := h.service.Delete(c.Request.Context(), collectionID, caller.ID)
	if err != nil {
		helpers.HandleServiceError(c, "DeleteCollectionHandler", "failed to delete collection", err, map[string]any{
			"collection_id": collectionID,
			"user_id":       caller.ID,
		})
		return
	}

	resp := helpers.DeleteCollectionResponse{ID: collectionID, DeletedBids: deleted}
	utils.JSONResponse(c, http.StatusOK, resp, "collection deleted successfully")
	helpers.LogSuccess("DeleteCollectionHandler", "collection deleted successfully", map[string]any{
		"collection_id": collectionID,
		"deleted_bids":  deleted,
	})
}
