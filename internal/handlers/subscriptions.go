package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/aihub/backend/internal/models"
	"github.com/zfogg/aihub/backend/internal/store"
	"github.com/zfogg/aihub/backend/internal/util"
)

type subscriptionRequest struct {
	NotifyOnUpdates  *bool `json:"notify_on_updates"`
	NotifyOnComments *bool `json:"notify_on_comments"`
	NotifyOnRatings  *bool `json:"notify_on_ratings"`
}

func (r *subscriptionRequest) apply(sub *models.Subscription) {
	if r.NotifyOnUpdates != nil {
		sub.NotifyOnUpdates = *r.NotifyOnUpdates
	}
	if r.NotifyOnComments != nil {
		sub.NotifyOnComments = *r.NotifyOnComments
	}
	if r.NotifyOnRatings != nil {
		sub.NotifyOnRatings = *r.NotifyOnRatings
	}
}

// Subscribe subscribes the caller to a tool. Every notification kind is on
// unless the body says otherwise.
// POST /api/v1/tools/:id/subscriptions
func (h *Handlers) Subscribe(c *gin.Context) {
	identity, ok := util.RequireIdentity(c)
	if !ok {
		return
	}
	tool, ok := h.loadTool(c)
	if !ok {
		return
	}
	var req subscriptionRequest
	if c.Request.ContentLength != 0 && !util.BindJSON(c, &req) {
		return
	}

	sub := &models.Subscription{
		ToolID:           tool.ID,
		UserID:           identity.ID,
		NotifyOnUpdates:  true,
		NotifyOnComments: true,
		NotifyOnRatings:  true,
	}
	req.apply(sub)

	if util.HandleStoreError(c, h.store.Subscriptions.Insert(c.Request.Context(), sub), "subscription") {
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// ListToolSubscriptions returns a tool's subscriptions
// GET /api/v1/tools/:id/subscriptions
func (h *Handlers) ListToolSubscriptions(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	tool, ok := h.loadTool(c)
	if !ok {
		return
	}
	p, ok := util.ParsePagination(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	byTool := store.Eq("tool_id", tool.ID)

	total, err := h.store.Subscriptions.Count(ctx, byTool)
	if util.HandleStoreError(c, err, "subscription") {
		return
	}
	subs, err := h.store.Subscriptions.Find(ctx, byTool, store.OrderBy("created_at", true), store.Page(p.Skip, p.Limit))
	if util.HandleStoreError(c, err, "subscription") {
		return
	}
	c.JSON(http.StatusOK, listResponse(subs, total, p))
}

// SubscriberCount returns how many users follow a tool
// GET /api/v1/tools/:id/subscribers/count
func (h *Handlers) SubscriberCount(c *gin.Context) {
	tool, ok := h.loadTool(c)
	if !ok {
		return
	}
	n, err := h.store.Subscriptions.Count(c.Request.Context(), store.Eq("tool_id", tool.ID))
	if util.HandleStoreError(c, err, "subscription") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"tool_id": tool.ID, "count": n})
}

// UpdateSubscription changes notification settings
// PUT /api/v1/subscriptions/:id
func (h *Handlers) UpdateSubscription(c *gin.Context) {
	sub, ok := h.loadSubscription(c)
	if !ok {
		return
	}
	if _, ok := requireOwner(c, sub.UserID); !ok {
		return
	}
	var req subscriptionRequest
	if !util.BindJSON(c, &req) {
		return
	}
	req.apply(sub)

	if util.HandleStoreError(c, h.store.Subscriptions.Replace(c.Request.Context(), sub), "subscription") {
		return
	}
	c.JSON(http.StatusOK, sub)
}

// DeleteSubscription unsubscribes
// DELETE /api/v1/subscriptions/:id
func (h *Handlers) DeleteSubscription(c *gin.Context) {
	sub, ok := h.loadSubscription(c)
	if !ok {
		return
	}
	if _, ok := requireOwner(c, sub.UserID); !ok {
		return
	}
	if util.HandleStoreError(c, h.store.Subscriptions.Delete(c.Request.Context(), sub.ID), "subscription") {
		return
	}
	util.RespondMessage(c, "subscription deleted")
}

func (h *Handlers) loadSubscription(c *gin.Context) (*models.Subscription, bool) {
	id, ok := util.ParseIDParam(c, "id")
	if !ok {
		return nil, false
	}
	sub, err := h.store.Subscriptions.Get(c.Request.Context(), id)
	if util.HandleStoreError(c, err, "subscription") {
		return nil, false
	}
	return sub, true
}
