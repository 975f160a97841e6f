package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/saberpro-api/internal/dto"
	"github.com/noah-isme/saberpro-api/internal/models"
	"github.com/noah-isme/saberpro-api/pkg/response"
)

type notificationService interface {
	Create(ctx context.Context, claims *models.JWTClaims, req dto.CreateNotificationRequest) (*models.Notification, error)
	List(ctx context.Context, claims *models.JWTClaims) ([]models.Notification, error)
	MarkRead(ctx context.Context, claims *models.JWTClaims, id string) error
	MarkAllRead(ctx context.Context, claims *models.JWTClaims) (int64, error)
	Delete(ctx context.Context, claims *models.JWTClaims, id string) error
}

// NotificationHandler exposes the caller's notification inbox.
type NotificationHandler struct {
	notifications notificationService
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(notifications notificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// Create godoc
// @Summary Send a notification to a user
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateNotificationRequest true "Notification payload"
// @Success 201 {object} response.Envelope
// @Router /notifications [post]
func (h *NotificationHandler) Create(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	notification, err := h.notifications.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, notification)
}

// List godoc
// @Summary List own notifications, newest first
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.notifications.List(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications, nil)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Envelope
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notifications.MarkRead(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, successResponse{Success: true}, nil)
}

// MarkAllRead godoc
// @Summary Mark every own notification as read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /notifications/readAll [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	count, err := h.notifications.MarkAllRead(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, countResponse{Count: count}, nil)
}

// Delete godoc
// @Summary Delete a notification
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Envelope
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.notifications.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, successResponse{Success: true}, nil)
}
