package invitations

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/carebridge/careteam/pkg/careteam/auth"
	"github.com/carebridge/careteam/pkg/careteam/errs"
	"github.com/carebridge/careteam/pkg/careteam/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles invitation requests
type Handler struct {
	db      *gorm.DB
	manager *Manager
}

// NewHandler creates a new invitations handler
func NewHandler(db *gorm.DB, manager *Manager) *Handler {
	return &Handler{db: db, manager: manager}
}

// CreateInvitationRequest represents the request to invite someone
type CreateInvitationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=admin member"`
}

// InvitationResponse represents an invitation in API responses.
// Status is derived from the timestamps at response time.
type InvitationResponse struct {
	ID        uint      `json:"id"`
	GroupID   uint      `json:"group_id"`
	GroupName string    `json:"group_name,omitempty"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	InvitedBy uint      `json:"invited_by"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"token,omitempty"`
}

func toResponse(inv models.GroupInvitation, now time.Time, includeToken bool) InvitationResponse {
	resp := InvitationResponse{
		ID:        inv.ID,
		GroupID:   inv.GroupID,
		GroupName: inv.Group.Name,
		Email:     inv.Email,
		Role:      string(inv.Role),
		Status:    string(inv.Status(now)),
		InvitedBy: inv.InvitedBy,
		CreatedAt: inv.CreatedAt,
		ExpiresAt: inv.ExpiresAt,
	}
	if includeToken {
		resp.Token = inv.Token
	}
	return resp
}

// Create invites someone to a care team (admin only)
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.manager.Create(uint(groupID), req.Email, models.GroupRole(req.Role), userID)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toResponse(*inv, time.Now(), true))
}

// ListGroupInvitations returns a care team's invitations (admin only)
func (h *Handler) ListGroupInvitations(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	// Check admin membership
	if err := h.db.Where("user_id = ? AND group_id = ? AND role = ?", userID, groupID, models.GroupRoleAdmin).First(&models.GroupMembership{}).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	var rows []models.GroupInvitation
	if err := h.db.Where("group_id = ?", groupID).Order("created_at DESC").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invitations"})
		return
	}

	now := time.Now()
	invitations := make([]InvitationResponse, len(rows))
	for i, inv := range rows {
		invitations[i] = toResponse(inv, now, false)
	}

	c.JSON(http.StatusOK, invitations)
}

// ListMine returns invitations addressed to the current user's email
func (h *Handler) ListMine(c *gin.Context) {
	email, _ := auth.GetEmail(c)

	var rows []models.GroupInvitation
	if err := h.db.Preload("Group").Where("email = ?", strings.ToLower(email)).Order("created_at DESC").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invitations"})
		return
	}

	now := time.Now()
	invitations := make([]InvitationResponse, len(rows))
	for i, inv := range rows {
		invitations[i] = toResponse(inv, now, false)
	}

	c.JSON(http.StatusOK, invitations)
}

func (h *Handler) invitationID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("invitationId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation ID"})
		return 0, false
	}
	return uint(id), true
}

// Accept accepts an invitation, joining the care team
func (h *Handler) Accept(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	invitationID, ok := h.invitationID(c)
	if !ok {
		return
	}

	if err := h.manager.Accept(invitationID, userID); err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation accepted"})
}

// Decline declines an invitation
func (h *Handler) Decline(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	invitationID, ok := h.invitationID(c)
	if !ok {
		return
	}

	if err := h.manager.Decline(invitationID, userID); err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation declined"})
}

// Revoke withdraws a pending invitation (admin only)
func (h *Handler) Revoke(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	invitationID, ok := h.invitationID(c)
	if !ok {
		return
	}

	if err := h.manager.Revoke(invitationID, userID); err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation revoked"})
}

// RegisterRoutes registers invitation response routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListMine)
	rg.POST("/:invitationId/accept", h.Accept)
	rg.POST("/:invitationId/decline", h.Decline)
	rg.POST("/:invitationId/revoke", h.Revoke)
}

// RegisterGroupRoutes registers group-scoped invitation routes
func (h *Handler) RegisterGroupRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/invitations", h.ListGroupInvitations)
	rg.POST("/:id/invitations", h.Create)
}
