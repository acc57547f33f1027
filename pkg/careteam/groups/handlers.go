package groups

import (
	"net/http"
	"strconv"

	"github.com/carebridge/careteam/pkg/careteam/auth"
	"github.com/carebridge/careteam/pkg/careteam/models"
	"github.com/carebridge/careteam/pkg/careteam/permissions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Defaults carries the capacities applied to newly created groups.
type Defaults struct {
	MaxMembers  int
	MaxPatients int
}

// Handler handles care-team requests
type Handler struct {
	db       *gorm.DB
	members  *Manager
	defaults Defaults
}

// NewHandler creates a new groups handler
func NewHandler(db *gorm.DB, members *Manager, defaults Defaults) *Handler {
	return &Handler{db: db, members: members, defaults: defaults}
}

// CreateGroupRequest represents the request to create a care team
type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	MaxMembers  int    `json:"max_members"`
	MaxPatients int    `json:"max_patients"`
}

// UpdateGroupRequest represents the request to update a care team
type UpdateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GroupResponse represents a care team in API responses
type GroupResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Role        string `json:"role,omitempty"` // User's role in this team
	MemberCount int    `json:"member_count,omitempty"`
	MaxMembers  int    `json:"max_members"`
	MaxPatients int    `json:"max_patients"`
}

// List returns all care teams the current user is a member of
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var memberships []models.GroupMembership
	if err := h.db.Preload("Group").Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}

	groups := make([]GroupResponse, len(memberships))
	for i, m := range memberships {
		var memberCount int64
		h.db.Model(&models.GroupMembership{}).Where("group_id = ?", m.GroupID).Count(&memberCount)

		groups[i] = GroupResponse{
			ID:          m.Group.ID,
			Name:        m.Group.Name,
			Description: m.Group.Description,
			Role:        string(m.Role),
			MemberCount: int(memberCount),
			MaxMembers:  m.Group.MaxMembers,
			MaxPatients: m.Group.MaxPatients,
		}
	}

	c.JSON(http.StatusOK, groups)
}

// Create creates a new care team and adds the creator as its first admin
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	maxMembers := req.MaxMembers
	if maxMembers <= 0 {
		maxMembers = h.defaults.MaxMembers
	}
	maxPatients := req.MaxPatients
	if maxPatients <= 0 {
		maxPatients = h.defaults.MaxPatients
	}

	var group models.Group
	err := h.db.Transaction(func(tx *gorm.DB) error {
		group = models.Group{
			Name:        req.Name,
			Description: req.Description,
			MaxMembers:  maxMembers,
			MaxPatients: maxPatients,
		}
		if err := tx.Create(&group).Error; err != nil {
			return err
		}

		// Creator becomes the team's first admin
		membership := models.GroupMembership{
			UserID:  userID,
			GroupID: group.ID,
			Role:    models.GroupRoleAdmin,
		}
		return tx.Create(&membership).Error
	})

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	c.JSON(http.StatusCreated, GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		Role:        string(models.GroupRoleAdmin),
		MemberCount: 1,
		MaxMembers:  group.MaxMembers,
		MaxPatients: group.MaxPatients,
	})
}

// Get returns a specific care team
func (h *Handler) Get(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	// Check membership
	var membership models.GroupMembership
	if err := h.db.Where("user_id = ? AND group_id = ?", userID, groupID).First(&membership).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var group models.Group
	if err := h.db.First(&group, groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var memberCount int64
	h.db.Model(&models.GroupMembership{}).Where("group_id = ?", groupID).Count(&memberCount)

	c.JSON(http.StatusOK, GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		Role:        string(membership.Role),
		MemberCount: int(memberCount),
		MaxMembers:  group.MaxMembers,
		MaxPatients: group.MaxPatients,
	})
}

// Update updates a care team (admin only)
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var memberships []models.GroupMembership
	if err := h.db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch memberships"})
		return
	}
	if !permissions.CanManageGroup(memberships, uint(groupID)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var group models.Group
	if err := h.db.First(&group, groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	// Update fields if provided
	if req.Name != "" {
		group.Name = req.Name
	}
	if req.Description != "" {
		group.Description = req.Description
	}

	if err := h.db.Save(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update group"})
		return
	}

	var memberCount int64
	h.db.Model(&models.GroupMembership{}).Where("group_id = ?", groupID).Count(&memberCount)

	role, _ := permissions.RoleOf(memberships, uint(groupID))
	c.JSON(http.StatusOK, GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		Role:        string(role),
		MemberCount: int(memberCount),
		MaxMembers:  group.MaxMembers,
		MaxPatients: group.MaxPatients,
	})
}

// RegisterRoutes registers care-team routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
}
