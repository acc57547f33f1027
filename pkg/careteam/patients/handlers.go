package patients

import (
	"net/http"
	"strconv"

	"github.com/carebridge/careteam/pkg/careteam/auth"
	"github.com/carebridge/careteam/pkg/careteam/errs"
	"github.com/carebridge/careteam/pkg/careteam/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles patient registry and assignment requests
type Handler struct {
	db      *gorm.DB
	manager *Manager
}

// NewHandler creates a new patients handler
func NewHandler(db *gorm.DB, manager *Manager) *Handler {
	return &Handler{db: db, manager: manager}
}

// CreatePatientRequest represents the request to register a patient
type CreatePatientRequest struct {
	Name string `json:"name" binding:"required"`
	MRN  string `json:"mrn" binding:"required"`
}

// PatientResponse represents a patient in API responses
type PatientResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	MRN  string `json:"mrn"`
}

// Create registers a patient
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// MRN is unique across the registry
	var existing models.Patient
	if err := h.db.Where("mrn = ?", req.MRN).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A patient with this MRN already exists"})
		return
	}

	patient := models.Patient{
		Name:      req.Name,
		MRN:       req.MRN,
		CreatedBy: userID,
	}
	if err := h.db.Create(&patient).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create patient"})
		return
	}

	c.JSON(http.StatusCreated, PatientResponse{
		ID:   patient.ID,
		Name: patient.Name,
		MRN:  patient.MRN,
	})
}

// List returns all patients in the registry
func (h *Handler) List(c *gin.Context) {
	var rows []models.Patient
	if err := h.db.Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch patients"})
		return
	}

	patients := make([]PatientResponse, len(rows))
	for i, p := range rows {
		patients[i] = PatientResponse{ID: p.ID, Name: p.Name, MRN: p.MRN}
	}

	c.JSON(http.StatusOK, patients)
}

// ListGroupPatients returns patients assigned to a care team (members only)
func (h *Handler) ListGroupPatients(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	// Check membership
	if err := h.db.Where("user_id = ? AND group_id = ?", userID, groupID).First(&models.GroupMembership{}).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var assignments []models.GroupPatientAssignment
	if err := h.db.Preload("Patient").Where("group_id = ?", groupID).Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch patients"})
		return
	}

	patients := make([]PatientResponse, len(assignments))
	for i, a := range assignments {
		patients[i] = PatientResponse{ID: a.Patient.ID, Name: a.Patient.Name, MRN: a.Patient.MRN}
	}

	c.JSON(http.StatusOK, patients)
}

// Assign assigns a patient to a care team (admin only)
func (h *Handler) Assign(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}
	patientID, err := strconv.ParseUint(c.Param("patientId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}

	if err := h.manager.Assign(uint(groupID), uint(patientID), userID); err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Patient assigned"})
}

// Unassign removes a patient from a care team (admin only)
func (h *Handler) Unassign(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}
	patientID, err := strconv.ParseUint(c.Param("patientId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}

	if err := h.manager.Unassign(uint(groupID), uint(patientID), userID); err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Patient unassigned"})
}

// RegisterRoutes registers patient registry routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/patients", h.List)
	rg.POST("/patients", h.Create)
}

// RegisterGroupRoutes registers assignment routes under the groups tree
func (h *Handler) RegisterGroupRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/patients", h.ListGroupPatients)
	rg.POST("/:id/patients/:patientId", h.Assign)
	rg.DELETE("/:id/patients/:patientId", h.Unassign)
}
