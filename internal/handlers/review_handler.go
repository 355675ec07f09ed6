package handlers

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"brewshop/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const reviewPhotoDir = "review_photos"

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type ReviewHandler struct {
	reviews   services.ReviewService
	mediaRoot string
}

func NewReviewHandler(reviews services.ReviewService, mediaRoot string) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, mediaRoot: mediaRoot}
}

type reviewRequest struct {
	Product    uint   `json:"product" binding:"required"`
	Rating     int    `json:"rating" binding:"required,gte=1,lte=5"`
	ReviewText string `json:"review_text" binding:"max=2000"`
	Name       string `json:"name" binding:"required,max=100"`
	Email      string `json:"email" binding:"required,email"`
}

func (h *ReviewHandler) ListReviews(c *gin.Context) {
	var productID *uint
	if v, err := strconv.ParseUint(c.Query("product"), 10, 64); err == nil {
		id := uint(v)
		productID = &id
	}
	reviews, err := h.reviews.List(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	review, err := h.reviews.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	review, err := h.reviews.Create(c.Request.Context(), services.ReviewInput{
		ProductID:  req.Product,
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
		Name:       req.Name,
		Email:      req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// AddPhoto stores the uploaded image under the media root and attaches it.
func (h *ReviewHandler) AddPhoto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data provided.", "details": gin.H{"image": "No file was submitted."}})
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data provided.", "details": gin.H{"image": "Upload a valid image."}})
		return
	}

	rel := filepath.ToSlash(filepath.Join(reviewPhotoDir, uuid.NewString()+ext))
	dst := filepath.Join(h.mediaRoot, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		respondError(c, err)
		return
	}
	if err := c.SaveUploadedFile(file, dst); err != nil {
		respondError(c, err)
		return
	}

	review, err := h.reviews.AddPhoto(c.Request.Context(), id, rel)
	if err != nil {
		if rmErr := os.Remove(dst); rmErr != nil {
			log.Printf("Warning: failed to remove rejected upload %s: %v", dst, rmErr)
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Photo added successfully.", "review": review})
}
