package handlers

import (
	"net/http"
	"strconv"

	"brewshop/internal/models"
	"brewshop/internal/repository"
	"brewshop/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CatalogHandler struct {
	catalog  services.CatalogService
	wishlist services.WishlistService
	sessions *Sessions
}

func NewCatalogHandler(catalog services.CatalogService, wishlist services.WishlistService, sessions *Sessions) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, wishlist: wishlist, sessions: sessions}
}

type productRequest struct {
	Name        string          `json:"name" binding:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    uint            `json:"category" binding:"required"`
	Stock       int             `json:"stock" binding:"gte=0"`
	StockStatus *bool           `json:"stock_status"`
	Featured    bool            `json:"featured"`
	Image       string          `json:"image"`
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	filter := repository.ProductFilter{
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
		Page: repository.Page{
			Limit:  queryInt(c, "limit", services.DefaultPageSize),
			Offset: queryInt(c, "offset", 0),
		},
	}
	if v, err := strconv.ParseUint(c.Query("category"), 10, 64); err == nil {
		category := uint(v)
		filter.CategoryID = &category
	}
	if v, err := strconv.ParseBool(c.Query("featured")); err == nil {
		filter.Featured = &v
	}

	products, total, err := h.catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": total, "results": products})
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), services.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.Category,
		Stock:       req.Stock,
		StockStatus: req.StockStatus,
		Featured:    req.Featured,
		Image:       req.Image,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	category := &models.ProductCategory{Name: req.Name, Description: req.Description, Image: req.Image}
	if err := h.catalog.CreateCategory(c.Request.Context(), category); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *CatalogHandler) ListStores(c *gin.Context) {
	stores, err := h.catalog.ListStores(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stores)
}

func (h *CatalogHandler) AddToWishlist(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	viewer, err := h.sessions.resolve(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.wishlist.AddProduct(c.Request.Context(), viewer.Owner, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Product added to wishlist"})
}

func (h *CatalogHandler) GetWishlist(c *gin.Context) {
	viewer, _, err := h.sessions.current(c)
	if err != nil {
		respondError(c, err)
		return
	}
	wishlist, err := h.wishlist.Get(c.Request.Context(), viewer.Owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wishlist)
}
