package controllers

import (
	"net/http"

	"helmet-store/models"
	"helmet-store/services"
	"helmet-store/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ProductController handles product-related requests
type ProductController struct {
	catalog *services.CatalogService
	log     *zap.Logger
}

func NewProductController(catalog *services.CatalogService, log *zap.Logger) *ProductController {
	return &ProductController{catalog: catalog, log: log}
}

// CreateProduct adds a product to the catalog
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := decodeBody(r, &product, false); err != nil {
		utils.WriteError(w, requestLogger(pc.log, r), err, "Failed to create product")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	created, err := pc.catalog.Create(ctx, &product)
	if err != nil {
		utils.WriteError(w, requestLogger(pc.log, r), err, "Failed to create product")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}

// GetProducts lists the catalog, tagged with whether it came from cache
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	list, err := pc.catalog.List(ctx)
	if err != nil {
		utils.WriteError(w, requestLogger(pc.log, r), err, "Failed to fetch products")
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

// GetProductByID returns a single product
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	product, err := pc.catalog.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, requestLogger(pc.log, r), err, "Failed to fetch product")
		return
	}
	utils.WriteJSON(w, http.StatusOK, dataResponse{Data: product})
}

// UpdateProduct applies a partial edit to a product (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var update models.ProductUpdate
	if err := decodeBody(r, &update, false); err != nil {
		utils.WriteError(w, requestLogger(pc.log, r), err, "Failed to update product")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	product, err := pc.catalog.Update(ctx, mux.Vars(r)["id"], update)
	if err != nil {
		utils.WriteError(w, requestLogger(pc.log, r), err, "Failed to update product")
		return
	}
	utils.WriteJSON(w, http.StatusOK, dataResponse{Data: product})
}

// DeleteProduct removes a product (Admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	if err := pc.catalog.Delete(ctx, mux.Vars(r)["id"]); err != nil {
		utils.WriteError(w, requestLogger(pc.log, r), err, "Failed to delete product")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}
