package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// CreateProduct godoc
// @Summary Create a product
// @Description Create a CONFIGURABLE or SIMPLE product
// @Tags Products
// @Accept json
// @Produce json
// @Param request body object{name=string,sku=string,category=string,reorder_point=int,supplier_id=int,initial_stock=int} true "Product data"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 422 {object} object{success=bool,error=string,errors=[]string}
// @Router /api/products [post]
func (h *CatalogHandler) CreateProductDoc() {}

// GetProduct godoc
// @Summary Get product by ID
// @Description Get a product with its stock, bundle components and channel listings
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/products/{id} [get]
func (h *CatalogHandler) GetProductDoc() {}

// DeleteProduct godoc
// @Summary Delete a product
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Failure 422 {object} object{success=bool,error=string,errors=[]string}
// @Router /api/products/{id} [delete]
func (h *CatalogHandler) DeleteProductDoc() {}

// GetAvailableConversions godoc
// @Summary List legal target categories
// @Description Categories the product may be converted to right now, in declaration order
// @Tags Conversions
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} object{success=bool,data=object{product_id=int,category=string,conversions=[]string}}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/products/{id}/conversions [get]
func (h *CatalogHandler) GetAvailableConversionsDoc() {}

// ConvertProductType godoc
// @Summary Convert product type
// @Description Move a product to another category and recompute its derived stock
// @Tags Conversions
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body object{category=string} true "Target category"
// @Success 200 {object} object{success=bool,message=string,data=object{product_id=int,from=string,to=string,available=int}}
// @Failure 404 {object} object{success=bool,error=string}
// @Failure 422 {object} object{success=bool,error=string,errors=[]string}
// @Failure 500 {object} object{success=bool,error=string}
// @Router /api/products/{id}/convert [post]
func (h *CatalogHandler) ConvertProductTypeDoc() {}

// UpdateStock godoc
// @Summary Update stock of a SIMPLE product
// @Description Omitted fields are left unchanged. Bundles and merged products depending on it are recomputed.
// @Tags Stock
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body object{total=int,available=int,in_order=int,awaiting=int} true "Stock fields"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 422 {object} object{success=bool,error=string,errors=[]string}
// @Router /api/products/{id}/stock [patch]
func (h *CatalogHandler) UpdateStockDoc() {}

// LinkPlatformProduct godoc
// @Summary List a product on a sales channel
// @Tags Channels
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body object{platform=string,platform_sku=string,inactive=bool} true "Listing data"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 422 {object} object{success=bool,error=string,errors=[]string}
// @Router /api/products/{id}/platform-links [post]
func (h *CatalogHandler) LinkPlatformProductDoc() {}

// CreateBundle godoc
// @Summary Create a bundle
// @Description Create a BUNDLED product from SIMPLE components
// @Tags Bundles
// @Accept json
// @Produce json
// @Param request body object{name=string,sku=string,components=[]object{product_id=int,quantity_needed=int}} true "Bundle data"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 422 {object} object{success=bool,error=string,errors=[]string}
// @Router /api/bundles [post]
func (h *CatalogHandler) CreateBundleDoc() {}

// AddBundleComponents godoc
// @Summary Attach components to a bundle
// @Tags Bundles
// @Accept json
// @Produce json
// @Param id path int true "Bundle ID"
// @Param request body object{components=[]object{product_id=int,quantity_needed=int}} true "Components"
// @Success 200 {object} object{success=bool,message=string,data=object{product_id=int,available=int}}
// @Failure 422 {object} object{success=bool,error=string,errors=[]string}
// @Router /api/bundles/{id}/components [post]
func (h *CatalogHandler) AddBundleComponentsDoc() {}

// RemoveBundleComponent godoc
// @Summary Detach a component from a bundle
// @Tags Bundles
// @Produce json
// @Param id path int true "Bundle ID"
// @Param component_id path int true "Component product ID"
// @Success 200 {object} object{success=bool,message=string,data=object{product_id=int,available=int}}
// @Failure 422 {object} object{success=bool,error=string,errors=[]string}
// @Router /api/bundles/{id}/components/{component_id} [delete]
func (h *CatalogHandler) RemoveBundleComponentDoc() {}

// Recompute godoc
// @Summary Recompute derived stock
// @Tags Bundles
// @Produce json
// @Param id path int true "Bundle or merged product ID"
// @Success 200 {object} object{success=bool,data=object{recomputed=object}}
// @Failure 422 {object} object{success=bool,error=string,errors=[]string}
// @Router /api/bundles/{id}/recompute [post]
func (h *CatalogHandler) RecomputeDoc() {}

// MergeProducts godoc
// @Summary Merge channel listings
// @Description Create a MERGED product owning the channel listings of the given products
// @Tags Merges
// @Accept json
// @Produce json
// @Param request body object{product_ids=[]int,name=string} true "Merge data"
// @Success 201 {object} object{success=bool,message=string,data=object{product=object,available=int}}
// @Failure 422 {object} object{success=bool,error=string,errors=[]string}
// @Router /api/merges [post]
func (h *CatalogHandler) MergeProductsDoc() {}

// UnmergeChannel godoc
// @Summary Return a listing to its origin product
// @Tags Merges
// @Produce json
// @Param id path int true "Merged product ID"
// @Param link_id path int true "Platform product ID"
// @Success 200 {object} object{success=bool,message=string,data=object{product_id=int,available=int}}
// @Failure 422 {object} object{success=bool,error=string,errors=[]string}
// @Router /api/merges/{id}/links/{link_id} [delete]
func (h *CatalogHandler) UnmergeChannelDoc() {}
