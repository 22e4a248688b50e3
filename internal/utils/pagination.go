// internal/utils/pagination.go
package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Catalog list defaults. The admin UI reads the catalog trendiest-first, so
// current_score is the default sort, not insertion order.
const (
	DefaultCatalogSort = "current_score"
	DefaultPageSize    = 20
	MaxPageSize        = 100
)

// CatalogSortFields are the columns catalog reads may sort on.
var CatalogSortFields = []string{
	"current_score", "trend_score", "peak_score",
	"first_detected", "days_trending", "name",
	"created_at", "updated_at",
}

type ListParams struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Sort  string `json:"sort"`
	Order string `json:"order"`
}

type PagedResult struct {
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
	Data       interface{} `json:"data"`
}

func GetListParams(c *gin.Context) ListParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))
	sort := c.DefaultQuery("sort", DefaultCatalogSort)
	order := c.DefaultQuery("order", "desc")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	return ListParams{Page: page, Limit: limit, Sort: sort, Order: order}
}

// ApplySort whitelists the sort column before interpolating it into the query.
// Unknown fields fall back to the catalog default.
func ApplySort(db *gorm.DB, params ListParams, allowed []string) *gorm.DB {
	field := DefaultCatalogSort
	for _, f := range allowed {
		if f == params.Sort {
			field = params.Sort
			break
		}
	}
	return db.Order(field + " " + params.Order)
}

func ApplyPagination(db *gorm.DB, params ListParams) *gorm.DB {
	return db.Offset((params.Page - 1) * params.Limit).Limit(params.Limit)
}

func NewPagedResult(data interface{}, total int64, params ListParams) PagedResult {
	return PagedResult{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(params.Limit))),
		Data:       data,
	}
}

func SetPaginationHeaders(c *gin.Context, result PagedResult) {
	c.Header("X-Total-Count", strconv.FormatInt(result.Total, 10))
	c.Header("X-Page", strconv.Itoa(result.Page))
	c.Header("X-Per-Page", strconv.Itoa(result.Limit))
	c.Header("X-Total-Pages", strconv.Itoa(result.TotalPages))
}
