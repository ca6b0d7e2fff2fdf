package dto

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/franciscosanchezn/pizzastore-api/internal/repositories"
	"github.com/gin-gonic/gin"
)

// PageResponse is the paging envelope of every list endpoint
type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPageResponse wraps one page of content with its position in the full result
func NewPageResponse[T any](content []T, page repositories.PageRequest, total int64) PageResponse[T] {
	page = page.Normalize()
	if content == nil {
		content = []T{}
	}
	return PageResponse[T]{
		Content:       content,
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: total,
		TotalPages:    int((total + int64(page.Size) - 1) / int64(page.Size)),
	}
}

// ParsePageRequest reads page, size and sort ("field[,asc|desc]") from the query string
func ParsePageRequest(c *gin.Context) (repositories.PageRequest, error) {
	var req repositories.PageRequest
	var err error
	if raw := c.Query("page"); raw != "" {
		if req.Page, err = strconv.Atoi(raw); err != nil || req.Page < 0 {
			return req, models.NewValidationError("page", "must be a non-negative integer")
		}
		if req.Page > repositories.MaxPage {
			return req, models.NewValidationError("page", fmt.Sprintf("must be less than or equal to %d", repositories.MaxPage))
		}
	}
	if raw := c.Query("size"); raw != "" {
		if req.Size, err = strconv.Atoi(raw); err != nil || req.Size < 1 {
			return req, models.NewValidationError("size", "must be a positive integer")
		}
	}
	if raw := c.Query("sort"); raw != "" {
		field, direction, _ := strings.Cut(raw, ",")
		req.Sort = strings.TrimSpace(field)
		switch strings.ToLower(strings.TrimSpace(direction)) {
		case "", "asc":
		case "desc":
			req.Desc = true
		default:
			return req, models.NewValidationError("sort", "direction must be asc or desc")
		}
	}
	return req.Normalize(), nil
}
