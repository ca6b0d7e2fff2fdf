package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/pizzastore-api/internal/dto"
	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/franciscosanchezn/pizzastore-api/internal/repositories"
	"github.com/franciscosanchezn/pizzastore-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PizzaController handles HTTP requests related to pizzas
type PizzaController interface {
	// GetAllPizzas retrieves one page of the catalog
	GetAllPizzas(c *gin.Context)
	// GetPizzaByID retrieves a pizza by its ID
	GetPizzaByID(c *gin.Context)
	// CreatePizza creates a new pizza
	CreatePizza(c *gin.Context)
	// UpdatePizza updates an existing pizza
	UpdatePizza(c *gin.Context)
	// DeletePizza deletes a pizza by its ID
	DeletePizza(c *gin.Context)
	// UploadImage stores the picture of a pizza
	UploadImage(c *gin.Context)
}

type pizzaController struct {
	service services.PizzaService
}

// NewPizzaController creates a new instance of PizzaController
func NewPizzaController(service services.PizzaService) PizzaController {
	return &pizzaController{service: service}
}

func queryDecimal(ctx *gin.Context, name string) (*decimal.Decimal, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, models.NewValidationError(name, "must be a number")
	}
	return &value, nil
}

// GetAllPizzas godoc
// @Summary Get all pizzas
// @Description Get one page of the catalog with optional filtering
// @Tags pizzas
// @Produce json
// @Param name query string false "Filter by pizza name (partial, case insensitive)"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param available query bool false "Filter by availability"
// @Param page query int false "Page number, starting at 0"
// @Param size query int false "Page size"
// @Param sort query string false "Sort field and direction, e.g. price,desc"
// @Success 200 {object} dto.PageResponse[dto.PizzaResponse]
// @Failure 400 {object} models.ErrorResponse
// @Router /api/pizzas [get]
func (c *pizzaController) GetAllPizzas(ctx *gin.Context) {
	page, err := dto.ParsePageRequest(ctx)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	filter := repositories.PizzaFilter{Name: ctx.Query("name")}
	if filter.MinPrice, err = queryDecimal(ctx, "minPrice"); err != nil {
		_ = ctx.Error(err)
		return
	}
	if filter.MaxPrice, err = queryDecimal(ctx, "maxPrice"); err != nil {
		_ = ctx.Error(err)
		return
	}
	if filter.Available, err = queryBool(ctx, "available"); err != nil {
		_ = ctx.Error(err)
		return
	}

	pizzas, total, err := c.service.ListPizzas(ctx.Request.Context(), filter, page)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPageResponse(dto.ToPizzaResponses(pizzas), page, total))
}

// GetPizzaByID godoc
// @Summary Get pizza by ID
// @Description Get a single pizza by its ID
// @Tags pizzas
// @Produce json
// @Param id path int true "Pizza ID"
// @Success 200 {object} dto.PizzaResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/pizzas/{id} [get]
func (c *pizzaController) GetPizzaByID(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	pizza, err := c.service.GetPizzaByID(ctx.Request.Context(), id)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToPizzaResponse(pizza))
}

// CreatePizza godoc
// @Summary Create a new pizza
// @Description Create a new pizza with the input payload
// @Tags pizzas
// @Accept json
// @Produce json
// @Param pizza body dto.PizzaRequest true "Pizza"
// @Success 201 {object} dto.PizzaResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/pizzas [post]
func (c *pizzaController) CreatePizza(ctx *gin.Context) {
	var req dto.PizzaRequest
	if err := dto.BindJSON(ctx, &req); err != nil {
		_ = ctx.Error(err)
		return
	}

	pizza, err := c.service.CreatePizza(ctx.Request.Context(), dto.ToPizzaModel(&req))
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.Header("Location", "/api/pizzas/"+uintToString(pizza.ID))
	ctx.JSON(http.StatusCreated, dto.ToPizzaResponse(pizza))
}

// UpdatePizza godoc
// @Summary Update a pizza
// @Description Replace a pizza with the input payload. Omitted available and imageUrl keep their stored values.
// @Tags pizzas
// @Accept json
// @Produce json
// @Param id path int true "Pizza ID"
// @Param pizza body dto.PizzaRequest true "Pizza"
// @Success 200 {object} dto.PizzaResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/pizzas/{id} [put]
func (c *pizzaController) UpdatePizza(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	var req dto.PizzaRequest
	if err := dto.BindJSON(ctx, &req); err != nil {
		_ = ctx.Error(err)
		return
	}

	pizza, err := c.service.UpdatePizza(ctx.Request.Context(), id, func(p *models.Pizza) {
		dto.ApplyPizzaRequest(p, &req)
	})
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToPizzaResponse(pizza))
}

// DeletePizza godoc
// @Summary Delete a pizza
// @Description Remove a pizza from the catalog. Existing orders keep their lines.
// @Tags pizzas
// @Param id path int true "Pizza ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/pizzas/{id} [delete]
func (c *pizzaController) DeletePizza(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	if err := c.service.DeletePizza(ctx.Request.Context(), id); err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// UploadImage godoc
// @Summary Upload a pizza image
// @Description Store a JPEG or PNG picture and link it to the pizza
// @Tags pizzas
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Pizza ID"
// @Param file formData file true "JPEG or PNG image"
// @Success 200 {object} dto.PizzaResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/pizzas/{id}/image [post]
func (c *pizzaController) UploadImage(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		_ = ctx.Error(models.NewValidationError("file", "an image file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	defer file.Close()

	pizza, err := c.service.UploadImage(ctx.Request.Context(), id, header.Filename, file)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ToPizzaResponse(pizza))
}
