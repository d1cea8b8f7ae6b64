package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/nomado-booking-ledger/internal/api"
	"github.com/sanosuguru/nomado-booking-ledger/internal/application"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/booking"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/resource"
)

type ResourceHandler struct {
	service ResourceServiceInterface
	ledger  LedgerServiceInterface
}

func NewResourceHandler(s ResourceServiceInterface, l LedgerServiceInterface) *ResourceHandler {
	return &ResourceHandler{service: s, ledger: l}
}

type CreateResourceRequest struct {
	Kind          string          `json:"kind" validate:"required,oneof=hotel route" example:"hotel"`
	Name          string          `json:"name" validate:"required,max=200" example:"Sea View Resort"`
	City          string          `json:"city" validate:"required,max=100" example:"Goa"`
	TransportType string          `json:"transport_type,omitempty" validate:"omitempty,oneof=FLIGHT TRAIN BUS" example:"BUS"`
	UnitPrice     decimal.Decimal `json:"unit_price" example:"2000.00"`
	TotalCapacity int             `json:"total_capacity" validate:"required,min=1" example:"10"`
}

type ResourceResponse struct {
	ID                string          `json:"id"`
	Kind              string          `json:"kind"`
	Name              string          `json:"name"`
	City              string          `json:"city"`
	TransportType     string          `json:"transport_type,omitempty"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalCapacity     int             `json:"total_capacity"`
	AvailableCapacity int             `json:"available_capacity"`
	Active            bool            `json:"active"`
	CreatedAt         time.Time       `json:"created_at"`
}

func toResourceResponse(r *resource.Resource) ResourceResponse {
	return ResourceResponse{
		ID: r.ID, Kind: string(r.Kind), Name: r.Name, City: r.City,
		TransportType: string(r.TransportType), UnitPrice: r.UnitPrice,
		TotalCapacity: r.TotalCapacity, AvailableCapacity: r.AvailableCapacity,
		Active: r.Active, CreatedAt: r.CreatedAt,
	}
}

type QuoteResponse struct {
	ResourceID  string          `json:"resource_id"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Duration    int             `json:"duration"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Create godoc
// @Summary リソースを登録
// @Tags resources
// @Accept json
// @Produce json
// @Param request body CreateResourceRequest true "リソース情報"
// @Success 201 {object} ResourceResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /resources [post]
func (h *ResourceHandler) Create(c echo.Context) error {
	var req CreateResourceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	r, err := h.service.CreateResource(c.Request().Context(), application.CreateResourceInput{
		Kind:          resource.Kind(req.Kind),
		Name:          req.Name,
		City:          req.City,
		TransportType: resource.TransportType(req.TransportType),
		UnitPrice:     req.UnitPrice,
		TotalCapacity: req.TotalCapacity,
	})
	if err != nil {
		return api.MapError(err)
	}
	return c.JSON(http.StatusCreated, toResourceResponse(r))
}

// List godoc
// @Summary リソース一覧を取得
// @Tags resources
// @Produce json
// @Param kind query string false "種別（hotel / route）"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} ResourceResponse
// @Router /resources [get]
func (h *ResourceHandler) List(c echo.Context) error {
	limit, offset := pageParams(c)
	resources, err := h.service.ListResources(c.Request().Context(), resource.Kind(c.QueryParam("kind")), limit, offset)
	if err != nil {
		return api.MapError(err)
	}
	resp := make([]ResourceResponse, len(resources))
	for i, r := range resources {
		resp[i] = toResourceResponse(r)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary リソースを取得
// @Description 空き在庫数はキャッシュ経由で取得する
// @Tags resources
// @Produce json
// @Param id path string true "リソースID"
// @Success 200 {object} ResourceResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /resources/{id} [get]
func (h *ResourceHandler) GetByID(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	r, err := h.service.GetResource(ctx, id)
	if err != nil {
		return api.MapError(err)
	}
	resp := toResourceResponse(r)
	if available, err := h.service.CountAvailable(ctx, id); err == nil {
		resp.AvailableCapacity = available
	}
	return c.JSON(http.StatusOK, resp)
}

// Quote godoc
// @Summary 料金を見積もる
// @Description ホテルは check_in / check_out、路線は travel_date を指定する
// @Tags resources
// @Produce json
// @Param id path string true "リソースID"
// @Param quantity query int true "部屋数・座席数"
// @Param check_in query string false "チェックイン日（YYYY-MM-DD）"
// @Param check_out query string false "チェックアウト日（YYYY-MM-DD）"
// @Param travel_date query string false "乗車日（YYYY-MM-DD）"
// @Success 200 {object} QuoteResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /resources/{id}/quote [get]
func (h *ResourceHandler) Quote(c echo.Context) error {
	quantity, err := strconv.Atoi(c.QueryParam("quantity"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity は整数で指定してください")
	}
	dates, err := datesFromQuery(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	q, err := h.ledger.Quote(c.Request().Context(), application.QuoteInput{ResourceID: id, Quantity: quantity, Dates: dates})
	if err != nil {
		return api.MapError(err)
	}
	return c.JSON(http.StatusOK, QuoteResponse{
		ResourceID: id, UnitPrice: q.UnitPrice, Quantity: q.Quantity,
		Duration: q.Duration, TotalAmount: q.TotalAmount,
	})
}

func datesFromQuery(c echo.Context) (booking.DateRange, error) {
	params := map[string]time.Time{}
	for _, key := range []string{"check_in", "check_out", "travel_date"} {
		raw := c.QueryParam(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(api.DateLayout, raw)
		if err != nil {
			return booking.DateRange{}, echo.NewHTTPError(http.StatusBadRequest, key+" は YYYY-MM-DD で指定してください")
		}
		params[key] = t
	}
	if travel, ok := params["travel_date"]; ok {
		return booking.NewTravel(travel), nil
	}
	return toDateRange(params["check_in"], params["check_out"]), nil
}

// toDateRange はどちらも指定が無ければゼロ値を返し、日付の検証はドメインに任せる
func toDateRange(checkIn, checkOut time.Time) booking.DateRange {
	if checkIn.IsZero() && checkOut.IsZero() {
		return booking.DateRange{}
	}
	return booking.NewStay(checkIn, checkOut)
}
