package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"supplydash/internal/engine"
	"supplydash/internal/export"
	"supplydash/internal/models"
	"supplydash/internal/render"
	"supplydash/internal/session"
)

// Handler serves the dashboard over one loaded Table.
type Handler struct {
	mu       sync.RWMutex
	table    *engine.Table
	sessions *session.Manager

	templates *render.Templates
	logger    *zap.Logger
}

// NewHandler builds a handler. The table may be nil until SetTable is called;
// until then every data route answers 503.
func NewHandler(table *engine.Table, sessions *session.Manager, templates *render.Templates, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{table: table, sessions: sessions, templates: templates, logger: logger}
}

// SetTable swaps in a loaded table.
func (h *Handler) SetTable(t *engine.Table) {
	h.mu.Lock()
	h.table = t
	h.mu.Unlock()
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.GetPage)
	e.GET("/healthz", h.GetHealth)

	api := e.Group("/api")
	api.GET("/filters", h.GetFilters)
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/kpis", h.GetKPIs)
	api.GET("/inspection", h.GetInspection)
	api.GET("/stock/pivot", h.GetStockPivot)
	api.GET("/routes/cost", h.GetCostByRoute)
	api.GET("/transport/units", h.GetUnitsByTransport)
	api.GET("/records", h.GetRecords)
	api.GET("/export.arrow", h.GetArrowExport)

	api.POST("/sessions", h.CreateSession)
	api.GET("/sessions/:id", h.GetSession)
	api.PUT("/sessions/:id/filters", h.UpdateSessionFilters)
	api.DELETE("/sessions/:id", h.DeleteSession)

	charts := e.Group("/charts")
	charts.GET("/inspection.svg", h.GetInspectionChart)
	charts.GET("/routes.svg", h.GetRoutesChart)
	charts.GET("/transport.svg", h.GetTransportChart)
}

// --- HELPERS ---

func (h *Handler) loadedTable() (*engine.Table, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.table == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is still loading")
	}
	return h.table, nil
}

func filterFromQuery(c echo.Context) engine.FilterState {
	return engine.NewFilterState(c.QueryParam("product_type"), c.QueryParam("location"))
}

// view resolves the table and the filtered view for a request.
func (h *Handler) view(c echo.Context) (engine.View, engine.FilterState, error) {
	t, err := h.loadedTable()
	if err != nil {
		return engine.View{}, engine.FilterState{}, err
	}
	s := filterFromQuery(c)
	return engine.ComputeFilteredView(t, s), s, nil
}

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// --- HANDLERS ---

func (h *Handler) GetHealth(c echo.Context) error {
	t, err := h.loadedTable()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
		"rows":   t.NumRows(),
	})
}

func (h *Handler) GetFilters(c echo.Context) error {
	t, err := h.loadedTable()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engine.Options(t))
}

type dashboardResponse struct {
	*models.DashboardData
	Display models.KPIDisplay `json:"display"`
}

func (h *Handler) GetDashboard(c echo.Context) error {
	v, s, err := h.view(c)
	if err != nil {
		return err
	}
	data := engine.Summarize(v, s)
	return c.JSON(http.StatusOK, dashboardResponse{DashboardData: data, Display: render.FormatKPIs(data)})
}

func (h *Handler) GetKPIs(c echo.Context) error {
	v, _, err := h.view(c)
	if err != nil {
		return err
	}
	data := &models.DashboardData{
		Rows:        v.Len(),
		Revenue:     engine.TotalRevenue(v),
		UnitsSold:   engine.TotalUnitsSold(v),
		DefectRate:  engine.MeanDefectRate(v),
		LeadTime:    engine.MeanLeadTime(v),
		MfgLeadTime: engine.MeanMfgLeadTime(v),
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"rows":                    data.Rows,
		"revenue":                 data.Revenue,
		"units_sold":              data.UnitsSold,
		"defect_rate":             data.DefectRate,
		"lead_time":               data.LeadTime,
		"manufacturing_lead_time": data.MfgLeadTime,
		"display":                 render.FormatKPIs(data),
	})
}

func (h *Handler) GetInspection(c echo.Context) error {
	v, _, err := h.view(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engine.InspectionStockByResult(v))
}

func (h *Handler) GetStockPivot(c echo.Context) error {
	v, _, err := h.view(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engine.StockPivot(v))
}

func (h *Handler) GetCostByRoute(c echo.Context) error {
	v, _, err := h.view(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engine.CostByRoute(v))
}

func (h *Handler) GetUnitsByTransport(c echo.Context) error {
	v, _, err := h.view(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engine.UnitsByTransportMode(v))
}

// GetRecords returns the filtered rows, paginated
func (h *Handler) GetRecords(c echo.Context) error {
	v, _, err := h.view(c)
	if err != nil {
		return err
	}
	total := v.Len()
	limit, offset := getPaginationParams(c, 100)

	if offset >= total {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"data":   []engine.Record{},
			"total":  total,
			"limit":  limit,
			"offset": offset,
		})
	}
	if limit > total-offset {
		limit = total - offset
	}
	end := offset + limit

	records := make([]engine.Record, 0, limit)
	for _, r := range v.Rows()[offset:end] {
		records = append(records, v.Table().Record(r))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   records,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) GetArrowExport(c echo.Context) error {
	v, _, err := h.view(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.WriteArrow(&buf, v); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="supply.arrow"`)
	return c.Blob(http.StatusOK, export.ContentType, buf.Bytes())
}

// --- CHARTS ---

const svgContentType = "image/svg+xml"

func (h *Handler) chart(c echo.Context, draw func(*bytes.Buffer, engine.View) error) error {
	v, _, err := h.view(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := draw(&buf, v); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, svgContentType, buf.Bytes())
}

func (h *Handler) GetInspectionChart(c echo.Context) error {
	return h.chart(c, func(b *bytes.Buffer, v engine.View) error {
		return render.InspectionDonut(b, engine.InspectionStockByResult(v))
	})
}

func (h *Handler) GetRoutesChart(c echo.Context) error {
	return h.chart(c, func(b *bytes.Buffer, v engine.View) error {
		return render.CostByRouteBars(b, engine.CostByRoute(v))
	})
}

func (h *Handler) GetTransportChart(c echo.Context) error {
	return h.chart(c, func(b *bytes.Buffer, v engine.View) error {
		return render.UnitsByTransportBars(b, engine.UnitsByTransportMode(v))
	})
}

// --- PAGE ---

func (h *Handler) GetPage(c echo.Context) error {
	t, err := h.loadedTable()
	if err != nil {
		return err
	}
	s := filterFromQuery(c)
	data := engine.Summarize(engine.ComputeFilteredView(t, s), s)
	opts := engine.Options(t)

	if h.templates == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "page templates not configured")
	}

	var buf bytes.Buffer
	err = h.templates.Dashboard(&buf, render.PageData{
		ProductTypes: opts.ProductTypes,
		Locations:    opts.Locations,
		ProductType:  data.ProductType,
		Location:     data.Location,
		Data:         data,
		KPIs:         render.FormatKPIs(data),
	})
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// --- SESSIONS ---

func (h *Handler) sessionManager() (*session.Manager, error) {
	if _, err := h.loadedTable(); err != nil {
		return nil, err
	}
	if h.sessions == nil {
		return nil, echo.NewHTTPError(http.StatusNotImplemented, "sessions are disabled")
	}
	return h.sessions, nil
}

func (h *Handler) lookupSession(c echo.Context) (*session.Session, error) {
	m, err := h.sessionManager()
	if err != nil {
		return nil, err
	}
	s, err := m.Get(c.Param("id"))
	if errors.Is(err, session.ErrSessionNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return s, err
}

func (h *Handler) CreateSession(c echo.Context) error {
	m, err := h.sessionManager()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m.Create().Snapshot())
}

func (h *Handler) GetSession(c echo.Context) error {
	s, err := h.lookupSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.Snapshot())
}

type filterRequest struct {
	ProductType *string `json:"product_type"`
	Location    *string `json:"location"`
}

// UpdateSessionFilters changes the fields present in the body and leaves the others as they are.
func (h *Handler) UpdateSessionFilters(c echo.Context) error {
	s, err := h.lookupSession(c)
	if err != nil {
		return err
	}
	var req filterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid filter body")
	}
	if req.ProductType == nil && req.Location == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "product_type or location is required")
	}

	snap := s.Update(func(state *engine.FilterState) {
		if req.ProductType != nil {
			state.SetProductType(*req.ProductType)
		}
		if req.Location != nil {
			state.SetLocation(*req.Location)
		}
	})
	return c.JSON(http.StatusOK, snap)
}

func (h *Handler) DeleteSession(c echo.Context) error {
	m, err := h.sessionManager()
	if err != nil {
		return err
	}
	if err := m.Delete(c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
