package quote

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/whyyagswhy/dealcalc-sub000/internal/common"
	"github.com/whyyagswhy/dealcalc-sub000/internal/pricing"
)

// Handler exposes the quote and product endpoints.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service, validate: newValidator()}
}

// Routes mounts the endpoints under r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/quotes", func(q chi.Router) {
		q.Post("/totals", h.Totals)
		q.Post("/approval", h.Approval)
		q.Post("/apply-max-discount", h.ApplyMaxDiscount)
		q.Post("/scenarios/compare", h.Compare)
	})
	r.Route("/products", func(p chi.Router) {
		p.Get("/search", h.Search)
		p.Get("/categories", h.Categories)
		p.Get("/matrix-name", h.MatrixName)
		p.Get("/resolve", h.Resolve)
	})
}

// Totals handles POST /api/v1/quotes/totals.
func (h *Handler) Totals(w http.ResponseWriter, r *http.Request) {
	var req totalsRequest
	if !h.bind(w, r, &req) {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.service.Totals(toLineItems(req.Items))})
}

// Approval handles POST /api/v1/quotes/approval for a single product or a
// whole scenario when items are supplied.
func (h *Handler) Approval(w http.ResponseWriter, r *http.Request) {
	var req approvalRequest
	if !h.bind(w, r, &req) {
		return
	}
	if len(req.Items) > 0 {
		res, err := h.service.ScenarioApproval(r.Context(), toLineItems(req.Items))
		if err != nil {
			common.WriteError(w, err)
			return
		}
		common.JSON(w, http.StatusOK, map[string]any{"data": res})
		return
	}
	res, err := h.service.Approval(r.Context(), ApprovalRequest{
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		Discount:    req.Discount,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": res})
}

// ApplyMaxDiscount handles POST /api/v1/quotes/apply-max-discount.
func (h *Handler) ApplyMaxDiscount(w http.ResponseWriter, r *http.Request) {
	var req totalsRequest
	if !h.bind(w, r, &req) {
		return
	}
	res, err := h.service.ApplyMaxInstantDiscount(r.Context(), toLineItems(req.Items))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": res})
}

// Compare handles POST /api/v1/quotes/scenarios/compare.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !h.bind(w, r, &req) {
		return
	}
	scenarios := make([]pricing.Scenario, 0, len(req.Scenarios))
	for _, sc := range req.Scenarios {
		scenarios = append(scenarios, pricing.Scenario{Name: sc.Name, Items: toLineItems(sc.Items)})
	}
	res, err := h.service.Compare(r.Context(), scenarios)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": res})
}

// Search handles GET /api/v1/products/search?q=&limit=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := common.AtoiDefault(query.Get("limit"), 0)
	results, err := h.service.Search(r.Context(), query.Get("q"), limit)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": results})
}

// Categories handles GET /api/v1/products/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.Categories(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": groups})
}

// MatrixName handles GET /api/v1/products/matrix-name?category=&edition=.
// Repeating edition renders a shared bracket group.
func (h *Handler) MatrixName(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	category := strings.TrimSpace(query.Get("category"))
	if category == "" {
		common.WriteError(w, common.BadRequest("category is required", nil))
		return
	}
	editions := query["edition"]
	var name string
	if len(editions) > 1 {
		name = h.service.MatrixNameMulti(category, editions)
	} else {
		var edition *string
		if e := strings.TrimSpace(query.Get("edition")); e != "" {
			edition = &e
		}
		name = h.service.MatrixName(category, edition)
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{
		"matrixName": name,
	}})
}

// Resolve handles GET /api/v1/products/resolve?name=.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		common.WriteError(w, common.BadRequest("name is required", nil))
		return
	}
	p, ok, err := h.service.ResolveProduct(r.Context(), name)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if !ok {
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "no catalog product matches name", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"product":      p,
		"displayName":  p.DisplayName(),
		"monthlyPrice": p.MonthlyPrice(),
	}})
}

func (h *Handler) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "quote service not configured", nil)
		return false
	}
	if err := common.DecodeJSON(r, dst); err != nil {
		common.WriteError(w, err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		common.WriteError(w, common.ValidationError(err))
		return false
	}
	return true
}
