package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/smartcycle/discounts/internal/domain/campaign"
	"github.com/smartcycle/discounts/internal/domain/condition"
	"github.com/smartcycle/discounts/internal/domain/discount"
)

type conditionPayload struct {
	Property string `json:"property"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
	Value2   string `json:"value2,omitempty"`
	Mode     string `json:"mode,omitempty"`
}

type createCampaignRequest struct {
	Name       string             `json:"name"`
	Status     string             `json:"status,omitempty"`
	Priority   int                `json:"priority"`
	StartsAt   *time.Time         `json:"starts_at,omitempty"`
	EndsAt     *time.Time         `json:"ends_at,omitempty"`
	Logic      string             `json:"logic"`
	Conditions []conditionPayload `json:"conditions"`
	Discount   json.RawMessage    `json:"discount"`
}

type campaignResponse struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Status     string             `json:"status"`
	Priority   int                `json:"priority"`
	StartsAt   *time.Time         `json:"starts_at,omitempty"`
	EndsAt     *time.Time         `json:"ends_at,omitempty"`
	Logic      string             `json:"logic"`
	Conditions []conditionPayload `json:"conditions"`
	Discount   json.RawMessage    `json:"discount"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func toCampaignResponse(c *campaign.Campaign) campaignResponse {
	conds := make([]conditionPayload, len(c.Conditions))
	for i, cond := range c.Conditions {
		conds[i] = conditionPayload{
			Property: string(cond.Property),
			Operator: string(cond.Operator),
			Value:    cond.Value,
			Value2:   cond.Value2,
			Mode:     string(cond.Mode),
		}
	}
	return campaignResponse{
		ID:         c.ID,
		Name:       c.Name,
		Status:     string(c.Status),
		Priority:   c.Priority,
		StartsAt:   c.StartsAt,
		EndsAt:     c.EndsAt,
		Logic:      string(c.Logic),
		Conditions: conds,
		Discount:   json.RawMessage(discount.EncodeConfig(c.Discount)),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func (h *Handler) createCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	cfg, err := discount.DecodeConfig(req.Discount)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid discount config: "+err.Error())
		return
	}

	status := campaign.StatusDraft
	if req.Status != "" {
		status = campaign.Status(req.Status)
	}

	logic := condition.LogicAll
	if req.Logic != "" {
		logic = condition.Logic(req.Logic)
	}

	conds := make([]condition.Condition, len(req.Conditions))
	for i, c := range req.Conditions {
		mode := condition.ModeInclude
		if c.Mode != "" {
			mode = condition.Mode(c.Mode)
		}
		conds[i] = condition.Condition{
			Property: condition.Property(c.Property),
			Operator: condition.Operator(c.Operator),
			Value:    c.Value,
			Value2:   c.Value2,
			Mode:     mode,
		}
	}

	now := time.Now().UTC()
	c := &campaign.Campaign{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Status:     status,
		Priority:   req.Priority,
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
		Logic:      logic,
		Conditions: conds,
		Discount:   cfg,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := c.Validate(); err != nil {
		h.respondValidationError(w, err)
		return
	}

	if err := h.campaigns.Create(r.Context(), c); err != nil {
		h.respondInternal(w, err)
		return
	}
	h.cache.Invalidate()

	h.respondJSON(w, http.StatusCreated, toCampaignResponse(c))
}

func (h *Handler) listCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.campaigns.List(r.Context())
	if err != nil {
		h.respondInternal(w, err)
		return
	}

	out := make([]campaignResponse, len(campaigns))
	for i := range campaigns {
		out[i] = toCampaignResponse(&campaigns[i])
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handler) getCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := h.campaigns.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, campaign.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "campaign not found")
			return
		}
		h.respondInternal(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toCampaignResponse(c))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateCampaignStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	status := campaign.Status(req.Status)
	if !campaign.ValidStatus(status) {
		h.respondError(w, http.StatusUnprocessableEntity, "unknown status "+`"`+req.Status+`"`)
		return
	}

	if err := h.campaigns.UpdateStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, campaign.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "campaign not found")
			return
		}
		h.respondInternal(w, err)
		return
	}
	h.cache.Invalidate()

	h.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}

type scopeResponse struct {
	CampaignID string   `json:"campaign_id"`
	ProductIDs []string `json:"product_ids"`
	Count      int      `json:"count"`
}

// campaignScope resolves a campaign's condition set against the catalog in
// the database and returns the matching product ids.
func (h *Handler) campaignScope(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := h.campaigns.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, campaign.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "campaign not found")
			return
		}
		h.respondInternal(w, err)
		return
	}

	crit := condition.BuildCriteria(c.Conditions, c.Logic)
	ids, err := h.products.SearchIDs(r.Context(), crit)
	if err != nil {
		h.respondInternal(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	h.respondJSON(w, http.StatusOK, scopeResponse{
		CampaignID: c.ID,
		ProductIDs: ids,
		Count:      len(ids),
	})
}
