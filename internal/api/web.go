package api

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/samruddhi/pipecut/internal/cutting"
	"github.com/samruddhi/pipecut/internal/models"
	"github.com/samruddhi/pipecut/internal/services"
)

var templateFuncs = template.FuncMap{
	"mm": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
	"cuts": func(cuts []float64) string {
		parts := make([]string, len(cuts))
		for i, c := range cuts {
			parts[i] = strconv.FormatFloat(c, 'f', -1, 64)
		}
		return strings.Join(parts, ", ")
	},
}

type pageData struct {
	Single           *cutting.SinglePlan
	Multi            *cutting.MultiPlan
	Inventory        []*models.Leftover
	Suggestions      []*models.Leftover
	Prefill          map[string]string
	StandardRawMM    float64
	ScrapThresholdMM float64
	KerfMM           float64
	Backend          string
	Error            string
}

// indexPage handles GET /
func (s *Server) indexPage(c *gin.Context) {
	s.renderIndex(c, http.StatusOK, &pageData{})
}

// indexSubmit handles POST / from the page's three forms
func (s *Server) indexSubmit(c *gin.Context) {
	ctx := c.Request.Context()
	data := &pageData{}

	switch {
	case c.PostForm("clear_inventory") != "":
		if _, err := s.plannerService.ClearInventory(ctx); err != nil {
			data.Error = "Failed to clear inventory: " + err.Error()
			s.renderIndex(c, statusFor(err), data)
			return
		}
		c.Redirect(http.StatusSeeOther, "/")
		return

	case c.PostForm("multi_submit") != "":
		reqs := parseMultiForm(c.PostFormArray("multi_cut_length"), c.PostFormArray("multi_quantity"))
		if len(reqs) > 0 {
			plan, err := s.plannerService.Multi(ctx, services.MultiRequest{Cuts: reqs})
			if err != nil {
				data.Error = "Failed to plan: " + err.Error()
				s.renderIndex(c, statusFor(err), data)
				return
			}
			data.Multi = plan
		}

	default:
		raw, _ := strconv.ParseFloat(c.PostForm("raw_length"), 64)
		cut, _ := strconv.ParseFloat(c.PostForm("cut_length"), 64)
		qty, _ := strconv.Atoi(c.PostForm("quantity_required"))
		if raw > 0 && cut > 0 && qty > 0 {
			plan, err := s.plannerService.Single(ctx, services.SingleRequest{RawLength: raw, CutLength: cut, Quantity: qty})
			if err != nil {
				data.Error = "Failed to plan: " + err.Error()
				s.renderIndex(c, statusFor(err), data)
				return
			}
			data.Single = plan
		}
	}

	s.renderIndex(c, http.StatusOK, data)
}

// parseMultiForm pairs lengths with quantities, dropping unparsable or
// non-positive rows.
func parseMultiForm(lengths, quantities []string) []models.CutRequirement {
	n := len(lengths)
	if len(quantities) < n {
		n = len(quantities)
	}
	var reqs []models.CutRequirement
	for i := 0; i < n; i++ {
		length, err := strconv.ParseFloat(strings.TrimSpace(lengths[i]), 64)
		if err != nil {
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(quantities[i]))
		if err != nil {
			continue
		}
		length = cutting.Round2(length)
		if length > 0 && qty > 0 {
			reqs = append(reqs, models.CutRequirement{Length: length, Quantity: qty})
		}
	}
	return reqs
}

func (s *Server) renderIndex(c *gin.Context, status int, data *pageData) {
	data.Prefill = map[string]string{
		"raw_length":        c.Query("raw_length"),
		"cut_length":        c.Query("cut_length"),
		"quantity_required": c.Query("quantity_required"),
	}
	data.StandardRawMM = cutting.StandardRawLengthMM
	data.ScrapThresholdMM = cutting.ScrapSaveThresholdMM
	data.KerfMM = cutting.KerfMM
	data.Backend = string(s.target.Kind)

	inventory, err := s.plannerService.Inventory(c.Request.Context())
	if err != nil {
		if data.Error == "" {
			data.Error = fmt.Sprintf("Failed to load inventory: %v", err)
		}
		status = statusFor(err)
	}
	data.Inventory = inventory
	for _, l := range inventory {
		if l.Length >= cutting.ScrapSaveThresholdMM {
			data.Suggestions = append(data.Suggestions, l)
		}
	}

	c.HTML(status, "index.html", data)
}
