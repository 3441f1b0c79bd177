package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/BINU242/refref/internal/config"
	"github.com/BINU242/refref/internal/services"
	"github.com/BINU242/refref/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// WidgetHandler serves the public unauthenticated surface: the embeddable
// script and the tracking endpoints it calls.
type WidgetHandler struct {
	referralService *services.ReferralService
	baseURL         string
}

func NewWidgetHandler(db *gorm.DB, cfg *config.Config) *WidgetHandler {
	return &WidgetHandler{
		referralService: services.NewReferralService(db),
		baseURL:         cfg.Widget.BaseURL,
	}
}

// widgetScript is the minimal loader served to customer sites. It reads the
// ref query parameter, reports the visit, and exposes an enroll hook.
const widgetScript = `(function () {
  var KEY = %q;
  var BASE = %q;
  function post(path, body) {
    return fetch(BASE + "/api/t/" + KEY + path, {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify(body)
    }).then(function (r) { return r.json(); });
  }
  var params = new URLSearchParams(window.location.search);
  var ref = params.get("ref");
  if (ref) {
    try { sessionStorage.setItem("refref_code", ref); } catch (e) {}
    post("/visit", { code: ref, landing_url: window.location.href });
  }
  window.RefRef = {
    enroll: function (email) { return post("/enroll", { email: email }); },
    signup: function (email) {
      var code = ref;
      try { code = code || sessionStorage.getItem("refref_code"); } catch (e) {}
      if (!code) return Promise.resolve(null);
      return post("/signup", { code: code, email: email });
    }
  };
})();
`

// Script serves the embeddable widget loader
// GET /widget/:key.js
func (h *WidgetHandler) Script(c *gin.Context) {
	key := strings.TrimSuffix(c.Param("key"), ".js")
	if key == "" {
		c.Status(http.StatusNotFound)
		return
	}

	c.Header("Content-Type", "application/javascript; charset=utf-8")
	c.Header("Cache-Control", "public, max-age=300")
	c.String(http.StatusOK, fmt.Sprintf(widgetScript, key, h.baseURL))
}

type enrollRequest struct {
	Email string `json:"email" binding:"required"`
}

// Enroll registers a participant and returns their referral code
// POST /api/t/:key/enroll
func (h *WidgetHandler) Enroll(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	participant, err := h.referralService.Enroll(c.Param("key"), req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, participant)
}

type visitRequest struct {
	Code       string `json:"code" binding:"required"`
	LandingURL string `json:"landing_url"`
}

// Visit records a landing through a referral code
// POST /api/t/:key/visit
func (h *WidgetHandler) Visit(c *gin.Context) {
	var req visitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	referral, err := h.referralService.TrackVisit(c.Param("key"), req.Code, req.LandingURL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"referral_id": referral.ID})
}

type signupRequest struct {
	Code  string `json:"code" binding:"required"`
	Email string `json:"email" binding:"required"`
}

// Signup converts a referral into a signup
// POST /api/t/:key/signup
func (h *WidgetHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	referral, err := h.referralService.TrackSignup(c.Param("key"), req.Code, req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"referral_id": referral.ID, "status": referral.Status})
}
