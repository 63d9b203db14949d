package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/babylog/internal/client/events"
	"github.com/dmitrijs2005/babylog/internal/client/export"
	"github.com/dmitrijs2005/babylog/internal/client/models"
	"github.com/dmitrijs2005/babylog/internal/client/services"
	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/logging"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	dl  *services.DataLayer
	log logging.Logger
}

// writeError maps request problems to 4xx. Storage trouble is logged and
// reported as a 200 with ok=false, mirroring the data layer.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, common.ErrInvalidEntry),
		errors.Is(err, common.ErrInvalidProfile),
		errors.Is(err, common.ErrInvalidWeight),
		errors.Is(err, common.ErrInvalidDate),
		errors.Is(err, common.ErrInvalidTimer),
		errors.Is(err, common.ErrNoProfile):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusOK, gin.H{"ok": false})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func validDate(s string) bool {
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}

/*************
 * Entries
 *************/

func (h *Handler) ListEntries(c *gin.Context) {
	ctx := c.Request.Context()
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		c.JSON(http.StatusOK, gin.H{"entries": h.dl.GetEntries(ctx)})
		return
	}
	if !validDate(date) {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": h.dl.GetEntriesByDate(ctx, date)})
}

func (h *Handler) CreateEntry(c *gin.Context) {
	var e models.Entry
	if err := c.ShouldBindJSON(&e); err != nil {
		badRequest(c, "invalid json body")
		return
	}
	saved, err := h.dl.Entries().Save(c.Request.Context(), e)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "entry": saved})
}

func (h *Handler) UpdateEntry(c *gin.Context) {
	var patch models.EntryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid json body")
		return
	}
	if patch.IsEmpty() {
		badRequest(c, "nothing to update")
		return
	}
	updated, err := h.dl.Entries().Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "entry": updated})
}

func (h *Handler) DeleteEntry(c *gin.Context) {
	if err := h.dl.Entries().Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

/*************
 * Profiles
 *************/

func (h *Handler) ListProfiles(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		"profiles": h.dl.GetAllBabyProfiles(ctx),
		"activeId": h.dl.GetActiveBabyID(ctx),
	})
}

func (h *Handler) SaveProfile(c *gin.Context) {
	var p models.BabyProfile
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid json body")
		return
	}
	saved, err := h.dl.Profiles().Save(c.Request.Context(), p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "profile": saved})
}

func (h *Handler) GetActiveProfile(c *gin.Context) {
	p, ok := h.dl.ActiveBabyProfile(c.Request.Context())
	if !ok {
		c.JSON(http.StatusOK, gin.H{"id": "", "profile": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": p.ID, "profile": p})
}

func (h *Handler) SetActiveProfile(c *gin.Context) {
	var body struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "id is required")
		return
	}
	ctx := c.Request.Context()
	if _, err := h.dl.Profiles().Get(ctx, body.ID); err != nil {
		h.writeError(c, err)
		return
	}
	if err := h.dl.Profiles().SetActiveBabyID(ctx, body.ID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": body.ID})
}

// DeleteProfile refuses to remove the last profile and moves the active
// selection to a remaining one when needed.
func (h *Handler) DeleteProfile(c *gin.Context) {
	active, err := services.RemoveProfile(c.Request.Context(), h.dl.Profiles(), c.Param("id"))
	if errors.Is(err, common.ErrLastProfile) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "activeId": active})
}

/*************
 * Timers
 *************/

func (h *Handler) timer(c *gin.Context) services.TimerService {
	t := h.dl.Timer(models.TimerKind(c.Param("kind")))
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown timer"})
	}
	return t
}

func (h *Handler) TimerStatus(c *gin.Context) {
	t := h.timer(c)
	if t == nil {
		return
	}
	ctx := c.Request.Context()
	session := h.dl.GetActiveSleep(ctx)
	if t.Kind() == models.TimerKindBreast {
		session = h.dl.GetActiveBreast(ctx)
	}
	minutes, running := h.dl.Elapsed(ctx, t.Kind())
	c.JSON(http.StatusOK, gin.H{
		"kind":           t.Kind(),
		"running":        running && session != nil,
		"session":        session,
		"elapsedMinutes": minutes,
	})
}

func (h *Handler) StartTimer(c *gin.Context) {
	t := h.timer(c)
	if t == nil {
		return
	}
	var body struct {
		Side *models.BreastSide `json:"side"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "invalid json body")
			return
		}
	}
	s, err := t.Start(c.Request.Context(), body.Side)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": s})
}

func (h *Handler) StopTimer(c *gin.Context) {
	t := h.timer(c)
	if t == nil {
		return
	}
	e, err := t.Stop(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "entry": e})
}

/*************
 * Preferences
 *************/

func (h *Handler) GetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, h.dl.LoadPreferences(c.Request.Context()))
}

func (h *Handler) PutPreferences(c *gin.Context) {
	p := models.DefaultPreferences()
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid json body")
		return
	}
	ok := h.dl.SavePreferences(c.Request.Context(), p)
	c.JSON(http.StatusOK, gin.H{"ok": ok, "preferences": h.dl.LoadPreferences(c.Request.Context())})
}

func (h *Handler) PatchPreferences(c *gin.Context) {
	var patch models.PreferencesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid json body")
		return
	}
	p, ok := h.dl.UpdatePreferences(c.Request.Context(), patch)
	c.JSON(http.StatusOK, gin.H{"ok": ok, "preferences": p})
}

/*************
 * Summaries and weights
 *************/

func (h *Handler) DailySummary(c *gin.Context) {
	date := c.DefaultQuery("date", h.dl.Today())
	if !validDate(date) {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}
	c.JSON(http.StatusOK, h.dl.GetDailySummary(c.Request.Context(), date))
}

// rangeParams reads from (default: days-1 days before today) and days
// (default 7).
func (h *Handler) rangeParams(c *gin.Context) (string, int, bool) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 || days > 366 {
		badRequest(c, "days must be between 1 and 366")
		return "", 0, false
	}
	from := c.Query("from")
	if from == "" {
		today, _ := time.ParseInLocation(models.DateLayout, h.dl.Today(), h.dl.Location())
		from = today.AddDate(0, 0, 1-days).Format(models.DateLayout)
	}
	if !validDate(from) {
		badRequest(c, "from must be YYYY-MM-DD")
		return "", 0, false
	}
	return from, days, true
}

func (h *Handler) RangeSummary(c *gin.Context) {
	from, days, ok := h.rangeParams(c)
	if !ok {
		return
	}
	daily, period := h.dl.GetRangeSummary(c.Request.Context(), from, days)
	c.JSON(http.StatusOK, gin.H{"daily": daily, "period": period})
}

func (h *Handler) ListWeights(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"weights": h.dl.GetWeights(c.Request.Context())})
}

func (h *Handler) AddWeight(c *gin.Context) {
	var body struct {
		Weight    float64 `json:"weight"`
		Timestamp int64   `json:"timestamp"`
		Notes     string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid json body")
		return
	}
	w, err := h.dl.Weights().Add(c.Request.Context(), body.Weight, body.Timestamp, body.Notes)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "weight": w})
}

/*************
 * Export and events
 *************/

func (h *Handler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	from, days, ok := h.rangeParams(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	report, err := export.Collect(ctx, h.dl, from, days)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="babylog-%s%s"`, from, format.Extension()))
	c.Status(http.StatusOK)
	if err := export.Write(ctx, c.Writer, format, report); err != nil {
		h.log.Error(ctx, "export failed", "format", format, "error", err)
	}
}

// Events streams one "change" event per bus publication until the client
// goes away. Slow clients miss events rather than blocking writers.
func (h *Handler) Events(c *gin.Context) {
	ch := make(chan events.Event, 32)
	unsubscribe := h.dl.Subscribe(func(ev events.Event) {
		select {
		case ch <- ev:
		default:
		}
	})
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("ready", gin.H{"at": h.dl.Clock().Now().UnixMilli()})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case ev := <-ch:
			c.SSEvent("change", gin.H{"topic": ev.Topic, "at": ev.At.UnixMilli()})
			return true
		case <-ctx.Done():
			return false
		}
	})
}
