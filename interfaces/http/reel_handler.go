package http

import (
	"net/http"
	"strconv"

	"reelshare/domain/dto"
	"reelshare/domain/model"
	"reelshare/usecase"

	"github.com/gin-gonic/gin"
)

type IReelHandler interface {
	Submit(c *gin.Context)
	BulkSubmit(c *gin.Context)
	Resolve(c *gin.Context)
	List(c *gin.Context)
	ListMine(c *gin.Context)
	Get(c *gin.Context)
	Stats(c *gin.Context)
	Retry(c *gin.Context)
	Delete(c *gin.Context)
	Stream(c *gin.Context)
}

// StatusStreamer serves a long-lived status stream for the caller.
type StatusStreamer interface {
	Serve(c *gin.Context)
}

type ReelHandler struct {
	reelUsecase usecase.IReelUsecase
	streamer    StatusStreamer
}

func NewReelHandler(reelUsecase usecase.IReelUsecase, streamer StatusStreamer) IReelHandler {
	return &ReelHandler{reelUsecase: reelUsecase, streamer: streamer}
}

func (h *ReelHandler) Submit(c *gin.Context) {
	var req dto.SubmitReelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Link() == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": http.StatusText(http.StatusBadRequest), "message": "Reel URL is required"})
		return
	}
	res, err := h.reelUsecase.Submit(c.Request.Context(), c.GetString("user_id"), req.Link())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, res)
}

// Resolve runs the resolution chain for one link and returns the payload
// without creating a record.
func (h *ReelHandler) Resolve(c *gin.Context) {
	var req dto.SubmitReelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Link() == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": http.StatusText(http.StatusBadRequest), "message": "Reel URL is required"})
		return
	}
	payload, err := h.reelUsecase.ResolveLink(c.Request.Context(), c.GetString("user_id"), req.Link())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ResolveReelResponse{Success: true, Data: payload})
}

func (h *ReelHandler) BulkSubmit(c *gin.Context) {
	var req dto.BulkSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.reelUsecase.BulkSubmit(c.Request.Context(), c.GetString("user_id"), req.Entries())
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusAccepted
	if res.Accepted == 0 {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

func (h *ReelHandler) List(c *gin.Context) {
	q, ok := listQuery(c)
	if !ok {
		return
	}
	res, err := h.reelUsecase.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ReelHandler) ListMine(c *gin.Context) {
	q, ok := listQuery(c)
	if !ok {
		return
	}
	res, err := h.reelUsecase.ListMine(c.Request.Context(), c.GetString("user_id"), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ReelHandler) Get(c *gin.Context) {
	reel, err := h.reelUsecase.Get(c.Request.Context(), c.Param("id"), model.Role(c.GetString("role")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reel": reel})
}

func (h *ReelHandler) Stats(c *gin.Context) {
	stats, err := h.reelUsecase.Stats(c.Request.Context(), c.GetString("user_id"), model.Role(c.GetString("role")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

func (h *ReelHandler) Retry(c *gin.Context) {
	reel, err := h.reelUsecase.Retry(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true, "reel": reel})
}

func (h *ReelHandler) Delete(c *gin.Context) {
	if err := h.reelUsecase.Delete(c.Request.Context(), c.GetString("user_id"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Shared reel deleted successfully"})
}

func (h *ReelHandler) Stream(c *gin.Context) {
	if h.streamer == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "status stream not configured"})
		return
	}
	h.streamer.Serve(c)
}

// listQuery reads status, limit and skip. Unknown statuses are ignored like the listing filter does.
func listQuery(c *gin.Context) (dto.ReelListQuery, bool) {
	var q dto.ReelListQuery
	if s := model.ReelStatus(c.Query("status")); s.Valid() {
		q.Status = s
	}
	for name, dst := range map[string]*int64{"limit": &q.Limit, "skip": &q.Skip} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": http.StatusText(http.StatusBadRequest), "message": name + " must be a non-negative integer"})
			return q, false
		}
		*dst = n
	}
	return q, true
}
