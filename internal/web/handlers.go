package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/meridianlabs/nexus/internal/llm"
)

const maxQuerySize = 10 << 10 // 10KB

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ask

type askRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversation_id"`
}

func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "query required"})
		return
	}
	if len(req.Query) > maxQuerySize {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "query exceeds maximum size of 10KB"})
		return
	}

	result, err := s.pipeline.Answer(c.Request.Context(), req.Query, req.ConversationID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAskStream(c *gin.Context) {
	var req askRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "query required"})
		return
	}

	stream, err := s.pipeline.AnswerStream(c.Request.Context(), req.Query)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	s.relayStream(c, stream)
}

// Scan

func (s *Server) handleScan(c *gin.Context) {
	if agent := c.Query("agent"); agent != "" {
		result, err := s.scanner.RunOne(c.Request.Context(), agent)
		if err != nil {
			status := statusFor(err)
			if status == http.StatusInternalServerError {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	scan, err := s.scanner.RunAll(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, scan)
}

func (s *Server) handleScanHistory(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	scans, err := s.scanner.History(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scans": scans, "count": len(scans)})
}

// Alerts

func (s *Server) handleAlerts(c *gin.Context) {
	unresolvedOnly := c.Query("all") != "true"
	alerts, err := s.alerts.ListAlerts(c.Request.Context(), unresolvedOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

type resolveRequest struct {
	Resolution string `json:"resolution"`
}

func (s *Server) handleResolveAlert(c *gin.Context) {
	id := c.Param("id")

	var req resolveRequest
	if c.Request.ContentLength > 0 {
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
	}
	if req.Resolution == "" {
		req.Resolution = "resolved"
	}

	if err := s.alerts.ResolveAlert(c.Request.Context(), id, req.Resolution); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// Usage

func (s *Server) handleUsage(c *gin.Context) {
	summary, err := s.usage.Summarize(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Index

func (s *Server) handleIndexBuild(c *gin.Context) {
	if err := s.index.Build(c.Request.Context()); err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.index.Status())
}

func (s *Server) handleIndexStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.index.Status())
}

// Graph

func (s *Server) handleGraph(c *gin.Context) {
	snap, err := s.graph.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleGraphNode(c *gin.Context) {
	node, err := s.graph.Node(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if node == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "node not found"})
		return
	}
	c.JSON(http.StatusOK, node)
}

// Briefing

func (s *Server) handleBriefing(c *gin.Context) {
	result, err := s.briefer.Person(c.Request.Context(), c.Param("personID"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleBriefingStream(c *gin.Context) {
	stream, err := s.briefer.PersonStream(c.Request.Context(), c.Param("personID"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	s.relayStream(c, stream)
}

type onboardingRequest struct {
	TeamName string `json:"team_name"`
	Division string `json:"division"`
}

func (s *Server) handleOnboarding(c *gin.Context) {
	var req onboardingRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if req.TeamName == "" || req.Division == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "team_name and division required"})
		return
	}

	pkg, err := s.briefer.Onboarding(c.Request.Context(), req.TeamName, req.Division)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pkg)
}

// SSE

type sseEvent struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// relayStream drains a token stream into SSE events. Every stream ends with
// exactly one terminal event: done on normal completion, error otherwise.
func (s *Server) relayStream(c *gin.Context, stream *llm.Stream) {
	defer stream.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	for {
		token, err := stream.Next()
		if err == io.EOF {
			writeSSE(c, sseEvent{Type: "done"})
			return
		}
		if err != nil {
			s.logger.Error("stream relay failed", "error", err)
			writeSSE(c, sseEvent{Type: "error", Content: err.Error()})
			return
		}
		writeSSE(c, sseEvent{Type: "token", Content: token})
	}
}

func writeSSE(c *gin.Context, ev sseEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	c.Writer.WriteString("data: " + string(payload) + "\n\n")
	c.Writer.Flush()
}

// statusFor maps errors to HTTP statuses. A gateway without credentials is
// service unavailable, not an internal fault.
func statusFor(err error) int {
	if errors.Is(err, llm.ErrNotConfigured) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
