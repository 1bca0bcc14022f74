package mockorion

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/betbot/go-orion/orion/types"
)

func (s *Server) handlePutMedia(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := strings.TrimPrefix(c.Param("name"), "/")
	s.mu.Lock()
	s.media[name] = body
	s.mu.Unlock()
	c.Status(http.StatusOK)
}

func (s *Server) handleGetMedia(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("name"), "/")
	s.mu.Lock()
	body, ok := s.media[name]
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such media"})
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", body)
}

func (s *Server) handleLyre(c *gin.Context) {
	var req types.LyreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Token == "" || len(req.GroupIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token and group_ids required"})
		return
	}
	s.mu.Lock()
	s.lyre = append(s.lyre, req)
	s.mu.Unlock()
	c.String(http.StatusOK, "OK")
}

// handleLocris echoes the payload back; stt fills a transcript and translate
// swaps lang for target_lang.
func (s *Server) handleLocris(c *gin.Context) {
	op := c.Param("op")
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var ev types.AudioEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch op {
	case "ov2wav", "wav2ov":
	case "stt":
		ev.Transcript = "hello from " + DemoUsername
	case "translate":
		if ev.TargetLang != "" {
			ev.Lang = ev.TargetLang
		}
		if ev.Transcript != "" {
			ev.Transcript = "[" + ev.Lang + "] " + ev.Transcript
		}
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown operation " + op})
		return
	}

	s.mu.Lock()
	s.locris = append(s.locris, op)
	s.mu.Unlock()
	c.JSON(http.StatusOK, ev)
}
