package server

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ashik5757/Minio-Private-Bucket/internal/browse"
	"github.com/ashik5757/Minio-Private-Bucket/internal/download"
	"github.com/ashik5757/Minio-Private-Bucket/internal/task"
)

type startDownloadRequest struct {
	Prefix string `json:"prefix" binding:"required"`
}

// startFolderDownload creates a task and schedules background archiving.
// Repeated requests for the same prefix create distinct tasks.
func (s *Server) startFolderDownload(c *gin.Context) {
	var req startDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id, err := s.orch.Start(req.Prefix)
	if errors.Is(err, download.ErrCapacityExceeded) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"task_id": id})
}

// taskStatus returns a consistent snapshot of the task.
func (s *Server) taskStatus(c *gin.Context) {
	snap, err := s.orch.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// streamProgress delivers the task's progress events over SSE. The
// stream opens with the latest snapshot and closes after a terminal
// event, or when the client disconnects.
func (s *Server) streamProgress(c *gin.Context) {
	id := c.Param("id")

	ch, err := s.orch.Subscribe(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	defer s.orch.Unsubscribe(id, ch)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent("progress", ev)
			c.Writer.Flush()
			if ev.Terminal() {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// cancelDownload requests cooperative cancellation. Succeeds (without
// effect) when the task already reached a terminal state.
func (s *Server) cancelDownload(c *gin.Context) {
	err := s.orch.Cancel(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// downloadArchive streams the finished archive. 409 while the task is
// still pending or running, 404 when unknown or evicted.
func (s *Server) downloadArchive(c *gin.Context) {
	a, err := s.orch.OpenArchive(c.Param("id"))
	switch {
	case errors.Is(err, task.ErrNotReady):
		c.JSON(http.StatusConflict, gin.H{"error": "archive not ready"})
		return
	case err != nil:
		c.JSON(http.StatusNotFound, gin.H{"error": "archive not found"})
		return
	}
	defer a.Close()

	c.DataFromReader(http.StatusOK, a.Size, "application/zip", a, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", a.Filename),
	})
}

// downloadObject proxies a single object's byte stream.
func (s *Server) downloadObject(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "object key is required"})
		return
	}

	body, size, err := s.store.FetchObject(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, size, "application/octet-stream", body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", path.Base(key)),
	})
}

// folderInfo returns folder statistics computed from a full enumeration.
func (s *Server) folderInfo(c *gin.Context) {
	prefix := strings.TrimPrefix(c.Param("path"), "/")

	info, err := browse.FolderInfo(c.Request.Context(), s.store, prefix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

// tree returns the whole bucket folded into a folder hierarchy.
func (s *Server) tree(c *gin.Context) {
	root, err := browse.Tree(c.Request.Context(), s.store)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, root)
}

// downloadFolderDirect streams a prefix as a ZIP straight to the
// response, without a task. Kept for compatibility with clients that
// never adopted the task API; no progress and no server-side artifact.
func (s *Server) downloadFolderDirect(c *gin.Context) {
	prefix := strings.TrimPrefix(c.Param("path"), "/")

	filename := path.Base(strings.TrimSuffix(prefix, "/"))
	if filename == "" || filename == "." {
		filename = "download"
	}
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".zip"))

	err := s.orch.StreamFolder(c.Request.Context(), prefix, c.Writer)
	if err != nil && !c.Writer.Written() {
		status := http.StatusInternalServerError
		if errors.Is(err, download.ErrEmptyFolder) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		// Headers already sent; the truncated body is all we can
		// signal. Log and let the client's unzip fail.
		s.log.Error().Str("prefix", prefix).Err(err).Msg("direct folder download aborted mid-stream")
	}
}
