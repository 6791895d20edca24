package colleges

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"referral-portal-server/handlers"
)

// UploadDir is where uploaded videos land; main serves it under /uploads.
func UploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "./uploads"
}

// UploadVideo stores the uploaded file and attaches its URL to the student.
// Re-uploading replaces the previous reference; the old file is left for
// external cleanup.
func (h *Handler) UploadVideo(c *gin.Context) {
	studentID, ok := h.ownStudent(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No video file provided"})
		return
	}
	if ct := file.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "video/") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Only video files can be uploaded"})
		return
	}

	name := uuid.NewString() + filepath.Ext(file.Filename)
	dst := filepath.Join(UploadDir(), name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		handlers.Error(c, err)
		return
	}

	assetURL := os.Getenv("PUBLIC_BASE_URL") + "/uploads/" + name

	st, err := h.Svc.AttachVideo(c.Request.Context(), studentID, assetURL)
	if err != nil {
		os.Remove(dst)
		handlers.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Video uploaded successfully.",
		"student": studentJSON(*st),
	})
}

// DeleteVideo detaches the student's video reference. The enrollment state is
// untouched.
func (h *Handler) DeleteVideo(c *gin.Context) {
	studentID, ok := h.ownStudent(c)
	if !ok {
		return
	}

	st, err := h.Svc.DetachVideo(c.Request.Context(), studentID)
	if err != nil {
		handlers.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Video deleted successfully.",
		"student": studentJSON(*st),
	})
}
