package handlers

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kiaorakahi/marketplace/pkg/auth"
	"github.com/kiaorakahi/marketplace/pkg/config"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/middlewares"
)

const mib = 1 << 20

type uploadKind struct {
	maxBytes int64
	types    map[string]string // content type -> extension
	roles    []string          // empty means any signed-in user
}

var (
	imageTypes = map[string]string{"image/jpeg": ".jpg", "image/png": ".png", "image/webp": ".webp"}
	docTypes   = map[string]string{"image/jpeg": ".jpg", "image/png": ".png", "application/pdf": ".pdf"}
	videoTypes = map[string]string{"video/mp4": ".mp4", "video/quicktime": ".mov", "video/webm": ".webm"}
)

var uploadKinds = map[string]uploadKind{
	"profile_photo":      {maxBytes: 5 * mib, types: imageTypes},
	"id_document":        {maxBytes: 10 * mib, types: docTypes},
	"verification_video": {maxBytes: 200 * mib, types: videoTypes},
	"delivery_video":     {maxBytes: 200 * mib, types: videoTypes, roles: []string{auth.RoleCelebrity, auth.RoleAdmin}},
}

type UploadHandler struct {
	dir     string
	baseURL string
}

func NewUploadHandler(cfg config.App) *UploadHandler {
	return &UploadHandler{dir: cfg.UploadDir, baseURL: strings.TrimRight(cfg.PublicBaseURL, "/")}
}

// sniff names the content type from the leading bytes. QuickTime is checked
// by its ftyp brand because the standard sniffer does not know it.
func sniff(head []byte) string {
	if len(head) >= 12 && string(head[4:8]) == "ftyp" && string(head[8:12]) == "qt  " {
		return "video/quicktime"
	}
	ct := http.DetectContentType(head)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// POST /api/upload multipart: file, kind
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 201*mib)

	kind, ok := uploadKinds[c.PostForm("kind")]
	if !ok {
		badRequest(c, "kind must be one of profile_photo, id_document, verification_video, delivery_video")
		return
	}
	if len(kind.roles) > 0 && !hasRole(middlewares.Caller(c).Role, kind.roles) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if fh.Size > kind.maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file is too large"})
		return
	}
	src, err := fh.Open()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		badRequest(c, "file is empty")
		return
	}
	ct := sniff(head[:n])
	ext, ok := kind.types[ct]
	if !ok {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "file type " + ct + " is not allowed"})
		return
	}

	name := c.PostForm("kind")
	dir := filepath.Join(h.dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[gateway] upload mkdir: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store file"})
		return
	}
	file := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(dir, file))
	if err != nil {
		log.Printf("[gateway] upload create: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store file"})
		return
	}
	size, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head[:n]), src))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst.Name())
		log.Printf("[gateway] upload write: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store file"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"url":          h.baseURL + "/uploads/" + name + "/" + file,
		"kind":         name,
		"content_type": ct,
		"size":         size,
	})
}

func hasRole(role string, roles []string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
