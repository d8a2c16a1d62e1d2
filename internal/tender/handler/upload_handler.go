package handler

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/johnsondatabase/tender-sub001/internal/tender/entity"
)

// UploadHandler stores tender attachments in object storage and returns the
// {name, url, type, size} shape the editor keeps on AttachedFiles.
type UploadHandler struct {
	minioClient *minio.Client
	bucketName  string
}

func NewUploadHandler(minioClient *minio.Client, bucketName string) *UploadHandler {
	return &UploadHandler{minioClient: minioClient, bucketName: bucketName}
}

// Upload handles one or more multipart files.
// POST /api/v1/upload
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.minioClient == nil {
		InternalError(c, "object storage is not configured")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		BadRequest(c, "cannot parse upload: "+err.Error())
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		BadRequest(c, "no files uploaded")
		return
	}

	ctx := c.Request.Context()
	now := time.Now()
	var uploaded []entity.AttachedFile

	for _, fileHeader := range files {
		src, err := fileHeader.Open()
		if err != nil {
			InternalError(c, "read upload failed: "+err.Error())
			return
		}

		contentType := fileHeader.Header.Get("Content-Type")
		objectName := fmt.Sprintf("tenders/%d/%02d/%s%s",
			now.Year(), now.Month(), uuid.New().String()[:32], filepath.Ext(fileHeader.Filename))

		_, err = h.minioClient.PutObject(ctx, h.bucketName, objectName, src, fileHeader.Size, minio.PutObjectOptions{
			ContentType: contentType,
		})
		src.Close()
		if err != nil {
			InternalError(c, "store upload failed: "+err.Error())
			return
		}

		uploaded = append(uploaded, entity.AttachedFile{
			Name: fileHeader.Filename,
			URL:  fmt.Sprintf("/%s/%s", h.bucketName, objectName),
			Type: contentType,
			Size: fileHeader.Size,
		})
	}

	Success(c, uploaded)
}
