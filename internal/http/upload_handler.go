package http

import (
	"encoding/base64"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"charchat/internal/storage"
)

// UploadHandler mantiene dependencias para endpoints de subida de imágenes.
type UploadHandler struct {
	logger *zap.Logger
	store  *storage.FileStore
}

func NewUploadHandler(logger *zap.Logger, store *storage.FileStore) *UploadHandler {
	return &UploadHandler{
		logger: logger,
		store:  store,
	}
}

// Image maneja POST /api/upload/image: persiste la miniatura validada.
func (h *UploadHandler) Image(c *gin.Context) {
	header, data, ok := h.readThumbnail(c)
	if !ok {
		return
	}

	stored, err := h.store.SaveImage(header.Filename, header.Header.Get("Content-Type"), header.Size, data)
	if err != nil {
		h.respondUploadError(c, err)
		return
	}
	respondData(c, http.StatusCreated, stored)
}

// Preview maneja POST /api/upload/preview: valida la imagen y la devuelve como
// data URL en base64 sin persistirla.
func (h *UploadHandler) Preview(c *gin.Context) {
	header, data, ok := h.readThumbnail(c)
	if !ok {
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if err := storage.ValidateImage(mimeType, header.Size, data); err != nil {
		h.respondUploadError(c, err)
		return
	}

	preview := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
	respondData(c, http.StatusOK, gin.H{
		"preview": preview,
		"file_info": gin.H{
			"name": header.Filename,
			"type": mimeType,
			"size": header.Size,
		},
	})
}

// DeleteImage maneja DELETE /api/upload/image. El borrado nunca falla hacia el
// cliente: los problemas se registran y se responde 200 igualmente.
func (h *UploadHandler) DeleteImage(c *gin.Context) {
	var req struct {
		Path string `json:"path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}
	h.store.Delete(req.Path)
	respondMessage(c, http.StatusOK, "image deleted")
}

func (h *UploadHandler) readThumbnail(c *gin.Context) (*multipart.FileHeader, []byte, bool) {
	header, err := c.FormFile("thumbnail")
	if err != nil {
		respondError(c, http.StatusBadRequest, "thumbnail file is required")
		return nil, nil, false
	}

	file, err := header.Open()
	if err != nil {
		h.logger.Error("open upload failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not read file")
		return nil, nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("read upload failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not read file")
		return nil, nil, false
	}
	return header, data, true
}

func (h *UploadHandler) respondUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrFileTypeNotAllowed):
		respondError(c, http.StatusBadRequest, "file type not allowed")
	case errors.Is(err, storage.ErrFileTooLarge):
		respondError(c, http.StatusBadRequest, "file exceeds the 5MB limit")
	case errors.Is(err, storage.ErrFileContentInvalid):
		respondError(c, http.StatusBadRequest, "file content does not match an allowed image type")
	default:
		h.logger.Error("store upload failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not store file")
	}
}
