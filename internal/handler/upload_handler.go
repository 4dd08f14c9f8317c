package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/book-market-backend/internal/service"
)

type UploadHandler struct {
	svc service.MediaService
}

func NewUploadHandler(svc service.MediaService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

type UploadURLsResponse struct {
	URLs map[string]string `json:"urls"`
}

type UploadURLResponse struct {
	URL string `json:"url"`
}

func (h *UploadHandler) BookImages(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "no files uploaded")
	}
	files := make(map[string]service.ImageFile, len(service.BookImageFields))
	for _, field := range service.BookImageFields {
		headers := form.File[field]
		if len(headers) == 0 {
			continue
		}
		f, closeFn, err := openImage(headers[0])
		if err != nil {
			return badRequest(c, "unreadable "+field+" image")
		}
		defer closeFn()
		files[field] = f
	}
	urls, err := h.svc.UploadBookImages(c.Request().Context(), currentUID(c), files)
	if err != nil {
		return writeError(c, err, "error uploading images")
	}
	return c.JSON(http.StatusOK, UploadURLsResponse{URLs: urls})
}

func (h *UploadHandler) Profile(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return badRequest(c, "image file is required")
		}
		return badRequest(c, "invalid multipart form")
	}
	f, closeFn, err := openImage(fh)
	if err != nil {
		return badRequest(c, "unreadable image")
	}
	defer closeFn()
	url, err := h.svc.UploadProfileImage(c.Request().Context(), &f)
	if err != nil {
		return writeError(c, err, "error uploading profile image")
	}
	return c.JSON(http.StatusOK, UploadURLResponse{URL: url})
}

func openImage(fh *multipart.FileHeader) (service.ImageFile, func(), error) {
	src, err := fh.Open()
	if err != nil {
		return service.ImageFile{}, func() {}, err
	}
	return service.ImageFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        io.Reader(src),
	}, func() { _ = src.Close() }, nil
}
