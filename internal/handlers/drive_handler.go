package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/damacus/iron-drive/internal/logging"
	"github.com/damacus/iron-drive/internal/models"
	"github.com/damacus/iron-drive/internal/store"
	"github.com/damacus/iron-drive/internal/workspace"
	"github.com/labstack/echo/v4"
)

// DriveHandler exposes the per-session workspace over JSON
type DriveHandler struct {
	registry *Registry
}

func NewDriveHandler(registry *Registry) *DriveHandler {
	return &DriveHandler{registry: registry}
}

// Register mounts the drive routes on g
func (h *DriveHandler) Register(g *echo.Group) {
	g.GET("/drive", h.View)
	g.POST("/drive/refresh", h.Refresh)
	g.POST("/drive/open", h.OpenFolder)
	g.POST("/drive/root", h.GoRoot)

	g.POST("/folders", h.CreateFolder)
	g.DELETE("/folders", h.DeleteFolder)
	g.POST("/folders/:id/trash", h.StageFolder)

	g.POST("/upload", h.Upload)
	g.GET("/upload", h.UploadStatus)

	g.POST("/files/:id/favorite", h.ToggleFavorite)
	g.POST("/files/:id/trash", h.StageFile)
	g.DELETE("/files/:id", h.DeleteFile)
	g.GET("/files/:id/download", h.Download)

	g.POST("/trash/files/:id/restore", h.RestoreFile)
	g.POST("/trash/folders/:id/restore", h.RestoreFolder)
	g.DELETE("/trash/files/:id", h.PurgeFile)
	g.DELETE("/trash/folders/:id", h.PurgeFolder)

	g.POST("/clear", h.ClearAll)
	g.GET("/notifications", h.Notifications)
	g.DELETE("/notifications/:id", h.DismissNotification)
	g.GET("/storage", h.Storage)
}

func (h *DriveHandler) workspace(c echo.Context) (*workspace.Workspace, error) {
	sess, err := GetSession(c)
	if err != nil {
		return nil, err
	}
	return h.registry.Get(*sess), nil
}

func (h *DriveHandler) view(c echo.Context, w *workspace.Workspace) error {
	return c.JSON(http.StatusOK, w.View())
}

// View applies section, search and view mode from the query and returns the derived view
func (h *DriveHandler) View(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}

	q := c.QueryParams()
	if q.Has("section") {
		w.SetSection(models.ParseSection(q.Get("section")))
	}
	if q.Has("q") {
		w.SetSearch(q.Get("q"))
	}
	if q.Has("view") {
		w.SetViewMode(models.ParseViewMode(q.Get("view")))
	}

	if !w.Loaded() {
		// A failed first load is already surfaced as a notification.
		_ = w.Refresh(c.Request().Context())
	}
	return h.view(c, w)
}

func (h *DriveHandler) Refresh(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}
	if err := w.Refresh(c.Request().Context()); err != nil {
		return toHTTPError(err)
	}
	return h.view(c, w)
}

type openRequest struct {
	Path string `json:"path" form:"path"`
}

func (h *DriveHandler) OpenFolder(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}

	var req openRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}
	if err := w.OpenFolder(c.Request().Context(), req.Path); err != nil {
		return toHTTPError(err)
	}
	return h.view(c, w)
}

func (h *DriveHandler) GoRoot(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}
	if err := w.GoRoot(c.Request().Context()); err != nil {
		return toHTTPError(err)
	}
	return h.view(c, w)
}

type folderRequest struct {
	Name string `json:"name" form:"name"`
}

// CreateFolder creates a folder under the open path
func (h *DriveHandler) CreateFolder(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}

	var req folderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}
	folder, err := w.CreateFolder(c.Request().Context(), req.Name)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, folder)
}

// DeleteFolder removes the folder at ?path= and everything below it
func (h *DriveHandler) DeleteFolder(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}

	path := c.QueryParam("path")
	if path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Folder path is required")
	}
	if err := w.DeleteFolder(c.Request().Context(), path); err != nil {
		return toHTTPError(err)
	}
	return h.view(c, w)
}

// Upload buffers the multipart files and starts a background upload
func (h *DriveHandler) Upload(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No files uploaded")
	}

	headers := form.File["files"]
	files := make([]store.UploadFile, 0, len(headers))
	for _, fh := range headers {
		src, err := fh.Open()
		if err != nil {
			return err
		}
		data, err := io.ReadAll(src)
		_ = src.Close()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Failed to read upload")
		}
		files = append(files, store.BytesFile(fh.Filename, fh.Header.Get(echo.HeaderContentType), data))
	}

	// The request context ends with this response; the upload outlives it.
	if err := w.StartUpload(context.Background(), files); err != nil {
		return toHTTPError(err)
	}
	logging.L().Debug("upload started", logging.Int("files", len(files)), logging.String("path", w.Path()))
	return c.JSON(http.StatusAccepted, w.UploadStatus())
}

func (h *DriveHandler) UploadStatus(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w.UploadStatus())
}

func (h *DriveHandler) ToggleFavorite(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}
	fav := w.ToggleFavorite(c.Param("id"))
	return c.JSON(http.StatusOK, map[string]bool{"favorite": fav})
}

func found(ok bool) error {
	if !ok {
		return toHTTPError(workspace.ErrUnknownEntity)
	}
	return nil
}

func (h *DriveHandler) StageFile(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}
	if err := found(w.StageFile(c.Param("id"))); err != nil {
		return err
	}
	return h.view(c, w)
}

func (h *DriveHandler) StageFolder(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}
	if err := found(w.StageFolder(c.Param("id"))); err != nil {
		return err
	}
	return h.view(c, w)
}

func (h *DriveHandler) RestoreFile(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}
	if err := found(w.RestoreFile(c.Param("id"))); err != nil {
		return err
	}
	return h.view(c, w)
}

func (h *DriveHandler) RestoreFolder(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}
	if err := found(w.RestoreFolder(c.Param("id"))); err != nil {
		return err
	}
	return h.view(c, w)
}

// PurgeFile deletes a trashed file from the store
func (h *DriveHandler) PurgeFile(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}
	if err := w.PurgeFile(c.Request().Context(), c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return h.view(c, w)
}

// PurgeFolder forgets a trashed folder. Nothing is removed remotely.
func (h *DriveHandler) PurgeFolder(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}
	if err := found(w.PurgeFolder(c.Param("id"))); err != nil {
		return err
	}
	return h.view(c, w)
}

func (h *DriveHandler) DeleteFile(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}
	if err := w.DeleteFile(c.Request().Context(), c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return h.view(c, w)
}

// Download streams the file contents as an attachment
func (h *DriveHandler) Download(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}

	body, file, err := w.Download(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	defer func() { _ = body.Close() }()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	if file.SizeBytes > 0 {
		c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(file.SizeBytes, 10))
	}
	return c.Stream(http.StatusOK, echo.MIMEOctetStream, body)
}

func (h *DriveHandler) ClearAll(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}
	if err := w.ClearAll(c.Request().Context()); err != nil {
		return toHTTPError(err)
	}
	return h.view(c, w)
}

func (h *DriveHandler) Notifications(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w.Notifications())
}

func (h *DriveHandler) DismissNotification(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification id")
	}
	if !w.DismissNotification(id) {
		return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *DriveHandler) Storage(c echo.Context) error {
	w, err := h.workspace(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w.Storage())
}
