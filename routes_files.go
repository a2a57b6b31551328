package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"therapy-cards/config"
	"therapy-cards/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func setupTemplateRoutes(rg *gin.RouterGroup, log *zap.Logger) {
	rg.GET("/template", func(c *gin.Context) {
		data, err := services.BuildTemplate()
		if err != nil {
			log.Error("Vorlage konnte nicht erzeugt werden", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build template"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, services.TemplateFilename))
		c.Data(http.StatusOK, xlsxContentType, data)
	})
}

func setupFileRoutes(rg *gin.RouterGroup, cfg *config.Config, importer *services.Importer, log *zap.Logger) {
	rg.POST("/upload", func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.MaxUploadBytes)

		fh, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
			return
		}
		if strings.TrimSpace(fh.Filename) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no file selected"})
			return
		}
		if !services.SupportedUpload(fh.Filename) {
			c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrUnsupportedFormat.Error()})
			return
		}

		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
			return
		}

		file, err := importer.Upload(c.Request.Context(), currentOwner(c), fh.Filename, data)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":  "file uploaded",
			"file_id":  file.ID,
			"filename": file.Filename,
			"size":     file.Size,
		})
	})

	generate := func(c *gin.Context) {
		var req struct {
			FileID string `json:"file_id" form:"file_id"`
		}
		if err := c.ShouldBind(&req); err != nil || strings.TrimSpace(req.FileID) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file_id is required"})
			return
		}

		report, err := importer.Generate(c.Request.Context(), currentOwner(c), strings.TrimSpace(req.FileID))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":       fmt.Sprintf("generated %d cards", report.CardsCreated),
			"cards_created": report.CardsCreated,
			"rows_failed":   report.RowsFailed,
			"warnings":      report.Warnings,
			"card_ids":      report.CardIDs,
		})
	}
	rg.POST("/cards/generate", generate)
	rg.POST("/generate-card", generate)
}
