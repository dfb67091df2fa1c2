package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vitebski/sql-er-diagram/internal/apperrors"
	"github.com/vitebski/sql-er-diagram/internal/generator"
	"github.com/vitebski/sql-er-diagram/internal/service"
)

const drawioFilename = "er_diagram.drawio"

// diagramForm holds the fields shared by every diagram endpoint
type diagramForm struct {
	SQL         string `form:"sql" json:"sql"`
	ShowType    string `form:"show_type" json:"show_type"`
	TableRadius string `form:"table_radius" json:"table_radius"`
	FieldRadius string `form:"field_radius" json:"field_radius"`
	Table       string `form:"table" json:"table"`
}

var imageContentTypes = map[string]string{
	"png":  "image/png",
	"svg":  "image/svg+xml",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"pdf":  "application/pdf",
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// example serves the built-in schema used to prefill the input box
func (s *Server) example(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sql": generator.ExampleSQL})
}

// generate handles POST /generate
func (s *Server) generate(c *gin.Context) {
	req, ok := s.bindRequest(c)
	if !ok {
		return
	}

	image, err := s.Service.RenderImage(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Data(http.StatusOK, s.imageContentType(), image)
}

// exportDrawio handles POST /export-drawio
func (s *Server) exportDrawio(c *gin.Context) {
	req, ok := s.bindRequest(c)
	if !ok {
		return
	}

	doc, err := s.Service.ExportDrawio(req)
	if err != nil {
		s.fail(c, err)
		return
	}

	if c.Query("download") == "true" {
		c.Header("Content-Disposition", `attachment; filename="`+drawioFilename+`"`)
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(doc))
}

// tables handles POST /tables
func (s *Server) tables(c *gin.Context) {
	var form diagramForm
	if err := c.ShouldBind(&form); err != nil {
		s.fail(c, err)
		return
	}

	names, err := s.Service.Tables(form.SQL)
	if err != nil {
		s.fail(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"tables": names})
}

func (s *Server) bindRequest(c *gin.Context) (service.Request, bool) {
	var form diagramForm
	if err := c.ShouldBind(&form); err != nil {
		s.fail(c, err)
		return service.Request{}, false
	}

	if form.ShowType == "" && s.Defaults.ShowType {
		form.ShowType = "true"
	}
	if strings.TrimSpace(form.TableRadius) == "" {
		form.TableRadius = strconv.FormatFloat(s.Defaults.TableRadius, 'g', -1, 64)
	}
	if strings.TrimSpace(form.FieldRadius) == "" {
		form.FieldRadius = strconv.FormatFloat(s.Defaults.FieldRadius, 'g', -1, 64)
	}

	params, err := service.ParseParams(form.ShowType, form.TableRadius, form.FieldRadius)
	if err != nil {
		s.fail(c, err)
		return service.Request{}, false
	}

	return service.Request{SQL: form.SQL, Table: strings.TrimSpace(form.Table), Params: params}, true
}

func (s *Server) imageContentType() string {
	if ct, ok := imageContentTypes[strings.ToLower(s.Config.Graphviz.Format)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// fail writes {"error": message} with a status matching the error kind
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, apperrors.ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrEmptyInput), errors.Is(err, apperrors.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrRender):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
