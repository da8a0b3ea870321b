package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/ali01/graphd/internal/auth"
	"github.com/ali01/graphd/internal/config"
	"github.com/ali01/graphd/internal/core/types"
	"github.com/ali01/graphd/internal/index"
	"github.com/ali01/graphd/internal/metadata"
	"github.com/ali01/graphd/internal/query"
	"github.com/ali01/graphd/internal/query/executor"
	"github.com/ali01/graphd/internal/query/planner"
	"github.com/ali01/graphd/internal/schema"
	"github.com/ali01/graphd/internal/session"
	"github.com/ali01/graphd/internal/storage"
)

// Engine bundles every long-lived manager the admin surface drives. It
// plays the role the teacher's *service.VaultService did for cmd/server:
// one struct gin handlers close over instead of each wiring its own
// dependencies.
type Engine struct {
	Ctx           context.Context
	Config        *config.Config
	Log           *logrus.Logger
	Schema        *schema.Manager
	Metadata      *metadata.Manager
	Index         *index.Manager
	Storage       storage.StorageClient
	Sessions      *session.Manager
	Queries       *query.Manager
	Authenticator *auth.PasswordAuthenticator
}

var validate = validator.New()

// execContext builds an executor.Context bound to the named space for one
// admin-surface request.
func (e *Engine) execContext(space string) *executor.Context {
	return &executor.Context{
		Ctx:      e.Ctx,
		Space:    space,
		Schema:   e.Schema,
		Metadata: e.Metadata,
		Index:    e.Index,
		Storage:  e.Storage,
	}
}

func runAdmin(c *gin.Context, ectx *executor.Context, node *planner.Node) {
	ex := executor.NewAdminExecutor(node, ectx)
	if err := ex.Open(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer func() { _ = ex.Close() }()

	res, err := ex.Execute(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": res.Columns, "rows": formatRows(res)})
}

func formatRows(res executor.ExecutionResult) [][]string {
	out := make([][]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		r := make([]string, len(row))
		for i, v := range row {
			r[i] = v.String()
		}
		out = append(out, r)
	}
	return out
}

// CreateSpaceRequest is the DDL payload for POST /spaces, struct-tag
// validated before it ever reaches the planner — the same
// validate-then-build shape the teacher's API layer used for vault
// entities.
type CreateSpaceRequest struct {
	Name    string `json:"name" validate:"required,alphanum"`
	VIDType string `json:"vid_type" validate:"required,oneof=int string"`
	Comment string `json:"comment"`
}

// CreateTagRequest is the DDL payload for POST /spaces/:space/tags.
type CreateTagRequest struct {
	Name       string               `json:"name" validate:"required,alphanum"`
	Properties []PropertyDefRequest `json:"properties" validate:"dive"`
}

// PropertyDefRequest is one field definition within a CreateTagRequest.
type PropertyDefRequest struct {
	Name     string `json:"name" validate:"required"`
	DataType string `json:"data_type" validate:"required,oneof=bool int float string timestamp"`
	Nullable bool   `json:"nullable"`
}

func (p PropertyDefRequest) toPropertyDef() types.PropertyDef {
	var dt types.DataType
	switch p.DataType {
	case "bool":
		dt = types.DataTypeBool
	case "int":
		dt = types.DataTypeInt
	case "float":
		dt = types.DataTypeFloat
	case "timestamp":
		dt = types.DataTypeDateTime
	default:
		dt = types.DataTypeString
	}
	return types.PropertyDef{Name: p.Name, DataType: dt, Nullable: p.Nullable}
}

func bindValidated(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// RegisterRoutes wires the admin HTTP surface: DDL endpoints (translated
// directly to planner nodes, since statement-level grammar is out of this
// module's scope per SPEC_FULL 4.1), plus SHOW SESSIONS / KILL QUERY
// endpoints over the session and query managers. Grounded on
// cmd/server/main.go's bootstrap shape and internal/api/routes.go's gin
// route-group layout.
func RegisterRoutes(router *gin.Engine, e *Engine) {
	router.Use(corsMiddleware())

	admin := router.Group("/api/v1/admin")
	{
		admin.GET("/health", healthCheck)

		admin.POST("/spaces", e.createSpace)
		admin.GET("/spaces", e.showSpaces)
		admin.GET("/spaces/:space", e.descSpace)
		admin.DELETE("/spaces/:space", e.dropSpace)

		admin.POST("/spaces/:space/tags", e.createTag)
		admin.GET("/spaces/:space/tags/:tag", e.descTag)

		admin.GET("/sessions", e.listSessions)
		admin.DELETE("/sessions/:id", e.killSession)

		admin.GET("/queries", e.listQueries)
		admin.GET("/queries/stats", e.queryStats)
		admin.DELETE("/queries/:id", e.killQuery)

		admin.POST("/login", e.login)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (e *Engine) createSpace(c *gin.Context) {
	var req CreateSpaceRequest
	if !bindValidated(c, &req) {
		return
	}
	vidType := types.VIDTypeInt64
	if req.VIDType == "string" {
		vidType = types.VIDTypeString
	}
	info := planner.NewSpaceManageInfo(req.Name).WithVIDType(vidType).WithComment(req.Comment)
	runAdmin(c, e.execContext(req.Name), planner.NewCreateSpace(info))
}

func (e *Engine) showSpaces(c *gin.Context) {
	runAdmin(c, e.execContext(""), planner.NewShowSpaces())
}

func (e *Engine) descSpace(c *gin.Context) {
	space := c.Param("space")
	runAdmin(c, e.execContext(space), planner.NewDescSpace(space))
}

func (e *Engine) dropSpace(c *gin.Context) {
	space := c.Param("space")
	runAdmin(c, e.execContext(space), planner.NewDropSpace(space))
}

func (e *Engine) createTag(c *gin.Context) {
	space := c.Param("space")
	var req CreateTagRequest
	if !bindValidated(c, &req) {
		return
	}
	props := make([]types.PropertyDef, 0, len(req.Properties))
	for _, p := range req.Properties {
		props = append(props, p.toPropertyDef())
	}
	info := planner.NewTagManageInfo(space, req.Name).WithProperties(props)
	runAdmin(c, e.execContext(space), planner.NewCreateTag(info))
}

func (e *Engine) descTag(c *gin.Context) {
	space, tag := c.Param("space"), c.Param("tag")
	runAdmin(c, e.execContext(space), planner.NewDescTag(space, tag))
}

func (e *Engine) listSessions(c *gin.Context) {
	c.JSON(http.StatusOK, e.Sessions.ListSessions())
}

func (e *Engine) killSession(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}
	currentUser := c.Query("as")
	isAdmin := c.Query("admin") == "true"
	if err := e.Sessions.KillSession(id, currentUser, isAdmin); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"killed": id})
}

func (e *Engine) listQueries(c *gin.Context) {
	c.JSON(http.StatusOK, e.Queries.GetAllQueries())
}

func (e *Engine) queryStats(c *gin.Context) {
	c.JSON(http.StatusOK, e.Queries.GetStats())
}

func (e *Engine) killQuery(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query id"})
		return
	}
	if err := e.Queries.KillQuery(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"killed": id})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (e *Engine) login(c *gin.Context) {
	var req loginRequest
	if !bindValidated(c, &req) {
		return
	}
	if err := e.Authenticator.Authenticate(req.Username, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	sess, err := e.Sessions.CreateSession(req.Username)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sess.ID()})
}
