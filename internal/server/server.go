// Package server exposes the orchestrator to the conversational gateway
// over HTTP. The handlers are thin: validation and semantics live in the
// ops/status/mutate/health packages; this layer maps requests in and the
// error taxonomy onto status codes.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/terraops-io/terraops/internal/health"
	"github.com/terraops-io/terraops/internal/inspect"
	"github.com/terraops-io/terraops/internal/logging"
	"github.com/terraops-io/terraops/internal/mutate"
	"github.com/terraops-io/terraops/internal/ops"
	"github.com/terraops-io/terraops/internal/runner"
	"github.com/terraops-io/terraops/internal/status"
	"github.com/terraops-io/terraops/internal/store"
)

// Deps are the orchestrator components the handlers call. Each is an
// interface so handler tests can run against fakes.
type Deps struct {
	Dispatcher OperationDispatcher
	Tracker    StatusTracker
	Mutator    CodeMutator
	Health     TestRunner
	Files      SourceReader
	Inventory  ResourceLister
}

type OperationDispatcher interface {
	Dispatch(ctx context.Context, req ops.Request) (*ops.Handle, error)
}

type StatusTracker interface {
	Status(ctx context.Context, buildID string, check status.CheckType) (*status.Report, error)
}

type CodeMutator interface {
	Modify(ctx context.Context, req mutate.Request) (*mutate.Result, error)
}

type TestRunner interface {
	RunSuite(ctx context.Context, suite health.Suite, targets health.Targets) (*health.Report, error)
}

type SourceReader interface {
	ReadSourceFiles(ctx context.Context, prefix string) ([]store.SourceFile, int, error)
}

type ResourceLister interface {
	Deployed(ctx context.Context, filter string) (*inspect.Report, error)
}

// New builds the HTTP router.
func New(deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	v1.POST("/operations", handleOperations(deps.Dispatcher))
	v1.GET("/status", handleStatus(deps.Tracker))
	v1.POST("/modify", handleModify(deps.Mutator))
	v1.POST("/tests", handleTests(deps.Health))
	v1.GET("/files", handleFiles(deps.Files))
	v1.GET("/resources", handleResources(deps.Inventory))

	return router
}

func requestLogger() gin.HandlerFunc {
	log := logging.With("gateway")
	return func(c *gin.Context) {
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status())
	}
}

// writeError maps the error taxonomy onto HTTP codes, always carrying the
// stable machine-readable kind.
func writeError(c *gin.Context, err error) {
	if rej, ok := ops.AsRejection(err); ok {
		code := http.StatusBadRequest
		switch rej.Kind {
		case ops.KindNotFound:
			code = http.StatusNotFound
		case ops.KindLockConflict:
			code = http.StatusConflict
		case ops.KindLaunchFailure:
			code = http.StatusBadGateway
		}
		c.JSON(code, gin.H{
			"kind":      rej.Kind,
			"error":     rej.Message,
			"retryable": rej.Retryable(),
		})
		return
	}
	if errors.Is(err, runner.ErrBuildNotFound) || errors.Is(err, status.ErrOutputsNotFound) || errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"kind": ops.KindNotFound, "error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
