package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/terraops-io/terraops/internal/health"
	"github.com/terraops-io/terraops/internal/mutate"
	"github.com/terraops-io/terraops/internal/ops"
	"github.com/terraops-io/terraops/internal/status"
)

func handleOperations(dispatcher OperationDispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ops.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"kind": ops.KindInvalidRequest, "error": err.Error()})
			return
		}
		handle, err := dispatcher.Dispatch(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, handle)
	}
}

func handleStatus(tracker StatusTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		check, err := status.ParseCheckType(c.Query("check_type"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"kind": ops.KindInvalidRequest, "error": err.Error()})
			return
		}
		report, err := tracker.Status(c.Request.Context(), c.Query("build_id"), check)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func handleModify(mutator CodeMutator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req mutate.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"kind": ops.KindInvalidRequest, "error": err.Error()})
			return
		}
		result, err := mutator.Modify(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

type testsRequest struct {
	TestSuite string         `json:"test_suite"`
	Targets   health.Targets `json:"targets,omitempty"`
}

func handleTests(runner TestRunner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req testsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"kind": ops.KindInvalidRequest, "error": err.Error()})
			return
		}
		suite, err := health.ParseSuite(req.TestSuite)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"kind": ops.KindInvalidRequest, "error": err.Error()})
			return
		}
		report, err := runner.RunSuite(c.Request.Context(), suite, req.Targets)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func handleFiles(files SourceReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		prefix := c.DefaultQuery("prefix", "terraform/")
		list, total, err := files.ReadSourceFiles(c.Request.Context(), prefix)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"files":            list,
			"count":            len(list),
			"total_size_bytes": total,
			"prefix":           prefix,
		})
	}
}

func handleResources(inventory ResourceLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := inventory.Deployed(c.Request.Context(), c.Query("type"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}
