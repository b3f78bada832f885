package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraops-io/terraops/internal/health"
	"github.com/terraops-io/terraops/internal/inspect"
	"github.com/terraops-io/terraops/internal/mutate"
	"github.com/terraops-io/terraops/internal/ops"
	"github.com/terraops-io/terraops/internal/runner"
	"github.com/terraops-io/terraops/internal/state"
	"github.com/terraops-io/terraops/internal/status"
	"github.com/terraops-io/terraops/internal/store"
)

type fakeDispatcher struct {
	handle *ops.Handle
	err    error
	req    ops.Request
}

func (f *fakeDispatcher) Dispatch(_ context.Context, req ops.Request) (*ops.Handle, error) {
	f.req = req
	return f.handle, f.err
}

type fakeTracker struct {
	report *status.Report
	err    error
}

func (f *fakeTracker) Status(context.Context, string, status.CheckType) (*status.Report, error) {
	return f.report, f.err
}

type fakeMutator struct {
	result *mutate.Result
	err    error
}

func (f *fakeMutator) Modify(context.Context, mutate.Request) (*mutate.Result, error) {
	return f.result, f.err
}

type fakeHealth struct {
	report *health.Report
	suite  health.Suite
}

func (f *fakeHealth) RunSuite(_ context.Context, suite health.Suite, _ health.Targets) (*health.Report, error) {
	f.suite = suite
	return f.report, nil
}

type fakeFiles struct {
	files []store.SourceFile
	err   error
}

func (f *fakeFiles) ReadSourceFiles(context.Context, string) ([]store.SourceFile, int, error) {
	return f.files, 0, f.err
}

type fakeInventory struct {
	report *inspect.Report
	err    error
}

func (f *fakeInventory) Deployed(context.Context, string) (*inspect.Report, error) {
	return f.report, f.err
}

func testRouter(deps Deps) http.Handler {
	if deps.Dispatcher == nil {
		deps.Dispatcher = &fakeDispatcher{}
	}
	if deps.Tracker == nil {
		deps.Tracker = &fakeTracker{report: &status.Report{Status: state.StatusNotDeployed}}
	}
	if deps.Mutator == nil {
		deps.Mutator = &fakeMutator{result: &mutate.Result{Status: "success"}}
	}
	if deps.Health == nil {
		deps.Health = &fakeHealth{report: &health.Report{Status: "PASSED"}}
	}
	if deps.Files == nil {
		deps.Files = &fakeFiles{}
	}
	if deps.Inventory == nil {
		deps.Inventory = &fakeInventory{report: &inspect.Report{Status: "deployed"}}
	}
	return New(deps)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := do(t, testRouter(Deps{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOperations_Accepted(t *testing.T) {
	d := &fakeDispatcher{handle: &ops.Handle{
		ExecutionID: "tf-plan-1a2b3c4d", BuildID: "p:1", Operation: ops.OpPlan, Status: "IN_PROGRESS",
	}}
	w := do(t, testRouter(Deps{Dispatcher: d}), http.MethodPost, "/v1/operations",
		`{"operation": "plan", "variables": {"region": "us-west-2"}}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, ops.OpPlan, d.req.Operation)
	assert.Equal(t, "us-west-2", d.req.Variables["region"])

	var handle ops.Handle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &handle))
	assert.Equal(t, "tf-plan-1a2b3c4d", handle.ExecutionID)
}

func TestOperations_ErrorMapping(t *testing.T) {
	cases := []struct {
		kind ops.RejectionKind
		code int
	}{
		{ops.KindInvalidOperation, http.StatusBadRequest},
		{ops.KindConfirmationRequired, http.StatusBadRequest},
		{ops.KindNotFound, http.StatusNotFound},
		{ops.KindLockConflict, http.StatusConflict},
		{ops.KindLaunchFailure, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			d := &fakeDispatcher{err: &ops.Rejection{Kind: tc.kind, Message: "nope"}}
			w := do(t, testRouter(Deps{Dispatcher: d}), http.MethodPost, "/v1/operations",
				`{"operation": "apply"}`)

			assert.Equal(t, tc.code, w.Code)
			var body struct {
				Kind      ops.RejectionKind `json:"kind"`
				Retryable bool              `json:"retryable"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.kind, body.Kind)
		})
	}
}

func TestOperations_MalformedBody(t *testing.T) {
	w := do(t, testRouter(Deps{}), http.MethodPost, "/v1/operations", `{"operation": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatus_InvalidCheckType(t *testing.T) {
	w := do(t, testRouter(Deps{}), http.MethodGet, "/v1/status?check_type=everything", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatus_UnknownBuild(t *testing.T) {
	tr := &fakeTracker{err: runner.ErrBuildNotFound}
	w := do(t, testRouter(Deps{Tracker: tr}), http.MethodGet, "/v1/status?build_id=p:404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatus_MissingOutputs(t *testing.T) {
	tr := &fakeTracker{err: status.ErrOutputsNotFound}
	w := do(t, testRouter(Deps{Tracker: tr}), http.MethodGet, "/v1/status?check_type=outputs", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatus_OK(t *testing.T) {
	tr := &fakeTracker{report: &status.Report{Status: state.StatusDeployed, CheckType: status.CheckAll}}
	w := do(t, testRouter(Deps{Tracker: tr}), http.MethodGet, "/v1/status", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), state.StatusDeployed)
}

func TestModify_InvalidRequest(t *testing.T) {
	m := &fakeMutator{err: &ops.Rejection{Kind: ops.KindInvalidRequest, Message: "no changes provided"}}
	w := do(t, testRouter(Deps{Mutator: m}), http.MethodPost, "/v1/modify", `{"changes": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTests_SuiteForwarded(t *testing.T) {
	h := &fakeHealth{report: &health.Report{Status: "PASSED", Suite: health.SuiteVPN}}
	w := do(t, testRouter(Deps{Health: h}), http.MethodPost, "/v1/tests", `{"test_suite": "vpn"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, health.SuiteVPN, h.suite)
}

func TestTests_InvalidSuite(t *testing.T) {
	w := do(t, testRouter(Deps{}), http.MethodPost, "/v1/tests", `{"test_suite": "smoke"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFiles(t *testing.T) {
	f := &fakeFiles{files: []store.SourceFile{{Name: "main.tf", Path: "terraform/main.tf"}}}
	w := do(t, testRouter(Deps{Files: f}), http.MethodGet, "/v1/files", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "main.tf")
}

func TestResources_InternalError(t *testing.T) {
	inv := &fakeInventory{err: errors.New("UnauthorizedOperation")}
	w := do(t, testRouter(Deps{Inventory: inv}), http.MethodGet, "/v1/resources", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
