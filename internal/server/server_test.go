package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/birracraft/internal/auth/domain"
	"github.com/smallbiznis/birracraft/internal/authorization"
	"github.com/smallbiznis/birracraft/internal/config"
	containersvc "github.com/smallbiznis/birracraft/internal/container/service"
	customersvc "github.com/smallbiznis/birracraft/internal/customer/service"
	flavoursvc "github.com/smallbiznis/birracraft/internal/flavour/service"
	orderrepo "github.com/smallbiznis/birracraft/internal/order/repository"
	ordersvc "github.com/smallbiznis/birracraft/internal/order/service"
	paymentrepo "github.com/smallbiznis/birracraft/internal/payment/repository"
	paymentsvc "github.com/smallbiznis/birracraft/internal/payment/service"
	productrepo "github.com/smallbiznis/birracraft/internal/product/repository"
	productsvc "github.com/smallbiznis/birracraft/internal/product/service"
	quotarepo "github.com/smallbiznis/birracraft/internal/quota/repository"
	quotasvc "github.com/smallbiznis/birracraft/internal/quota/service"
	reportdomain "github.com/smallbiznis/birracraft/internal/report/domain"
	"github.com/smallbiznis/birracraft/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAccessToken = "access-token"

// fakeAuthService accepts testAccessToken only. Methods not overridden
// panic through the nil embedded interface.
type fakeAuthService struct {
	authdomain.Service
	user       *authdomain.User
	activated  []string
	issued     []authdomain.TokenRequest
	resetValid bool
}

func (f *fakeAuthService) Authenticate(_ context.Context, raw string) (*authdomain.User, error) {
	if raw != testAccessToken {
		return nil, authdomain.ErrInvalidSession
	}
	return f.user, nil
}

func (f *fakeAuthService) IssueTokens(_ context.Context, req authdomain.TokenRequest) (*authdomain.TokenPair, error) {
	if req.Password != "cerveza-roja" {
		return nil, authdomain.ErrInvalidCredentials
	}
	f.issued = append(f.issued, req)
	return &authdomain.TokenPair{Access: testAccessToken, Refresh: "refresh-token"}, nil
}

func (f *fakeAuthService) Refresh(_ context.Context, raw string) (*authdomain.TokenPair, error) {
	if raw != "refresh-token" {
		return nil, authdomain.ErrSessionExpired
	}
	return &authdomain.TokenPair{Access: "access-2", Refresh: "refresh-2"}, nil
}

func (f *fakeAuthService) Activate(_ context.Context, uid, token string) error {
	if token != "good" {
		return authdomain.ErrInvalidLink
	}
	f.activated = append(f.activated, uid)
	return nil
}

func (f *fakeAuthService) CheckResetLink(_ context.Context, _, token string) error {
	if !f.resetValid || token != "good" {
		return authdomain.ErrInvalidLink
	}
	return nil
}

type fakeAuthorizer struct {
	denied map[string]bool
}

func (f *fakeAuthorizer) Authorize(_ context.Context, _ string, object, action string) error {
	if f.denied[object+":"+action] {
		return authorization.ErrForbidden
	}
	return nil
}

func (f *fakeAuthorizer) AssignDefaultRole(context.Context, string) error { return nil }

func (f *fakeAuthorizer) RemoveUser(context.Context, string) error { return nil }

type fakeReportService struct {
	requests []reportdomain.Request
	err      error
}

func (f *fakeReportService) Request(_ context.Context, req reportdomain.Request) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.requests = append(f.requests, req)
	return "01HZX", nil
}

type testServer struct {
	engine *gin.Engine
	seed   *testutil.Seeder
	auth   *fakeAuthService
	authz  *fakeAuthorizer
	report *fakeReportService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn := testutil.NewDB(t)
	node := testutil.NewNode(t)
	log := zap.NewNop()

	ts := &testServer{
		seed: testutil.NewSeeder(t, conn, node),
		auth: &fakeAuthService{user: &authdomain.User{
			ID:       snowflake.ID(4200),
			Username: "ana",
			Email:    "ana@birracraft.test",
			IsActive: true,
		}},
		authz:  &fakeAuthorizer{denied: map[string]bool{}},
		report: &fakeReportService{},
	}

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	NewServer(ServerParams{
		Gin:          engine,
		Cfg:          config.Config{FrontendURL: "http://front.test"},
		Log:          log,
		Authsvc:      ts.auth,
		AuthzSvc:     ts.authz,
		CustomerSvc:  customersvc.New(customersvc.Params{DB: conn, Log: log, GenID: node}),
		ContainerSvc: containersvc.New(containersvc.Params{DB: conn, Log: log, GenID: node}),
		FlavourSvc:   flavoursvc.New(flavoursvc.Params{DB: conn, Log: log, GenID: node}),
		ProductSvc:   productsvc.New(productsvc.Params{DB: conn, Log: log, GenID: node, Repo: productrepo.Provide()}),
		OrderSvc:     ordersvc.New(ordersvc.Params{DB: conn, Log: log, GenID: node, Repo: orderrepo.Provide()}),
		PaymentSvc:   paymentsvc.New(paymentsvc.Params{DB: conn, Log: log, GenID: node, Repo: paymentrepo.Provide()}),
		QuotaSvc:     quotasvc.New(quotasvc.Params{DB: conn, Log: log, GenID: node, Repo: quotarepo.Provide()}),
		ReportSvc:    ts.report,
	})
	ts.engine = engine
	return ts
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	return ts.send(method, path, body, testAccessToken)
}

func (ts *testServer) send(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, _ := json.Marshal(v)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestProtectedRoutesRequireBearerToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.send(http.MethodGet, "/api/customer", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.send(http.MethodGet, "/api/customer", nil, "stale")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode[errorResponse](t, rec)
	require.Equal(t, "unauthorized", body.Error.Type)
}

func TestPermissionDenied(t *testing.T) {
	ts := newTestServer(t)
	ts.authz.denied["customer:delete"] = true
	customer := ts.seed.Customer("Juan")

	rec := ts.do(http.MethodDelete, "/api/customer/"+customer.ID.String(), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodGet, "/api/customer/"+customer.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMapErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{authdomain.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized"},
		{authdomain.ErrUserExists, http.StatusConflict, "conflict"},
		{authdomain.ErrUserNotFound, http.StatusNotFound, "not_found"},
		{authdomain.ErrInvalidEmail, http.StatusBadRequest, "validation_error"},
		{authorization.ErrForbidden, http.StatusForbidden, "forbidden"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		status, payload := mapError(tc.err)
		require.Equal(t, tc.status, status, tc.err.Error())
		require.Equal(t, tc.kind, payload.Type, tc.err.Error())
	}

	kind, code := classifyErrorForLog(authdomain.ErrInvalidEmail)
	require.Equal(t, "validation_error", kind)
	require.Equal(t, "invalid_email", code)
}
