package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	mw "lending-engine/internal/api/middleware"
	"lending-engine/internal/domain/client"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/report"
	"lending-engine/internal/domain/setting"
	"lending-engine/internal/domain/user"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

var testLogger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

var (
	adminActor     = user.Actor{ID: 1, Email: "admin@example.com", Role: user.RoleAdmin}
	collectorActor = user.Actor{ID: 7, Email: "cobrador@example.com", Role: user.RoleCollector}
)

// newRequest builds a request carrying chi URL params and, when actor is set, an authenticated caller.
func newRequest(method, target string, body any, params map[string]string, actor *user.Actor) *http.Request {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, _ := json.Marshal(b)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if actor != nil {
		ctx = mw.WithActor(ctx, *actor)
	}
	return req.WithContext(ctx)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) CreateLoan(ctx context.Context, in loan.CreateLoanInput) (*loan.Loan, error) {
	args := m.Called(ctx, in)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) RecordPayment(ctx context.Context, in loan.RecordPaymentInput) (*loan.PaymentReceipt, error) {
	args := m.Called(ctx, in)
	if r, ok := args.Get(0).(*loan.PaymentReceipt); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ReconcileLoan(ctx context.Context, loanID int64) (loan.LoanState, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).(loan.LoanState), args.Error(1)
}

func (m *MockLoanService) GetLoan(ctx context.Context, loanID int64, actor user.Actor) (*loan.Loan, error) {
	args := m.Called(ctx, loanID, actor)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) GetLoanSchedule(ctx context.Context, loanID int64) ([]loan.Installment, error) {
	args := m.Called(ctx, loanID)
	if s, ok := args.Get(0).([]loan.Installment); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListLoans(ctx context.Context, filter loan.ListFilter, actor user.Actor) ([]loan.Loan, error) {
	args := m.Called(ctx, filter, actor)
	if l, ok := args.Get(0).([]loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) UpdateLoan(ctx context.Context, loanID int64, patch loan.LoanPatch) (*loan.Loan, error) {
	args := m.Called(ctx, loanID, patch)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) DeleteLoan(ctx context.Context, loanID int64) error {
	return m.Called(ctx, loanID).Error(0)
}

func (m *MockLoanService) GetOutstanding(ctx context.Context, loanID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLoanService) ListPayments(ctx context.Context, loanID int64) ([]loan.Payment, error) {
	args := m.Called(ctx, loanID)
	if p, ok := args.Get(0).([]loan.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListPendingInstallments(ctx context.Context, clientID int64, actor user.Actor) ([]loan.PendingInstallment, error) {
	args := m.Called(ctx, clientID, actor)
	if p, ok := args.Get(0).([]loan.PendingInstallment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListClientsWithPending(ctx context.Context, actor user.Actor) ([]loan.ClientWithPending, error) {
	args := m.Called(ctx, actor)
	if c, ok := args.Get(0).([]loan.ClientWithPending); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(1).(*user.User)
	return args.String(0), u, args.Error(2)
}

func (m *MockUserService) Register(ctx context.Context, in user.RegisterInput) (*user.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, userID int64) (*user.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).([]user.User)
	return u, args.Error(1)
}

func (m *MockUserService) ListCollectors(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).([]user.User)
	return u, args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, userID int64, in user.UpdateInput) (*user.User, error) {
	args := m.Called(ctx, userID, in)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID int64, actor user.Actor) error {
	return m.Called(ctx, userID, actor).Error(0)
}

type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) CreateClient(ctx context.Context, c *client.Client, actor user.Actor) (*client.Client, error) {
	args := m.Called(ctx, c, actor)
	out, _ := args.Get(0).(*client.Client)
	return out, args.Error(1)
}

func (m *MockClientService) GetClient(ctx context.Context, clientID int64) (*client.Client, error) {
	args := m.Called(ctx, clientID)
	out, _ := args.Get(0).(*client.Client)
	return out, args.Error(1)
}

func (m *MockClientService) ListClients(ctx context.Context, actor user.Actor) ([]client.Client, error) {
	args := m.Called(ctx, actor)
	out, _ := args.Get(0).([]client.Client)
	return out, args.Error(1)
}

func (m *MockClientService) UpdateClient(ctx context.Context, clientID int64, patch client.ClientPatch, actor user.Actor) (*client.Client, error) {
	args := m.Called(ctx, clientID, patch, actor)
	out, _ := args.Get(0).(*client.Client)
	return out, args.Error(1)
}

func (m *MockClientService) DeleteClient(ctx context.Context, clientID int64, actor user.Actor) error {
	return m.Called(ctx, clientID, actor).Error(0)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Summary(ctx context.Context) (*report.Summary, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*report.Summary)
	return s, args.Error(1)
}

func (m *MockReportService) CollectorStats(ctx context.Context, actor user.Actor) (*report.CollectorStats, error) {
	args := m.Called(ctx, actor)
	s, _ := args.Get(0).(*report.CollectorStats)
	return s, args.Error(1)
}

func (m *MockReportService) ExportSummary(ctx context.Context) ([]byte, string, error) {
	args := m.Called(ctx)
	data, _ := args.Get(0).([]byte)
	return data, args.String(1), args.Error(2)
}

type MockSettingService struct {
	mock.Mock
}

func (m *MockSettingService) ListSettings(ctx context.Context) ([]setting.Setting, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]setting.Setting)
	return s, args.Error(1)
}

func (m *MockSettingService) GetSetting(ctx context.Context, key string) (*setting.Setting, error) {
	args := m.Called(ctx, key)
	s, _ := args.Get(0).(*setting.Setting)
	return s, args.Error(1)
}

func (m *MockSettingService) UpdateSetting(ctx context.Context, key, value string) (*setting.Setting, error) {
	args := m.Called(ctx, key, value)
	s, _ := args.Get(0).(*setting.Setting)
	return s, args.Error(1)
}
