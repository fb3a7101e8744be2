package handlers

import (
	"context"
	"net/http"
	"time"

	"pumpsim"
	"pumpsim/internal/config"
	"pumpsim/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockPump struct {
	state pumpsim.PumpState
	err   error

	startCalls   int
	stopCalls    int
	levelCalls   int
	resetCalls   int
	oilCalls     int
	lastLevelArg float64
}

func (m *mockPump) Start(ctx context.Context) (pumpsim.PumpState, error) {
	m.startCalls++
	return m.state, m.err
}
func (m *mockPump) Stop(ctx context.Context) (pumpsim.PumpState, error) {
	m.stopCalls++
	return m.state, m.err
}
func (m *mockPump) SetOperatingLevel(ctx context.Context, level float64) (pumpsim.PumpState, error) {
	m.levelCalls++
	m.lastLevelArg = level
	return m.state, m.err
}
func (m *mockPump) ResetFilter(ctx context.Context) (pumpsim.PumpState, error) {
	m.resetCalls++
	return m.state, m.err
}
func (m *mockPump) ChangeOil(ctx context.Context) (pumpsim.PumpState, error) {
	m.oilCalls++
	return m.state, m.err
}

type mockMonitoring struct {
	state pumpsim.PumpState
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (pumpsim.PumpState, error) {
	return m.state, m.err
}

type mockSettings struct {
	snap       config.Snapshot
	updateErr  error
	lastUpdate config.Update
}

func (m *mockSettings) Get(ctx context.Context) config.Snapshot {
	return m.snap
}
func (m *mockSettings) Update(ctx context.Context, u config.Update) (config.Snapshot, error) {
	m.lastUpdate = u
	if m.updateErr != nil {
		return config.Snapshot{}, m.updateErr
	}
	return m.snap, nil
}

type mockEventLog struct {
	resp     []pumpsim.PumpEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]pumpsim.PumpEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
