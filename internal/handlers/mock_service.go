package handlers

import (
	"context"
	"time"

	"controlling_irrigation/internal/models"
	"controlling_irrigation/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockModes struct {
	mode      models.Mode
	getErr    error
	setErr    error
	manualErr error
	resetErr  error

	lastSet     models.ModeName
	setCalls    int
	manualCalls int
	resetCalls  int
}

func (m *mockModes) GetMode(ctx context.Context) (models.ModeName, error) {
	return m.mode.Current, m.getErr
}
func (m *mockModes) GetModeState(ctx context.Context) (models.Mode, error) {
	return m.mode, m.getErr
}
func (m *mockModes) SetMode(ctx context.Context, name models.ModeName) error {
	m.setCalls++
	m.lastSet = name
	if m.setErr != nil {
		return m.setErr
	}
	m.mode = models.NewMode(name)
	return nil
}
func (m *mockModes) Manual(ctx context.Context) error {
	m.manualCalls++
	if m.manualErr != nil {
		return m.manualErr
	}
	m.mode = models.NewMode(models.ModeManual)
	return nil
}
func (m *mockModes) Reset(ctx context.Context) error {
	m.resetCalls++
	return m.resetErr
}

type mockSequencer struct {
	startErr   error
	startCalls int
}

func (m *mockSequencer) StartSequence(ctx context.Context) error {
	m.startCalls++
	return m.startErr
}
func (m *mockSequencer) StartStep(ctx context.Context, index int) error { return nil }
func (m *mockSequencer) IsStepFinished(ctx context.Context) (bool, error) {
	return false, nil
}

type mockPause struct {
	pauseErr    error
	resumeErr   error
	pauseCalls  int
	resumeCalls int
}

func (m *mockPause) Pause(ctx context.Context) error {
	m.pauseCalls++
	return m.pauseErr
}
func (m *mockPause) Resume(ctx context.Context) error {
	m.resumeCalls++
	return m.resumeErr
}

type mockMonitoring struct {
	state     service.State
	status    *models.Status
	err       error
	statusErr error
}

func (m *mockMonitoring) GetState(ctx context.Context) (service.State, error) {
	return m.state, m.err
}
func (m *mockMonitoring) GetStatus(ctx context.Context) (*models.Status, error) {
	return m.status, m.statusErr
}

type mockConfiguration struct {
	settings  models.Settings
	getErr    error
	updateErr error
	updated   *models.Settings
}

func (m *mockConfiguration) GetSettings(ctx context.Context) (models.Settings, error) {
	return m.settings, m.getErr
}
func (m *mockConfiguration) UpdateSettings(ctx context.Context, s models.Settings) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = &s
	return nil
}

type mockEventLog struct {
	resp      []models.IrrigationEvent
	err       error
	lastFrom  time.Time
	lastTo    time.Time
	lastType  string
	lastLimit int
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.IrrigationEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	m.lastLimit = f.Limit
	return m.resp, m.err
}

func (m *mockEventLog) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	return 0, nil
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
