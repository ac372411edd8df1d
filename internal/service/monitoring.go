package service

import (
	"context"
	"errors"

	"controlling_irrigation/internal/models"
	"controlling_irrigation/internal/repository"
)

// State is the read-only snapshot served to the API and the WebSocket stream.
type State struct {
	Mode              models.ModeDocument `json:"mode"`
	Status            *models.Status      `json:"status"`
	HasActiveSequence bool                `json:"has_active_sequence"`
	// RemainingSeconds is set only for a step with a deadline. While paused
	// it stays frozen at the value it had when the pause began.
	RemainingSeconds *int64 `json:"remaining_seconds,omitempty"`
	ServerTime       int64  `json:"server_time"`
}

type MonitoringService struct {
	modes  *ModeService
	status repository.StatusRepo
	clock  Clock
}

func NewMonitoringService(modes *ModeService, status repository.StatusRepo, clock Clock) *MonitoringService {
	return &MonitoringService{modes: modes, status: status, clock: clock}
}

// GetStatus returns the active step, or nil when idle.
func (s *MonitoringService) GetStatus(ctx context.Context) (*models.Status, error) {
	return loadStatus(ctx, s.status)
}

// GetState returns the latest persisted snapshot. If no mode is persisted
// yet, the baseline manual mode is reported.
func (s *MonitoringService) GetState(ctx context.Context) (State, error) {
	m, err := s.modes.GetModeState(ctx)
	if errors.Is(err, ErrNotFound) {
		m = s.baselineMode()
	} else if err != nil {
		return State{}, err
	}
	st, err := s.GetStatus(ctx)
	if err != nil {
		return State{}, err
	}

	now := s.clock.Now().Unix()
	out := State{
		Mode:              m.Document(),
		Status:            st,
		HasActiveSequence: st != nil,
		ServerTime:        now,
	}
	if st != nil && st.HasDeadline() {
		at := now
		if m.Pause != nil {
			at = m.Pause.PausedAt
		}
		if left, ok := st.Remaining(at); ok {
			out.RemainingSeconds = &left
		}
	}
	return out, nil
}

func (s *MonitoringService) baselineMode() models.Mode {
	return models.NewMode(models.ModeManual)
}
