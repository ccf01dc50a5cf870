package service

import (
	"context"
	"time"

	"smartcomfort/internal/logger"
	"smartcomfort/internal/models"
	"smartcomfort/internal/repository"
)

// Access checks and provisions credentials.
type Access interface {
	Gate
	Provision(ctx context.Context, code string, profiles []models.Profile) error
}

// Control runs the comfort controller.
type Control interface {
	Run(ctx context.Context, cycle time.Duration)
	Step(ctx context.Context) models.Mode
	Snapshot() Snapshot
}

// Service aggregates the controller sub-services.
type Service struct {
	Access
	Control
}

// NewService wires the repositories and the board into the services.
func NewService(repos *repository.Repository, hw Hardware, s Settings, clock Clock, log *logger.Logger) (*Service, error) {
	access := NewAccessService(repos.SecretRepo, repos.ProfileRepo, log)
	ctrl, err := NewController(hw, access, s, clock, log)
	if err != nil {
		return nil, err
	}
	return &Service{
		Access:  access,
		Control: ctrl,
	}, nil
}
