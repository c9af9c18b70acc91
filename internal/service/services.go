package service

import (
	"github.com/kirinyoku/seatplan/internal/service/plans"
)

type Services struct {
	Plans *plans.Service
}

func NewServices(p *plans.Service) *Services {
	return &Services{Plans: p}
}
