package access

import (
	"context"

	"github.com/nestor-churin/AlcoMeterBot/internal/domain/enums"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/errs"
)

// Service answers role questions from the configured admin list.
type Service struct {
	admins []int64
	set    map[int64]struct{}
}

func NewService(adminIDs []int64) *Service {
	s := &Service{set: make(map[int64]struct{}, len(adminIDs))}
	for _, id := range adminIDs {
		if id <= 0 {
			continue
		}
		if _, dup := s.set[id]; dup {
			continue
		}
		s.set[id] = struct{}{}
		s.admins = append(s.admins, id)
	}
	return s
}

func (s *Service) IsAdmin(tgID int64) bool {
	_, ok := s.set[tgID]
	return ok
}

func (s *Service) ResolveRole(_ context.Context, tgID int64) enums.Role {
	if s.IsAdmin(tgID) {
		return enums.RoleAdmin
	}
	return enums.RoleUser
}

// Admins returns the allow-list in configured order.
func (s *Service) Admins() []int64 {
	return append([]int64(nil), s.admins...)
}

func (s *Service) RequireAdmin(tgID int64) error {
	if !s.IsAdmin(tgID) {
		return errs.ErrNotAuthorized
	}
	return nil
}
