package handler

import (
	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/repository"
)

// cachingStore 在持久化之上挂一层缓存失效：班表保存或发布后，
// 这一天的列表缓存立刻失效，列表接口不会读到旧数据
type cachingStore struct {
	*repository.Repository
	handler *Handler
}

func (s *cachingStore) SaveRoster(ro *domain.Roster) (*domain.Roster, error) {
	saved, err := s.Repository.SaveRoster(ro)
	if err != nil {
		return nil, err
	}

	s.handler.invalidateRosterListCache(saved.Date)

	return saved, nil
}

func (s *cachingStore) PublishRoster(id string) (*domain.Roster, error) {
	published, err := s.Repository.PublishRoster(id)
	if err != nil {
		return nil, err
	}

	s.handler.invalidateRosterListCache(published.Date)

	return published, nil
}
