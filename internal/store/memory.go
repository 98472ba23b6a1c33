package store

import (
	"sync"

	"github.com/loglens/backend/internal/model"
)

type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]model.Job
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]model.Job)}
}

func (s *MemoryJobStore) Create(job model.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.JobID] = job
}

func (s *MemoryJobStore) Get(id string) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return model.Job{}, ErrJobNotFound
	}
	return job, nil
}

func (s *MemoryJobStore) Update(id string, fn func(*model.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	fn(&job)
	s.jobs[id] = job
	return nil
}

type MemoryResultStore struct {
	mu      sync.RWMutex
	results map[string]model.IncidentReport
}

func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{results: make(map[string]model.IncidentReport)}
}

func (s *MemoryResultStore) Put(id string, report model.IncidentReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[id] = report
}

func (s *MemoryResultStore) Get(id string) (model.IncidentReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.results[id]
	return report, ok
}
