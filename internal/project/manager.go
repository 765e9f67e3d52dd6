// Package project keeps parsed uploads in memory between the upload request
// and the definition-generation request. Entries expire after a TTL; nothing
// is ever written to disk.
package project

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mrletourneau/inst-death/internal/domain"
)

// Constants for pagination
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Project is one parsed upload.
type Project struct {
	ID        string         `json:"id"`
	Filename  string         `json:"filename"`
	Tracks    []domain.Track `json:"tracks"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Track returns the track with the given extraction index.
func (p *Project) Track(index int) (domain.Track, bool) {
	for _, t := range p.Tracks {
		if t.Index == index {
			return t, true
		}
	}
	return domain.Track{}, false
}

// Response represents a page of stored projects.
type Response struct {
	Projects      []*Project `json:"projects"`
	Page          int        `json:"page"`
	PageSize      int        `json:"pageSize"`
	TotalProjects int        `json:"totalProjects"`
	TotalPages    int        `json:"totalPages"`
}

// Manager handles the stored uploads.
type Manager struct {
	mu       sync.RWMutex
	projects map[string]*Project
}

// NewManager creates a new project manager.
func NewManager() *Manager {
	return &Manager{
		projects: make(map[string]*Project),
	}
}

// Add stores a parsed upload and returns it with a fresh id.
func (m *Manager) Add(filename string, tracks []domain.Track) *Project {
	p := &Project{
		ID:        uuid.NewString(),
		Filename:  filename,
		Tracks:    tracks,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	return p
}

// Get retrieves a project by id.
func (m *Manager) Get(id string) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, exists := m.projects[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

// Delete removes a project by id.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.projects[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.projects, id)
	return nil
}

// List lists stored projects with pagination, newest first.
func (m *Manager) List(page, pageSize int) *Response {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	m.mu.RLock()
	projects := make([]*Project, 0, len(m.projects))
	for _, p := range m.projects {
		projects = append(projects, p)
	}
	m.mu.RUnlock()

	sort.Slice(projects, func(i, j int) bool {
		if projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].ID < projects[j].ID
		}
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})

	totalPages := (len(projects) + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	end := start + pageSize

	if start >= len(projects) {
		return &Response{
			Projects:      []*Project{},
			Page:          page,
			PageSize:      pageSize,
			TotalProjects: len(projects),
			TotalPages:    totalPages,
		}
	}
	if end > len(projects) {
		end = len(projects)
	}

	return &Response{
		Projects:      projects[start:end],
		Page:          page,
		PageSize:      pageSize,
		TotalProjects: len(projects),
		TotalPages:    totalPages,
	}
}

// StartCleanupWorker starts a background worker that drops projects older
// than ttl.
func (m *Manager) StartCleanupWorker(ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for range ticker.C {
			if removed := m.removeExpired(ttl); removed > 0 {
				slog.Info("Expired projects cleaned up", "count", removed)
			}
		}
	}()
	slog.Info("Project cleanup worker started", "ttl", ttl, "interval", interval)
}

func (m *Manager) removeExpired(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, p := range m.projects {
		if p.CreatedAt.Before(cutoff) {
			delete(m.projects, id)
			removed++
		}
	}
	return removed
}
