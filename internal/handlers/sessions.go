package handlers

import (
	"sync"

	"github.com/damacus/iron-drive/internal/models"
	"github.com/damacus/iron-drive/internal/store"
	"github.com/damacus/iron-drive/internal/workspace"
)

// Registry keeps one workspace per login session
type Registry struct {
	store store.Store
	opts  workspace.Options

	mu         sync.Mutex
	workspaces map[string]*workspace.Workspace
}

// NewRegistry creates a registry whose workspaces share s
func NewRegistry(s store.Store, opts workspace.Options) *Registry {
	return &Registry{
		store:      s,
		opts:       opts,
		workspaces: make(map[string]*workspace.Workspace),
	}
}

// Get returns the workspace for sess, opening it on first use
func (r *Registry) Get(sess models.Session) *workspace.Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.workspaces[sess.ID]; ok {
		return w
	}
	w := workspace.New(sess, r.store, r.opts)
	r.workspaces[sess.ID] = w
	return w
}

// Drop closes and forgets the workspace of the login sessionID
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	w, ok := r.workspaces[sessionID]
	delete(r.workspaces, sessionID)
	r.mu.Unlock()

	if ok {
		w.Close()
	}
}

// Len is the number of open workspaces
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// Close closes every workspace
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.workspaces
	r.workspaces = make(map[string]*workspace.Workspace)
	r.mu.Unlock()

	for _, w := range all {
		w.Close()
	}
}
