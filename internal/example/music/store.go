// Copyright 2025 The Verdad Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package music

import (
	"errors"
	"sort"
	"sync"
)

var (
	errUnknownToken = errors.New("unknown authorization token")
	errForbidden    = errors.New("token doesn't grant access to user")
)

// A Store holds playlists and the tokens that grant access to them. It's safe
// for concurrent use.
type Store struct {
	mu        sync.RWMutex
	tokens    map[string]string // token -> user ID
	playlists map[string][]Playlist
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		tokens:    make(map[string]string),
		playlists: make(map[string][]Playlist),
	}
}

// Grant lets token read userID's playlists.
func (s *Store) Grant(token, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID
}

// Add stores a playlist for userID, replacing any playlist with the same ID.
func (s *Store) Add(userID string, playlist Playlist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.playlists[userID]
	for i := range existing {
		if existing[i].ID == playlist.ID {
			existing[i] = playlist
			return
		}
	}
	existing = append(existing, playlist)
	sort.Slice(existing, func(i, j int) bool { return existing[i].ID < existing[j].ID })
	s.playlists[userID] = existing
}

// Page returns the page-th group of size playlists of userID, ordered by
// ID. Pages are 1-based; pages past the end are empty.
func (s *Store) Page(token, userID string, page, size int) ([]Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.tokens[token]
	if !ok {
		return nil, errUnknownToken
	}
	if owner != userID {
		return nil, errForbidden
	}
	all := s.playlists[userID]
	start := (page - 1) * size
	if start >= len(all) {
		return []Playlist{}, nil
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	result := make([]Playlist, end-start)
	copy(result, all[start:end])
	return result, nil
}
