package telegram

import (
	"sync"

	"workua-resume-bot/internal/models"
)

// Step is the input a chat is currently expected to send.
type Step int

const (
	StepIdle Step = iota
	StepSite
	StepProfession
	StepLocation
	StepCategory
	StepFilterMenu
	StepSearchParams
	StepEmployment
	StepAgeFrom
	StepAgeTo
	StepGender
	StepSalaryFrom
	StepSalaryTo
	StepSalaryNotSpecified
	StepEducation
	StepExperience
	// StepRunning means a search is in flight for the chat.
	StepRunning
)

// Session is the in-progress search of one chat.
type Session struct {
	Step       Step
	Profession string
	Location   string
	Category   int
	Filters    models.FilterSpec
}

// SessionStore keeps one Session per chat.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]*Session)}
}

// Update runs fn with the chat's session under the store lock, creating
// the session on first use.
func (s *SessionStore) Update(chatID int64, fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		sess = &Session{}
		s.sessions[chatID] = sess
	}
	fn(sess)
}

// Get returns a copy of the chat's session.
func (s *SessionStore) Get(chatID int64) Session {
	var out Session
	s.Update(chatID, func(sess *Session) { out = *sess })
	return out
}

// Reset drops everything collected for the chat.
func (s *SessionStore) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}
