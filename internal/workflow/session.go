package workflow

import (
	"context"
	"sync"
	"time"

	"rewind-backend/internal/apperr"
	"rewind-backend/internal/models"
	"rewind-backend/internal/services"
)

// Stage is the screen a session is on.
type Stage string

const (
	StageCapture Stage = "capture"
	StagePreview Stage = "preview"
	StageForm    Stage = "form"
)

type Publisher interface {
	Publish(ctx context.Context, form models.MintForm, owner string, observe services.Observer) (*models.PublishResult, error)
}

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	ID        string               `json:"id"`
	Stage     Stage                `json:"stage"`
	Draft     *Draft               `json:"draft,omitempty"`
	Form      *models.MintForm     `json:"form,omitempty"`
	Status    models.PublishStatus `json:"status"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// Session is one user's walk through capture → preview → form → publish.
// Exactly one PublishStatus is live per session and only one submission
// runs at a time.
type Session struct {
	id        string
	capturer  *Capturer
	publisher Publisher
	now       func() time.Time

	mu         sync.Mutex
	stage      Stage
	draft      *Draft
	form       *models.MintForm
	status     models.PublishStatus
	submitting bool
	updatedAt  time.Time
}

func newSession(id string, capturer *Capturer, publisher Publisher, now func() time.Time) *Session {
	return &Session{
		id:        id,
		capturer:  capturer,
		publisher: publisher,
		now:       now,
		stage:     StageCapture,
		status:    models.PublishStatus{State: models.PublishIdle},
		updatedAt: now(),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:        s.id,
		Stage:     s.stage,
		Status:    s.status,
		UpdatedAt: s.updatedAt,
	}
	if s.draft != nil {
		d := *s.draft
		snap.Draft = &d
	}
	if s.form != nil {
		f := s.form.Clone()
		snap.Form = &f
	}
	if s.status.Result != nil {
		r := *s.status.Result
		snap.Status.Result = &r
	}
	return snap
}

// Capture runs the capture stage and moves to preview on success. A failed
// capture leaves the session where it was.
func (s *Session) Capture(ctx context.Context, in CaptureInput) (Snapshot, error) {
	s.mu.Lock()
	if err := s.checkIdleLocked(); err != nil {
		s.mu.Unlock()
		return Snapshot{}, err
	}
	s.mu.Unlock()

	draft, err := s.capturer.Capture(ctx, in)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIdleLocked(); err != nil {
		return Snapshot{}, err
	}
	s.draft = draft
	s.form = nil
	s.stage = StagePreview
	s.touchLocked()
	return s.snapshotLocked(), nil
}

// AcceptPreview pre-fills the mint form from the draft.
func (s *Session) AcceptPreview() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StagePreview || s.draft == nil {
		return Snapshot{}, apperr.InvalidState("there is no preview to accept")
	}
	s.form = &models.MintForm{
		Name:        s.draft.Title,
		Description: s.draft.Description,
		Image:       s.draft.Image,
		Properties:  []models.KeyValue{},
		Metadata:    []models.KeyValue{},
	}
	s.stage = StageForm
	s.touchLocked()
	return s.snapshotLocked(), nil
}

// UpdateForm replaces the form. Edits are only accepted while nothing is
// being published.
func (s *Session) UpdateForm(form models.MintForm) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageForm {
		return Snapshot{}, apperr.InvalidState("the mint form is not open")
	}
	if err := s.checkIdleLocked(); err != nil {
		return Snapshot{}, err
	}
	f := form.Clone()
	s.form = &f
	s.touchLocked()
	return s.snapshotLocked(), nil
}

// Submit runs the publish pipeline on the current form and blocks until it
// reaches success or error. It is rejected while the status is not idle.
func (s *Session) Submit(ctx context.Context, owner string) (Snapshot, error) {
	s.mu.Lock()
	if s.stage != StageForm || s.form == nil {
		s.mu.Unlock()
		return Snapshot{}, apperr.InvalidState("the mint form is not open")
	}
	if err := s.checkIdleLocked(); err != nil {
		s.mu.Unlock()
		return Snapshot{}, err
	}
	s.submitting = true
	form := s.form.Clone()
	s.mu.Unlock()

	// A deployed coin must still be recorded when the caller goes away, so the
	// run ignores cancellation of the request that started it.
	_, err := s.publisher.Publish(context.WithoutCancel(ctx), form, owner, s.observe)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	s.touchLocked()
	return s.snapshotLocked(), err
}

func (s *Session) observe(status models.PublishStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.touchLocked()
}

// Dismiss closes a finished publish: the status returns to idle and the form
// is discarded. After success the draft is discarded too; after an error the
// draft is kept so it can be accepted again.
func (s *Session) Dismiss() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting || !s.status.State.Terminal() {
		return Snapshot{}, apperr.InvalidState("there is no finished publish to dismiss")
	}

	succeeded := s.status.State == models.PublishSuccess
	s.status = models.PublishStatus{State: models.PublishIdle}
	s.form = nil
	if succeeded || s.draft == nil {
		s.draft = nil
		s.stage = StageCapture
	} else {
		s.stage = StagePreview
	}
	s.touchLocked()
	return s.snapshotLocked(), nil
}

// Reset starts over from the capture stage.
func (s *Session) Reset() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return Snapshot{}, apperr.InvalidState("a submission is in progress")
	}
	s.draft = nil
	s.form = nil
	s.stage = StageCapture
	s.status = models.PublishStatus{State: models.PublishIdle}
	s.touchLocked()
	return s.snapshotLocked(), nil
}

func (s *Session) checkIdleLocked() error {
	if s.submitting || s.status.State != models.PublishIdle {
		return apperr.InvalidState("a submission is already in progress or awaiting dismissal")
	}
	return nil
}

func (s *Session) touchLocked() {
	s.updatedAt = s.now()
}

func (s *Session) lastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

func (s *Session) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}
