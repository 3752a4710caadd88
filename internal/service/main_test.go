package service

import (
	"context"
	"sync"
	"testing"

	"stackit/internal/cache"
	"stackit/internal/models"
	"stackit/internal/repository"
	"stackit/internal/testutil"

	"gorm.io/gorm"
)

type publishedEvent struct {
	UserID  uint
	Type    string
	Payload any
}

// eventRecorder is a stub for EventPublisher.
type eventRecorder struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (r *eventRecorder) PublishEvent(_ context.Context, userID uint, eventType string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, publishedEvent{UserID: userID, Type: eventType, Payload: payload})
	return r.err
}

func (r *eventRecorder) ofType(eventType string) []publishedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []publishedEvent
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	users     repository.UserRepository
	questions repository.QuestionRepository
	answers   repository.AnswerRepository
	tags      repository.TagRepository
	votes     repository.VoteRepository
	reports   repository.ReportRepository
	events    *eventRecorder

	owner    *models.User
	other    *models.User
	admin    *models.User
	ownerAct models.Actor
	otherAct models.Actor
	adminAct models.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cache.SetClient(nil)
	db := testutil.NewSQLiteDB(t)
	f := &fixture{
		db:        db,
		users:     repository.NewUserRepository(db),
		questions: repository.NewQuestionRepository(db),
		answers:   repository.NewAnswerRepository(db),
		tags:      repository.NewTagRepository(db),
		votes:     repository.NewVoteRepository(db),
		reports:   repository.NewReportRepository(db),
		events:    &eventRecorder{},
	}
	f.owner = testutil.CreateUser(t, db, "owner", models.RoleUser)
	f.other = testutil.CreateUser(t, db, "other", models.RoleUser)
	f.admin = testutil.CreateUser(t, db, "boss", models.RoleAdmin)
	f.ownerAct = models.ActorFor(f.owner)
	f.otherAct = models.ActorFor(f.other)
	f.adminAct = models.ActorFor(f.admin)
	return f
}

func (f *fixture) questionService() *QuestionService {
	return NewQuestionService(f.questions, f.tags)
}

func (f *fixture) answerService() *AnswerService {
	return NewAnswerService(f.questions, f.answers, f.events)
}
