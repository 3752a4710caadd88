package seed

import (
	"fmt"
	"log/slog"

	"stackit/internal/models"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers     int
	NumQuestions int
	// MaxAnswers caps answers generated per question.
	MaxAnswers int
	// MaxDays spreads created_at timestamps over this many past days.
	MaxDays     int
	ShouldClean bool
	SkipBcrypt  bool
	DryRun      bool
	RandSeed    int64
}

// Summary counts what a run created.
type Summary struct {
	Users     int `json:"users"`
	Questions int `json:"questions"`
	Answers   int `json:"answers"`
	Accepted  int `json:"accepted"`
	Votes     int `json:"votes"`
}

// BuiltInTags is the pool generated questions draw their tags from.
var BuiltInTags = []string{
	"go", "javascript", "typescript", "react", "postgresql", "redis", "docker",
	"kubernetes", "linux", "git", "sql", "python", "rust", "http", "testing",
	"concurrency", "css", "node.js", "graphql", "security",
}

// Seed populates db with users, tagged questions, answers and votes.
func Seed(db *gorm.DB, opts Options) (*Summary, error) {
	if opts.NumUsers < 2 {
		opts.NumUsers = 2
	}
	if opts.MaxAnswers <= 0 {
		opts.MaxAnswers = 4
	}
	slog.Info("seeding database",
		slog.Int("users", opts.NumUsers),
		slog.Int("questions", opts.NumQuestions),
		slog.Bool("dry_run", opts.DryRun),
	)

	if opts.ShouldClean && !opts.DryRun {
		if err := Clean(db); err != nil {
			return nil, fmt.Errorf("clean: %w", err)
		}
	}

	f := NewFactory(db, opts)
	sum := &Summary{}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser()
		if err != nil {
			slog.Warn("skipping seed user", slog.String("error", err.Error()))
			continue
		}
		users = append(users, u)
	}
	if len(users) < 2 {
		return nil, fmt.Errorf("need at least 2 users, created %d", len(users))
	}
	sum.Users = len(users)

	for i := 0; i < opts.NumQuestions; i++ {
		author := users[f.rng.Intn(len(users))]
		q, err := f.CreateQuestion(author, f.pickTags())
		if err != nil {
			return sum, fmt.Errorf("create question: %w", err)
		}
		sum.Questions++

		answers := f.rng.Intn(opts.MaxAnswers + 1)
		acceptIdx := -1
		if answers > 0 && f.rng.Float32() < 0.5 {
			acceptIdx = f.rng.Intn(answers)
		}
		for j := 0; j < answers; j++ {
			answerer := f.otherThan(users, author)
			a, err := f.CreateAnswer(q, answerer, j == acceptIdx)
			if err != nil {
				return sum, fmt.Errorf("create answer: %w", err)
			}
			sum.Answers++
			if a.IsAccepted {
				sum.Accepted++
			}
			if f.rng.Float32() < 0.6 {
				if err := f.CreateVote(f.otherThan(users, answerer), models.TargetAnswer, a.ID, f.voteValue()); err != nil {
					return sum, fmt.Errorf("create vote: %w", err)
				}
				sum.Votes++
			}
		}

		if f.rng.Float32() < 0.7 {
			if err := f.CreateVote(f.otherThan(users, author), models.TargetQuestion, q.ID, f.voteValue()); err != nil {
				return sum, fmt.Errorf("create vote: %w", err)
			}
			sum.Votes++
		}
	}

	slog.Info("seeding finished",
		slog.Int("users", sum.Users),
		slog.Int("questions", sum.Questions),
		slog.Int("answers", sum.Answers),
		slog.Int("votes", sum.Votes),
	)
	return sum, nil
}

// Clean removes all forum content and users. Children go first so foreign
// keys never dangle.
func Clean(db *gorm.DB) error {
	slog.Info("clearing existing data")
	tables := []any{
		&models.Vote{}, &models.Report{}, &models.QuestionTag{}, &models.Answer{},
		&models.Question{}, &models.Tag{}, &models.User{},
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (f *Factory) pickTags() []string {
	n := f.rng.Intn(4)
	picked := make([]string, 0, n)
	seen := map[int]bool{}
	for len(picked) < n {
		i := f.rng.Intn(len(BuiltInTags))
		if seen[i] {
			continue
		}
		seen[i] = true
		picked = append(picked, BuiltInTags[i])
	}
	return picked
}

func (f *Factory) otherThan(users []*models.User, not *models.User) *models.User {
	for {
		u := users[f.rng.Intn(len(users))]
		if u.ID != not.ID {
			return u
		}
	}
}

func (f *Factory) voteValue() int {
	if f.rng.Float32() < 0.8 {
		return models.VoteUp
	}
	return models.VoteDown
}
