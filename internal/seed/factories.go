// Package seed creates demo and test data for the forum database. It is
// intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"stackit/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every generated account.
const DefaultPassword = "Password123!"

// Factory builds forum entities and persists them.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	rng   *rand.Rand
	hash  string
	// synthetic ID counter when running in DryRun mode
	nextID uint
	seq    int
}

// NewFactory creates a Factory bound to db. A zero opts.RandSeed seeds from the clock.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		db:     db,
		opts:   opts,
		faker:  gofakeit.New(seed),
		rng:    rand.New(rand.NewSource(seed)), // #nosec G404: acceptable for seeding
		nextID: 1000,
	}
}

func (f *Factory) passwordHash() string {
	if f.hash != "" {
		return f.hash
	}
	if f.opts.SkipBcrypt {
		f.hash = DefaultPassword
		return f.hash
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		f.hash = DefaultPassword
		return f.hash
	}
	f.hash = string(hashed)
	return f.hash
}

// createdAt spreads timestamps over the last opts.MaxDays days.
func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().UTC().Add(-back)
}

func (f *Factory) persist(value any, id *uint) error {
	if f.opts.DryRun {
		f.nextID++
		*id = f.nextID
		return nil
	}
	return f.db.Omit(clause.Associations).Create(value).Error
}

// BuildUser returns an unsaved user with a unique-looking username.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	name := strings.ToLower(f.faker.FirstName() + "_" + f.faker.LastName())
	f.seq++
	name = fmt.Sprintf("%s%03d%d", sanitizeUsername(name), f.faker.Number(0, 999), f.seq)
	user := &models.User{
		Username: name,
		Email:    name + "@example.com",
		Password: f.passwordHash(),
		Role:     models.RoleUser,
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser builds and persists a user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if err := f.persist(user, &user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildQuestion returns an unsaved active question by author.
func (f *Factory) BuildQuestion(author *models.User, overrides ...func(*models.Question)) *models.Question {
	title := strings.TrimSuffix(f.faker.Question(), "?")
	q := &models.Question{
		UserID:    author.ID,
		Title:     title + "?",
		Body:      f.faker.Paragraph(2, 4, 12, "\n\n"),
		Status:    models.StatusActive,
		CreatedAt: f.createdAt(),
	}
	for _, override := range overrides {
		override(q)
	}
	return q
}

// CreateQuestion persists a question and links the given tags, creating them as needed.
func (f *Factory) CreateQuestion(author *models.User, tags []string, overrides ...func(*models.Question)) (*models.Question, error) {
	q := f.BuildQuestion(author, overrides...)
	if err := f.persist(q, &q.ID); err != nil {
		return nil, err
	}
	if f.opts.DryRun {
		return q, nil
	}
	for _, name := range tags {
		tag, err := f.Tag(name)
		if err != nil {
			return nil, err
		}
		link := models.QuestionTag{QuestionID: q.ID, TagID: tag.ID}
		if err := f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return nil, err
		}
		q.Tags = append(q.Tags, *tag)
	}
	return q, nil
}

// Tag finds or creates a tag by normalized name.
func (f *Factory) Tag(name string) (*models.Tag, error) {
	tag := models.Tag{Name: models.NormalizeTag(name)}
	if err := f.db.Where(models.Tag{Name: tag.Name}).FirstOrCreate(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// CreateAnswer persists an answer to q by author.
func (f *Factory) CreateAnswer(q *models.Question, author *models.User, accepted bool, overrides ...func(*models.Answer)) (*models.Answer, error) {
	a := &models.Answer{
		QuestionID: q.ID,
		UserID:     author.ID,
		Body:       f.faker.Paragraph(1, 3, 10, "\n\n"),
		Status:     models.StatusActive,
		CreatedAt:  q.CreatedAt.Add(time.Duration(f.rng.Intn(72)+1) * time.Hour),
	}
	for _, override := range overrides {
		override(a)
	}
	if err := f.persist(a, &a.ID); err != nil {
		return nil, err
	}
	// is_accepted has a column default, so a false value is skipped on insert
	if accepted && !f.opts.DryRun {
		if err := f.db.Model(a).Update("is_accepted", true).Error; err != nil {
			return nil, err
		}
	}
	a.IsAccepted = accepted
	return a, nil
}

// CreateVote records a vote unless the voter already voted on the target.
func (f *Factory) CreateVote(voter *models.User, targetType models.TargetType, targetID uint, value int) error {
	if f.opts.DryRun {
		return nil
	}
	vote := models.Vote{UserID: voter.ID, TargetType: targetType, TargetID: targetID, Value: value}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&vote).Error
}

func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "_")
	if len(out) > 40 {
		out = out[:40]
	}
	if out == "" {
		out = "user"
	}
	return out
}
