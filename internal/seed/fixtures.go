package seed

import (
	"fmt"
	"os"

	"stackit/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixtures is a hand-written data set loaded from YAML.
//
//	users:
//	  - username: alice
//	    role: admin
//	questions:
//	  - author: alice
//	    title: How do I cancel a context?
//	    body: ...
//	    tags: [go]
//	    answers:
//	      - author: bob
//	        body: Call the cancel func.
//	        accepted: true
type Fixtures struct {
	Users     []FixtureUser     `yaml:"users"`
	Questions []FixtureQuestion `yaml:"questions"`
}

type FixtureUser struct {
	Username string      `yaml:"username"`
	Email    string      `yaml:"email"`
	Role     models.Role `yaml:"role"`
	Banned   bool        `yaml:"banned"`
}

type FixtureQuestion struct {
	Author  string          `yaml:"author"`
	Title   string          `yaml:"title"`
	Body    string          `yaml:"body"`
	Tags    []string        `yaml:"tags"`
	Status  string          `yaml:"status"`
	Answers []FixtureAnswer `yaml:"answers"`
}

type FixtureAnswer struct {
	Author   string `yaml:"author"`
	Body     string `yaml:"body"`
	Accepted bool   `yaml:"accepted"`
}

// ParseFixtures decodes YAML fixtures and checks author references.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	known := make(map[string]bool, len(fx.Users))
	for i, u := range fx.Users {
		if u.Username == "" {
			return nil, fmt.Errorf("users[%d]: username is required", i)
		}
		if u.Role != "" && !u.Role.Assignable() {
			return nil, fmt.Errorf("users[%d]: invalid role %q", i, u.Role)
		}
		known[u.Username] = true
	}
	for i, q := range fx.Questions {
		if !known[q.Author] {
			return nil, fmt.Errorf("questions[%d]: unknown author %q", i, q.Author)
		}
		if q.Status != "" && !models.ContentStatus(q.Status).Valid() {
			return nil, fmt.Errorf("questions[%d]: invalid status %q", i, q.Status)
		}
		accepted := 0
		for j, a := range q.Answers {
			if !known[a.Author] {
				return nil, fmt.Errorf("questions[%d].answers[%d]: unknown author %q", i, j, a.Author)
			}
			if a.Accepted {
				accepted++
			}
		}
		if accepted > 1 {
			return nil, fmt.Errorf("questions[%d]: more than one accepted answer", i)
		}
	}
	return &fx, nil
}

// LoadFixtures reads and parses a YAML fixture file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFixtures(data)
}

// ApplyFixtures inserts fixtures through a Factory. Users get DefaultPassword.
func ApplyFixtures(db *gorm.DB, fx *Fixtures, opts Options) (*Summary, error) {
	f := NewFactory(db, opts)
	sum := &Summary{}
	byName := make(map[string]*models.User, len(fx.Users))

	for _, fu := range fx.Users {
		u, err := f.CreateUser(func(u *models.User) {
			u.Username = fu.Username
			u.Email = fu.Email
			if u.Email == "" {
				u.Email = fu.Username + "@example.com"
			}
			if fu.Role != "" {
				u.Role = fu.Role
			}
			u.IsBanned = fu.Banned
		})
		if err != nil {
			return sum, fmt.Errorf("create user %s: %w", fu.Username, err)
		}
		byName[fu.Username] = u
		sum.Users++
	}

	for _, fq := range fx.Questions {
		q, err := f.CreateQuestion(byName[fq.Author], fq.Tags, func(q *models.Question) {
			q.Title = fq.Title
			if fq.Body != "" {
				q.Body = fq.Body
			}
			if fq.Status != "" {
				q.Status = models.ContentStatus(fq.Status)
			}
		})
		if err != nil {
			return sum, fmt.Errorf("create question %q: %w", fq.Title, err)
		}
		sum.Questions++
		for _, fa := range fq.Answers {
			_, err := f.CreateAnswer(q, byName[fa.Author], fa.Accepted, func(a *models.Answer) {
				if fa.Body != "" {
					a.Body = fa.Body
				}
			})
			if err != nil {
				return sum, fmt.Errorf("create answer on %q: %w", fq.Title, err)
			}
			sum.Answers++
			if fa.Accepted {
				sum.Accepted++
			}
		}
	}
	return sum, nil
}
