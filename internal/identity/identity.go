// File: internal/identity/identity.go

// Package identity produces the synthetic signup identity for a run: a
// disposable mailbox address scoped to the configured mail domain and a
// plausible human name for the account form.
package identity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/voidhawk9x/enroll-cli/internal/config"
)

// Identity holds the generated values for one enrollment run. It is created
// once per run and never mutated.
type Identity struct {
	Email     string
	LocalPart string
	FirstName string
	LastName  string
	Password  string
}

// localPartSanitizer strips everything an inbox lookup field would choke on;
// names from the corpus can contain apostrophes and spaces.
var localPartSanitizer = regexp.MustCompile(`[^a-z0-9]+`)

// Generator creates identities against a fixed mail domain.
type Generator struct {
	domain   string
	password string
	faker    *gofakeit.Faker
}

// NewGenerator returns a Generator backed by the given faker. Passing a
// seeded faker makes generation deterministic, which the tests rely on.
func NewGenerator(cfg config.IdentityConfig, faker *gofakeit.Faker) *Generator {
	return &Generator{
		domain:   cfg.MailDomain,
		password: cfg.Password,
		faker:    faker,
	}
}

// New generates a fresh identity. Generation is pure and local: no I/O, no
// failure mode.
func (g *Generator) New() Identity {
	first := g.faker.FirstName()
	last := g.faker.LastName()

	local := fmt.Sprintf("%s.%s.%s",
		sanitize(first),
		sanitize(last),
		g.faker.DigitN(4),
	)

	return Identity{
		Email:     local + "@" + g.domain,
		LocalPart: local,
		FirstName: first,
		LastName:  last,
		Password:  g.password,
	}
}

func sanitize(s string) string {
	s = localPartSanitizer.ReplaceAllString(strings.ToLower(s), "")
	if s == "" {
		// The inbox lookup field needs something non-empty to key on.
		s = "user"
	}
	return s
}
