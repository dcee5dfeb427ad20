package source

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"github.com/nhle/job-tracker/internal/model"
)

// Synthetic generates deterministic job events for test users. The
// generator is seeded from the user id, so the same user always gets
// the same sequence of subjects, titles, companies and statuses without
// any external mailbox.
type Synthetic struct{}

// NewSynthetic creates a synthetic event source.
func NewSynthetic() *Synthetic {
	return &Synthetic{}
}

// Fetch generates between 5 and 10 events seeded by userID.
func (s *Synthetic) Fetch(_ context.Context, userID string) ([]model.JobEvent, error) {
	rng := rand.New(rand.NewSource(seed(userID)))
	count := 5 + rng.Intn(6)

	events := make([]model.JobEvent, 0, count)
	for i := 0; i < count; i++ {
		status := statusKeys[rng.Intn(len(statusKeys))]
		title := jobTitles[rng.Intn(len(jobTitles))]
		company := companies[rng.Intn(len(companies))]

		subjects := subjectTemplates[status]
		bodies := bodyTemplates[status]

		subject := strings.NewReplacer(
			"{company}", company,
			"{title}", title,
		).Replace(subjects[rng.Intn(len(subjects))])

		due := daysAgo(rng.Intn(30))
		body := strings.NewReplacer(
			"{{company}}", company,
			"{{position}}", title,
			"{{date}}", due.Format("1/2/2006"),
		).Replace(bodies[rng.Intn(len(bodies))])

		events = append(events, model.JobEvent{
			ID:          fmt.Sprintf("synthetic-%s-%d", userID, i),
			Subject:     subject,
			From:        fmt.Sprintf("hr@%s.com", strings.ToLower(strings.ReplaceAll(company, " ", ""))),
			Body:        body,
			CompanyName: company,
			JobTitle:    title,
			Status:      status,
			Date:        daysAgo(rng.Intn(30)),
		})
	}
	return events, nil
}

func seed(userID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(userID))
	return int64(h.Sum64())
}

func daysAgo(n int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -n)
}
