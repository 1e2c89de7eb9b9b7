package githubapi

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"

	"monkArcAPI/internal/datemath"
)

// Client looks up commits on a journey's linked repository. Lookups are
// best-effort: check-ins proceed with zero commits when GitHub is down.
type Client struct {
	gh *github.Client
}

func NewClient() *Client {
	gh := github.NewClient(nil)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		gh = gh.WithAuthToken(token)
	}
	return &Client{gh: gh}
}

// CommitsForDate counts commits pushed to repo ("owner/name") on the given
// calendar day.
func (c *Client) CommitsForDate(ctx context.Context, repo string, date time.Time) (int, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return 0, fmt.Errorf("invalid repository %q, want owner/name", repo)
	}

	since := datemath.StartOfDay(date)
	opts := &github.CommitsListOptions{
		Since:       since,
		Until:       since.AddDate(0, 0, 1),
		ListOptions: github.ListOptions{PerPage: 100},
	}

	total := 0
	for {
		commits, resp, err := c.gh.Repositories.ListCommits(ctx, owner, name, opts)
		if err != nil {
			return 0, fmt.Errorf("failed to list commits for %s: %w", repo, err)
		}
		total += len(commits)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return total, nil
}
