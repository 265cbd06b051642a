package services

import (
	"strings"

	"github.com/sirupsen/logrus"

	"trend-seo/models"
)

// Normalizer converts raw provider records into validated Post entities.
// A noisy feed of malformed records is expected, so invalid records are
// dropped and counted rather than aborting the run.
type Normalizer struct {
	logger *logrus.Logger
}

// NewNormalizer creates a new Normalizer
func NewNormalizer(logger *logrus.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize validates, filters, deduplicates and caps the raw records,
// preserving the provider's order. It returns the surviving posts and the
// count of records dropped for failing validation.
func (n *Normalizer) Normalize(raw []models.RawPost, params models.QueryParams) ([]*models.Post, int) {
	seen := make(map[string]struct{}, len(raw))
	dropped := 0
	posts := make([]*models.Post, 0, len(raw))

	for _, r := range raw {
		if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.Text) == "" {
			dropped++
			n.logger.Debug("Dropping record with missing id or text")
			continue
		}
		if _, dup := seen[r.ID]; dup {
			dropped++
			n.logger.Debugf("Dropping duplicate post %s", r.ID)
			continue
		}
		seen[r.ID] = struct{}{}
		if r.Likes < params.MinLikes {
			n.logger.Debugf("Filtering post %s below min likes (%d < %d)", r.ID, r.Likes, params.MinLikes)
			continue
		}
		if params.VerifiedOnly && !r.AuthorVerified {
			n.logger.Debugf("Filtering post %s from unverified author", r.ID)
			continue
		}

		posts = append(posts, &models.Post{
			ID:               r.ID,
			Text:             strings.TrimSpace(r.Text),
			AuthorHandle:     strings.TrimSpace(r.AuthorHandle),
			Likes:            r.Likes,
			Reposts:          r.Reposts,
			Replies:          r.Replies,
			CreatedAt:        r.CreatedAt,
			Hashtags:         normalizeHashtags(r.Hashtags),
			IsVerifiedAuthor: r.AuthorVerified,
		})
		if params.MaxResults > 0 && len(posts) >= params.MaxResults {
			break
		}
	}

	n.logger.Infof("Normalized %d posts from %d raw records (%d dropped)", len(posts), len(raw), dropped)
	return posts, dropped
}

// normalizeHashtags lower-cases tags, strips the marker, and deduplicates
// while preserving first-seen order.
func normalizeHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = normalizeKeywordText(strings.TrimPrefix(tag, "#"))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
