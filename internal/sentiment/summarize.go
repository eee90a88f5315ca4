package sentiment

import (
	"sort"

	"github.com/oddscope/oddscope/internal/domain"
)

const maxTopPosts = 5

// Post is one social post before aggregation. Text is what gets retained in
// the output; Body is extra text (e.g. a selftext) that joins Text for
// classification only.
type Post struct {
	Text       string
	Body       string
	URL        string
	Engagement int
}

// Summarize classifies a batch of posts and folds them into a sentiment
// record: integer percentages that sum to 100, the batch size as volume, and
// the five highest-engagement posts retained verbatim. An empty batch yields
// the neutral default.
func Summarize(platform string, posts []Post, classifier Classifier) domain.SocialSentiment {
	if len(posts) == 0 {
		return domain.NeutralSentiment(platform)
	}

	var pos, neg int
	for _, p := range posts {
		switch classifier.Classify(p.Text + " " + p.Body) {
		case Positive:
			pos++
		case Negative:
			neg++
		}
	}

	total := len(posts)
	posPct := pos * 100 / total
	negPct := neg * 100 / total

	top := make([]Post, len(posts))
	copy(top, posts)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Engagement > top[j].Engagement
	})
	if len(top) > maxTopPosts {
		top = top[:maxTopPosts]
	}

	sampled := make([]domain.SocialPost, 0, len(top))
	for _, p := range top {
		sampled = append(sampled, domain.SocialPost{
			Text:       p.Text,
			URL:        p.URL,
			Engagement: p.Engagement,
		})
	}

	return domain.SocialSentiment{
		Platform: platform,
		Positive: posPct,
		Negative: negPct,
		Neutral:  100 - posPct - negPct,
		Volume:   total,
		TopPosts: sampled,
	}
}
