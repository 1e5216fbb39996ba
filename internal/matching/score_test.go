package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khojpayo/khojpayo-backend/model"
)

func lostWallet() model.Item {
	return model.Item{
		Key:          "lost-1",
		Type:         model.ItemLost,
		Status:       model.ItemActive,
		Title:        "Black leather wallet",
		Category:     "wallet",
		District:     "Kathmandu",
		Municipality: "Kathmandu",
		OccurredAt:   time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func foundWallet() model.Item {
	return model.Item{
		Key:          "found-1",
		Type:         model.ItemFound,
		Status:       model.ItemActive,
		Title:        "Found a black wallet near Thamel",
		Category:     "wallet",
		District:     "Kathmandu",
		Municipality: "Kathmandu",
		OccurredAt:   time.Date(2026, 3, 12, 18, 0, 0, 0, time.UTC),
	}
}

func TestScoreNonCandidates(t *testing.T) {
	lost := lostWallet()

	sameType := foundWallet()
	sameType.Type = model.ItemLost
	assert.Zero(t, Score(lost, sameType))

	otherCategory := foundWallet()
	otherCategory.Category = "phone"
	assert.Zero(t, Score(lost, otherCategory))
}

func TestScoreAdditiveWeights(t *testing.T) {
	lost := lostWallet()

	t.Run("category only", func(t *testing.T) {
		found := foundWallet()
		found.Title = "something unrelated"
		found.District = "Pokhara"
		found.Municipality = ""
		found.OccurredAt = lost.OccurredAt.AddDate(0, 2, 0)
		assert.Equal(t, 50, Score(lost, found))
	})

	t.Run("district without municipality", func(t *testing.T) {
		found := foundWallet()
		found.Title = "something unrelated"
		found.Municipality = "Lalitpur"
		found.OccurredAt = lost.OccurredAt.AddDate(0, 2, 0)
		assert.Equal(t, 70, Score(lost, found))
	})

	t.Run("municipality requires district", func(t *testing.T) {
		found := foundWallet()
		found.Title = "something unrelated"
		found.District = "Pokhara"
		found.OccurredAt = lost.OccurredAt.AddDate(0, 2, 0)
		// matching municipality contributes nothing when districts differ
		assert.Equal(t, 50, Score(lost, found))
	})

	t.Run("date within window", func(t *testing.T) {
		found := foundWallet()
		found.Title = "something unrelated"
		assert.Equal(t, 95, Score(lost, found))
	})

	t.Run("keyword overlap", func(t *testing.T) {
		found := foundWallet()
		found.OccurredAt = lost.OccurredAt.AddDate(0, 2, 0)
		// shared words of 4+ chars: "black", "wallet" -> 10 points
		assert.Equal(t, 90, Score(lost, found))
	})

	t.Run("everything matches", func(t *testing.T) {
		found := foundWallet()
		assert.Equal(t, 105, Score(lost, found))
	})
}

func TestScoreKeywordCap(t *testing.T) {
	lost := lostWallet()
	lost.Title = "black leather wallet with citizenship card photos money"
	lost.District = ""
	lost.OccurredAt = time.Time{}

	found := foundWallet()
	found.Title = "black leather wallet with citizenship card photos money"
	found.District = ""
	found.OccurredAt = time.Time{}

	// six shared keywords would be 30, capped at 25
	assert.Equal(t, 50+25, Score(lost, found))
}

func TestRank(t *testing.T) {
	lost := lostWallet()

	weak := foundWallet()
	weak.Key = "found-weak"
	weak.Title = "something unrelated"
	weak.District = "Pokhara"
	weak.OccurredAt = lost.OccurredAt.AddDate(0, 2, 0)

	strong := foundWallet()
	strong.Key = "found-strong"

	nonCandidate := foundWallet()
	nonCandidate.Key = "found-phone"
	nonCandidate.Category = "phone"

	self := lost

	matches := Rank(lost, []model.Item{weak, nonCandidate, self, strong})
	require.Len(t, matches, 2)
	assert.Equal(t, "found-strong", matches[0].Item.Key)
	assert.Equal(t, "found-weak", matches[1].Item.Key)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestRankEmpty(t *testing.T) {
	matches := Rank(lostWallet(), nil)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}
