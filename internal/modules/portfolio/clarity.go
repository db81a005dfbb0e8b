package portfolio

import (
	"math"

	"github.com/limpide/limpide/internal/modules/marketdata"
)

// assetTypeLessons maps each asset type to the lesson ids that cover it. A
// held asset type counts as understood only when every mapped lesson is
// complete. Types with no mapped lessons can never count as learned.
var assetTypeLessons = map[marketdata.AssetType][]string{
	marketdata.TypeETF:   {"L1-02"},
	marketdata.TypeStock: {"L1-01"},
	marketdata.TypeBond:  {"L1-03"},
	marketdata.TypeGIC:   {"L1-03"},
	marketdata.TypeCash:  {"L0-01"},
}

// ProgressSource supplies the set of lessons a user has completed.
// Implemented by the education module's progress repository.
type ProgressSource interface {
	CompletedLessonIDs(userID int64) (map[string]bool, error)
}

// Clarity computes the "clarity score": the share of held asset types whose
// required lessons the user has completed.
type Clarity struct {
	repo     *Repository
	progress ProgressSource
}

// NewClarity creates a new clarity score service
func NewClarity(repo *Repository, progress ProgressSource) *Clarity {
	return &Clarity{repo: repo, progress: progress}
}

// Score cross-references held asset types with completed lessons. An empty
// portfolio scores {0,0,0}.
func (c *Clarity) Score(userID, portfolioID int64) (*ClarityScore, error) {
	holdings, err := c.repo.HoldingsWithAssets(portfolioID)
	if err != nil {
		return nil, err
	}

	assetTypes := make(map[marketdata.AssetType]bool)
	for _, h := range holdings {
		assetTypes[h.Asset.Type] = true
	}

	if len(assetTypes) == 0 {
		return &ClarityScore{}, nil
	}

	completed, err := c.progress.CompletedLessonIDs(userID)
	if err != nil {
		return nil, err
	}

	learned := 0
	for assetType := range assetTypes {
		required := assetTypeLessons[assetType]
		if len(required) == 0 {
			continue
		}
		all := true
		for _, lessonID := range required {
			if !completed[lessonID] {
				all = false
				break
			}
		}
		if all {
			learned++
		}
	}

	total := len(assetTypes)
	score := int(math.RoundToEven(float64(learned) / float64(total) * 100))

	return &ClarityScore{
		Score:   score,
		Learned: learned,
		Total:   total,
	}, nil
}
