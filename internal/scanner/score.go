package scanner

import (
	"math"

	"github.com/sightline/sightline/internal/models"
)

// Deduction weights per issue type. Errors weigh 6x notices and
// warnings 2x notices; downstream consumers compare scores across
// scans, so the weighting must stay stable.
const (
	errorWeight   = 3.0
	warningWeight = 1.0
	noticeWeight  = 0.5

	// scaleThreshold is the issue count above which deductions are
	// dampened, so very noisy pages do not all collapse to 0.
	scaleThreshold = 50
)

// Score reduces an issue list to a 0-100 accessibility score.
// An empty list scores a perfect 100.
func Score(issues []models.Issue) int {
	if len(issues) == 0 {
		return 100
	}

	errors, warnings, notices := models.CountByType(issues)
	total := errors + warnings + notices
	if total == 0 {
		return 100
	}

	scale := 1.0
	if total > scaleThreshold {
		scale = float64(scaleThreshold) / float64(total)
	}

	deduction := float64(errors)*errorWeight*scale +
		float64(warnings)*warningWeight*scale +
		float64(notices)*noticeWeight*scale

	score := 100 - deduction
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return int(math.Round(score))
}
