package review

import (
	"math"
	"sort"
)

// OutlierThreshold is the z-score above which an average is flagged
const OutlierThreshold = 1.0

// Aggregate returns the mean received score for every member.
// Members without reviews score 0; reviews for non-members are ignored.
func Aggregate(members []string, reviews []PeerReview) map[string]float64 {
	sums := make(map[string]int, len(members))
	counts := make(map[string]int, len(members))
	for _, r := range reviews {
		sums[r.RevieweeZid] += r.Score
		counts[r.RevieweeZid]++
	}

	out := make(map[string]float64, len(members))
	for _, zid := range members {
		if n := counts[zid]; n > 0 {
			out[zid] = float64(sums[zid]) / float64(n)
		} else {
			out[zid] = 0
		}
	}
	return out
}

// ReceivedReview is one review as the reviewee received it
type ReceivedReview struct {
	From    string `json:"from"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// ReviewsByReviewee groups every review under its reviewee in review order,
// keeping the reviewer and the individual score.
func ReviewsByReviewee(reviews []PeerReview) map[string][]ReceivedReview {
	out := make(map[string][]ReceivedReview)
	for _, r := range reviews {
		out[r.RevieweeZid] = append(out[r.RevieweeZid], ReceivedReview{
			From:    r.ReviewerZid,
			Score:   r.Score,
			Comment: r.Comment,
		})
	}
	return out
}

// DetectOutliers flags averages whose z-score exceeds OutlierThreshold.
// The standard deviation is the sample deviation and needs at least two scores.
// Returned zids are sorted.
func DetectOutliers(averages map[string]float64) (bool, []string) {
	n := len(averages)
	if n < 2 {
		return false, []string{}
	}

	var sum float64
	for _, v := range averages {
		sum += v
	}
	mean := sum / float64(n)

	var sq float64
	for _, v := range averages {
		sq += (v - mean) * (v - mean)
	}
	std := math.Sqrt(sq / float64(n-1))
	if std == 0 {
		return false, []string{}
	}

	outliers := []string{}
	for zid, v := range averages {
		if math.Abs(v-mean)/std > OutlierThreshold {
			outliers = append(outliers, zid)
		}
	}
	sort.Strings(outliers)
	return len(outliers) > 0, outliers
}
