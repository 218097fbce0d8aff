package stats

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/civicpulse/feedback-platform/pkg/common/logger"
	"github.com/civicpulse/feedback-platform/pkg/common/models"
	"github.com/civicpulse/feedback-platform/pkg/questionnaire"
)

type Lister interface {
	List(ctx context.Context, filter models.ResponseFilter) ([]models.SurveyResponse, error)
}

type Service struct {
	store      Lister
	cache      *Cache
	catalog    questionnaire.Catalog
	topReasons int
	nowFunc    func() time.Time
}

// NewService builds the aggregation service. cache may be nil when Redis is
// not configured.
func NewService(store Lister, cache *Cache, catalog questionnaire.Catalog, topReasons int) *Service {
	if topReasons <= 0 {
		topReasons = 5
	}
	return &Service{
		store:      store,
		cache:      cache,
		catalog:    catalog,
		topReasons: topReasons,
		nowFunc:    time.Now,
	}
}

// ComputeStats folds every matching response into the dashboard summary. Both
// answer payloads on a single record contribute: a mobile record that carries
// baseline answers counts toward the baseline tallies too, because the same
// three questions may have been answered on either channel. A store failure
// degrades to a zeroed summary rather than breaking the dashboard.
func (s *Service) ComputeStats(ctx context.Context, filter models.ResponseFilter) (models.StatsSummary, error) {
	if s.cache != nil {
		if summary, ok := s.cache.Get(ctx, filter); ok {
			return summary, nil
		}
	}

	responses, err := s.store.List(ctx, filter)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load responses for aggregation")
		return s.emptySummary(), nil
	}

	summary := s.emptySummary()
	summary.TotalFeedbacks = len(responses)

	today := s.nowFunc().UTC().Format("2006-01-02")
	var scoreSum, scoreCount int
	keywords := make(map[string]int)

	for _, resp := range responses {
		if resp.CreatedAt.UTC().Format("2006-01-02") == today {
			summary.TodayFeedbacks++
		}
		if resp.TabletAnswers != nil {
			s.foldBaseline(&summary, *resp.TabletAnswers, &scoreSum, &scoreCount)
		}
		if resp.QRAnswers != nil {
			s.foldBaseline(&summary, resp.QRAnswers.KioskAnswers, &scoreSum, &scoreCount)
			s.foldMobile(&summary, *resp.QRAnswers, keywords)
		}
	}

	if scoreCount > 0 {
		summary.Q3Cleanliness.Average = fmt.Sprintf("%.1f", float64(scoreSum)/float64(scoreCount))
	}
	summary.Keywords = topKeywords(keywords, s.topReasons)

	if s.cache != nil {
		s.cache.Set(ctx, filter, summary)
	}
	return summary, nil
}

// ListResponses returns the raw filtered listing, newest first.
func (s *Service) ListResponses(ctx context.Context, filter models.ResponseFilter) ([]models.SurveyResponse, error) {
	return s.store.List(ctx, filter)
}

func (s *Service) foldBaseline(summary *models.StatsSummary, answers models.KioskAnswers, scoreSum, scoreCount *int) {
	if answers.Q1Experience != "" {
		summary.Q1Experience[answers.Q1Experience]++
	}
	if answers.Q2ExperienceIntent != "" {
		summary.Q2Intent[answers.Q2ExperienceIntent]++
	}
	if v := answers.Q3CleanlinessSatisfaction; v != "" {
		if score, ok := s.catalog.Score(questionnaire.QuestionCleanliness, v); ok {
			*scoreSum += score
			*scoreCount++
			summary.Q3Cleanliness.Distribution[strconv.Itoa(score)]++
		} else {
			summary.Q3Cleanliness.Distribution["0"]++
		}
	}
}

func (s *Service) foldMobile(summary *models.StatsSummary, answers models.MobileAnswers, keywords map[string]int) {
	for _, reason := range answers.Q4Reason {
		summary.Q4Reasons[reason]++
		keywords[reason]++
	}
	if answers.Q6Comparison != "" {
		summary.Q6Comparison[answers.Q6Comparison]++
	}
	if answers.Q7Frequency != "" {
		summary.Q7Frequency[answers.Q7Frequency]++
	}
}

// emptySummary seeds every known option at zero so the dashboard always
// receives the full key set, and never a nil map.
func (s *Service) emptySummary() models.StatsSummary {
	summary := models.StatsSummary{
		Q1Experience: seedOptions(s.catalog, questionnaire.QuestionExperience),
		Q2Intent:     seedOptions(s.catalog, questionnaire.QuestionIntent),
		Q3Cleanliness: models.CleanlinessStats{
			Average:      "0.0",
			Distribution: map[string]int{"5": 0, "4": 0, "3": 0, "2": 0, "1": 0, "0": 0},
		},
		Q4Reasons:    seedOptions(s.catalog, questionnaire.QuestionReason),
		Q6Comparison: seedOptions(s.catalog, questionnaire.QuestionComparison),
		Q7Frequency:  seedOptions(s.catalog, questionnaire.QuestionFrequency),
		Keywords:     []models.KeywordCount{},
	}
	return summary
}

func seedOptions(catalog questionnaire.Catalog, question string) map[string]int {
	counts := make(map[string]int)
	for key := range catalog.Options(question) {
		counts[key] = 0
	}
	return counts
}

func topKeywords(counts map[string]int, limit int) []models.KeywordCount {
	ranked := make([]models.KeywordCount, 0, len(counts))
	for keyword, count := range counts {
		ranked = append(ranked, models.KeywordCount{Keyword: keyword, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Keyword < ranked[j].Keyword
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
