package priority

import (
	"sort"
	"strings"
	"time"
)

// Default factor weights and value resolution constants.
const (
	defaultCustomerWeight = 0.4
	defaultUnblockWeight  = 0.3
	defaultWorkerWeight   = 0.2
	defaultLearningWeight = 0.1

	defaultCustomerValue = 0.5
	defaultLearningValue = 0.5
	roiScale             = 100.0
	unblockScale         = 5.0

	fullCapacityPerWorker = 1.0

	fullConfidence      = 1.0
	minConfidence       = 0.5
	customerDefaultDrop = 0.2
	learningDefaultDrop = 0.1
	noWorkerDataDrop    = 0.1
)

// Learning value defaults by item type keyword.
const (
	researchLearningValue   = 0.8
	experimentLearningValue = 0.7
	spikeLearningValue      = 0.6
	keywordLearningValue    = 0.7
)

// learningKeywords mark titles/descriptions that suggest high learning value.
var learningKeywords = []string{
	"hard problem", "unknown", "investigate", "research",
	"uncertainty", "experiment", "explore",
}

// Item is a work item under evaluation, with optional hints. Explicit typed
// fields with a documented default-resolution order replace the loosely
// typed maps callers used to pass.
type Item struct {
	ID             string
	Type           string
	Title          string
	Description    string
	Blocks         []string
	BlockedBy      []string
	RequiredSkills []string

	CustomerValueHint *float64
	LearningValueHint *float64
	ROIPercentage     *float64
}

// Worker is an available worker with skills and remaining capacity in [0,1].
type Worker struct {
	ID                string
	Skills            []string
	RemainingCapacity float64
}

// Hypothesis links a confidence estimate to a work item.
type Hypothesis struct {
	RelatedTo  string
	Confidence float64
}

// Context carries the evaluation surroundings: who can work and what is
// hypothesized about the backlog.
type Context struct {
	Workers    []Worker
	Hypotheses []Hypothesis
}

// Result is the explainable priority of one item.
type Result struct {
	ItemID      string    `json:"item_id"`
	Score       float64   `json:"priority_score"`
	Factors     Factors   `json:"factors"`
	Rationale   string    `json:"rationale"`
	Category    Category  `json:"category"`
	Confidence  float64   `json:"confidence"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Scorer combines the four factors into a weighted score.
type Scorer struct {
	customerWeight float64
	unblockWeight  float64
	workerWeight   float64
	learningWeight float64
	clock          func() time.Time
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights overrides the four factor weights (customer value, unblock
// impact, worker availability, learning value). Non-positive weights are
// ignored.
func WithWeights(customer, unblock, worker, learning float64) Option {
	return func(s *Scorer) {
		if customer > 0 {
			s.customerWeight = customer
		}
		if unblock > 0 {
			s.unblockWeight = unblock
		}
		if worker > 0 {
			s.workerWeight = worker
		}
		if learning > 0 {
			s.learningWeight = learning
		}
	}
}

// WithClock sets the time source, used by tests for determinism.
func WithClock(clock func() time.Time) Option {
	return func(s *Scorer) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs a Scorer with the default weights.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		customerWeight: defaultCustomerWeight,
		unblockWeight:  defaultUnblockWeight,
		workerWeight:   defaultWorkerWeight,
		learningWeight: defaultLearningWeight,
		clock:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate computes the priority result for one item.
func (s *Scorer) Evaluate(item Item, ctx Context) Result {
	confidence := fullConfidence

	customer, explicit := s.customerValue(item, ctx)
	if !explicit {
		confidence -= customerDefaultDrop
	}
	learning, explicit := s.learningValue(item)
	if !explicit {
		confidence -= learningDefaultDrop
	}
	if len(ctx.Workers) == 0 {
		confidence -= noWorkerDataDrop
	}
	if confidence < minConfidence {
		confidence = minConfidence
	}

	unblock := s.unblockImpact(item)
	availability := s.workerAvailability(item, ctx)

	penalty := noPenalty
	if len(item.BlockedBy) > 0 {
		penalty = blockedPenalty
	}

	factors := Factors{
		CustomerValue:      customer,
		UnblockImpact:      unblock,
		WorkerAvailability: availability,
		LearningValue:      learning,
		BlockedPenalty:     penalty,
		Confidence:         confidence,
	}

	score := s.customerWeight*customer +
		s.unblockWeight*unblock +
		s.workerWeight*availability +
		s.learningWeight*learning
	score *= 1 - penalty

	category := Categorize(score)
	return Result{
		ItemID:      item.ID,
		Score:       score,
		Factors:     factors,
		Rationale:   rationale(category, score, factors),
		Category:    category,
		Confidence:  confidence,
		GeneratedAt: s.clock(),
	}
}

// RankBacklog evaluates every item and sorts descending by score. The sort
// is stable: equal scores keep their input order, which callers must not
// read meaning into.
func (s *Scorer) RankBacklog(items []Item, ctx Context) []Result {
	results := make([]Result, len(items))
	for i, item := range items {
		results[i] = s.Evaluate(item, ctx)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// customerValue resolves in precedence order: explicit hint, best related
// hypothesis confidence, normalized ROI, default. The second return is
// false when the default was used.
func (s *Scorer) customerValue(item Item, ctx Context) (float64, bool) {
	if item.CustomerValueHint != nil {
		return clamp01(*item.CustomerValueHint), true
	}
	best, found := 0.0, false
	for _, h := range ctx.Hypotheses {
		if h.RelatedTo == item.ID && h.Confidence > best {
			best, found = h.Confidence, true
		}
	}
	if found {
		return clamp01(best), true
	}
	if item.ROIPercentage != nil {
		return clamp01(*item.ROIPercentage / roiScale), true
	}
	return defaultCustomerValue, false
}

// unblockImpact scales linearly with how many items completing this one
// unblocks, capped at 1.0.
func (s *Scorer) unblockImpact(item Item) float64 {
	impact := float64(len(item.Blocks)) / unblockScale
	if impact > 1 {
		impact = 1
	}
	return impact
}

// workerAvailability measures how much matching capacity exists. A worker
// matches only when the item's required skills are a subset of theirs.
func (s *Scorer) workerAvailability(item Item, ctx Context) float64 {
	if len(item.RequiredSkills) == 0 {
		if len(ctx.Workers) > 0 {
			return 1.0
		}
		return 0.0
	}

	matching := 0
	capacity := 0.0
	for _, w := range ctx.Workers {
		if hasSkills(w.Skills, item.RequiredSkills) {
			matching++
			capacity += w.RemainingCapacity
		}
	}
	if matching == 0 {
		return 0.0
	}
	return clamp01(capacity / (float64(matching) * fullCapacityPerWorker))
}

// learningValue resolves: explicit hint, item-type keyword, title or
// description keyword, default. The second return is false when the
// default was used.
func (s *Scorer) learningValue(item Item) (float64, bool) {
	if item.LearningValueHint != nil {
		return clamp01(*item.LearningValueHint), true
	}
	itemType := strings.ToLower(item.Type)
	switch {
	case strings.Contains(itemType, "research"):
		return researchLearningValue, true
	case strings.Contains(itemType, "experiment"):
		return experimentLearningValue, true
	case strings.Contains(itemType, "spike"):
		return spikeLearningValue, true
	}
	text := strings.ToLower(item.Title + " " + item.Description)
	for _, kw := range learningKeywords {
		if strings.Contains(text, kw) {
			return keywordLearningValue, true
		}
	}
	return defaultLearningValue, false
}

func hasSkills(workerSkills, required []string) bool {
	for _, r := range required {
		found := false
		for _, s := range workerSkills {
			if s == r {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
