package priority_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/flowboard/internal/domain/model"
	"github.com/okian/flowboard/internal/domain/priority"
	. "github.com/smartystreets/goconvey/convey"
)

var scorerNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newScorer(opts ...priority.Option) *priority.Scorer {
	opts = append(opts, priority.WithClock(func() time.Time { return scorerNow }))
	return priority.New(opts...)
}

func f(v float64) *float64 { return &v }

func TestFactorsValidation(t *testing.T) {
	Convey("Given the factor constructor", t, func() {
		Convey("When all inputs are valid", func() {
			got, err := priority.NewFactors(0.8, 0.4, 1.0, 0.0, 0.5, 0.9)
			So(err, ShouldBeNil)
			So(got.CustomerValue, ShouldEqual, 0.8)
			So(got.BlockedPenalty, ShouldEqual, 0.5)
		})

		Convey("When a factor is out of range", func() {
			_, err := priority.NewFactors(1.2, 0, 0, 0, 0, 1)
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)

			_, err = priority.NewFactors(0.5, -0.1, 0, 0, 0, 1)
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})

		Convey("When the penalty is neither 0 nor 0.5", func() {
			_, err := priority.NewFactors(0.5, 0, 0, 0, 0.3, 1)
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})
	})
}

func TestCategorize(t *testing.T) {
	Convey("Given the category bands", t, func() {
		So(priority.Categorize(0.95), ShouldEqual, priority.CategoryCritical)
		So(priority.Categorize(0.90), ShouldEqual, priority.CategoryCritical)
		So(priority.Categorize(0.89), ShouldEqual, priority.CategoryHigh)
		So(priority.Categorize(0.70), ShouldEqual, priority.CategoryHigh)
		So(priority.Categorize(0.69), ShouldEqual, priority.CategoryMedium)
		So(priority.Categorize(0.40), ShouldEqual, priority.CategoryMedium)
		So(priority.Categorize(0.39), ShouldEqual, priority.CategoryLow)
		So(priority.Categorize(0), ShouldEqual, priority.CategoryLow)
	})
}

func TestScorer_Evaluate(t *testing.T) {
	Convey("Given a scorer with default weights", t, func() {
		s := newScorer()

		worker := priority.Worker{ID: "w1", Skills: []string{"go", "sql"}, RemainingCapacity: 1.0}

		Convey("When an item blocks three others with full hints", func() {
			item := priority.Item{
				ID:                "item-1",
				Blocks:            []string{"a", "b", "c"},
				CustomerValueHint: f(1.0),
				LearningValueHint: f(0.0),
			}
			res := s.Evaluate(item, priority.Context{Workers: []priority.Worker{worker}})

			Convey("Then the unblock factor should be 3/5", func() {
				So(res.Factors.UnblockImpact, ShouldAlmostEqual, 0.6, 1e-9)
			})

			Convey("And the score should combine the weighted factors", func() {
				// 0.4*1.0 + 0.3*0.6 + 0.2*1.0 + 0.1*0.0
				So(res.Score, ShouldAlmostEqual, 0.78, 1e-9)
				So(res.Category, ShouldEqual, priority.CategoryHigh)
			})

			Convey("And confidence should stay at 1.0 with explicit hints", func() {
				So(res.Confidence, ShouldAlmostEqual, 1.0, 1e-9)
			})
		})

		Convey("When an item blocks more than five others", func() {
			item := priority.Item{ID: "item-1", Blocks: []string{"a", "b", "c", "d", "e", "f", "g"}}
			res := s.Evaluate(item, priority.Context{})

			Convey("Then the unblock factor should cap at 1.0", func() {
				So(res.Factors.UnblockImpact, ShouldEqual, 1.0)
			})
		})

		Convey("When the item is blocked", func() {
			item := priority.Item{
				ID:                "item-1",
				BlockedBy:         []string{"dep-1"},
				CustomerValueHint: f(1.0),
				LearningValueHint: f(1.0),
				Blocks:            []string{"a", "b", "c", "d", "e"},
			}
			res := s.Evaluate(item, priority.Context{Workers: []priority.Worker{worker}})

			Convey("Then the score should be exactly halved", func() {
				// all four factors are 1.0, so the raw score is 1.0
				So(res.Factors.BlockedPenalty, ShouldEqual, 0.5)
				So(res.Score, ShouldAlmostEqual, 0.5, 1e-9)
			})

			Convey("And the rationale should state the halving", func() {
				So(res.Rationale, ShouldContainSubstring, "score halved: item is currently blocked")
			})
		})

		Convey("When no hints are given and no workers exist", func() {
			item := priority.Item{ID: "item-1", Type: "task", Title: "routine chore"}
			res := s.Evaluate(item, priority.Context{})

			Convey("Then defaults should apply and confidence should floor", func() {
				So(res.Factors.CustomerValue, ShouldEqual, 0.5)
				So(res.Factors.LearningValue, ShouldEqual, 0.5)
				So(res.Factors.WorkerAvailability, ShouldEqual, 0.0)
				// 1.0 - 0.2 (customer default) - 0.1 (learning default) - 0.1 (no workers)
				So(res.Confidence, ShouldAlmostEqual, 0.6, 1e-9)
			})
		})

		Convey("When customer value resolves through a hypothesis", func() {
			item := priority.Item{ID: "item-1", LearningValueHint: f(0.5)}
			ctx := priority.Context{
				Workers: []priority.Worker{worker},
				Hypotheses: []priority.Hypothesis{
					{RelatedTo: "item-1", Confidence: 0.3},
					{RelatedTo: "item-1", Confidence: 0.9},
					{RelatedTo: "other", Confidence: 1.0},
				},
			}
			res := s.Evaluate(item, ctx)

			Convey("Then the best related hypothesis should win", func() {
				So(res.Factors.CustomerValue, ShouldAlmostEqual, 0.9, 1e-9)
				So(res.Confidence, ShouldAlmostEqual, 1.0, 1e-9)
			})
		})

		Convey("When customer value resolves through ROI", func() {
			item := priority.Item{ID: "item-1", ROIPercentage: f(250)}
			res := s.Evaluate(item, priority.Context{})

			Convey("Then ROI should normalize and clamp to 1.0", func() {
				So(res.Factors.CustomerValue, ShouldEqual, 1.0)
			})
		})

		Convey("When required skills are only partially covered", func() {
			item := priority.Item{ID: "item-1", RequiredSkills: []string{"go", "ml"}}
			res := s.Evaluate(item, priority.Context{Workers: []priority.Worker{worker}})

			Convey("Then availability should be zero", func() {
				So(res.Factors.WorkerAvailability, ShouldEqual, 0.0)
			})
		})

		Convey("When two of three workers match at half capacity", func() {
			item := priority.Item{ID: "item-1", RequiredSkills: []string{"go"}}
			ctx := priority.Context{Workers: []priority.Worker{
				{ID: "w1", Skills: []string{"go"}, RemainingCapacity: 0.5},
				{ID: "w2", Skills: []string{"go", "sql"}, RemainingCapacity: 0.5},
				{ID: "w3", Skills: []string{"design"}, RemainingCapacity: 1.0},
			}}
			res := s.Evaluate(item, ctx)

			Convey("Then availability should be the matching capacity ratio", func() {
				So(res.Factors.WorkerAvailability, ShouldAlmostEqual, 0.5, 1e-9)
			})
		})

		Convey("When the item type suggests learning value", func() {
			res := s.Evaluate(priority.Item{ID: "r", Type: "research_log"}, priority.Context{})
			So(res.Factors.LearningValue, ShouldEqual, 0.8)

			res = s.Evaluate(priority.Item{ID: "e", Type: "experiment"}, priority.Context{})
			So(res.Factors.LearningValue, ShouldEqual, 0.7)

			res = s.Evaluate(priority.Item{ID: "s", Type: "spike"}, priority.Context{})
			So(res.Factors.LearningValue, ShouldEqual, 0.6)
		})

		Convey("When the title carries a learning keyword", func() {
			res := s.Evaluate(priority.Item{ID: "k", Type: "task", Title: "investigate flaky saves"}, priority.Context{})
			So(res.Factors.LearningValue, ShouldEqual, 0.7)
		})

		Convey("When every factor lands in [0,1]", func() {
			items := []priority.Item{
				{ID: "a", CustomerValueHint: f(5.0), Blocks: make([]string, 50)},
				{ID: "b", ROIPercentage: f(-10)},
				{ID: "c"},
			}
			for _, item := range items {
				res := s.Evaluate(item, priority.Context{})
				So(res.Score, ShouldBeBetweenOrEqual, 0, 1)
				So(res.Factors.CustomerValue, ShouldBeBetweenOrEqual, 0, 1)
				So(res.Factors.UnblockImpact, ShouldBeBetweenOrEqual, 0, 1)
			}
		})
	})
}

func TestRationaleDeterminism(t *testing.T) {
	Convey("Given the same item evaluated twice", t, func() {
		s := newScorer()
		item := priority.Item{
			ID:                "item-1",
			Blocks:            []string{"a", "b", "c"},
			CustomerValueHint: f(0.9),
			LearningValueHint: f(0.7),
			BlockedBy:         []string{"dep"},
		}
		ctx := priority.Context{Workers: []priority.Worker{{ID: "w", RemainingCapacity: 1}}}

		first := s.Evaluate(item, ctx)
		second := s.Evaluate(item, ctx)

		Convey("Then the rationale should be byte-for-byte identical", func() {
			So(first.Rationale, ShouldEqual, second.Rationale)
		})

		Convey("And it should name the contributing factors", func() {
			So(first.Rationale, ShouldContainSubstring, "strong customer value (0.90)")
			So(first.Rationale, ShouldContainSubstring, "unblocks an estimated 3 item(s)")
			So(first.Rationale, ShouldContainSubstring, "high learning value (0.70)")
		})

		Convey("And the header should carry the category and score", func() {
			So(first.Rationale, ShouldStartWith, "MEDIUM priority (score 0.")
		})
	})

	Convey("Given an item that unblocks nothing", t, func() {
		s := newScorer()
		res := s.Evaluate(priority.Item{ID: "i", CustomerValueHint: f(0.2), LearningValueHint: f(0.1)}, priority.Context{})

		Convey("Then the rationale should say so", func() {
			So(res.Rationale, ShouldContainSubstring, "does not unblock any other work")
			So(res.Rationale, ShouldContainSubstring, "low customer value (0.20)")
		})
	})
}

func TestRankBacklog(t *testing.T) {
	Convey("Given a backlog with distinct and tied scores", t, func() {
		s := newScorer()
		items := []priority.Item{
			{ID: "low", CustomerValueHint: f(0.1), LearningValueHint: f(0.1)},
			{ID: "tie-1", CustomerValueHint: f(0.5), LearningValueHint: f(0.5)},
			{ID: "high", CustomerValueHint: f(1.0), LearningValueHint: f(1.0), Blocks: []string{"a", "b", "c", "d", "e"}},
			{ID: "tie-2", CustomerValueHint: f(0.5), LearningValueHint: f(0.5)},
		}
		ctx := priority.Context{Workers: []priority.Worker{{ID: "w", RemainingCapacity: 1}}}

		Convey("When ranking", func() {
			results := s.RankBacklog(items, ctx)

			Convey("Then results should be sorted descending by score", func() {
				So(len(results), ShouldEqual, 4)
				So(results[0].ItemID, ShouldEqual, "high")
				So(results[len(results)-1].ItemID, ShouldEqual, "low")
				for i := 1; i < len(results); i++ {
					So(results[i].Score, ShouldBeLessThanOrEqualTo, results[i-1].Score)
				}
			})

			Convey("And tied items should keep their input order", func() {
				So(results[1].ItemID, ShouldEqual, "tie-1")
				So(results[2].ItemID, ShouldEqual, "tie-2")
			})
		})

		Convey("When ranking an empty backlog", func() {
			So(len(s.RankBacklog(nil, ctx)), ShouldEqual, 0)
		})
	})
}
