package tags_test

import (
	"testing"
	"time"

	"github.com/okian/flowboard/internal/domain/model"
	"github.com/okian/flowboard/internal/domain/tags"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExtract(t *testing.T) {
	Convey("Given free text with tag tokens", t, func() {
		Convey("When extracting from mixed text", func() {
			got := tags.Extract("This is #Blocked because @Alice asked, mark it !high now")

			Convey("Then tags should be lowercased in order of appearance", func() {
				So(got, ShouldResemble, []string{"#blocked", "@alice", "!high"})
			})
		})

		Convey("When the text has no tags", func() {
			So(tags.Extract("nothing to see here"), ShouldBeNil)
		})

		Convey("When a prefix has no word after it", func() {
			So(tags.Extract("just a # and a @ and a !"), ShouldBeNil)
		})

		Convey("When tags contain digits, underscores and hyphens", func() {
			got := tags.Extract("#sprint-12 @dev_2")
			So(got, ShouldResemble, []string{"#sprint-12", "@dev_2"})
		})

		Convey("When punctuation terminates a tag", func() {
			got := tags.Extract("done, see #review. ping @bob!")
			So(got, ShouldResemble, []string{"#review", "@bob"})
		})

		Convey("When extraction runs twice on the same text", func() {
			text := "#blocked @alice !low"

			Convey("Then the result should be identical", func() {
				So(tags.Extract(text), ShouldResemble, tags.Extract(text))
			})
		})
	})
}

func TestApply(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given a fresh unassigned card", t, func() {
		card := &model.Card{
			ID:   "card-1",
			Item: model.ItemReference{ItemID: "item-1", Priority: model.PriorityMedium},
		}

		Convey("When a comment carries '#blocked @alice !high'", func() {
			text := "#blocked waiting on @alice, raise to !high"
			list := tags.Extract(text)
			res := tags.Apply(card, list, text, now)

			Convey("Then the card should be blocked with the default reason", func() {
				So(card.Blocked, ShouldBeTrue)
				So(card.BlockedReason, ShouldEqual, "blocked via tag")
			})

			Convey("And the assignee should be set to alice", func() {
				So(card.Item.Assignee, ShouldEqual, "alice")
				So(res.StatusUpdates["assignee"], ShouldEqual, "alice")
			})

			Convey("And the priority should be high", func() {
				So(card.Item.Priority, ShouldEqual, model.PriorityHigh)
				So(card.Item.UpdatedAt.Equal(now), ShouldBeTrue)
			})

			Convey("And all three actions should be reported", func() {
				So(res.TagsProcessed, ShouldResemble, []string{"#blocked", "@alice", "!high"})
				So(len(res.Actions), ShouldEqual, 3)
				So(res.Actions[0].Type, ShouldEqual, tags.ActionMarkBlocked)
				So(res.Actions[1].Type, ShouldEqual, tags.ActionNotifyAssignee)
				So(res.Actions[1].Target, ShouldEqual, "alice")
				So(res.Actions[2].Type, ShouldEqual, tags.ActionSetPriority)
				So(res.Actions[2].Target, ShouldEqual, "high")
			})
		})

		Convey("When the blockage cue lives in the surrounding text", func() {
			text := "blocked on #infra, ping @bob !high"
			list := tags.Extract(text)
			res := tags.Apply(card, list, text, now)

			Convey("Then extraction should not invent a #blocked tag", func() {
				So(list, ShouldResemble, []string{"#infra", "@bob", "!high"})
			})

			Convey("And the card should still end up blocked", func() {
				So(card.Blocked, ShouldBeTrue)
				So(card.BlockedReason, ShouldNotBeEmpty)
				So(res.Actions[0].Type, ShouldEqual, tags.ActionMarkBlocked)
			})

			Convey("And the mention and priority effects should apply", func() {
				So(card.Item.Assignee, ShouldEqual, "bob")
				So(card.Item.Priority, ShouldEqual, model.PriorityHigh)
			})
		})

		Convey("When the text only says 'unblocked'", func() {
			res := tags.Apply(card, tags.Extract("unblocked now, see #infra"), "unblocked now, see #infra", now)

			Convey("Then the card should stay unblocked", func() {
				So(card.Blocked, ShouldBeFalse)
				So(len(res.Actions), ShouldEqual, 0)
			})
		})

		Convey("When the card already has a blocked reason", func() {
			card.BlockedReason = "waiting on review"
			tags.Apply(card, []string{"#blocked"}, "", now)

			Convey("Then the existing reason should be preserved", func() {
				So(card.Blocked, ShouldBeTrue)
				So(card.BlockedReason, ShouldEqual, "waiting on review")
			})
		})

		Convey("When two mentions arrive in sequence", func() {
			tags.Apply(card, []string{"@alice"}, "", now)
			res := tags.Apply(card, []string{"@bob"}, "", now)

			Convey("Then the first writer should win the assignee", func() {
				So(card.Item.Assignee, ShouldEqual, "alice")
				So(res.StatusUpdates, ShouldNotContainKey, "assignee")
			})

			Convey("And the notify action should still fire for bob", func() {
				So(len(res.Actions), ShouldEqual, 1)
				So(res.Actions[0].Type, ShouldEqual, tags.ActionNotifyAssignee)
				So(res.Actions[0].Target, ShouldEqual, "bob")
			})
		})

		Convey("When a priority indicator is not a known level", func() {
			res := tags.Apply(card, []string{"!urgent"}, "", now)

			Convey("Then it should be skipped silently", func() {
				So(card.Item.Priority, ShouldEqual, model.PriorityMedium)
				So(len(res.Actions), ShouldEqual, 0)
			})
		})

		Convey("When a later priority indicator arrives", func() {
			tags.Apply(card, []string{"!high"}, "", now)
			tags.Apply(card, []string{"!low"}, "", now.Add(time.Hour))

			Convey("Then the latest one should overwrite", func() {
				So(card.Item.Priority, ShouldEqual, model.PriorityLow)
			})
		})

		Convey("When a plain hashtag is applied", func() {
			res := tags.Apply(card, []string{"#frontend"}, "", now)

			Convey("Then it should record no actions", func() {
				So(len(res.Actions), ShouldEqual, 0)
				So(res.TagsProcessed, ShouldResemble, []string{"#frontend"})
			})
		})
	})
}
