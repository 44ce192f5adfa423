package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/flowboard/internal/adapters/repository"
	"github.com/okian/flowboard/internal/domain/model"
	"github.com/okian/flowboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestStore_CreateAndSnapshot(t *testing.T) {
	Convey("Given an in-memory store", t, func() {
		ctx := context.Background()
		s := repository.New(ctx)

		Convey("When creating a board", func() {
			b := model.NewBoard("board-1", model.BoardTypeMaster, "Main", "", now)
			So(s.Create(ctx, b), ShouldBeNil)

			Convey("Then it should be countable and listable", func() {
				So(s.Count(ctx), ShouldEqual, 1)
				So(s.IDs(ctx), ShouldResemble, []string{"board-1"})
			})

			Convey("And creating the same id again should fail", func() {
				dup := model.NewBoard("board-1", model.BoardTypeAgent, "Other", "", now)
				So(errors.Is(s.Create(ctx, dup), model.ErrDuplicateBoard), ShouldBeTrue)
			})

			Convey("And a snapshot should be isolated from later mutations", func() {
				snap, err := s.Snapshot(ctx, "board-1")
				So(err, ShouldBeNil)

				err = s.WithBoard(ctx, "board-1", func(live *model.Board) error {
					live.Column(model.ColumnBacklog).Insert(&model.Card{ID: "c1"}, 0)
					return nil
				})
				So(err, ShouldBeNil)

				So(snap.CardCount(), ShouldEqual, 0)
				fresh, err := s.Snapshot(ctx, "board-1")
				So(err, ShouldBeNil)
				So(fresh.CardCount(), ShouldEqual, 1)
			})
		})

		Convey("When operating on an unknown board", func() {
			_, err := s.Snapshot(ctx, "ghost")
			So(errors.Is(err, model.ErrBoardNotFound), ShouldBeTrue)

			err = s.WithBoard(ctx, "ghost", func(*model.Board) error { return nil })
			So(errors.Is(err, model.ErrBoardNotFound), ShouldBeTrue)
		})

		Convey("When listing ids across several boards", func() {
			for _, id := range []string{"zeta", "alpha", "mid"} {
				So(s.Create(ctx, model.NewBoard(id, model.BoardTypeAgent, id, "", now)), ShouldBeNil)
			}

			Convey("Then ids should come back sorted", func() {
				So(s.IDs(ctx), ShouldResemble, []string{"alpha", "mid", "zeta"})
			})
		})
	})
}

func TestStore_SaveAndLoad(t *testing.T) {
	Convey("Given a store persisting to a temp directory", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		path := filepath.Join(dir, "boards.json")
		s := repository.New(ctx, repository.WithPath(path))

		b := model.NewBoard("board-1", model.BoardTypeMaster, "Main", "persisted", now)
		b.Column(model.ColumnInProgress).WIPLimit = 3
		b.Swimlanes = append(b.Swimlanes, &model.Swimlane{ID: "lane", Name: "Lane"})
		started := now.Add(-time.Hour)
		b.Column(model.ColumnInProgress).Insert(&model.Card{
			ID:        "card-1",
			Column:    model.ColumnInProgress,
			Item:      model.ItemReference{ItemID: "item-1", Type: model.ItemTypeFeature, Title: "work", Priority: model.PriorityHigh},
			CreatedAt: now.Add(-2 * time.Hour),
			MovedAt:   started,
			StartedAt: &started,
			Tags:      []string{"#blocked"},
			Blocked:   true,
		}, 0)
		So(s.Create(ctx, b), ShouldBeNil)

		Convey("When saved and loaded into a fresh store", func() {
			So(s.Save(ctx), ShouldBeNil)

			fresh := repository.New(ctx, repository.WithPath(path))
			So(fresh.Load(ctx), ShouldBeNil)

			Convey("Then the round-tripped board should match", func() {
				got, err := fresh.Snapshot(ctx, "board-1")
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Main")
				So(got.Column(model.ColumnInProgress).WIPLimit, ShouldEqual, 3)
				So(len(got.Swimlanes), ShouldEqual, 1)

				card, col := got.FindCard("card-1")
				So(card, ShouldNotBeNil)
				So(col.Type, ShouldEqual, model.ColumnInProgress)
				So(card.Item.Priority, ShouldEqual, model.PriorityHigh)
				So(card.Blocked, ShouldBeTrue)
				So(card.StartedAt, ShouldNotBeNil)
				So(card.StartedAt.Equal(started), ShouldBeTrue)
			})

			Convey("And the loaded board should accept mutations", func() {
				err := fresh.WithBoard(ctx, "board-1", func(live *model.Board) error {
					live.Column(model.ColumnBacklog).Insert(&model.Card{ID: "card-2"}, 0)
					return nil
				})
				So(err, ShouldBeNil)
			})
		})

		Convey("When loading from a missing file", func() {
			empty := repository.New(ctx, repository.WithPath(filepath.Join(dir, "nope.json")))

			Convey("Then the store should start empty without error", func() {
				So(empty.Load(ctx), ShouldBeNil)
				So(empty.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When loading a corrupt file", func() {
			bad := filepath.Join(dir, "bad.json")
			So(os.WriteFile(bad, []byte("{not json"), 0o600), ShouldBeNil)
			corrupt := repository.New(ctx, repository.WithPath(bad))

			Convey("Then Load should fail", func() {
				So(corrupt.Load(ctx), ShouldNotBeNil)
			})
		})

		Convey("When saving leaves no temp files behind", func() {
			So(s.Save(ctx), ShouldBeNil)
			entries, err := os.ReadDir(dir)
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 1)
			So(entries[0].Name(), ShouldEqual, "boards.json")
		})
	})

	Convey("Given a store with an empty path", t, func() {
		ctx := context.Background()
		s := repository.New(ctx)

		Convey("When saving and loading", func() {
			Convey("Then both should be no-ops", func() {
				So(s.Save(ctx), ShouldBeNil)
				So(s.Load(ctx), ShouldBeNil)
			})
		})
	})
}

func TestStore_SaveRetriesExhausted(t *testing.T) {
	Convey("Given a store pointed at an unwritable directory", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		path := filepath.Join(dir, "gone", "boards.json")
		s := repository.New(ctx, repository.WithPath(path), repository.WithMaxRetries(1))
		So(s.Create(ctx, model.NewBoard("board-1", model.BoardTypeMaster, "Main", "", now)), ShouldBeNil)

		Convey("When saving", func() {
			err := s.Save(ctx)

			Convey("Then the error should surface after retries", func() {
				So(err, ShouldNotBeNil)
			})

			Convey("And the in-memory state should remain usable", func() {
				So(s.Count(ctx), ShouldEqual, 1)
				snap, err := s.Snapshot(ctx, "board-1")
				So(err, ShouldBeNil)
				So(snap.ID, ShouldEqual, "board-1")
			})
		})
	})
}
