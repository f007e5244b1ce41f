package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"riskreward.app/web/internal/grid"
	"riskreward.app/web/internal/model"
	"riskreward.app/web/internal/service"
	"riskreward.app/web/internal/trello"
)

var _ = Describe("BoardService", func() {
	var (
		svc     service.BoardService
		client  *mockTrelloClient
		factory *mockClientFactory
		cred    model.Credential
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = &mockTrelloClient{}
		factory = &mockClientFactory{client: client}
		cred = model.Credential{Token: "access", Secret: "secret"}
		svc = service.NewBoardService(factory)
	})

	Describe("ListBoards", func() {
		It("returns the member's boards signed with the session credential", func() {
			client.memberBoardsFn = func(context.Context) ([]model.Board, error) {
				return []model.Board{{ID: "b1", Name: "Roadmap"}}, nil
			}

			boards, err := svc.ListBoards(ctx, cred)
			Expect(err).NotTo(HaveOccurred())
			Expect(boards).To(HaveLen(1))
			Expect(factory.creds).To(ConsistOf(cred))
		})

		It("wraps upstream errors", func() {
			client.memberBoardsFn = func(context.Context) ([]model.Board, error) {
				return nil, trello.ErrUnauthorized
			}

			_, err := svc.ListBoards(ctx, cred)
			Expect(err).To(MatchError(trello.ErrUnauthorized))
		})
	})

	Describe("ShowBoard", func() {
		cards := []model.Card{
			{
				ID:     "c1",
				Labels: []model.Label{{Name: "bug"}},
				Actions: []model.Action{
					{ID: "a1", Type: model.ActionTypeCommentCard, Data: model.ActionData{Text: "impact=high,effort=low"}},
				},
			},
			{
				ID:     "c2",
				Labels: []model.Label{{Name: "feature"}},
				Actions: []model.Action{
					{ID: "a2", Type: model.ActionTypeCommentCard, Data: model.ActionData{Text: "effort=low, impact=high"}},
				},
			},
			{ID: "c3"},
		}

		BeforeEach(func() {
			client.getBoardFn = func(_ context.Context, id string) (*model.Board, error) {
				return &model.Board{ID: id, Name: "Roadmap"}, nil
			}
			client.listCardsFn = func(_ context.Context, boardID string, query trello.CardQuery) ([]model.Card, error) {
				Expect(boardID).To(Equal("b1"))
				Expect(query).To(Equal(trello.DefaultCardQuery))
				return cards, nil
			}
		})

		It("sorts every card into the grid", func() {
			view, err := svc.ShowBoard(ctx, cred, "b1", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Board.Name).To(Equal("Roadmap"))
			Expect(view.Buckets.Len()).To(Equal(3))

			highLow := view.Buckets.Cell(grid.Cell{Impact: grid.LevelHigh, Effort: grid.LevelLow})
			Expect(highLow).To(HaveLen(2))
			Expect(highLow[0].CommentID).To(Equal("a1"))
			Expect(highLow[1].CommentID).To(Equal("a2"))
			Expect(view.Buckets.Unclassified()).To(HaveLen(1))
		})

		It("applies the label filter before bucketing", func() {
			view, err := svc.ShowBoard(ctx, cred, "b1", grid.LabelFilter{"bug"})
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Buckets.Len()).To(Equal(1))
			Expect(view.Buckets[3][0].Card.ID).To(Equal("c1"))
			Expect(view.Filter).To(Equal(grid.LabelFilter{"bug"}))
		})

		It("fails when the board cannot be fetched", func() {
			client.getBoardFn = func(context.Context, string) (*model.Board, error) {
				return nil, trello.ErrNotFound
			}

			_, err := svc.ShowBoard(ctx, cred, "b1", nil)
			Expect(err).To(MatchError(trello.ErrNotFound))
			Expect(client.calls).To(Equal([]string{"GetBoard"}))
		})

		It("fails when the cards cannot be fetched", func() {
			client.listCardsFn = func(context.Context, string, trello.CardQuery) ([]model.Card, error) {
				return nil, &trello.APIError{StatusCode: 500}
			}

			_, err := svc.ShowBoard(ctx, cred, "b1", nil)
			var apiErr *trello.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
		})
	})

	Describe("Reclassify", func() {
		It("posts a new comment without deleting when no prior comment exists", func() {
			client.postCommentFn = func(_ context.Context, cardID, text string) (string, error) {
				Expect(cardID).To(Equal("c1"))
				Expect(text).To(Equal("impact=high,effort=low"))
				return "new1", nil
			}

			result := svc.Reclassify(ctx, cred, service.ReclassifyParams{
				CardID: "c1",
				Impact: grid.LevelHigh,
				Effort: grid.LevelLow,
			})

			Expect(result).To(Equal(service.ReclassifyResult{Kind: service.ResultCreated, CommentID: "new1"}))
			Expect(client.calls).To(Equal([]string{"PostComment"}))
		})

		It("deletes the prior comment and posts nothing when both values are empty", func() {
			var deleted string
			client.deleteCommentFn = func(_ context.Context, actionID string) error {
				deleted = actionID
				return nil
			}

			result := svc.Reclassify(ctx, cred, service.ReclassifyParams{
				CardID:         "c1",
				PriorCommentID: "abc123",
			})

			Expect(deleted).To(Equal("abc123"))
			Expect(result).To(Equal(service.ReclassifyResult{Kind: service.ResultNoComment}))
			Expect(client.calls).To(Equal([]string{"DeleteComment"}))
		})

		It("deletes then posts when replacing a classification", func() {
			client.postCommentFn = func(context.Context, string, string) (string, error) {
				return "new2", nil
			}

			result := svc.Reclassify(ctx, cred, service.ReclassifyParams{
				CardID:         "c1",
				PriorCommentID: "old",
				Impact:         grid.LevelMedium,
				Effort:         grid.LevelMedium,
			})

			Expect(result.CommentID).To(Equal("new2"))
			Expect(client.calls).To(Equal([]string{"DeleteComment", "PostComment"}))
		})

		It("still posts when deleting the prior comment fails", func() {
			client.deleteCommentFn = func(context.Context, string) error {
				return trello.ErrNotFound
			}
			client.postCommentFn = func(context.Context, string, string) (string, error) {
				return "new3", nil
			}

			result := svc.Reclassify(ctx, cred, service.ReclassifyParams{
				CardID:         "c1",
				PriorCommentID: "gone",
				Impact:         grid.LevelLow,
				Effort:         grid.LevelHigh,
			})

			Expect(result.Kind).To(Equal(service.ResultCreated))
			Expect(result.CommentID).To(Equal("new3"))
		})

		It("writes nothing for a single-axis submission", func() {
			result := svc.Reclassify(ctx, cred, service.ReclassifyParams{
				CardID: "c1",
				Impact: grid.LevelHigh,
			})

			Expect(result.Kind).To(Equal(service.ResultNoComment))
			Expect(client.calls).To(BeEmpty())
		})

		It("reports an upstream error when posting fails", func() {
			client.postCommentFn = func(context.Context, string, string) (string, error) {
				return "", errors.New("connection reset")
			}

			result := svc.Reclassify(ctx, cred, service.ReclassifyParams{
				CardID: "c1",
				Impact: grid.LevelHigh,
				Effort: grid.LevelHigh,
			})

			Expect(result).To(Equal(service.ReclassifyResult{Kind: service.ResultUpstreamError}))
		})

		It("reports no comment when upstream returns no id", func() {
			result := svc.Reclassify(ctx, cred, service.ReclassifyParams{
				CardID: "c1",
				Impact: grid.LevelHigh,
				Effort: grid.LevelHigh,
			})

			Expect(result).To(Equal(service.ReclassifyResult{Kind: service.ResultNoComment}))
		})
	})
})
