package service

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"riskreward.app/web/common/logger"
	"riskreward.app/web/internal/grid"
	"riskreward.app/web/internal/model"
	"riskreward.app/web/internal/trello"
)

// BoardView is one board sorted into the impact/effort grid.
type BoardView struct {
	Board   model.Board
	Buckets grid.Buckets
	Filter  grid.LabelFilter
}

type ReclassifyParams struct {
	CardID         string
	PriorCommentID string
	Impact         grid.Level
	Effort         grid.Level
}

type ReclassifyKind string

const (
	ResultCreated       ReclassifyKind = "created"
	ResultNoComment     ReclassifyKind = "no_comment"
	ResultUpstreamError ReclassifyKind = "upstream_error"
)

// ReclassifyResult carries the id of the comment that now classifies the
// card. CommentID is empty unless Kind is ResultCreated.
type ReclassifyResult struct {
	Kind      ReclassifyKind
	CommentID string
}

type BoardService interface {
	ListBoards(ctx context.Context, cred model.Credential) ([]model.Board, error)
	ShowBoard(ctx context.Context, cred model.Credential, boardID string, filter grid.LabelFilter) (*BoardView, error)
	// Reclassify never fails; upstream errors are logged and reported in the
	// result kind.
	Reclassify(ctx context.Context, cred model.Credential, params ReclassifyParams) ReclassifyResult
}

type boardService struct {
	clients trello.ClientFactory
	query   trello.CardQuery
}

func NewBoardService(clients trello.ClientFactory) BoardService {
	return &boardService{
		clients: clients,
		query:   trello.DefaultCardQuery,
	}
}

func (s *boardService) ListBoards(ctx context.Context, cred model.Credential) ([]model.Board, error) {
	boards, err := s.clients.Client(ctx, cred).MemberBoards(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing boards: %w", err)
	}
	return boards, nil
}

func (s *boardService) ShowBoard(ctx context.Context, cred model.Credential, boardID string, filter grid.LabelFilter) (*BoardView, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		BoardID:   logger.Ptr(boardID),
		Component: "riskreward.service.board",
	})
	client := s.clients.Client(ctx, cred)

	board, err := client.GetBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("showing board: %w", err)
	}

	cards, err := client.ListCards(ctx, boardID, s.query)
	if err != nil {
		return nil, fmt.Errorf("showing board: %w", err)
	}

	sc := logger.StartSpan(ctx, "board.bucketize")
	defer sc.End()

	visible := grid.Filter(cards, filter)
	buckets := grid.Bucketize(grid.ClassifyAll(visible))

	unclassified := len(buckets.Unclassified())
	sc.Span().SetAttributes(
		attribute.Int("board.cards", len(cards)),
		attribute.Int("board.cards.visible", len(visible)),
		attribute.Int("board.cards.unclassified", unclassified),
	)
	slog.DebugContext(sc.Context(), "board bucketized",
		"cards", len(cards),
		"visible", buckets.Len(),
		"unclassified", unclassified,
		"filter", filter.String(),
	)

	return &BoardView{
		Board:   *board,
		Buckets: buckets,
		Filter:  filter,
	}, nil
}

func (s *boardService) Reclassify(ctx context.Context, cred model.Credential, params ReclassifyParams) ReclassifyResult {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		CardID:    logger.Ptr(params.CardID),
		Component: "riskreward.service.board",
	})
	client := s.clients.Client(ctx, cred)

	if params.PriorCommentID != "" {
		if err := client.DeleteComment(ctx, params.PriorCommentID); err != nil {
			slog.WarnContext(ctx, "failed to delete prior classification",
				"error", err,
				"comment_id", params.PriorCommentID,
				"kind", trello.Kind(err),
			)
		}
	}

	if params.Impact == "" || params.Effort == "" {
		slog.InfoContext(ctx, "classification cleared",
			"impact", params.Impact,
			"effort", params.Effort,
		)
		return ReclassifyResult{Kind: ResultNoComment}
	}

	commentID, err := client.PostComment(ctx, params.CardID, grid.FormatComment(params.Impact, params.Effort))
	if err != nil {
		slog.ErrorContext(ctx, "failed to post classification",
			"error", err,
			"kind", trello.Kind(err),
		)
		return ReclassifyResult{Kind: ResultUpstreamError}
	}
	if commentID == "" {
		return ReclassifyResult{Kind: ResultNoComment}
	}

	slog.InfoContext(ctx, "card reclassified",
		"comment_id", commentID,
		"impact", params.Impact,
		"effort", params.Effort,
	)
	return ReclassifyResult{Kind: ResultCreated, CommentID: commentID}
}
