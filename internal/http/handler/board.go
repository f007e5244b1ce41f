package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"riskreward.app/web/common/logger"
	"riskreward.app/web/internal/grid"
	"riskreward.app/web/internal/http/dto"
	"riskreward.app/web/internal/http/middleware"
	"riskreward.app/web/internal/http/view"
	"riskreward.app/web/internal/service"
	"riskreward.app/web/internal/trello"
)

type BoardHandler struct {
	boardService service.BoardService
	authService  service.AuthService
	isProduction bool
}

func NewBoardHandler(boardService service.BoardService, authService service.AuthService, isProduction bool) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
		authService:  authService,
		isProduction: isProduction,
	}
}

func (h *BoardHandler) List(c *gin.Context) {
	cred, _ := middleware.CredentialFrom(c)

	boards, err := h.boardService.ListBoards(c.Request.Context(), cred)
	if err != nil {
		h.restartLogin(c, err, "/")
		return
	}

	c.HTML(http.StatusOK, view.BoardsTemplate, view.BoardsPage{Boards: boards})
}

func (h *BoardHandler) Show(c *gin.Context) {
	cred, _ := middleware.CredentialFrom(c)
	boardID := c.Param("id")
	filter := grid.ParseLabelFilter(c.Query("labels"))

	board, err := h.boardService.ShowBoard(c.Request.Context(), cred, boardID, filter)
	if err != nil {
		h.restartLogin(c, err, c.Request.URL.RequestURI())
		return
	}

	c.HTML(http.StatusOK, view.BoardTemplate, view.NewBoardPage(board))
}

// Classify replaces the classification comment of a card and answers with
// the id of the new comment, or an empty body when none was created. The
// body is never anything but an id, so rejected input also answers empty.
func (h *BoardHandler) Classify(c *gin.Context) {
	var req dto.ClassifyRequest
	if err := c.ShouldBind(&req); err != nil {
		slog.WarnContext(c.Request.Context(), "invalid classify request", "error", err)
		c.String(http.StatusOK, "")
		return
	}

	cred, _ := middleware.CredentialFrom(c)
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
		BoardID: logger.Ptr(c.Param("id")),
	})

	result := h.boardService.Reclassify(ctx, cred, service.ReclassifyParams{
		CardID:         c.Param("card"),
		PriorCommentID: req.Comment,
		Impact:         grid.Level(req.Impact),
		Effort:         grid.Level(req.Effort),
	})
	slog.InfoContext(ctx, "classify request handled", "result", string(result.Kind))

	c.String(http.StatusOK, result.CommentID)
}

// restartLogin drops the session after a failed upstream read so the next
// request begins a fresh handshake.
func (h *BoardHandler) restartLogin(c *gin.Context, err error, target string) {
	ctx := c.Request.Context()
	slog.WarnContext(ctx, "board API request failed, clearing session",
		"error", err,
		"kind", trello.Kind(err),
		"credential_rejected", trello.IsAuthError(err),
	)

	if session := middleware.SessionFrom(c); session != nil {
		if err := h.authService.Logout(ctx, session); err != nil {
			slog.WarnContext(ctx, "failed to delete session", "error", err)
		}
	}

	middleware.ClearSessionCookie(c, h.isProduction)
	c.Redirect(http.StatusFound, target)
}
