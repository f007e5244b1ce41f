package trello_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"riskreward.app/web/internal/model"
	"riskreward.app/web/internal/trello"
)

type recordedRequest struct {
	method string
	path   string
	query  map[string]string
	form   map[string]string
}

type trelloAPIMock struct {
	mu       sync.Mutex
	server   *httptest.Server
	requests []recordedRequest
	status   map[string]int
	bodies   map[string]string
}

func newTrelloAPIMock() *trelloAPIMock {
	m := &trelloAPIMock{status: map[string]int{}, bodies: map[string]string{}}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

func (m *trelloAPIMock) handle(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	rec := recordedRequest{method: r.Method, path: r.URL.Path, query: map[string]string{}, form: map[string]string{}}
	for k := range r.URL.Query() {
		rec.query[k] = r.URL.Query().Get(k)
	}
	for k := range r.PostForm {
		rec.form[k] = r.PostForm.Get(k)
	}

	m.mu.Lock()
	m.requests = append(m.requests, rec)
	key := r.Method + " " + r.URL.Path
	status, hasStatus := m.status[key]
	body := m.bodies[key]
	m.mu.Unlock()

	if !hasStatus {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (m *trelloAPIMock) last() recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

var _ = Describe("Client", func() {
	var (
		ctx    context.Context
		mock   *trelloAPIMock
		client trello.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		mock = newTrelloAPIMock()
		client = trello.NewClient(mock.server.Client(), mock.server.URL+"/")
	})

	AfterEach(func() {
		mock.server.Close()
	})

	It("lists the member's open boards", func() {
		mock.bodies["GET /1/members/me/boards"] = `[{"id":"b1","name":"Roadmap","desc":"Q3"},{"id":"b2","name":"Ops"}]`

		boards, err := client.MemberBoards(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(boards).To(Equal([]model.Board{{ID: "b1", Name: "Roadmap", Desc: "Q3"}, {ID: "b2", Name: "Ops"}}))
		Expect(mock.last().query).To(HaveKeyWithValue("filter", "open"))
	})

	It("fetches a board with name and description", func() {
		mock.bodies["GET /1/boards/b1"] = `{"id":"b1","name":"Roadmap","desc":"Q3 plans"}`

		board, err := client.GetBoard(ctx, "b1")

		Expect(err).NotTo(HaveOccurred())
		Expect(board.Name).To(Equal("Roadmap"))
		Expect(board.Desc).To(Equal("Q3 plans"))
		Expect(mock.last().query).To(HaveKeyWithValue("fields", "name,desc"))
	})

	It("lists cards with labels and comment actions", func() {
		mock.bodies["GET /1/boards/b1/cards"] = `[
			{"id":"c1","name":"Login","url":"https://trello.test/c/c1",
			 "labels":[{"id":"l1","name":"bug","color":"red"}],
			 "actions":[{"id":"a1","type":"commentCard","data":{"text":"impact=high,effort=low"},"date":"2024-03-01T10:00:00.000Z"}]}
		]`

		cards, err := client.ListCards(ctx, "b1", trello.DefaultCardQuery)

		Expect(err).NotTo(HaveOccurred())
		Expect(cards).To(HaveLen(1))
		Expect(cards[0].LabelNames()).To(Equal([]string{"bug"}))
		Expect(cards[0].Comments()).To(HaveLen(1))
		Expect(cards[0].Comments()[0].Data.Text).To(Equal("impact=high,effort=low"))

		q := mock.last().query
		Expect(q).To(HaveKeyWithValue("lists", "open"))
		Expect(q).To(HaveKeyWithValue("fields", "name,url,labels"))
		Expect(q).To(HaveKeyWithValue("actions", "commentCard"))
	})

	It("posts a comment as form text and returns the action id", func() {
		mock.bodies["POST /1/cards/c1/actions/comments"] = `{"id":"new-action","type":"commentCard"}`

		id, err := client.PostComment(ctx, "c1", "impact=high,effort=low")

		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal("new-action"))
		Expect(mock.last().form).To(HaveKeyWithValue("text", "impact=high,effort=low"))
	})

	It("deletes a comment action", func() {
		mock.bodies["DELETE /1/actions/abc123"] = `{"_value":null}`

		Expect(client.DeleteComment(ctx, "abc123")).To(Succeed())
		Expect(mock.last().method).To(Equal(http.MethodDelete))
		Expect(mock.last().path).To(Equal("/1/actions/abc123"))
	})

	DescribeTable("maps error statuses",
		func(status int, check func(error)) {
			mock.status["GET /1/boards/b1"] = status
			mock.bodies["GET /1/boards/b1"] = "invalid token"

			_, err := client.GetBoard(ctx, "b1")

			Expect(err).To(HaveOccurred())
			check(err)
		},
		Entry("401", http.StatusUnauthorized, func(err error) {
			Expect(errors.Is(err, trello.ErrUnauthorized)).To(BeTrue())
			Expect(trello.Kind(err)).To(Equal("unauthorized"))
			Expect(trello.IsAuthError(err)).To(BeTrue())
		}),
		Entry("404", http.StatusNotFound, func(err error) {
			Expect(errors.Is(err, trello.ErrNotFound)).To(BeTrue())
			Expect(trello.Kind(err)).To(Equal("not_found"))
			Expect(trello.IsAuthError(err)).To(BeFalse())
		}),
		Entry("500", http.StatusInternalServerError, func(err error) {
			var apiErr *trello.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(apiErr.Body).To(Equal("invalid token"))
			Expect(trello.Kind(err)).To(Equal("upstream"))
			Expect(trello.IsAuthError(err)).To(BeFalse())
		}),
	)

	It("reports transport failures", func() {
		mock.server.Close()

		_, err := client.MemberBoards(ctx)

		Expect(err).To(HaveOccurred())
		Expect(trello.Kind(err)).To(Equal("transport"))
	})

	It("rejects malformed JSON", func() {
		mock.bodies["GET /1/members/me/boards"] = `{not json`

		_, err := client.MemberBoards(ctx)

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("decoding response"))
	})
})
