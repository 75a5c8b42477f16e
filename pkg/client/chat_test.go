package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/taskagent/pkg/errors"
	"github.com/theapemachine/taskagent/pkg/types"
)

func newChatAPI() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(errors.APIError{Code: 401, Message: "invalid bearer token"})
			return
		}

		var body struct {
			Message string `json:"message"`
		}

		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(types.Response{Message: "eco: " + body.Message, Action: "general"})
	})

	mux.HandleFunc("POST /api/chat/action", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(types.ActionResult{Message: "Nenhuma confirmação pendente para esta ação."})
	})

	mux.HandleFunc("GET /api/chat/history", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"history":[{"role":"user","content":"oi"}]}`))
	})

	mux.HandleFunc("DELETE /api/chat/history", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})

	mux.HandleFunc("GET /api/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(": heartbeat\n\n"))
		_, _ = w.Write([]byte("data: {\"action\":\"delete\",\"task_id\":\"A\",\"task_title\":\"Revisar PR\"}\n\n"))
		_, _ = w.Write([]byte("data: not json\n\n"))
	})

	return httptest.NewServer(mux)
}

func TestChatClient(t *testing.T) {
	Convey("Given a chat API", t, func() {
		api := newChatAPI()
		defer api.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client := NewChatClient(api.URL+"/", WithToken("secret"))

		Convey("Send returns the decoded reply", func() {
			reply, err := client.Send(ctx, "oi")

			So(err, ShouldBeNil)
			So(reply.Message, ShouldEqual, "eco: oi")
			So(reply.Action, ShouldEqual, "general")
		})

		Convey("A bad token surfaces the API error", func() {
			_, err := NewChatClient(api.URL).Send(ctx, "oi")

			var apiErr *errors.APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Code, ShouldEqual, http.StatusUnauthorized)
			So(apiErr.Message, ShouldEqual, "invalid bearer token")
		})

		Convey("A refused action still carries its message", func() {
			result, err := client.Execute(ctx, types.ActionRequest{Action: types.ActionComplete, TaskID: "A"})

			So(err, ShouldBeNil)
			So(result.Success, ShouldBeFalse)
			So(result.Message, ShouldStartWith, "Nenhuma confirmação")
		})

		Convey("History and ClearHistory round the conversation", func() {
			history, err := client.History(ctx)

			So(err, ShouldBeNil)
			So(history, ShouldHaveLength, 1)
			So(client.ClearHistory(ctx), ShouldBeNil)
		})

		Convey("Events skips heartbeats and malformed payloads", func() {
			var entries []types.AuditEntry

			err := client.Events(ctx, func(entry types.AuditEntry) {
				entries = append(entries, entry)
			})

			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 1)
			So(entries[0].TaskTitle, ShouldEqual, "Revisar PR")
		})
	})
}
