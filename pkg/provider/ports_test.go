package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	taskerrors "github.com/theapemachine/taskagent/pkg/errors"
	"github.com/theapemachine/taskagent/pkg/prompts"
)

func replying(text string, seen *Request) Completer {
	return CompleterFunc(func(_ context.Context, request Request) (string, error) {
		if seen != nil {
			*seen = request
		}

		return text, nil
	})
}

func TestExtractor(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	Convey("Given a model answering with fenced json", t, func() {
		seen := Request{}
		extractor := NewExtractor(replying(
			"```json\n{\"title\": \"Reunião\", \"due_date\": \"2026-10-18 14:00\", \"priority\": \"medium\"}\n```",
			&seen,
		))

		extraction, err := extractor.Extract(context.Background(), "Criar reunião amanhã às 14h", now)

		So(err, ShouldBeNil)
		So(extraction.Title, ShouldEqual, "Reunião")
		So(extraction.DueDate, ShouldEqual, "2026-10-18 14:00")
		So(extraction.Priority, ShouldEqual, "medium")
		So(seen.Schema, ShouldNotBeNil)
		So(seen.System, ShouldContainSubstring, "Amanhã é 2026-10-18")
	})

	Convey("Given a null due date", t, func() {
		extractor := NewExtractor(replying(`{"title": "Revisar código", "due_date": null, "priority": "urgent"}`, nil))

		extraction, err := extractor.Extract(context.Background(), "adicionar revisar código urgente", now)

		So(err, ShouldBeNil)
		So(extraction.DueDate, ShouldBeEmpty)
		So(extraction.Priority, ShouldEqual, "urgent")
	})

	Convey("Given prose instead of json", t, func() {
		extractor := NewExtractor(replying("Claro! A tarefa é reunião.", nil))

		_, err := extractor.Extract(context.Background(), "criar reunião", now)

		So(errors.Is(err, taskerrors.ErrInvalidPayload), ShouldBeTrue)
	})

	Convey("Given json without a title", t, func() {
		extractor := NewExtractor(replying(`{"title": "  ", "priority": "low"}`, nil))

		_, err := extractor.Extract(context.Background(), "criar", now)

		So(errors.Is(err, taskerrors.ErrInvalidPayload), ShouldBeTrue)
	})
}

func TestClassifierAndAnswerer(t *testing.T) {
	Convey("The classifier sends the classification prompt with a tiny budget", t, func() {
		seen := Request{}
		label, err := NewClassifier(replying(" list_tasks\n", &seen)).Classify(context.Background(), "o que tenho?", nil)

		So(err, ShouldBeNil)
		So(label, ShouldEqual, " list_tasks\n")
		So(seen.System, ShouldEqual, prompts.ClassifierSystem())
		So(seen.MaxTokens, ShouldEqual, 20)
	})

	Convey("The answerer passes both prompts through", t, func() {
		seen := Request{}
		answer, err := NewAnswerer(replying("Você tem 2 tarefas.", &seen)).Answer(context.Background(), "user", "system")

		So(err, ShouldBeNil)
		So(answer, ShouldEqual, "Você tem 2 tarefas.")
		So(seen.Prompt, ShouldEqual, "user")
		So(seen.System, ShouldEqual, "system")
	})
}

func TestChain(t *testing.T) {
	failing := CompleterFunc(func(context.Context, Request) (string, error) {
		return "", errors.New("503")
	})

	Convey("Given a chain whose first vendor is down", t, func() {
		chain := NewChain().Add("primary", failing).Add("secondary", replying("ok", nil))

		out, err := chain.Complete(context.Background(), Request{})

		So(err, ShouldBeNil)
		So(out, ShouldEqual, "ok")
	})

	Convey("Given a chain where everything fails", t, func() {
		chain := NewChain().Add("primary", failing).Add("secondary", failing)

		_, err := chain.Complete(context.Background(), Request{})

		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "503")
	})

	Convey("Given an empty chain", t, func() {
		_, err := NewChain().Complete(context.Background(), Request{})

		So(errors.Is(err, taskerrors.ErrPortUnavailable), ShouldBeTrue)
	})

	Convey("Unknown vendors are refused", t, func() {
		_, err := New("watson", "")

		So(err, ShouldNotBeNil)
	})
}
