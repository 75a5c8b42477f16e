package intent

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/taskagent/pkg/types"
)

type stubClassifier struct {
	label string
	err   error
	panic bool
	calls int
}

func (stub *stubClassifier) Classify(
	ctx context.Context, message string, recent []types.ConversationTurn,
) (string, error) {
	stub.calls++

	if stub.panic {
		panic("boom")
	}

	return stub.label, stub.err
}

func assistantSaid(content string) []types.ConversationTurn {
	return assistantReplied(content, "")
}

func assistantReplied(content string, handled Intent) []types.ConversationTurn {
	at := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	return []types.ConversationTurn{
		types.NewUserTurn("oi", at),
		types.NewAssistantTurn(content, string(handled), at),
	}
}

func TestQuickMatch(t *testing.T) {
	Convey("Given canned phrases", t, func() {
		cases := map[string]Intent{
			"oi":                 Greeting,
			"valeu":              Thanks,
			"?":                  Help,
			"o que voce faz":     AboutSystem,
			"sim":                ConfirmYes,
			"deixa pra lá":       ConfirmNo,
			"minhas tarefas":     ListTasks,
			"meu progresso":      TaskStatus,
			"criar reunião":      CreateTask,
			"concluir relatório": CompleteTask,
			"remover build":      DeleteTask,
		}

		Convey("Each resolves without any external call", func() {
			for message, want := range cases {
				got, ok := QuickMatch(message, KindNone)
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, want)
			}
		})

		Convey("Free text does not match", func() {
			_, ok := QuickMatch("como está o tempo", KindNone)
			So(ok, ShouldBeFalse)
		})

		Convey("A number with a pending selection wins", func() {
			got, ok := QuickMatch("2", KindDelete)
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, SelectDelete)

			_, ok = QuickMatch("2", KindNone)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestInfer(t *testing.T) {
	Convey("Given assistant prompts", t, func() {
		So(Infer(assistantSaid("🆕 Vou criar a tarefa:\n\n📌 Reunião")), ShouldEqual, AwaitingCreateConfirmation)
		So(Infer(assistantSaid("✅ Marcar como concluída:\n\n📌 Build")), ShouldEqual, AwaitingCompleteConfirmation)
		So(Infer(assistantSaid("🗑️ Excluir tarefa:\n\n📌 Build")), ShouldEqual, AwaitingDeleteConfirmation)
		So(Infer(assistantSaid("Por favor, descreva a tarefa que você quer criar.")), ShouldEqual, AwaitingTaskDescription)
		So(Infer(assistantSaid("Encontrei várias. Qual delas?")), ShouldEqual, AwaitingSelection)
		So(Infer(assistantSaid("Olá!")), ShouldEqual, ContextNone)
		So(Infer(nil), ShouldEqual, ContextNone)

		Convey("Only the most recent assistant turn counts", func() {
			history := append(
				assistantSaid("Vou criar a tarefa: X"),
				assistantSaid("Pronto!")...,
			)
			So(Infer(history), ShouldEqual, ContextNone)
		})
	})
}

func TestFallback(t *testing.T) {
	Convey("Given messages the classifier could not handle", t, func() {
		So(Fallback("Bom dia, tudo bem?"), ShouldEqual, Greeting)
		So(Fallback("quero adicionar algo"), ShouldEqual, CreateTask)
		So(Fallback("pode terminar o build"), ShouldEqual, CompleteTask)
		So(Fallback("quero listar"), ShouldEqual, ListTasks)
		So(Fallback("qual a capital da França"), ShouldEqual, General)
	})
}

func TestCascade(t *testing.T) {
	Convey("Given a cascade with a failing classifier", t, func() {
		classifier := &stubClassifier{err: errors.New("unreachable")}
		cascade := NewCascade(WithClassifier(classifier))

		Convey("A greeting resolves before the classifier is consulted", func() {
			decision := cascade.Resolve(context.Background(), Input{Message: "oi"})
			So(decision.Intent, ShouldEqual, Greeting)
			So(decision.Source, ShouldEqual, SourceQuick)
			So(classifier.calls, ShouldEqual, 0)
		})

		Convey("Unknown text falls back to the keyword classifier", func() {
			decision := cascade.Resolve(context.Background(), Input{Message: "preciso excluir algo"})
			So(decision.Intent, ShouldEqual, DeleteTask)
			So(decision.Source, ShouldEqual, SourceFallback)
			So(decision.Err, ShouldNotBeNil)
			So(classifier.calls, ShouldEqual, 1)
		})

		Convey("A panicking classifier is treated as a failure", func() {
			classifier.panic = true
			decision := cascade.Resolve(context.Background(), Input{Message: "e o tempo hoje"})
			So(decision.Intent, ShouldEqual, General)
			So(decision.Source, ShouldEqual, SourceFallback)
		})
	})

	Convey("Given a classifier answering outside the closed set", t, func() {
		cascade := NewCascade(WithClassifier(&stubClassifier{label: "select_delete"}))
		decision := cascade.Resolve(context.Background(), Input{Message: "algo aleatório"})
		So(decision.Intent, ShouldEqual, General)
		So(decision.Source, ShouldEqual, SourceFallback)
	})

	Convey("Given a classifier answering a valid label", t, func() {
		cascade := NewCascade(WithClassifier(&stubClassifier{label: " \"Suggest_Next_Task\".\n"}))
		decision := cascade.Resolve(context.Background(), Input{Message: "o que faço agora"})
		So(decision.Intent, ShouldEqual, SuggestNextTask)
		So(decision.Source, ShouldEqual, SourceClassifier)
	})

	Convey("Given dialogue state", t, func() {
		classifier := &stubClassifier{label: "general"}
		cascade := NewCascade(WithClassifier(classifier))

		Convey("A number with an outstanding list selects from it", func() {
			decision := cascade.Resolve(context.Background(), Input{
				Message: "2",
				History: assistantSaid("Qual tarefa você quer deletar?\n\n1. A\n2. B"),
				Pending: KindDelete,
			})
			So(decision.Intent, ShouldEqual, SelectDelete)
		})

		Convey("Yes only counts as a confirmation while one is awaited", func() {
			decision := cascade.Resolve(context.Background(), Input{
				Message: "sim",
				History: assistantSaid("✅ Marcar como concluída:\n\n📌 Build\n\nConfirmar?"),
			})
			So(decision.Intent, ShouldEqual, ConfirmYes)

			decision = cascade.Resolve(context.Background(), Input{Message: "sim"})
			So(decision.Intent, ShouldEqual, General)
			So(classifier.calls, ShouldEqual, 1)
		})

		Convey("No cancels an outstanding selection", func() {
			decision := cascade.Resolve(context.Background(), Input{
				Message: "cancelar",
				Pending: KindComplete,
			})
			So(decision.Intent, ShouldEqual, ConfirmNo)
		})

		Convey("Free text after a description request becomes a new task", func() {
			decision := cascade.Resolve(context.Background(), Input{
				Message: "comprar pão",
				History: assistantReplied("Por favor, descreva a tarefa que você quer criar.", CreateTask),
			})
			So(decision.Intent, ShouldEqual, CreateTask)
			So(decision.Source, ShouldEqual, SourceContext)
			So(classifier.calls, ShouldEqual, 0)
		})

		Convey("A reply that only mentions tasks does not expect a description", func() {
			decision := cascade.Resolve(context.Background(), Input{
				Message: "Qual tarefa devo fazer agora?",
				History: assistantReplied(
					"🎯 Priorização: sugiro qual tarefa fazer primeiro\n\n\"Qual tarefa devo fazer agora?\"",
					AboutSystem,
				),
			})
			So(decision.Source, ShouldEqual, SourceClassifier)
			So(decision.Intent, ShouldNotEqual, CreateTask)
			So(classifier.calls, ShouldEqual, 1)
		})

		Convey("Free text after an abandoned list goes to the classifier", func() {
			decision := cascade.Resolve(context.Background(), Input{
				Message: "quanto tempo falta pro fim do mês",
				History: assistantReplied("Qual tarefa você quer deletar?\n\n1. A\n2. B", DeleteTask),
			})
			So(decision.Source, ShouldEqual, SourceClassifier)
			So(classifier.calls, ShouldEqual, 1)
		})

		Convey("Description wording from another handler is not a description request", func() {
			decision := cascade.Resolve(context.Background(), Input{
				Message: "comprar pão",
				History: assistantReplied("Por favor, descreva a tarefa que você quer criar.", General),
			})
			So(decision.Source, ShouldEqual, SourceClassifier)
		})

		Convey("A number after a lost list recovers the kind from the prompt", func() {
			decision := cascade.Resolve(context.Background(), Input{
				Message: "1",
				History: assistantSaid("Encontrei 2 tarefas. Qual delas você quer atualizar?"),
			})
			So(decision.Intent, ShouldEqual, SelectUpdate)
		})
	})
}

func TestIsWaitingForDescription(t *testing.T) {
	at := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	prompt := types.NewAssistantTurn("Por favor, descreva a tarefa que você quer criar.", string(CreateTask), at)

	Convey("Given a description request", t, func() {
		Convey("It is seen as the latest assistant turn", func() {
			history := []types.ConversationTurn{types.NewUserTurn("criar", at), prompt}
			So(IsWaitingForDescription(history), ShouldBeTrue)
		})

		Convey("A later assistant turn replaces it", func() {
			history := []types.ConversationTurn{
				prompt,
				types.NewUserTurn("oi", at),
				types.NewAssistantTurn("Olá!", string(Greeting), at),
			}
			So(IsWaitingForDescription(history), ShouldBeFalse)
		})

		Convey("It is forgotten once it leaves the last four turns", func() {
			history := []types.ConversationTurn{
				prompt,
				types.NewUserTurn("a", at),
				types.NewUserTurn("b", at),
				types.NewUserTurn("c", at),
				types.NewUserTurn("d", at),
			}
			So(IsWaitingForDescription(history), ShouldBeFalse)
		})
	})
}
