package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/taskagent/pkg/prompts"
	"github.com/theapemachine/taskagent/pkg/tasks"
	"github.com/theapemachine/taskagent/pkg/types"
)

const (
	answerTasks   = 30
	answerHistory = 6
	answerLimit   = 1000

	answerFailed = "Desculpe, não entendi. Digite 'ajuda' para ver os comandos disponíveis."
	answerEmpty  = "Desculpe, não consegui gerar uma resposta adequada. Digite 'ajuda' para ver os comandos disponíveis."
)

// answerTag is the shorter relative marker used inside the model prompt.
func (assistant *Assistant) answerTag(task tasks.Task, current *turn) string {
	switch diff := tasks.DayDiff(current.now, *task.DueDate, assistant.location); {
	case diff < 0:
		return " [ATRASADA]"
	case diff == 0:
		return " [HOJE]"
	case diff == 1:
		return " [AMANHÃ]"
	}

	return ""
}

/*
answerPrompt renders the user's tasks and the recent conversation, the
current message included, for the answering port.
*/
func (assistant *Assistant) answerPrompt(current *turn) string {
	lines := make([]string, 0, answerTasks)

	for _, task := range current.snapshot[:min(len(current.snapshot), answerTasks)] {
		line := fmt.Sprintf(
			"• %s | Status: %s | Prioridade: %s",
			task.Title, formatStatus(task.Status), formatPriority(task.Priority),
		)

		if task.DueDate != nil {
			line += " | Prazo: " + task.DueDate.In(assistant.location).Format("02/01/2006 15:04") +
				assistant.answerTag(task, current)
		}

		lines = append(lines, line)
	}

	summary := strings.Join(lines, "\n")

	if summary == "" {
		summary = "Nenhuma tarefa cadastrada"
	}

	conversation := append(append([]types.ConversationTurn(nil), current.state.History...), current.userTurn)
	history := ""

	if len(conversation) > 1 {
		recent := conversation[max(0, len(conversation)-answerHistory):]
		rendered := make([]string, 0, len(recent))

		for _, entry := range recent {
			rendered = append(rendered, strings.ToUpper(string(entry.Role))+": "+clip(entry.Content, 200))
		}

		history = "\nHISTÓRICO DA CONVERSA:\n" + strings.Join(rendered, "\n") + "\n"
	}

	return fmt.Sprintf(
		"DATA E HORA ATUAL: %s\n\nTAREFAS DO USUÁRIO (lista completa com todos os detalhes):\n%s\n%s\n"+
			"PERGUNTA DO USUÁRIO: %s\n\n"+
			"INSTRUÇÕES:\n"+
			"1. Analise a pergunta e identifique se o usuário quer listar/filtrar tarefas\n"+
			"2. Se sim, filtre as tarefas acima baseado no critério (hoje, amanhã, pendente, alta prioridade, etc.)\n"+
			"3. Liste APENAS as tarefas REAIS que correspondem ao filtro, com seus detalhes (título, status, prazo)\n"+
			"4. Se não houver tarefas para o filtro, diga claramente que não há nenhuma\n"+
			"5. Seja específico e use dados reais - cite títulos e detalhes das tarefas listadas acima\n\n"+
			"Responda agora de forma útil e factual:",
		current.now.Format("02/01/2006 15:04"), summary, history, current.message,
	)
}

func (assistant *Assistant) handleGeneral(current *turn) outcome {
	if assistant.answerer == nil {
		return reply(types.TextResponse(answerFailed))
	}

	ctx, cancel := context.WithTimeout(current.ctx, assistant.portTimeout)
	defer cancel()

	answer, err := assistant.answerer.Answer(ctx, assistant.answerPrompt(current), prompts.AnswerSystem())

	if err != nil {
		log.Error("answer port failed", "user", current.userID, "error", err)
		assistant.metrics.RecordPortFailure("answerer")

		return reply(types.TextResponse(answerFailed))
	}

	answer = strings.TrimSpace(answer)

	if answer == "" {
		return reply(types.TextResponse(answerEmpty))
	}

	if runes := []rune(answer); len(runes) > answerLimit {
		answer = string(runes[:answerLimit]) + "..."
	}

	return reply(types.Response{Message: answer, Action: "general"})
}
