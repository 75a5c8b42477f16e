package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/taskagent/pkg/intent"
	"github.com/theapemachine/taskagent/pkg/tasks"
	"github.com/theapemachine/taskagent/pkg/types"
)

// turn is everything a handler may look at.  Handlers never write to it.
type turn struct {
	ctx        context.Context
	userID     string
	message    string
	normalized string
	snapshot   []tasks.Task
	state      *State
	now        time.Time
	userTurn   types.ConversationTurn
}

/*
outcome is a handler's reply plus the mode to commit.  A nil mode keeps
whatever the dialogue was doing.
*/
type outcome struct {
	response types.Response
	mode     *Mode
}

func reply(response types.Response) outcome {
	return outcome{response: response}
}

func replyAndSet(response types.Response, mode Mode) outcome {
	return outcome{response: response, mode: &mode}
}

var (
	thanksReplies = []string{
		"😊 Por nada! Estou aqui para ajudar.",
		"👍 Disponha! Qualquer coisa, é só chamar.",
		"✨ Fico feliz em ajudar! Precisa de mais alguma coisa?",
		"🙌 Sempre às ordens! Boa produtividade!",
	}

	cancelReplies = []string{
		"👌 Tudo bem, ação cancelada! O que mais posso fazer por você?",
		"✅ Cancelado! Estou aqui se precisar de algo.",
		"Ok, sem problemas! Como posso ajudar?",
	}
)

const (
	confirmYesReply   = "👍 Entendido! Use os botões de confirmação acima para confirmar a ação, ou me diga o que mais posso ajudar."
	invalidNumber     = "❌ Número inválido. Por favor, escolha um número válido da lista."
	selectionVanished = "❌ Tarefa não encontrada. Ela pode ter sido removida ou concluída."
	describePrompt    = "Por favor, descreva a tarefa que você quer criar. Por exemplo:\n\n'Criar reunião com cliente amanhã às 14h'\n'Nova tarefa: revisar código do projeto'"
	cancelLabel       = "❌ Cancelar"
	confirmLabel      = "✅ Confirmar"
)

func (assistant *Assistant) dispatch(current *turn, resolved intent.Intent) outcome {
	switch resolved {
	case intent.ConfirmYes:
		return reply(types.TextResponse(confirmYesReply))
	case intent.ConfirmNo:
		return assistant.handleCancel()
	case intent.Greeting:
		return assistant.handleGreeting(current)
	case intent.Thanks:
		return reply(types.TextResponse(assistant.pick(thanksReplies)))
	case intent.AboutSystem:
		return handleAbout(current)
	case intent.Help:
		return reply(types.Response{Message: helpText, Action: "help"})
	case intent.SuggestNextTask:
		return assistant.handleSuggest(current)
	case intent.ListTasks:
		return assistant.handleList(current)
	case intent.CreateTask:
		return assistant.handleCreate(current)
	case intent.CompleteTask:
		return assistant.handleComplete(current)
	case intent.DeleteTask:
		return assistant.handleDelete(current)
	case intent.UpdateTask:
		return assistant.handleUpdate(current)
	case intent.SelectComplete:
		return assistant.handleSelection(current, intent.KindComplete)
	case intent.SelectDelete:
		return assistant.handleSelection(current, intent.KindDelete)
	case intent.SelectUpdate:
		return assistant.handleSelection(current, intent.KindUpdate)
	case intent.TaskStatus:
		return assistant.handleStatus(current)
	}

	return assistant.handleGeneral(current)
}

func (assistant *Assistant) handleCancel() outcome {
	return replyAndSet(types.Response{
		Message: assistant.pick(cancelReplies),
		Action:  "cancelled",
	}, Idle())
}

// ===== Greeting / about / help ===================================================================

func (assistant *Assistant) handleGreeting(current *turn) outcome {
	hour := current.now.Hour()
	salutation := "Boa noite"

	switch {
	case hour >= 5 && hour < 12:
		salutation = "Bom dia"
	case hour >= 12 && hour < 18:
		salutation = "Boa tarde"
	}

	pending := tasks.NotDone(current.snapshot)
	overdue := tasks.Count(pending, func(task tasks.Task) bool { return task.IsOverdue(current.now, assistant.location) })
	today := tasks.Count(pending, func(task tasks.Task) bool { return task.IsDueToday(current.now, assistant.location) })

	parts := []string{}

	if overdue > 0 {
		parts = append(parts, fmt.Sprintf("⚠️ %d atrasada(s)", overdue))
	}

	if today > 0 {
		parts = append(parts, fmt.Sprintf("📅 %d para hoje", today))
	}

	if len(pending) > 0 {
		parts = append(parts, fmt.Sprintf("📋 %d pendente(s) no total", len(pending)))
	}

	summary := "✨ Nenhuma tarefa pendente!"

	if len(parts) > 0 {
		summary = strings.Join(parts, " | ")
	}

	message := fmt.Sprintf(
		"%s! 👋 Sou seu agente de tarefas.\n\n%s\n\nComo posso ajudar? Exemplos:\n"+
			"• 📋 Listar tarefas\n• ➕ Criar tarefa\n• ✅ Concluir tarefa\n• 📈 Meu progresso",
		salutation, summary,
	)

	return reply(types.Response{
		Message: message,
		Data:    map[string]int{"pending": len(pending), "overdue": overdue, "today": today},
	})
}

const aboutText = `🚀 Agente de Tarefas

Sou seu assistente pessoal de produtividade! Ajudo você a organizar suas tarefas conversando naturalmente.

💡 O que posso fazer por você:

📋 Gerenciar tarefas: criar, concluir, atualizar e excluir
🎯 Priorização: sugiro qual tarefa fazer primeiro com base em prazos e prioridades
📊 Progresso: mostro estatísticas sobre seu andamento
🗓️ Prazos: aviso sobre tarefas atrasadas ou que vencem hoje
`

const aboutClosing = `🎯 Experimente perguntar:
   "Qual tarefa devo fazer agora?"
   "Criar uma nova tarefa"
   "Minhas tarefas para hoje"
   "Meu progresso"

Como posso te auxiliar?`

func handleAbout(current *turn) outcome {
	total := len(current.snapshot)
	todo := tasks.Count(current.snapshot, func(task tasks.Task) bool { return task.Status == tasks.StatusTodo })
	doing := tasks.Count(current.snapshot, func(task tasks.Task) bool { return task.Status == tasks.StatusInProgress })
	done := tasks.Count(current.snapshot, tasks.Task.IsDone)

	builder := strings.Builder{}
	builder.WriteString(aboutText)
	builder.WriteString("\n")

	if total > 0 {
		fmt.Fprintf(
			&builder,
			"📈 Seu panorama atual:\n   Você tem %d tarefa(s) no sistema\n   %d pendente(s), %d em andamento, %d concluída(s)\n\n",
			total, todo, doing, done,
		)
	}

	builder.WriteString(aboutClosing)

	return reply(types.Response{
		Message: builder.String(),
		Action:  "about_system",
		Data: map[string]int{
			"total_tasks": total,
			"pending":     todo,
			"in_progress": doing,
			"completed":   done,
		},
	})
}

const helpText = `🤖 Comandos do Agente

📋 LISTAR:
• Minhas tarefas / Tarefas de hoje
• Tarefas atrasadas / Tarefas pendentes

➕ CRIAR:
• Criar [descrição da tarefa]
• Ex: Criar reunião amanhã às 14h

✅ CONCLUIR:
• Concluir [nome da tarefa]
• Ou digite o número após listar

🔄 ATUALIZAR:
• Atualizar [nome da tarefa] para em progresso

🗑️ DELETAR:
• Deletar [nome da tarefa]

📊 STATUS:
• Meu progresso / Status

💡 Dica: Fale naturalmente! Eu entendo o contexto.`

// ===== Listing ===================================================================================

type listFilter struct {
	keywords []string
	period   string
	keep     func(task tasks.Task, now time.Time, loc *time.Location) bool
}

var listFilters = []listFilter{
	{[]string{"hoje", "today"}, "hoje", func(task tasks.Task, now time.Time, loc *time.Location) bool {
		return task.IsDueToday(now, loc)
	}},
	{[]string{"amanhã", "amanha", "tomorrow"}, "amanhã", func(task tasks.Task, now time.Time, loc *time.Location) bool {
		return task.DueDate != nil && tasks.DayDiff(now, *task.DueDate, loc) == 1
	}},
	{[]string{"semana", "week"}, "esta semana", func(task tasks.Task, now time.Time, _ *time.Location) bool {
		return task.DueDate != nil && !task.DueDate.After(now.AddDate(0, 0, 7))
	}},
	{[]string{"atrasada", "vencida", "overdue", "late"}, "atrasadas", func(task tasks.Task, now time.Time, _ *time.Location) bool {
		return task.DueDate != nil && task.DueDate.Before(now) && !task.IsDone()
	}},
	{[]string{"pendente", "pending", "todo"}, "pendentes", func(task tasks.Task, _ time.Time, _ *time.Location) bool {
		return task.Status == tasks.StatusTodo
	}},
	{[]string{"progresso", "progress"}, "em progresso", func(task tasks.Task, _ time.Time, _ *time.Location) bool {
		return task.Status == tasks.StatusInProgress
	}},
	{[]string{"concluída", "concluida", "done", "completed"}, "concluídas", func(task tasks.Task, _ time.Time, _ *time.Location) bool {
		return task.IsDone()
	}},
	{[]string{"alta", "high", "priorit"}, "de alta prioridade", func(task tasks.Task, _ time.Time, _ *time.Location) bool {
		return task.Priority == tasks.PriorityHigh
	}},
	{[]string{"urgente", "urgent"}, "urgentes", func(task tasks.Task, _ time.Time, _ *time.Location) bool {
		return task.Priority == tasks.PriorityUrgent
	}},
}

const listRows = 10

func (assistant *Assistant) handleList(current *turn) outcome {
	filtered := tasks.NotDone(current.snapshot)
	period := ""

	for _, filter := range listFilters {
		if !containsAny(current.normalized, filter.keywords) {
			continue
		}

		period = filter.period
		filtered = tasks.Filter(current.snapshot, func(task tasks.Task) bool {
			return filter.keep(task, current.now, assistant.location)
		})

		break
	}

	if len(filtered) == 0 {
		if period != "" {
			return reply(types.TextResponse(fmt.Sprintf("✨ Você não tem tarefas %s. Ótimo trabalho!", period)))
		}

		return reply(types.TextResponse("✨ Você não tem tarefas pendentes. Que tal criar uma nova?"))
	}

	shown := filtered[:min(len(filtered), listRows)]
	rows := make([]string, 0, len(shown))
	views := make([]TaskView, 0, len(shown))

	for idx, task := range shown {
		rows = append(rows, taskRow(idx+1, task, current.now, assistant.location))
		views = append(views, viewOf(task))
	}

	header := fmt.Sprintf("Você tem %d tarefa(s)", len(filtered))

	if period != "" {
		header += " " + period
	}

	message := header + ":\n\n" + strings.Join(rows, "\n")

	if len(filtered) > listRows {
		message += fmt.Sprintf("\n\nMostrando %d de %d", len(shown), len(filtered))
	}

	return reply(types.Response{Message: message, Action: "list", Data: views})
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}

	return false
}

// ===== Suggestion ================================================================================

var suggestionReasons = map[Bucket]string{
	BucketUrgent: "🚨 Esta tarefa tem prioridade URGENTE. Deve ser resolvida o mais rápido possível.",
	BucketToday:  "📅 Esta tarefa vence hoje. Priorize para não atrasar.",
	BucketHigh:   "🔴 Esta tarefa tem alta prioridade. É importante resolvê-la logo.",
	BucketOther:  "📋 Esta é a próxima tarefa na sua lista. Comece por ela para manter o progresso.",
}

func (assistant *Assistant) handleSuggest(current *turn) outcome {
	suggestion, ok := SuggestNext(current.snapshot, current.now, assistant.location)

	if !ok {
		return reply(types.TextResponse(
			"🎉 Parabéns! Você não tem tarefas pendentes. Todas as suas tarefas foram concluídas!\n\n" +
				"Que tal criar uma nova tarefa? Basta dizer algo como:\n• \"Criar tarefa reunião com cliente\"",
		))
	}

	task := suggestion.Task
	reason := suggestionReasons[suggestion.Bucket]

	if suggestion.Bucket == BucketOverdue {
		days := -tasks.DayDiff(current.now, *task.DueDate, assistant.location)
		reason = fmt.Sprintf(
			"⚠️ Esta tarefa está atrasada há %d dia(s). Resolva-a imediatamente para evitar mais atrasos.", days,
		)
	}

	due := ""

	if task.DueDate != nil {
		due = "\n📆 Prazo: " + task.DueDate.In(assistant.location).Format("02/01/2006 às 15:04")
	}

	counts := suggestion.Counts
	message := fmt.Sprintf(
		"🎯 Recomendo que você trabalhe nesta tarefa agora:\n\n%s\n• Status: %s\n• Prioridade: %s%s\n\n%s\n\n"+
			"📊 Resumo das suas tarefas pendentes:\n• Atrasadas: %d\n• Para hoje: %d\n• Urgentes: %d\n"+
			"• Alta prioridade: %d\n• Outras: %d\n\n"+
			"Quer que eu marque esta tarefa como concluída quando terminar? Basta dizer \"concluir %s\".",
		task.Title, formatStatusBadge(task.Status), formatPriorityBadge(task.Priority), due, reason,
		counts[BucketOverdue], counts[BucketToday], counts[BucketUrgent], counts[BucketHigh], counts[BucketOther],
		truncate(task.Title, 30),
	)

	return reply(types.Response{
		Message: message,
		Action:  "suggest_task",
		Data: map[string]any{
			"suggested_task": viewOf(task),
			"reason":         suggestion.Bucket,
			"summary": map[string]int{
				"overdue":       counts[BucketOverdue],
				"today":         counts[BucketToday],
				"urgent":        counts[BucketUrgent],
				"high_priority": counts[BucketHigh],
				"other":         counts[BucketOther],
				"total_pending": suggestion.Open,
			},
		},
	})
}

// ===== Status ====================================================================================

func (assistant *Assistant) handleStatus(current *turn) outcome {
	snapshot := current.snapshot
	loc := assistant.location
	total := len(snapshot)

	pending := tasks.Count(snapshot, func(task tasks.Task) bool { return task.Status == tasks.StatusTodo })
	doing := tasks.Count(snapshot, func(task tasks.Task) bool { return task.Status == tasks.StatusInProgress })
	done := tasks.Count(snapshot, tasks.Task.IsDone)

	overdue := tasks.Count(snapshot, func(task tasks.Task) bool {
		return !task.IsDone() && task.DueDate != nil && task.DueDate.Before(current.now)
	})
	dueToday := tasks.Count(snapshot, func(task tasks.Task) bool {
		return !task.IsDone() && task.IsDueToday(current.now, loc)
	})
	important := tasks.Count(snapshot, func(task tasks.Task) bool {
		return !task.IsDone() && (task.Priority == tasks.PriorityHigh || task.Priority == tasks.PriorityUrgent)
	})

	rate := 0.0

	if total > 0 {
		rate = float64(done) / float64(total) * 100
	}

	lines := []string{
		"📊 Resumo das suas tarefas:",
		"",
		fmt.Sprintf("📈 Total: %d tarefas", total),
		fmt.Sprintf("✅ Concluídas: %d (%.0f%%)", done, rate),
		fmt.Sprintf("🔄 Em progresso: %d", doing),
		fmt.Sprintf("📋 Pendentes: %d", pending),
	}

	alerts := []string{}

	if overdue > 0 {
		alerts = append(alerts, fmt.Sprintf("🚨 %d tarefa(s) atrasada(s)!", overdue))
	}

	if dueToday > 0 {
		alerts = append(alerts, fmt.Sprintf("⏰ %d tarefa(s) para hoje", dueToday))
	}

	if important > 0 {
		alerts = append(alerts, fmt.Sprintf("⚡ %d de alta prioridade", important))
	}

	if len(alerts) > 0 {
		lines = append(lines, "")
		lines = append(lines, alerts...)
	}

	switch {
	case rate >= 80:
		lines = append(lines, "\n🌟 Excelente! Você está quase lá!")
	case rate >= 50:
		lines = append(lines, "\n💪 Bom progresso! Continue assim!")
	case pending+doing == 0 && done > 0:
		lines = append(lines, "\n🎉 Parabéns! Todas as tarefas concluídas!")
	}

	return reply(types.Response{
		Message: strings.Join(lines, "\n"),
		Action:  "status",
		Data: map[string]any{
			"total":                 total,
			"pending":               pending,
			"in_progress":           doing,
			"done":                  done,
			"completion_rate":       rate,
			"overdue":               overdue,
			"due_today":             dueToday,
			"high_priority_pending": important,
		},
	})
}

// ===== Create ====================================================================================

var createPrefixes = []string{
	"nova tarefa", "criar tarefa", "criar", "adicionar tarefa", "adicionar", "agendar", "marcar",
}

// stripCommand derives a title from the raw message when extraction fails.
func stripCommand(message string) string {
	trimmed := strings.TrimSpace(message)
	lower := strings.ToLower(trimmed)

	for _, prefix := range createPrefixes {
		if strings.HasPrefix(lower, prefix+":") || strings.HasPrefix(lower, prefix+" ") {
			return strings.TrimSpace(trimmed[len(prefix)+1:])
		}
	}

	return trimmed
}

func (assistant *Assistant) extract(current *turn) Extraction {
	if assistant.extractor == nil {
		return Extraction{Title: stripCommand(current.message), Priority: string(tasks.PriorityMedium)}
	}

	ctx, cancel := context.WithTimeout(current.ctx, assistant.portTimeout)
	defer cancel()

	extraction, err := assistant.extractor.Extract(ctx, current.message, current.now)

	if err != nil {
		log.Warn("task extraction failed, stripping command words", "error", err)
		assistant.metrics.RecordPortFailure("extractor")

		return Extraction{Title: stripCommand(current.message), Priority: string(tasks.PriorityMedium)}
	}

	return extraction
}

/*
normalizeDue turns whatever date the extractor produced into the canonical
form, keeping bare dates bare.  Unreadable dates are dropped.
*/
func normalizeDue(raw string, loc *time.Location) *string {
	value := strings.TrimSpace(raw)
	parsed, ok := tasks.ParseDueDate(value, loc)

	if !ok {
		if value != "" && !strings.EqualFold(value, "null") {
			log.Warn("dropping unreadable due date", "due_date", value)
		}

		return nil
	}

	formatted := tasks.FormatDueDate(parsed, loc)

	if len(value) == len("2006-01-02") {
		formatted = parsed.Format("2006-01-02")
	}

	return &formatted
}

func (assistant *Assistant) handleCreate(current *turn) outcome {
	extraction := assistant.extract(current)
	title := strings.TrimSpace(extraction.Title)

	if len([]rune(title)) < 3 {
		return reply(types.TextResponse(describePrompt))
	}

	priority := tasks.CanonicalPriority(extraction.Priority)

	if priority == tasks.PriorityUnknown {
		priority = tasks.PriorityMedium
	}

	draft := CreateDraft{
		Title:    title,
		Text:     title,
		DueDate:  normalizeDue(extraction.DueDate, assistant.location),
		Priority: string(priority),
	}

	message := "🆕 Vou criar a tarefa:\n\n📌 " + title

	if draft.DueDate != nil {
		message += "\n📅 Data: " + *draft.DueDate
	}

	message += "\n🎯 Prioridade: " + formatPriority(priority)
	message += "\n\nClique em Confirmar para criar ou Cancelar para desistir."

	return replyAndSet(types.Response{
		Message:              message,
		Action:               "confirm_create",
		Data:                 draft,
		RequiresConfirmation: true,
		ActionButtons: []types.ActionButton{
			{Label: confirmLabel, Action: types.ActionCreate, Data: draft},
			{Label: cancelLabel, Action: types.ActionCancel},
		},
	}, ConfirmingCreate(draft))
}

// ===== Complete / delete / update ================================================================

func confirmComplete(target Candidate) outcome {
	return replyAndSet(types.Response{
		Message:              "✅ Marcar como concluída:\n\n📌 " + target.Title + "\n\nConfirmar?",
		Action:               "confirm_complete",
		Data:                 map[string]string{"task_id": target.ID, "task_title": target.Title},
		RequiresConfirmation: true,
		ActionButtons: []types.ActionButton{
			{Label: confirmLabel, Action: types.ActionComplete, Data: map[string]string{"task_id": target.ID}},
			{Label: cancelLabel, Action: types.ActionCancel},
		},
	}, Confirming(intent.KindComplete, target))
}

func confirmDelete(target Candidate) outcome {
	return replyAndSet(types.Response{
		Message:              "🗑️ Excluir tarefa:\n\n📌 " + target.Title + "\n\n⚠️ Esta ação não pode ser desfeita. Confirmar?",
		Action:               "confirm_delete",
		Data:                 map[string]string{"task_id": target.ID, "task_title": target.Title},
		RequiresConfirmation: true,
		ActionButtons: []types.ActionButton{
			{Label: "🗑️ Excluir", Action: types.ActionDelete, Data: map[string]string{"task_id": target.ID}},
			{Label: cancelLabel, Action: types.ActionCancel},
		},
	}, Confirming(intent.KindDelete, target))
}

func confirmStatus(target Candidate, status tasks.Status) outcome {
	return replyAndSet(types.Response{
		Message: fmt.Sprintf(
			"🔄 Alterar status:\n\n📌 %s\n➡️ Novo status: %s\n\nConfirmar?", target.Title, formatStatus(status),
		),
		Action: "confirm_update",
		Data: map[string]string{
			"task_id": target.ID, "task_title": target.Title, "status": string(status),
		},
		RequiresConfirmation: true,
		ActionButtons: []types.ActionButton{
			{
				Label:  confirmLabel,
				Action: types.ActionUpdateStatus,
				Data:   map[string]string{"task_id": target.ID, "status": string(status)},
			},
			{Label: cancelLabel, Action: types.ActionCancel},
		},
	}, ConfirmingStatus(target, status))
}

func askWhatToUpdate(target Candidate) outcome {
	return replyAndSet(types.Response{
		Message: fmt.Sprintf(
			"Encontrei a tarefa '%s'. O que você quer atualizar? Diga o novo status, por exemplo: 'atualizar %s para em progresso'.",
			target.Title, target.Title,
		),
		Action: "update",
		Data:   map[string]string{"task_id": target.ID, "task_title": target.Title},
	}, Idle())
}

func notFound(resolution Resolution) outcome {
	shown := resolution.Keywords[:min(len(resolution.Keywords), 3)]

	return replyAndSet(types.TextResponse(fmt.Sprintf(
		"Não encontrei nenhuma tarefa com '%s'. Tente ser mais específico.", strings.Join(shown, " "),
	)), Idle())
}

func selection(action string, message string, candidates []Candidate, mode Mode) outcome {
	return replyAndSet(types.Response{Message: message, Action: action, Data: candidates}, mode)
}

func (assistant *Assistant) handleComplete(current *turn) outcome {
	open := tasks.NotDone(current.snapshot)

	if len(open) == 0 {
		return reply(types.TextResponse("🎉 Parabéns! Você não tem tarefas pendentes para concluir!"))
	}

	if index, err := strconv.Atoi(current.normalized); err == nil {
		if index >= 1 && index <= len(open) {
			return confirmComplete(candidateOf(open[index-1]))
		}
	}

	resolution := ResolveReference(current.message, candidatesOf(open), intent.KindComplete)

	switch resolution.Kind {
	case NoMatch:
		return notFound(resolution)
	case SingleMatch:
		return confirmComplete(resolution.Match)
	}

	if len(resolution.Keywords) == 0 {
		lines := make([]string, 0, len(resolution.Candidates))

		for idx, task := range open[:len(resolution.Candidates)] {
			lines = append(lines, fmt.Sprintf("%d. %s (%s)", idx+1, task.Title, formatStatus(task.Status)))
		}

		return selection(
			"select_complete",
			"✅ Qual tarefa você quer marcar como concluída?\n\n"+strings.Join(lines, "\n")+
				"\n\nDigite o nome ou número da tarefa.",
			resolution.Candidates,
			Selecting(intent.KindComplete, resolution.Candidates),
		)
	}

	return selection(
		"select_complete",
		fmt.Sprintf("Encontrei %d tarefas:\n\n%s\n\nQual delas você quer marcar como concluída? Digite o número.",
			resolution.Total, numbered(resolution.Candidates)),
		resolution.Candidates,
		Selecting(intent.KindComplete, resolution.Candidates),
	)
}

func (assistant *Assistant) handleDelete(current *turn) outcome {
	if len(current.snapshot) == 0 {
		return reply(types.TextResponse("Você não tem tarefas para deletar."))
	}

	resolution := ResolveReference(current.message, candidatesOf(current.snapshot), intent.KindDelete)

	switch resolution.Kind {
	case NoMatch:
		return notFound(resolution)
	case SingleMatch:
		return confirmDelete(resolution.Match)
	}

	if len(resolution.Keywords) == 0 {
		return selection(
			"select_delete",
			"Qual tarefa você quer deletar?\n\n"+numbered(resolution.Candidates)+
				"\n\nDigite o nome ou número da tarefa.",
			resolution.Candidates,
			Selecting(intent.KindDelete, resolution.Candidates),
		)
	}

	return selection(
		"select_delete",
		fmt.Sprintf("Encontrei %d tarefas:\n\n%s\n\nQual delas você quer deletar? Digite o número.",
			resolution.Total, numbered(resolution.Candidates)),
		resolution.Candidates,
		Selecting(intent.KindDelete, resolution.Candidates),
	)
}

var statusPhrases = []struct {
	phrase string
	status tasks.Status
}{
	{"a fazer", tasks.StatusTodo},
	{"pendente", tasks.StatusTodo},
	{"em progresso", tasks.StatusInProgress},
	{"andamento", tasks.StatusInProgress},
	{"concluída", tasks.StatusDone},
	{"concluida", tasks.StatusDone},
	{"feita", tasks.StatusDone},
	{"cancelada", tasks.StatusCancelled},
}

// requestedStatus finds the status an update message asks for, if any.
func requestedStatus(normalized string) (tasks.Status, bool) {
	for _, candidate := range statusPhrases {
		if strings.Contains(normalized, candidate.phrase) {
			return candidate.status, true
		}
	}

	return "", false
}

func (assistant *Assistant) handleUpdate(current *turn) outcome {
	if len(current.snapshot) == 0 {
		return reply(types.TextResponse("Você não tem tarefas para atualizar."))
	}

	status, hasStatus := requestedStatus(current.normalized)
	resolution := ResolveReference(current.message, candidatesOf(current.snapshot), intent.KindUpdate)

	switch resolution.Kind {
	case NoMatch:
		return notFound(resolution)
	case SingleMatch:
		if hasStatus {
			return confirmStatus(resolution.Match, status)
		}

		return askWhatToUpdate(resolution.Match)
	}

	prompt := fmt.Sprintf(
		"Encontrei %d tarefas:\n\n%s\n\nQual delas você quer atualizar? Digite o número.",
		resolution.Total, numbered(resolution.Candidates),
	)

	if len(resolution.Keywords) == 0 {
		prompt = "Escolha a tarefa que você quer atualizar:\n\n" + numbered(resolution.Candidates) +
			"\n\nDigite o número da tarefa."
	}

	mode := Selecting(intent.KindUpdate, resolution.Candidates)

	if hasStatus {
		mode = SelectingUpdate(resolution.Candidates, status)
	}

	return selection("select_update", prompt, resolution.Candidates, mode)
}

/*
handleSelection resolves a numeric reply against the list that was shown.
An out-of-range number leaves the dialogue as it was; a task that vanished
from the snapshot since the list was shown clears it.
*/
func (assistant *Assistant) handleSelection(current *turn, kind intent.ActionKind) outcome {
	index, err := strconv.Atoi(current.normalized)

	if err != nil {
		return reply(types.TextResponse("Por favor, digite o número da tarefa que deseja selecionar."))
	}

	pending := current.state.Mode.PendingTaskList()
	chosen, ok := ResolveSelection(index, pending, current.snapshot)

	if !ok {
		return reply(types.TextResponse(invalidNumber))
	}

	if !containsTask(current.snapshot, chosen.ID) {
		return replyAndSet(types.TextResponse(selectionVanished), Idle())
	}

	switch kind {
	case intent.KindDelete:
		return confirmDelete(chosen)
	case intent.KindUpdate:
		if status := current.state.Mode.Status(); status != "" {
			return confirmStatus(chosen, status)
		}

		return askWhatToUpdate(chosen)
	}

	return confirmComplete(chosen)
}

func containsTask(snapshot []tasks.Task, id string) bool {
	for _, task := range snapshot {
		if task.ID == id {
			return true
		}
	}

	return false
}
