package prompts

import (
	"fmt"
	"strings"
	"time"

	"github.com/theapemachine/taskagent/pkg/types"
)

/*
Prompt is one of the instructions sent to the language model ports.  The
same catalog is published over MCP so operators can inspect what the model
is being told.
*/
type Prompt struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

const (
	ClassifierName = "intent-classifier"
	ExtractorName  = "task-extractor"
	AnswerName     = "task-answer"
)

type ErrorPromptNotFound struct{ Name string }

func (e ErrorPromptNotFound) Error() string { return fmt.Sprintf("prompt not found: %s", e.Name) }

const classifierSystem = `Você é um classificador de intenções para um sistema de gerenciamento de tarefas.

Analise a mensagem do usuário CONSIDERANDO O CONTEXTO DA CONVERSA e retorne APENAS UMA das seguintes intenções:

INTENÇÕES DISPONÍVEIS:
- greeting: Saudações como "oi", "olá", "bom dia", "boa tarde"
- thanks: Agradecimentos como "obrigado", "valeu", "thanks"
- about_system: Perguntas sobre o sistema, como funciona, o que faz, funcionalidades
- help: Pedidos de ajuda ou comandos disponíveis
- list_tasks: Listar, ver, mostrar tarefas (hoje, pendentes, atrasadas, etc.)
- create_task: Criar/adicionar tarefa OU descrever uma tarefa para criar (título, descrição, horário)
- complete_task: Concluir, finalizar, terminar uma tarefa
- delete_task: Deletar, remover, excluir uma tarefa
- update_task: Atualizar, modificar, editar uma tarefa
- suggest_next_task: Perguntar qual tarefa fazer agora, por onde começar, priorização
- task_status: Ver progresso, status geral, produtividade, resumo
- general: Qualquer outra coisa que não se encaixe acima

REGRAS IMPORTANTES:
1. Se a ÚLTIMA mensagem do assistente PEDIU para descrever uma tarefa, e o usuário responde com algo que parece uma tarefa (ex: "reunião com cliente às 14h") → create_task
2. Se o usuário menciona horário, data ou atividade que parece uma tarefa → provavelmente create_task
3. Se o usuário quer saber SOBRE o sistema/app/assistente em si → about_system
4. Se o usuário quer ver/listar SUAS tarefas existentes → list_tasks
5. Se pergunta "o que fazer agora" ou quer recomendação → suggest_next_task

Responda APENAS com a intenção, nada mais.`

const extractorSystem = `Você é um extrator de informações de tarefas. Analise a mensagem do usuário e extraia:

1. TÍTULO: O nome/descrição da tarefa (limpo, sem palavras como "criar", "amanhã", "para")
2. DATA: Se mencionou quando (hoje, amanhã, próxima semana, data específica)
3. PRIORIDADE: Se mencionou urgência (alta, média, baixa, urgente)

REGRAS:
- Hoje é {{today}}
- Amanhã é {{tomorrow}}
- O título deve ser APENAS a descrição da tarefa, sem datas ou comandos
- Remova palavras como "criar", "tarefa", "para", "amanhã", "hoje" do título
- O título deve fazer sentido sozinho (ex: "Reunião com a diretoria", não "para amanhã ter uma reunião")

RESPONDA APENAS em formato JSON válido:
{"title": "título limpo da tarefa", "due_date": "YYYY-MM-DD HH:MM ou null", "priority": "high/medium/low/urgent"}

EXEMPLOS:
Entrada: "criar tarefa para amanhã ter uma reunião com a diretoria"
Saída: {"title": "Reunião com a diretoria", "due_date": "{{tomorrow}}", "priority": "medium"}

Entrada: "adicionar revisar código do projeto urgente"
Saída: {"title": "Revisar código do projeto", "due_date": null, "priority": "urgent"}

Entrada: "nova tarefa: ligar para o cliente às 15h"
Saída: {"title": "Ligar para o cliente", "due_date": "{{today}} 15:00", "priority": "medium"}`

const answerSystem = `Você é um assistente especializado em gerenciamento de tarefas. Suas responsabilidades são LIMITADAS a:

1. Responder perguntas sobre as tarefas do usuário com base nos dados fornecidos
2. Fornecer insights sobre produtividade e organização de tarefas
3. Sugerir prioridades baseadas nas tarefas existentes
4. Ajudar a entender status e progresso das tarefas

REGRAS CRÍTICAS:
- SEMPRE use os dados REAIS das tarefas fornecidas - liste tarefas específicas com títulos, status e prazos
- NUNCA invente ou sugira tarefas que não existem na lista fornecida
- Quando perguntarem sobre tarefas (hoje, amanhã, pendentes, etc.), LISTE as tarefas reais com detalhes
- Se não houver tarefas para o período/filtro solicitado, informe claramente
- Seja específico e factual - cite títulos e detalhes das tarefas
- Seja conciso mas completo (máximo 5-6 linhas)
- Responda SEMPRE em português brasileiro
- NÃO use emojis
- NÃO responda perguntas não relacionadas a tarefas ou produtividade

Se perguntarem algo fora do escopo, responda: "Só posso ajudar com questões relacionadas às suas tarefas. Digite 'ajuda' para ver os comandos."`

var catalog = []Prompt{
	{
		Name:        ClassifierName,
		Description: "Classifies a chat message into one of the assistant's intents",
		Content:     classifierSystem,
	},
	{
		Name:        ExtractorName,
		Description: "Extracts title, due date and priority from a create request",
		Content:     extractorSystem,
	},
	{
		Name:        AnswerName,
		Description: "Answers free-form questions about the user's tasks",
		Content:     answerSystem,
	},
}

// List returns the catalog in a stable order.
func List() []Prompt {
	return append([]Prompt(nil), catalog...)
}

func Get(name string) (Prompt, error) {
	for _, prompt := range catalog {
		if prompt.Name == name {
			return prompt, nil
		}
	}

	return Prompt{}, ErrorPromptNotFound{Name: name}
}

func ClassifierSystem() string {
	return classifierSystem
}

/*
ClassifierUser frames the message with the last turns of the conversation,
each clipped to 100 runes.
*/
func ClassifierUser(message string, recent []types.ConversationTurn) string {
	lines := make([]string, 0, len(recent))

	for _, turn := range recent {
		role := "Assistente"

		if turn.Role == types.RoleUser {
			role = "Usuário"
		}

		lines = append(lines, role+": "+clip(turn.Content, 100))
	}

	section := ""

	if len(lines) > 0 {
		section = "\nCONTEXTO DA CONVERSA RECENTE:\n" + strings.Join(lines, "\n") + "\n"
	}

	return fmt.Sprintf("%sMENSAGEM ATUAL DO USUÁRIO: %q\n\nIntenção:", section, message)
}

// ExtractorSystem fills in today's and tomorrow's dates as seen from now.
func ExtractorSystem(now time.Time) string {
	return strings.NewReplacer(
		"{{today}}", now.Format("2006-01-02"),
		"{{tomorrow}}", now.AddDate(0, 0, 1).Format("2006-01-02"),
	).Replace(extractorSystem)
}

func ExtractorUser(message string) string {
	return fmt.Sprintf("Mensagem do usuário: %q\n\nExtraia as informações em JSON:", message)
}

func AnswerSystem() string {
	return answerSystem
}

func clip(s string, limit int) string {
	runes := []rune(s)

	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
