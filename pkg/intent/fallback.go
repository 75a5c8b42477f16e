package intent

import "strings"

var fallbackKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{Greeting, []string{"oi", "olá", "bom dia", "boa tarde", "boa noite"}},
	{Thanks, []string{"obrigado", "valeu", "thanks"}},
	{Help, []string{"ajuda", "help", "comandos"}},
	{CreateTask, []string{"criar", "adicionar", "nova tarefa"}},
	{CompleteTask, []string{"concluir", "finalizar", "terminar"}},
	{DeleteTask, []string{"deletar", "remover", "excluir"}},
	{ListTasks, []string{"listar", "minhas tarefas", "tarefas de hoje"}},
}

/*
Fallback is the deterministic keyword classifier used when the external
classifier is unavailable or answers with something outside the closed set.
*/
func Fallback(message string) Intent {
	normalized := Normalize(message)

	for _, group := range fallbackKeywords {
		for _, keyword := range group.keywords {
			if strings.Contains(normalized, keyword) {
				return group.intent
			}
		}
	}

	return General
}
