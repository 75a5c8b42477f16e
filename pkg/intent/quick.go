package intent

import "strings"

var quickTable = map[string]Intent{
	"oi":        Greeting,
	"olá":       Greeting,
	"ola":       Greeting,
	"hey":       Greeting,
	"bom dia":   Greeting,
	"boa tarde": Greeting,
	"boa noite": Greeting,
	"e aí":      Greeting,
	"eai":       Greeting,
	"oi!":       Greeting,
	"olá!":      Greeting,

	"obrigado":  Thanks,
	"obrigada":  Thanks,
	"valeu":     Thanks,
	"vlw":       Thanks,
	"brigado":   Thanks,
	"thanks":    Thanks,
	"obrigado!": Thanks,

	"ajuda":    Help,
	"help":     Help,
	"comandos": Help,
	"?":        Help,

	"o que você faz": AboutSystem,
	"o que voce faz": AboutSystem,

	"sim":       ConfirmYes,
	"s":         ConfirmYes,
	"ok":        ConfirmYes,
	"confirmar": ConfirmYes,
	"pode ser":  ConfirmYes,
	"isso":      ConfirmYes,
	"sim!":      ConfirmYes,
	"confirma":  ConfirmYes,
	"pode":      ConfirmYes,

	"não":          ConfirmNo,
	"nao":          ConfirmNo,
	"n":            ConfirmNo,
	"cancelar":     ConfirmNo,
	"cancela":      ConfirmNo,
	"desistir":     ConfirmNo,
	"não quero":    ConfirmNo,
	"deixa pra lá": ConfirmNo,

	"minhas tarefas":    ListTasks,
	"listar tarefas":    ListTasks,
	"tarefas de hoje":   ListTasks,
	"tarefas para hoje": ListTasks,
	"criar tarefa":      CreateTask,
	"nova tarefa":       CreateTask,
	"meu progresso":     TaskStatus,
	"meu status":        TaskStatus,
}

var quickPrefixes = []struct {
	prefix string
	intent Intent
}{
	{"criar ", CreateTask},
	{"adicionar ", CreateTask},
	{"concluir ", CompleteTask},
	{"finalizar ", CompleteTask},
	{"deletar ", DeleteTask},
	{"excluir ", DeleteTask},
	{"remover ", DeleteTask},
}

/*
QuickMatch resolves canned phrases without any external call.  A numeric
message while a selection list is outstanding wins over everything else.
The message must already be normalized.
*/
func QuickMatch(normalized string, pending ActionKind) (Intent, bool) {
	if IsNumeric(normalized) {
		if selected, ok := pending.Select(); ok {
			return selected, true
		}
	}

	if matched, ok := quickTable[normalized]; ok {
		return matched, true
	}

	for _, rule := range quickPrefixes {
		if strings.HasPrefix(normalized, rule.prefix) {
			return rule.intent, true
		}
	}

	return "", false
}
