package chat

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/theapemachine/taskagent/pkg/intent"
	"github.com/theapemachine/taskagent/pkg/tasks"
)

const (
	listLimit    = 8
	matchesLimit = 5
)

// ResolutionKind tells the caller which kind of reply to build.
type ResolutionKind int

const (
	NoMatch ResolutionKind = iota
	SingleMatch
	Disambiguation
)

/*
Resolution is the outcome of matching free text against a candidate pool.
Candidates holds what should be listed for a Disambiguation, Total how many
tasks matched before the list was capped, and Keywords the tokens that were
searched for.
*/
type Resolution struct {
	Kind       ResolutionKind
	Match      Candidate
	Candidates []Candidate
	Total      int
	Keywords   []string
}

var commandWords = map[intent.ActionKind][]string{
	intent.KindComplete: {
		"concluir", "finalizar", "terminar", "completar", "complete", "finish", "done",
		"feito", "terminei", "tarefa", "tarefas", "marcar", "como", "concluída", "feita",
	},
	intent.KindDelete: {
		"deletar", "remover", "excluir", "delete", "remove", "apagar",
	},
	intent.KindUpdate: {
		"atualizar", "modificar", "mudar", "update", "modify", "change", "para",
		"status", "fazer", "pendente", "progresso", "andamento", "concluída",
		"concluida", "feita", "cancelada",
	},
}

// minTokenLength is the shortest token that still counts as a keyword.
func minTokenLength(kind intent.ActionKind) int {
	if kind == intent.KindComplete {
		return 3
	}

	return 4
}

/*
keywords tokenizes message, drops the command words for kind and anything
too short to be meaningful.
*/
func keywords(message string, kind intent.ActionKind) []string {
	excluded := make(map[string]struct{}, len(commandWords[kind]))

	for _, word := range commandWords[kind] {
		excluded[word] = struct{}{}
	}

	out := []string{}

	for _, field := range strings.Fields(strings.ToLower(message)) {
		token := strings.TrimFunc(field, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})

		if utf8.RuneCountInString(token) < minTokenLength(kind) {
			continue
		}

		if _, skip := excluded[token]; skip {
			continue
		}

		out = append(out, token)
	}

	return out
}

/*
ResolveReference maps free text onto one of pool.  Without usable keywords
the first eight candidates are offered for selection; with keywords, every
candidate whose title contains one of them matches, and more than one match
is offered for selection, capped at five.
*/
func ResolveReference(message string, pool []Candidate, kind intent.ActionKind) Resolution {
	tokens := keywords(message, kind)

	if len(tokens) == 0 {
		shown := pool[:min(len(pool), listLimit)]

		return Resolution{
			Kind:       Disambiguation,
			Candidates: append([]Candidate(nil), shown...),
			Total:      len(pool),
		}
	}

	matches := []Candidate{}

	for _, candidate := range pool {
		title := strings.ToLower(candidate.Title)

		for _, token := range tokens {
			if strings.Contains(title, token) {
				matches = append(matches, candidate)
				break
			}
		}
	}

	switch len(matches) {
	case 0:
		return Resolution{Kind: NoMatch, Keywords: tokens}
	case 1:
		return Resolution{Kind: SingleMatch, Match: matches[0], Total: 1, Keywords: tokens}
	}

	return Resolution{
		Kind:       Disambiguation,
		Candidates: matches[:min(len(matches), matchesLimit)],
		Total:      len(matches),
		Keywords:   tokens,
	}
}

/*
ResolveSelection maps a 1-based index onto the list the user was shown.
When that list is absent or too short the index is tried against the
snapshot's tasks that are not done.
*/
func ResolveSelection(index int, pending []Candidate, snapshot []tasks.Task) (Candidate, bool) {
	if index >= 1 && index <= len(pending) {
		return pending[index-1], true
	}

	open := tasks.NotDone(snapshot)

	if index >= 1 && index <= len(open) {
		return candidateOf(open[index-1]), true
	}

	return Candidate{}, false
}
