package chat

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/taskagent/pkg/intent"
	"github.com/theapemachine/taskagent/pkg/tasks"
)

func TestResolveReference(t *testing.T) {
	Convey("Given a pool of candidates", t, func() {
		pool := []Candidate{
			{ID: "A", Title: "Revisar PR do backend"},
			{ID: "B", Title: "Comprar pão"},
			{ID: "C", Title: "Revisar contrato"},
		}

		Convey("A single title hit is a SingleMatch", func() {
			res := ResolveReference("concluir comprar pão", pool, intent.KindComplete)

			So(res.Kind, ShouldEqual, SingleMatch)
			So(res.Match.ID, ShouldEqual, "B")
			So(res.Keywords, ShouldResemble, []string{"comprar", "pão"})
		})

		Convey("Several hits ask which one was meant", func() {
			res := ResolveReference("deletar revisar", pool, intent.KindDelete)

			So(res.Kind, ShouldEqual, Disambiguation)
			So(res.Total, ShouldEqual, 2)
			So(res.Candidates, ShouldHaveLength, 2)
		})

		Convey("Only command words lists the pool", func() {
			res := ResolveReference("concluir tarefa", pool, intent.KindComplete)

			So(res.Kind, ShouldEqual, Disambiguation)
			So(res.Keywords, ShouldBeEmpty)
			So(res.Candidates, ShouldHaveLength, 3)
		})

		Convey("Keywords that match nothing are reported back", func() {
			res := ResolveReference("excluir relatório", pool, intent.KindDelete)

			So(res.Kind, ShouldEqual, NoMatch)
			So(res.Keywords, ShouldResemble, []string{"relatório"})
		})

		Convey("Short tokens are ignored for delete but kept for complete", func() {
			So(keywords("deletar pão", intent.KindDelete), ShouldBeEmpty)
			So(keywords("concluir pão", intent.KindComplete), ShouldResemble, []string{"pão"})
		})
	})

	Convey("Given a large pool", t, func() {
		pool := make([]Candidate, 12)

		for i := range pool {
			pool[i] = Candidate{ID: fmt.Sprint(i), Title: fmt.Sprintf("Revisar item %d", i)}
		}

		Convey("The bare list is capped at eight", func() {
			res := ResolveReference("concluir", pool, intent.KindComplete)

			So(res.Candidates, ShouldHaveLength, listLimit)
			So(res.Total, ShouldEqual, 12)
		})

		Convey("Keyword matches are capped at five", func() {
			res := ResolveReference("remover revisar", pool, intent.KindDelete)

			So(res.Candidates, ShouldHaveLength, matchesLimit)
			So(res.Total, ShouldEqual, 12)
		})
	})
}

func TestResolveSelection(t *testing.T) {
	Convey("Given a shown list and a snapshot", t, func() {
		pending := []Candidate{{ID: "B", Title: "Comprar pão"}}
		snapshot := []tasks.Task{
			{ID: "A", Title: "Feita", Status: tasks.StatusDone},
			{ID: "B", Title: "Comprar pão", Status: tasks.StatusTodo},
			{ID: "C", Title: "Revisar contrato", Status: tasks.StatusInProgress},
		}

		Convey("An index into the shown list wins", func() {
			got, ok := ResolveSelection(1, pending, snapshot)

			So(ok, ShouldBeTrue)
			So(got.ID, ShouldEqual, "B")
		})

		Convey("Past the shown list the open tasks are used", func() {
			got, ok := ResolveSelection(2, pending, snapshot)

			So(ok, ShouldBeTrue)
			So(got.ID, ShouldEqual, "C")
		})

		Convey("Out of range fails", func() {
			_, ok := ResolveSelection(0, pending, snapshot)
			So(ok, ShouldBeFalse)

			_, ok = ResolveSelection(3, nil, snapshot)
			So(ok, ShouldBeFalse)
		})
	})
}
