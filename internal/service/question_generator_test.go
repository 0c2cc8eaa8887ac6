package service

import (
	"math/rand"
	"testing"

	"github.com/aliskhannn/times-table-bot/internal/domain/entities"
)

// scriptedSource returns predefined Intn results in order.
type scriptedSource struct {
	values []int
	pos    int
}

func (s *scriptedSource) Intn(n int) int {
	if s.pos >= len(s.values) {
		return 0
	}
	v := s.values[s.pos] % n
	s.pos++
	return v
}

// operandsSource scripts a sequence of factor pairs for a generator over [2,12].
func operandsSource(pairs ...[2]int) *scriptedSource {
	src := &scriptedSource{}
	for _, p := range pairs {
		src.values = append(src.values, p[0]-2, p[1]-2)
	}
	return src
}

func TestQuestionGenerator_MultiplicationRange(t *testing.T) {
	g := NewQuestionGenerator(2, 12, rand.New(rand.NewSource(1)))

	for i := 0; i < 2000; i++ {
		op := g.Generate(entities.ModeMultiplication)
		if op.A < 2 || op.A > 12 || op.B < 2 || op.B > 12 {
			t.Fatalf("operands out of range: %+v", op)
		}
	}
}

func TestQuestionGenerator_DivisionIsExact(t *testing.T) {
	g := NewQuestionGenerator(2, 12, rand.New(rand.NewSource(2)))

	for i := 0; i < 2000; i++ {
		op := g.Generate(entities.ModeDivision)
		if op.B < 2 || op.B > 12 {
			t.Fatalf("divisor out of range: %+v", op)
		}
		if op.A%op.B != 0 {
			t.Fatalf("dividend not a multiple of divisor: %+v", op)
		}
		if q := op.A / op.B; q < 2 || q > 12 {
			t.Fatalf("quotient out of range: %+v", op)
		}
	}
}

func TestQuestionGenerator_CoversBounds(t *testing.T) {
	g := NewQuestionGenerator(2, 12, rand.New(rand.NewSource(3)))

	seen := make(map[int]bool)
	for i := 0; i < 5000; i++ {
		op := g.Generate(entities.ModeMultiplication)
		seen[op.A] = true
	}
	for n := 2; n <= 12; n++ {
		if !seen[n] {
			t.Fatalf("factor %d never drawn", n)
		}
	}
}

func TestQuestionGenerator_Scripted(t *testing.T) {
	g := NewQuestionGenerator(2, 12, operandsSource([2]int{9, 6}, [2]int{8, 7}))

	if op := g.Generate(entities.ModeMultiplication); op != (entities.Operands{A: 9, B: 6}) {
		t.Fatalf("unexpected operands %+v", op)
	}
	if op := g.Generate(entities.ModeDivision); op != (entities.Operands{A: 56, B: 7}) {
		t.Fatalf("unexpected division operands %+v", op)
	}
}
