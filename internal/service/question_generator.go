package service

import (
	"math/rand"
	"time"

	"github.com/aliskhannn/times-table-bot/internal/domain/entities"
)

// RandomSource is the subset of *rand.Rand used to draw operands.
type RandomSource interface {
	Intn(n int) int
}

// QuestionGenerator draws question operands for a quiz mode.
type QuestionGenerator struct {
	minOperand int
	maxOperand int

	rng RandomSource
}

// NewQuestionGenerator creates a generator drawing factors from [minOperand, maxOperand].
// A nil rng is replaced with a time-seeded one.
func NewQuestionGenerator(minOperand, maxOperand int, rng RandomSource) *QuestionGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &QuestionGenerator{
		minOperand: minOperand,
		maxOperand: maxOperand,
		rng:        rng,
	}
}

// Generate draws two factors independently and uniformly.
//
// In multiplication mode they are the operands. In division mode the dividend
// is their product and the divisor the second factor, so the quotient is the
// first factor and always lies in the same range.
func (g *QuestionGenerator) Generate(mode entities.Mode) entities.Operands {
	x := g.draw()
	y := g.draw()

	if mode == entities.ModeDivision {
		return entities.Operands{A: x * y, B: y}
	}
	return entities.Operands{A: x, B: y}
}

func (g *QuestionGenerator) draw() int {
	return g.minOperand + g.rng.Intn(g.maxOperand-g.minOperand+1)
}
