package demos

import (
	"context"
	"errors"
	"io"

	"github.com/a-h/templ"
)

// Operation names a method of a dispatching type. Unknown operations are an
// error value, never a silent fallback.
type Operation int

const (
	OpAdd Operation = iota
	OpCreate
	OpDisplay
	OpSave
)

func (o Operation) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpCreate:
		return "create"
	case OpDisplay:
		return "display"
	case OpSave:
		return "save"
	default:
		return "unknown"
	}
}

var (
	ErrArgumentCount    = errors.New("invalid number of arguments")
	ErrUnknownOperation = errors.New("method not found")
)

// AddNumbers sums two, three or four integers.
type AddNumbers struct{}

func (AddNumbers) Add(args ...int) (int, error) {
	if len(args) < 2 || len(args) > 4 {
		return 0, ErrArgumentCount
	}
	sum := 0
	for _, a := range args {
		sum += a
	}
	return sum, nil
}

// Call dispatches op. Only OpAdd is supported.
func (n AddNumbers) Call(op Operation, args ...int) (int, error) {
	switch op {
	case OpAdd:
		return n.Add(args...)
	default:
		return 0, ErrUnknownOperation
	}
}

// Overloading calls Add with one to five arguments.
func Overloading() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		calls := [][]int{
			{2},
			{25, 35},
			{10, 20, 30},
			{20, 40, 60, 80},
			{15, 25, 35, 45, 55},
		}

		var adder AddNumbers
		for _, args := range calls {
			sum, err := adder.Call(OpAdd, args...)
			if errors.Is(err, ErrArgumentCount) {
				p.para("Invalid number of arguments")
				continue
			}
			if err != nil {
				return err
			}
			p.para("%d", sum)
		}
		return p.err
	})
}
