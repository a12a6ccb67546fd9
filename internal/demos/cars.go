package demos

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// BankAccount keeps its number and balance unexported; the balance only
// changes through Deposit and Withdraw.
type BankAccount struct {
	accountNumber string
	balance       int
}

var (
	ErrInvalidDeposit    = errors.New("invalid deposit amount")
	ErrInvalidWithdrawal = errors.New("invalid withdrawal amount or insufficient balance")
)

// NewBankAccount opens an account with an initial balance.
func NewBankAccount(accountNumber string, initialBalance int) *BankAccount {
	return &BankAccount{accountNumber: accountNumber, balance: initialBalance}
}

func (a *BankAccount) Deposit(amount int) error {
	if amount <= 0 {
		return ErrInvalidDeposit
	}
	a.balance += amount
	return nil
}

func (a *BankAccount) Withdraw(amount int) error {
	if amount <= 0 || amount > a.balance {
		return ErrInvalidWithdrawal
	}
	a.balance -= amount
	return nil
}

func (a *BankAccount) Balance() int {
	return a.balance
}

func (a *BankAccount) AccountNumber() string {
	return a.accountNumber
}

// Encapsulation opens an account, moves money and prints each balance.
func Encapsulation() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		account := NewBankAccount("123456789", 1000)
		p.para("New Account created with Initial Balance: %d", account.Balance())

		if err := account.Deposit(500); err != nil {
			p.para("Invalid deposit amount.")
		} else {
			p.para("Deposited: %d. New Balance: %d", 500, account.Balance())
		}

		if err := account.Withdraw(200); err != nil {
			p.para("Invalid withdrawal amount or insufficient balance.")
		} else {
			p.para("Withdrawn: %d. Remaining Balance: %d", 200, account.Balance())
		}

		p.para("Final Balance: %d", account.Balance())
		return p.err
	})
}

// Car is described by make, model and year.
type Car struct {
	make  string
	model string
	year  int
}

func NewCar(maker, model string, year int) Car {
	return Car{make: maker, model: model, year: year}
}

// Details formats the car the way the demos print it.
func (c Car) Details() string {
	return fmt.Sprintf("Car Details: %d %s %s", c.year, c.make, c.model)
}

// CarDetails prints a single car.
func CarDetails() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		p.para("%s", NewCar("Toyota", "Corolla", 2018).Details())
		return p.err
	})
}

// MultipleCars prints several independent Car values.
func MultipleCars() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		cars := []Car{
			NewCar("Toyota", "Corolla", 2018),
			NewCar("Honda", "Civic", 2019),
			NewCar("Suzuki", "Swift", 2020),
			NewCar("Hyundai", "Accent", 2021),
		}
		for _, car := range cars {
			p.para("%s", car.Details())
		}
		return p.err
	})
}

// Vehicle is the base type extended by ColoredCar.
type Vehicle struct {
	Make  string
	Model string
	Year  int
}

func (v Vehicle) Details() string {
	return fmt.Sprintf("Vehicle Details: %d %s %s", v.Year, v.Make, v.Model)
}

// ColoredCar embeds Vehicle and overrides Details.
type ColoredCar struct {
	Vehicle
	color string
}

func NewColoredCar(maker, model string, year int, color string) ColoredCar {
	return ColoredCar{Vehicle: Vehicle{Make: maker, Model: model, Year: year}, color: color}
}

func (c ColoredCar) Details() string {
	return fmt.Sprintf("Car Details: %d %s %s %s", c.Year, c.Make, c.Model, c.color)
}

type detailer interface {
	Details() string
}

// Inheritance prints cars and plain vehicles through one interface.
func Inheritance() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		values := []detailer{
			NewColoredCar("Toyota", "Corolla", 2018, "Red"),
			NewColoredCar("Honda", "Civic", 2019, "Blue"),
			Vehicle{Make: "Toyota", Model: "Corolla", Year: 2018},
			Vehicle{Make: "Honda", Model: "Civic", Year: 2019},
		}
		for _, v := range values {
			p.para("%s", v.Details())
		}
		return p.err
	})
}

// ModelCar is built with functional options; unset fields take defaults.
type ModelCar struct {
	Make  string
	Model string
}

type CarOption func(*ModelCar)

func WithMake(maker string) CarOption {
	return func(c *ModelCar) { c.Make = maker }
}

func WithModel(model string) CarOption {
	return func(c *ModelCar) { c.Model = model }
}

// NewModelCar defaults to a Maruti Swift.
func NewModelCar(opts ...CarOption) ModelCar {
	c := ModelCar{Make: "Maruti", Model: "Swift"}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Constructors prints a configured car and a default one.
func Constructors() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		myCar := NewModelCar(WithMake("Toyota"), WithModel("Corolla"))
		p.para("%s", myCar.Make)
		p.para("%s", myCar.Model)

		defaultCar := NewModelCar()
		p.para("%s", defaultCar.Make)
		p.para("%s", defaultCar.Model)
		return p.err
	})
}
