package demos

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// VehicleInterface is implemented by everything that can start and stop.
type VehicleInterface interface {
	Start() string
	Stop() string
}

var (
	_ VehicleInterface = PassengerCar{}
	_ VehicleInterface = HeavyVehicle{}
)

type PassengerCar struct {
	Brand string
	Model string
}

func (PassengerCar) Start() string { return "Car is starting..." }
func (PassengerCar) Stop() string  { return "Car is stopping..." }

type HeavyVehicle struct {
	Brand        string
	Model        string
	LoadCapacity int
}

func (HeavyVehicle) Start() string { return "Heavy vehicle starting ..." }
func (HeavyVehicle) Stop() string  { return "Heavy vehicle stopping ..." }

// Interfaces starts and stops a car and a truck through VehicleInterface.
func Interfaces() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		vehicles := []VehicleInterface{
			PassengerCar{Brand: "Maruti", Model: "Swift"},
			HeavyVehicle{Brand: "Tata", Model: "4025", LoadCapacity: 40000},
		}
		for _, v := range vehicles {
			p.para("%s", v.Start())
			p.para("%s", v.Stop())
		}
		return p.err
	})
}

// DatabaseConnection reports its lifecycle to log.
type DatabaseConnection struct {
	log io.Writer
}

func OpenDatabaseConnection(log io.Writer) (*DatabaseConnection, error) {
	if _, err := io.WriteString(log, "Database connection established.\n"); err != nil {
		return nil, err
	}
	return &DatabaseConnection{log: log}, nil
}

func (c *DatabaseConnection) Close() error {
	_, err := io.WriteString(c.log, "Database connection closed.\n")
	return err
}

// Cache reports its lifecycle to log.
type Cache struct {
	log io.Writer
}

func NewCache(log io.Writer) (*Cache, error) {
	if _, err := io.WriteString(log, "Cache initialized.\n"); err != nil {
		return nil, err
	}
	return &Cache{log: log}, nil
}

func (c *Cache) Close() error {
	_, err := io.WriteString(c.log, "Cache cleared.\n")
	return err
}

// Destructors acquires and releases two resources with explicit Close
// calls, separating each step with a line break.
func Destructors() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		db, err := OpenDatabaseConnection(w)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<br>"); err != nil {
			return err
		}
		if err := db.Close(); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<br>"); err != nil {
			return err
		}

		cache, err := NewCache(w)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<br>"); err != nil {
			return err
		}
		return cache.Close()
	})
}

// Greeting is package-level state shared by every caller.
var Greeting = "Hello"

// Greet reads the package-level Greeting.
func Greet() string {
	return Greeting + ", World!"
}

// Statics prints package-level state directly and through a function.
func Statics() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		p.para("%s", Greeting)
		p.para("%s", Greet())
		return p.err
	})
}

type TraitA struct{}

func (TraitA) GreetA() string { return "Hello from Trait A" }

type TraitB struct{}

func (TraitB) GreetB() string { return "Hello from Trait B" }

// Greeter gains both behaviours by embedding.
type Greeter struct {
	TraitA
	TraitB
}

// Traits calls the promoted methods of both embedded types.
func Traits() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		var g Greeter
		p.para("%s", g.GreetA())
		p.para("%s", g.GreetB())
		return p.err
	})
}

// UserM has one field per basic data type.
type UserM struct {
	ID     int
	Name   string
	Email  string
	Phone  int64
	Weight float64
	Height float64
}

func NewUserM(id int, name, email string, phone int64, weight, height float64) UserM {
	return UserM{ID: id, Name: name, Email: email, Phone: phone, Weight: weight, Height: height}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// TypedProperties prints a value built from typed constructor parameters.
func TypedProperties() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		user := NewUserM(1, "Tom", "tom@email.com", 9998887777, 65.84, 143.29)

		p.tag("h3", "User Details")
		p.para("No_ : %d", user.ID)
		p.para("Name : %s", user.Name)
		p.para("Email Address : %s", user.Email)
		p.para("Phone Number : %d", user.Phone)
		p.para("Weight : %s kg", formatFloat(user.Weight))
		p.para("Height : %s cms", formatFloat(user.Height))
		return p.err
	})
}

// restClass cannot be extended from outside the package: its type is
// unexported, so only its constructor is reachable.
type restClass struct{}

func NewRestClass() restClass { return restClass{} }

func (restClass) Message() string { return "This is a method from final class" }

// DerClass stands alone instead of extending restClass.
type DerClass struct{}

func (DerClass) Message() string { return "changes with child class of a final class" }

// FinalTypes prints the message of the sealed type and of its stand-in.
func FinalTypes() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		p.para("%s", NewRestClass().Message())
		p.para("%s", DerClass{}.Message())
		return p.err
	})
}

// Visible exposes one exported and one unexported member of each kind.
// Go has no protected level; the second tier is reachable from the package
// only, like the third.
type Visible struct {
	PropPublic    string
	propProtected string
	propPrivate   string
}

func NewVisible() Visible {
	return Visible{
		PropPublic:    "This is a public property",
		propProtected: "This is a protected property",
		propPrivate:   "This is a private property",
	}
}

func (Visible) MetPublic() string       { return "This is a public method" }
func (Visible) metProtected() string    { return "This is a protected method" }
func (Visible) metPrivate() string      { return "This is a private method" }
func (v Visible) PropProtected() string { return v.propProtected }
func (v Visible) PropPrivate() string   { return v.propPrivate }
func (v Visible) RunMetProtected() string {
	return v.metProtected()
}
func (v Visible) RunMetPrivate() string {
	return v.metPrivate()
}

// VisibleChild inherits every member through embedding.
type VisibleChild struct {
	Visible
}

type visibleMembers interface {
	MetPublic() string
	PropProtected() string
	PropPrivate() string
	RunMetProtected() string
	RunMetPrivate() string
}

func writeMembers(p *printer, heading, public string, v visibleMembers) {
	p.raw(`<div class="col-6">` + "\n")
	p.tag("h5", "%s", heading)
	p.tag("h6", "Properties")
	p.para("%s", public)
	p.para("%s", v.PropProtected())
	p.para("%s", v.PropPrivate())
	p.tag("h6", "Methods")
	p.para("%s", v.MetPublic())
	p.para("%s", v.RunMetProtected())
	p.para("%s", v.RunMetPrivate())
	p.raw("</div>\n")
}

// Visibility prints every member of a parent and a child value side by side.
func Visibility() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		parent := NewVisible()
		child := VisibleChild{Visible: NewVisible()}

		p.raw(`<div class="row">` + "\n")
		writeMembers(p, "Parent Class", parent.PropPublic, parent)
		writeMembers(p, "Child Class", child.PropPublic, child)
		p.raw("</div>\n")
		return p.err
	})
}
